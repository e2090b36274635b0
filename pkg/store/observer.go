package store

import "sync"

// observers is the notification list shared by all stores. Callbacks run
// synchronously after a commit, outside the state lock, so a subscriber
// reading a snapshot always sees the committed state.
type observers struct {
	mu  sync.Mutex
	fns []func()
}

func (o *observers) subscribe(fn func()) {
	o.mu.Lock()
	o.fns = append(o.fns, fn)
	o.mu.Unlock()
}

func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), len(o.fns))
	copy(fns, o.fns)
	o.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
