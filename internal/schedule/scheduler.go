// Package schedule abstracts delayed execution so the stores' simulated
// latency can run against a fake clock in tests instead of wall-clock sleep.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable scheduled task.
type Timer interface {
	// Stop cancels the task. It reports whether the cancellation
	// prevented the task from running.
	Stop() bool
}

// Scheduler runs a function after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

type realTimer struct {
	t *time.Timer
}

func (t realTimer) Stop() bool { return t.t.Stop() }

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

// Real returns the wall-clock scheduler.
func Real() Scheduler { return realScheduler{} }

// Fake is a manually advanced scheduler for tests. Tasks run synchronously
// on the goroutine calling Advance, in due order.
type Fake struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	owner   *Fake
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *fakeTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewFake constructs a fake scheduler at time zero.
func NewFake() *Fake { return &Fake{} }

// AfterFunc registers fn to run once Advance moves past d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := &fakeTask{owner: f, due: f.now + d, seq: f.seq, fn: fn}
	f.seq++
	f.tasks = append(f.tasks, task)
	return task
}

// Advance moves the fake clock forward and runs every task that came due,
// in due-time order with registration order as tie-breaker.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now += d
	now := f.now
	var due []*fakeTask
	var rest []*fakeTask
	for _, task := range f.tasks {
		if task.stopped {
			continue
		}
		if task.due <= now {
			// Fired tasks are consumed; Stop afterwards reports false,
			// matching time.Timer.
			task.stopped = true
			due = append(due, task)
		} else {
			rest = append(rest, task)
		}
	}
	f.tasks = rest
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	f.mu.Unlock()

	for _, task := range due {
		task.fn()
	}
}

// Pending reports how many tasks are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, task := range f.tasks {
		if !task.stopped {
			n++
		}
	}
	return n
}
