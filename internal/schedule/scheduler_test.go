package schedule

import (
	"testing"
	"time"
)

func TestFakeRunsTasksInDueOrder(t *testing.T) {
	f := NewFake()
	var order []string
	f.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	f.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	f.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	f.Advance(10 * time.Second)
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected run order: %v", order)
	}
}

func TestFakeAdvancePartial(t *testing.T) {
	f := NewFake()
	ran := false
	f.AfterFunc(2*time.Second, func() { ran = true })

	f.Advance(1 * time.Second)
	if ran {
		t.Fatalf("task ran before its due time")
	}
	if f.Pending() != 1 {
		t.Fatalf("expected 1 pending task, got %d", f.Pending())
	}
	f.Advance(1 * time.Second)
	if !ran {
		t.Fatalf("task should have run at its due time")
	}
}

func TestFakeStopPreventsRun(t *testing.T) {
	f := NewFake()
	ran := false
	timer := f.AfterFunc(time.Second, func() { ran = true })
	if !timer.Stop() {
		t.Fatalf("first stop should report cancellation")
	}
	if timer.Stop() {
		t.Fatalf("second stop should report already stopped")
	}
	f.Advance(2 * time.Second)
	if ran {
		t.Fatalf("stopped task must not run")
	}
}

func TestFakeStopAfterRunReportsFalse(t *testing.T) {
	f := NewFake()
	timer := f.AfterFunc(time.Second, func() {})
	f.Advance(time.Second)
	if timer.Stop() {
		t.Fatalf("stop after the task ran must report false")
	}
}

func TestFakeTieBreakByRegistrationOrder(t *testing.T) {
	f := NewFake()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		f.AfterFunc(time.Second, func() { order = append(order, i) })
	}
	f.Advance(time.Second)
	for i, got := range order {
		if got != i {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}
