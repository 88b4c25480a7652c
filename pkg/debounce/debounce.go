// Package debounce provides a cancellable delay primitive: an action is
// scheduled to run after a quiet period, and re-triggering before the period
// elapses replaces the pending action and restarts the clock. It backs both
// keystroke coalescing and stale-lookup suppression, where only the latest
// of a burst of events should take effect.
package debounce

import (
	"sync"
	"time"
)

// Timer coalesces a burst of triggers into a single deferred call.
// The zero value is not usable; construct with New.
type Timer struct {
	quiet time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
}

// New returns a Timer with the given quiet period.
func New(quiet time.Duration) *Timer {
	return &Timer{quiet: quiet}
}

// Trigger schedules fn to run once the quiet period elapses with no further
// triggers. Any previously pending function is discarded, so the latest
// trigger always wins.
func (t *Timer) Trigger(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.pending = fn
	t.timer = time.AfterFunc(t.quiet, t.fire)
}

// fire runs the pending function, if a later Trigger/Cancel has not
// replaced or cleared it.
func (t *Timer) fire() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops the pending function without running it. It reports whether
// anything was pending.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	had := t.pending != nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
	return had
}

// Flush runs the pending function immediately instead of waiting out the
// quiet period. It is a no-op when nothing is pending.
func (t *Timer) Flush() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a function is currently scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
