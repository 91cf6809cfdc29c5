// Package debounce holds a single cancellable pending callback that only
// fires once its quiet period elapses without being superseded.
package debounce

import (
	"sync"
	"time"
)

// Stopper is the handle returned by an AfterFunc implementation.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Stopper

func stdAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

type Timer struct {
	delay time.Duration
	after AfterFunc

	mu      sync.Mutex
	pending Stopper
	gen     uint64
	stopped bool
}

type Option func(*Timer)

// WithAfterFunc swaps the scheduler, used by tests to drive time by hand.
func WithAfterFunc(fn AfterFunc) Option {
	return func(t *Timer) {
		if fn != nil {
			t.after = fn
		}
	}
}

func New(delay time.Duration, opts ...Option) *Timer {
	if delay < 0 {
		delay = 0
	}
	t := &Timer{delay: delay, after: stdAfterFunc}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Delay returns the quiet period.
func (t *Timer) Delay() time.Duration { return t.delay }

// Schedule replaces any pending callback with fn and restarts the quiet
// period. Only the last fn scheduled before the period elapses runs.
func (t *Timer) Schedule(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	gen := t.gen
	t.pending = t.after(t.delay, func() { t.fire(gen, fn) })
}

func (t *Timer) fire(gen uint64, fn func()) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		// superseded after the runtime already started this callback
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.mu.Unlock()
	fn()
}

// Cancel drops the pending callback, if any, and reports whether one was
// pending.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

func (t *Timer) cancelLocked() bool {
	if t.pending == nil {
		return false
	}
	t.pending.Stop()
	t.pending = nil
	t.gen++
	return true
}

// Stop cancels the pending callback and turns later Schedule calls into
// no-ops. Used on teardown.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.stopped = true
}

// Pending reports whether a callback is waiting for its quiet period.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
