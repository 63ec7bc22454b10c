package reference

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback after
// a quiet interval. Each Trigger resets the timer; only the function
// from the latest call runs.
//
// This is the caller-side primitive for delaying reference
// extraction while the user types. It assumes no reactive framework:
// wire it to whatever input events the host UI produces.
type Debouncer struct {
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet interval.
// An interval of zero or less fires callbacks immediately.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules fn to run after the quiet interval, cancelling
// any previously scheduled function. fn runs on a timer goroutine.
func (d *Debouncer) Trigger(fn func()) {
	if d.interval <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop cancels any pending callback. It does not wait for a callback
// that has already started.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs fn immediately, cancelling any pending callback first.
// Used when the editor closes and the final text must be linked now.
func (d *Debouncer) Flush(fn func()) {
	d.Stop()
	fn()
}
