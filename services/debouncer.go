package services

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once no new trigger
// has arrived for the window.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger cancels any pending run and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		current := d.gen == gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		// a timer that fired while being replaced must not run
		if current {
			fn()
		}
	})
}

// Cancel drops the pending run, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
