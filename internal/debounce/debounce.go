// Package debounce collapses bursts of calls into a single delayed run
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once the calls to Call have been quiet for the delay.
// Every call re-arms the timer.
type Debouncer struct {
	timer *time.Timer
	fn    func()
	mu    sync.Mutex
	delay time.Duration
	gen   uint64
}

// New returns a Debouncer that runs fn after delay of inactivity.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Call schedules fn, cancelling any run that has not started yet.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a later Call raced with this timer firing
		if gen != d.gen {
			d.mu.Unlock()
			return
		}

		d.timer = nil
		d.mu.Unlock()

		d.fn()
	})
}

// Cancel drops a scheduled run and reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.cancel()
}

func (d *Debouncer) cancel() bool {
	if d.timer == nil {
		return false
	}

	d.timer.Stop()
	d.timer = nil
	d.gen++

	return true
}
