// Package debounce provides a single-slot, latest-wins timer used to defer
// work such as validating text while it is still being typed.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending action. Scheduling a new action
// replaces the pending one and restarts the delay.
//
// All methods are safe for concurrent use. Actions run on the timer's
// goroutine and are never run concurrently with each other by the debouncer.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64 // detects stale timer callbacks
	running sync.Mutex
}

// New creates a debouncer that runs the latest action after delay of quiet
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Call schedules action, discarding any action still pending
func (d *Debouncer) Call(action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = action
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending == nil || d.seq != currentSeq {
			d.mu.Unlock()
			return
		}
		action := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()
		d.run(action)
	})
}

// Flush runs the pending action now, if any, on the calling goroutine
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	action := d.pending
	d.pending = nil
	d.mu.Unlock()

	if action == nil {
		return false
	}
	d.run(action)
	return true
}

// Cancel drops the pending action
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = nil
}

// IsPending reports whether an action is waiting to run
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) run(action func()) {
	d.running.Lock()
	defer d.running.Unlock()
	action()
}
