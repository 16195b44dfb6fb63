package inventory

import (
	"sync"
	"time"
)

// DefaultDebounceWait is the quiet period before a coalesced sheet sync runs.
const DefaultDebounceWait = 300 * time.Millisecond

// Debouncer runs fn once after wait has elapsed with no further Trigger calls.
// Runs of fn never overlap.
type Debouncer struct {
	wait time.Duration
	fn   func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool

	run sync.Mutex
}

func NewDebouncer(wait time.Duration, fn func()) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounceWait
	}
	return &Debouncer{wait: wait, fn: fn}
}

// Trigger schedules fn, pushing back any run that has not started yet.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.wait, d.fire)
		return
	}
	d.timer.Reset(d.wait)
}

// Pending reports whether a run is scheduled but has not started.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs a pending fn immediately and waits for any run in progress.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
	d.run.Lock()
	d.run.Unlock()
}

// Stop drops any pending run and waits for a run in progress to finish.
// Trigger is a no-op afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.run.Lock()
	d.run.Unlock()
}

func (d *Debouncer) fire() {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.fn()
}
