package schedule

import (
	"sync"
	"time"
)

// DefaultIdleDelay is how long edits must settle before an idle refresh.
const DefaultIdleDelay = 500 * time.Millisecond

// Idle runs a callback once activity has been quiet for a delay.
// Every Touch restarts the countdown; bursts of edits coalesce into a
// single call.
type Idle struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewIdle creates an idle debouncer. A non-positive delay uses
// DefaultIdleDelay.
func NewIdle(delay time.Duration, fn func()) *Idle {
	if delay <= 0 {
		delay = DefaultIdleDelay
	}
	return &Idle{delay: delay, fn: fn}
}

// Touch records activity and re-arms the countdown.
func (d *Idle) Touch() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = true
	if d.timer != nil {
		d.timer.Reset(d.delay)
		return
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Idle) fire() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	fn := d.fn
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Flush runs a pending callback immediately.
func (d *Idle) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}

// Pending reports whether a callback is scheduled.
func (d *Idle) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetDelay changes the delay used by subsequent Touch calls.
func (d *Idle) SetDelay(delay time.Duration) {
	if delay <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Stop cancels any pending callback. A stopped debouncer ignores Touch.
func (d *Idle) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
