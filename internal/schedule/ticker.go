// Package schedule provides the timers that trigger identifier refreshes:
// a process-wide periodic ticker shared by every colorized document, and
// a per-document idle debouncer re-armed by edits.
package schedule

import (
	"sync"
	"time"
)

// DefaultInterval is the period of the shared refresh ticker.
const DefaultInterval = 5 * time.Second

// Ticker is a reference-counted periodic timer. The first Acquire starts
// it and the last release stops it, so at most one underlying timer runs
// no matter how many subscribers exist.
type Ticker struct {
	mu       sync.Mutex
	interval time.Duration
	subs     map[uint64]func()
	nextID   uint64
	stop     chan struct{}
	starts   int
}

// NewTicker creates a stopped ticker.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		interval: interval,
		subs:     make(map[uint64]func()),
	}
}

var (
	sharedMu sync.Mutex
	shared   = make(map[time.Duration]*Ticker)
)

// Shared returns the process-wide ticker at DefaultInterval.
func Shared() *Ticker {
	return SharedAt(DefaultInterval)
}

// SharedAt returns the process-wide ticker for interval, creating it on
// first use. Callers asking for the same interval share one ticker. A
// non-positive interval means DefaultInterval.
func SharedAt(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	sharedMu.Lock()
	defer sharedMu.Unlock()
	t, ok := shared[interval]
	if !ok {
		t = NewTicker(interval)
		shared[interval] = t
	}
	return t
}

// Acquire subscribes fn to ticks and returns the function that drops the
// subscription. fn runs on the ticker goroutine; hosts with a UI thread
// should forward the tick to it. Calling release more than once is safe.
func (t *Ticker) Acquire(fn func()) (release func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	if len(t.subs) == 1 {
		t.start()
	}
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.release(id) })
	}
}

func (t *Ticker) release(id uint64) {
	t.mu.Lock()
	if _, ok := t.subs[id]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.subs, id)
	if len(t.subs) == 0 {
		close(t.stop)
		t.stop = nil
	}
	t.mu.Unlock()
}

// start launches the tick loop. Caller holds t.mu.
func (t *Ticker) start() {
	t.stop = make(chan struct{})
	t.starts++
	go t.loop(time.NewTicker(t.interval), t.stop)
}

func (t *Ticker) loop(tk *time.Ticker, stop chan struct{}) {
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			t.fire(stop)
		}
	}
}

func (t *Ticker) fire(stop chan struct{}) {
	t.mu.Lock()
	if t.stop != stop {
		t.mu.Unlock()
		return
	}
	fns := make([]func(), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Active reports whether the underlying timer is running.
func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Refs returns the number of live subscriptions.
func (t *Ticker) Refs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}
