package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTicker_RefCounting(t *testing.T) {
	tk := NewTicker(10 * time.Millisecond)
	if tk.Active() {
		t.Fatal("new ticker should be stopped")
	}

	var a, b atomic.Int32
	releaseA := tk.Acquire(func() { a.Add(1) })
	releaseB := tk.Acquire(func() { b.Add(1) })

	if !tk.Active() {
		t.Fatal("ticker should run after Acquire")
	}
	if tk.Refs() != 2 {
		t.Errorf("Refs() = %d, want 2", tk.Refs())
	}
	if tk.starts != 1 {
		t.Errorf("starts = %d, want 1", tk.starts)
	}

	waitFor(t, func() bool { return a.Load() > 0 && b.Load() > 0 })

	releaseA()
	releaseA()
	if !tk.Active() {
		t.Error("ticker stopped while a subscriber remains")
	}
	if tk.Refs() != 1 {
		t.Errorf("Refs() = %d, want 1", tk.Refs())
	}

	releaseB()
	if tk.Active() {
		t.Error("ticker still active after last release")
	}

	settled := b.Load()
	time.Sleep(40 * time.Millisecond)
	if got := b.Load(); got > settled+1 {
		t.Errorf("ticks after release: %d -> %d", settled, got)
	}
}

func TestTicker_Restart(t *testing.T) {
	tk := NewTicker(10 * time.Millisecond)

	tk.Acquire(func() {})()
	release := tk.Acquire(func() {})
	defer release()

	if tk.starts != 2 {
		t.Errorf("starts = %d, want 2", tk.starts)
	}
	if !tk.Active() {
		t.Error("ticker should be active")
	}
}

func TestTicker_ReleaseInsideTick(t *testing.T) {
	tk := NewTicker(5 * time.Millisecond)

	var release func()
	var fired atomic.Bool
	ready := make(chan struct{})
	release = tk.Acquire(func() {
		<-ready
		if fired.CompareAndSwap(false, true) {
			release()
		}
	})
	close(ready)

	waitFor(t, func() bool { return !tk.Active() })
}

func TestTicker_DefaultInterval(t *testing.T) {
	if got := NewTicker(0).Interval(); got != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", got, DefaultInterval)
	}
	if Shared() != Shared() {
		t.Error("Shared() should return a single ticker")
	}
}

func TestTicker_SharedAt(t *testing.T) {
	if SharedAt(DefaultInterval) != Shared() {
		t.Error("SharedAt(DefaultInterval) should be Shared()")
	}
	if SharedAt(0) != Shared() {
		t.Error("SharedAt(0) should fall back to Shared()")
	}
	a := SharedAt(250 * time.Millisecond)
	if a != SharedAt(250*time.Millisecond) {
		t.Error("same interval should share one ticker")
	}
	if a == Shared() {
		t.Error("different intervals should not share a ticker")
	}
	if a.Interval() != 250*time.Millisecond {
		t.Errorf("Interval() = %v", a.Interval())
	}
}

func TestIdle_Coalesces(t *testing.T) {
	var calls atomic.Int32
	d := NewIdle(30*time.Millisecond, func() { calls.Add(1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Touch()
		time.Sleep(5 * time.Millisecond)
	}
	if !d.Pending() {
		t.Error("expected a pending callback")
	}

	waitFor(t, func() bool { return calls.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if d.Pending() {
		t.Error("nothing should be pending after firing")
	}
}

func TestIdle_Flush(t *testing.T) {
	var calls atomic.Int32
	d := NewIdle(time.Hour, func() { calls.Add(1) })
	defer d.Stop()

	d.Flush()
	if calls.Load() != 0 {
		t.Error("Flush without Touch should not run the callback")
	}

	d.Touch()
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestIdle_Stop(t *testing.T) {
	var calls atomic.Int32
	d := NewIdle(10*time.Millisecond, func() { calls.Add(1) })

	d.Touch()
	d.Stop()
	d.Touch()
	time.Sleep(40 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestIdle_DefaultDelay(t *testing.T) {
	d := NewIdle(0, nil)
	if d.delay != DefaultIdleDelay {
		t.Errorf("delay = %v, want %v", d.delay, DefaultIdleDelay)
	}
	d.SetDelay(-1)
	if d.delay != DefaultIdleDelay {
		t.Error("SetDelay should ignore non-positive values")
	}
	d.SetDelay(time.Second)
	if d.delay != time.Second {
		t.Errorf("delay = %v, want 1s", d.delay)
	}
}
