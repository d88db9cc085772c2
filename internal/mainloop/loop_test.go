package mainloop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPostRunsInOrder(t *testing.T) {
	loop := New(nil)
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}

	if n := loop.RunPending(); n != 5 {
		t.Errorf("RunPending() = %d, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestPostFromLoopFunctionRunsInSameDrain(t *testing.T) {
	loop := New(nil)
	ran := false
	loop.Post(func() {
		loop.Post(func() { ran = true })
	})
	loop.RunPending()
	if !ran {
		t.Error("nested Post did not run")
	}
}

func TestPostAfterClose(t *testing.T) {
	loop := New(nil)
	loop.Close()
	if loop.Post(func() {}) {
		t.Error("Post() after Close = true, want false")
	}
}

func TestPostFromManyGoroutines(t *testing.T) {
	loop := New(nil)
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop.Post(func() { count++ })
		}()
	}
	wg.Wait()
	loop.RunPending()
	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

func TestAfterFuncWithFakeClock(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	loop := New(clock)

	var fired []string
	loop.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	loop.AfterFunc(time.Second, func() { fired = append(fired, "a") })

	clock.Advance(500 * time.Millisecond)
	loop.RunPending()
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}

	clock.Advance(2 * time.Second)
	loop.RunPending()
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Errorf("fired = %v, want [a b]", fired)
	}
}

func TestTimerStopAfterClockFired(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	loop := New(clock)

	fired := false
	timer := loop.AfterFunc(time.Second, func() { fired = true })
	clock.Advance(time.Second)

	// The callback is queued on the loop but has not run yet.
	if !timer.Stop() {
		t.Error("Stop() = false, want true")
	}
	loop.RunPending()
	if fired {
		t.Error("stopped timer fired")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}
}

func TestFakeClockTimersScheduledByCallbacks(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	var at []time.Duration
	start := clock.Now()
	clock.AfterFunc(time.Second, func() {
		at = append(at, clock.Now().Sub(start))
		clock.AfterFunc(time.Second, func() {
			at = append(at, clock.Now().Sub(start))
		})
	})

	clock.Advance(5 * time.Second)
	if len(at) != 2 || at[0] != time.Second || at[1] != 2*time.Second {
		t.Errorf("callbacks fired at %v, want [1s 2s]", at)
	}
	if got := clock.Now().Sub(start); got != 5*time.Second {
		t.Errorf("Now() = +%v, want +5s", got)
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d, want 0", clock.PendingTimers())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	loop := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	ran := make(chan struct{})
	loop.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted function did not run")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRunUntil(t *testing.T) {
	loop := New(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	value := 0
	go func() {
		for i := 0; i < 3; i++ {
			loop.Post(func() { value++ })
		}
	}()

	if !loop.RunUntil(ctx, func() bool { return value == 3 }) {
		t.Errorf("RunUntil() = false, value = %d", value)
	}
}
