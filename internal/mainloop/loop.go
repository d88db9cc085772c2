package mainloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a single-consumer queue of functions.
type Loop struct {
	clock Clock

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
}

// New creates a loop using clock for its timers. A nil clock means
// RealClock.
func New(clock Clock) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	return &Loop{
		clock: clock,
		wake:  make(chan struct{}, 1),
	}
}

// Clock returns the loop's clock.
func (l *Loop) Clock() Clock {
	return l.clock
}

// Post queues fn to run on the loop. Safe to call from any goroutine.
// Returns false if the loop has been closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// AfterFunc runs fn on the loop once d has elapsed. Stopping the returned
// timer from the loop guarantees fn will not run, even if the clock has
// already fired.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.inner = l.clock.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.stopped.Store(true)
			fn()
		})
	})
	return t
}

type loopTimer struct {
	inner   Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	wasActive := !t.stopped.Swap(true)
	t.inner.Stop()
	return wasActive
}

// RunPending runs queued functions until the queue is empty, including
// functions queued while draining. Returns how many ran.
func (l *Loop) RunPending() int {
	ran := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return ran
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
		ran++
	}
}

// Run drives the loop until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		if l.isClosed() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunUntil drives the loop until done returns true or ctx is cancelled.
// done is evaluated on the loop after every batch. Returns whether done
// became true.
func (l *Loop) RunUntil(ctx context.Context, done func() bool) bool {
	for {
		l.RunPending()
		if done() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-l.wake:
		case <-time.After(10 * time.Millisecond):
			// Fake clocks advanced from other goroutines do not wake us.
		}
	}
}

// Close stops accepting work and wakes Run. Functions already queued are
// still run by the next RunPending.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
