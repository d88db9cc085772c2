// Package mainloop provides the single cooperative event loop that owns all
// braille engine and presenter state.
//
// Work reaches the loop in two ways: Post queues a function from any
// goroutine, and AfterFunc schedules one after a delay. Either way the
// function runs on the goroutine that drives the loop (Run, RunPending or
// RunUntil), one at a time and in the order it was queued. State that is
// only touched from loop functions therefore needs no locking.
//
// # Clocks
//
// Timers come from a Clock. RealClock wraps the time package; FakeClock is
// advanced manually so tests can fire reconnect backoff, width polling and
// flash timeouts deterministically:
//
//	clock := mainloop.NewFakeClock(time.Unix(0, 0))
//	loop := mainloop.New(clock)
//	loop.AfterFunc(time.Second, func() { fired = true })
//	clock.Advance(time.Second)
//	loop.RunPending() // fired == true
package mainloop
