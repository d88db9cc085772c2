package braille

import (
	"context"
	"errors"

	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/mainloop"
	"go.uber.org/zap"
)

// Init starts connecting to the display. It returns false when braille is
// disabled. Calling Init while connected or connecting does nothing.
func (e *Engine) Init() bool {
	if !e.settings().Enabled {
		return false
	}
	e.stopped = false
	if e.state != StateDisconnected || e.retryTimer != nil {
		return true
	}
	e.connect()
	return true
}

// connect starts one connection attempt. The dial and handshake run on
// their own goroutine and report back through the loop.
func (e *Engine) connect() {
	if e.opts.Dialer == nil {
		logging.Debug("No braille display configured")
		return
	}

	token := e.token
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelConnect = cancel
	e.state = StateConnecting
	logging.LogDeviceEvent("connecting", token)

	e.connectTimer = e.loop.AfterFunc(e.opts.ConnectTimeout, func() {
		e.connectFailed(token, NewTimeoutError("connect", context.DeadlineExceeded))
	})

	dialer := e.opts.Dialer
	go func() {
		dev, width, err := handshake(ctx, dialer)
		posted := e.loop.Post(func() {
			e.connectDone(token, dev, width, err)
		})
		if !posted && dev != nil {
			dev.Close()
		}
	}()
}

func handshake(ctx context.Context, dialer Dialer) (Device, int, error) {
	dev, err := dialer.Dial(ctx)
	if err != nil {
		var devErr *DeviceError
		if errors.As(err, &devErr) {
			return nil, 0, devErr
		}
		return nil, 0, NewIOError("connect", err)
	}
	if err := dev.EnterRawMode(); err != nil {
		dev.Close()
		return nil, 0, classify("enter raw mode", err)
	}
	width, _, err := dev.DisplaySize()
	if err != nil {
		dev.Close()
		return nil, 0, classify("display size", err)
	}
	return dev, width, nil
}

func (e *Engine) connectDone(token uint64, dev Device, width int, err error) {
	if token != e.token || e.state != StateConnecting {
		if dev != nil {
			go dev.Close()
		}
		return
	}
	if err != nil {
		e.connectFailed(token, err)
		return
	}

	stopTimer(&e.connectTimer)
	e.cancelConnect = nil
	e.backoff.Reset()
	e.lastRetryDelay = 0

	e.worker = newWorker(dev, e.opts.QueueSize,
		func(seq uint64, t *task) {
			e.loop.Post(func() { e.taskStarted(token, seq, t) })
		},
		func(seq uint64, t *task, err error) {
			e.loop.Post(func() { e.taskDone(token, seq, t, err) })
		},
	)
	e.worker.start()

	logging.LogDeviceEvent("connected", token, zap.Int("width", width))
	if width > 0 {
		e.width = width
		e.becomeReady()
		return
	}
	e.state = StateConnected
	e.scheduleWidthPoll()
}

func (e *Engine) connectFailed(token uint64, err error) {
	if token != e.token || e.state != StateConnecting {
		return
	}
	logging.LogDeviceEvent("connect failed", token, zap.Error(err))
	if e.cancelConnect != nil {
		e.cancelConnect()
		e.cancelConnect = nil
	}
	stopTimer(&e.connectTimer)
	e.token++
	e.state = StateDisconnected
	e.scheduleRetry()
}

func (e *Engine) scheduleRetry() {
	if e.stopped || e.opts.Dialer == nil {
		return
	}
	delay := e.backoff.NextBackOff()
	e.lastRetryDelay = delay
	logging.LogDeviceEvent("retry scheduled", e.token, zap.Duration("delay", delay))

	e.retryTimer = e.loop.AfterFunc(delay, func() {
		e.retryTimer = nil
		if e.stopped || e.state != StateDisconnected {
			return
		}
		e.connect()
	})
}

func (e *Engine) becomeReady() {
	e.state = StateReady
	logging.LogDeviceEvent("ready", e.token, zap.Int("width", e.width))
	e.scheduleKeyPoll()
	e.Refresh(true, 0, false)
}

func (e *Engine) scheduleWidthPoll() {
	token := e.token
	e.widthTimer = e.loop.AfterFunc(e.opts.WidthPollInterval, func() {
		e.widthTimer = nil
		if token != e.token || e.state != StateConnected {
			return
		}
		e.pollWidth()
	})
}

func (e *Engine) pollWidth() {
	if e.widthPollPending {
		e.scheduleWidthPoll()
		return
	}
	var width int
	err := e.submit(&task{
		op:       "display size",
		coalesce: "display size",
		run: func(dev Device) error {
			w, _, err := dev.DisplaySize()
			width = w
			return err
		},
		onSuccess: func() {
			e.widthPollPending = false
			if e.state != StateConnected {
				return
			}
			if width > 0 {
				e.width = width
				e.becomeReady()
				return
			}
			e.scheduleWidthPoll()
		},
	})
	if err == nil {
		e.widthPollPending = true
	}
}

// submit queues t on the current worker.
func (e *Engine) submit(t *task) error {
	if e.worker == nil {
		return ErrNotConnected
	}
	err := e.worker.submit(t)
	if err != nil {
		logging.Warn("Device task dropped", zap.String("op", t.op), zap.Error(err))
	}
	return err
}

func (e *Engine) taskStarted(token, seq uint64, t *task) {
	if token != e.token {
		return
	}
	e.inflight = true
	e.inflightSeq = seq
	stopTimer(&e.watchdog)
	e.watchdog = e.loop.AfterFunc(e.opts.InflightTimeout, func() {
		e.watchdog = nil
		if token != e.token || !e.inflight || e.inflightSeq != seq {
			return
		}
		e.teardown(NewTimeoutError(t.op, context.DeadlineExceeded))
	})
}

func (e *Engine) taskDone(token, seq uint64, t *task, err error) {
	if token != e.token {
		return
	}
	if e.inflightSeq == seq {
		e.inflight = false
		stopTimer(&e.watchdog)
	}
	if err != nil {
		e.teardown(classify(t.op, err))
		return
	}
	if t.onSuccess != nil {
		t.onSuccess()
	}
}

// teardown drops the connection after a device failure and schedules a
// reconnect. Results still in flight from the old session are ignored.
func (e *Engine) teardown(err error) {
	logging.LogDeviceEvent("teardown", e.token,
		zap.Error(err),
		zap.Bool("retryable", IsRetryable(err)),
	)
	e.token++
	e.stopSessionTimers()
	if e.worker != nil {
		e.worker.abort()
		e.worker = nil
	}
	e.state = StateDisconnected
	e.width = 0
	e.scheduleRetry()
}

func (e *Engine) stopSessionTimers() {
	stopTimer(&e.connectTimer)
	stopTimer(&e.widthTimer)
	stopTimer(&e.keyTimer)
	stopTimer(&e.watchdog)
	e.inflight = false
	e.keyPollPending = false
	e.widthPollPending = false
}

// Shutdown leaves raw mode, closes the display and stops reconnecting.
// Init starts over.
func (e *Engine) Shutdown() {
	e.stopped = true
	stopTimer(&e.retryTimer)
	e.stopSessionTimers()
	if e.cancelConnect != nil {
		e.cancelConnect()
		e.cancelConnect = nil
	}
	if e.worker != nil {
		e.worker.close(
			&task{op: "leave raw mode", run: func(dev Device) error { return dev.LeaveRawMode() }},
			&task{op: "close", run: func(dev Device) error { return dev.Close() }},
		)
		e.worker = nil
	}
	if e.state != StateDisconnected {
		logging.LogDeviceEvent("shutdown", e.token)
	}
	e.token++
	e.state = StateDisconnected
	e.width = 0
	e.lastText = TextInfo{}
}

// Idle lowers this client's priority so another client can use the
// display. Returns false when not ready.
func (e *Engine) Idle() bool {
	if e.state != StateReady {
		return false
	}
	if err := e.submit(e.priorityTask(IdlePriority)); err != nil {
		return false
	}
	stopTimer(&e.keyTimer)
	e.state = StateIdle
	logging.LogDeviceEvent("idle", e.token)
	return true
}

// Unidle restores the normal priority and re-renders.
func (e *Engine) Unidle() bool {
	if e.state != StateIdle {
		return false
	}
	if err := e.submit(e.priorityTask(DefaultPriority)); err != nil {
		return false
	}
	e.state = StateReady
	logging.LogDeviceEvent("unidle", e.token)
	e.scheduleKeyPoll()
	e.Refresh(true, 0, false)
	return true
}

func (e *Engine) priorityTask(priority int) *task {
	return &task{
		op: "set priority",
		run: func(dev Device) error {
			return dev.SetParameter(ParamPriority, priority)
		},
	}
}

func stopTimer(t *mainloop.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
