package braille

import (
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

func (e *Engine) scheduleKeyPoll() {
	token := e.token
	stopTimer(&e.keyTimer)
	e.keyTimer = e.loop.AfterFunc(e.opts.KeyPollInterval, func() {
		e.keyTimer = nil
		if token != e.token || e.state != StateReady {
			return
		}
		e.pollKeys()
		e.scheduleKeyPoll()
	})
}

// pollKeys queues a non-blocking key read unless one is already pending.
func (e *Engine) pollKeys() {
	if e.keyPollPending {
		return
	}
	var (
		key Key
		ok  bool
	)
	err := e.submit(&task{
		op:       "read key",
		coalesce: "read key",
		run: func(dev Device) error {
			var err error
			key, ok, err = dev.ReadKey(false)
			return err
		},
		onSuccess: func() {
			e.keyPollPending = false
			if ok {
				e.HandleKey(key)
			}
		},
	})
	if err == nil {
		e.keyPollPending = true
	}
}

// HandleKey processes one display key. Keys held down past the repeat
// delay are dropped. A key pressed during a flash message dismisses it;
// a routing key is consumed by the dismissal. The KeyHandler sees the key
// next, then the built-in commands run.
func (e *Engine) HandleKey(key Key) {
	if key.Flags&FlagRepeatDelay != 0 {
		return
	}
	key.Flags &^= FlagRepeatInitial

	logging.Debug("Braille key",
		zap.Stringer("command", key.Command),
		zap.Int("argument", key.Argument),
		zap.Uint32("flags", uint32(key.Flags)),
	)

	if e.flash != nil {
		e.KillFlash(true)
		if key.Command == KeyRoute {
			return
		}
	}

	if e.opts.KeyHandler != nil && e.opts.KeyHandler(key) {
		return
	}

	switch key.Command {
	case KeyRoute:
		e.ProcessRoutingKey(key.Argument + 1)
	case KeyPanLeft:
		if e.PanLeft(0) {
			e.Refresh(false, 0, false)
		}
	case KeyPanRight:
		if e.PanRight(0) {
			e.Refresh(false, 0, false)
		}
	case KeyReturnToFocus:
		e.ReturnToRegionWithFocus()
	case KeyToggleContracted:
		e.ToggleContracted(key.Flags)
	default:
		logging.Debug("Unhandled braille key", zap.Stringer("command", key.Command))
	}
}
