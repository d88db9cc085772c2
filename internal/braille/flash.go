package braille

import (
	"time"

	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// DisplayMessage shows msg on a line of its own with the cursor at the
// 0-based offset cursor (-1 for none).
//
// flashTime selects how long it stays: 0 follows the flash settings, a
// negative value keeps it until a key is pressed, and a positive value is
// the duration. While flashing, the previous lines, focus and viewport are
// saved and come back when the flash ends.
func (e *Engine) DisplayMessage(msg string, cursor int, flashTime time.Duration) {
	duration, flash := flashDuration(e.settings(), flashTime)

	if flash {
		if e.flash == nil {
			e.flash = &flashState{
				lines:    e.lines,
				focus:    e.focus,
				viewport: e.viewport,
			}
		} else if e.flash.timer != nil {
			e.flash.timer.Stop()
			e.flash.timer = nil
		}
	} else if e.flash != nil {
		e.KillFlash(false)
	}

	region := NewRegion(msg, cursor)
	e.Clear()
	e.AddLine(NewLine(region))
	e.SetFocus(region, true)
	e.Refresh(true, 0, false)

	if flash && duration > 0 {
		f := e.flash
		f.timer = e.loop.AfterFunc(duration, func() {
			if e.flash == f {
				e.KillFlash(true)
			}
		})
	}
	logging.Debug("Braille message",
		zap.String("message", msg),
		zap.Bool("flash", flash),
		zap.Duration("duration", duration),
	)
}

// flashDuration resolves flashTime against settings. A negative duration
// means the flash lasts until dismissed.
func flashDuration(s Settings, flashTime time.Duration) (time.Duration, bool) {
	switch {
	case flashTime > 0:
		return flashTime, true
	case flashTime < 0:
		return -1, true
	case !s.FlashMessages:
		return 0, false
	case s.FlashPersistent:
		return -1, true
	case s.FlashDuration > 0:
		return s.FlashDuration, true
	default:
		return DefaultFlashDuration, true
	}
}

// KillFlash ends a flash message. With restore the saved lines, focus and
// viewport are put back and rendered.
func (e *Engine) KillFlash(restore bool) {
	f := e.flash
	if f == nil {
		return
	}
	e.flash = nil
	if f.timer != nil {
		f.timer.Stop()
	}
	if !restore {
		return
	}
	e.lines = f.lines
	e.focus = f.focus
	e.viewport = f.viewport
	e.invalidate()
	e.Refresh(false, 0, false)
}
