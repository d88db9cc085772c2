package presenter

import (
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// HandleBrailleKey handles a display key while flat review is active. It is
// meant to be installed as the engine's KeyHandler and returns false for
// keys the engine should handle itself. Nothing is spoken for keys from the
// display.
func (p *Presenter) HandleBrailleKey(key braille.Key) bool {
	if !p.IsActive() || p.opts.Engine == nil {
		return false
	}
	switch key.Command {
	case braille.KeyRoute:
		return p.routeCell(key.Argument + 1)
	case braille.KeyPanLeft:
		p.panLeft()
	case braille.KeyPanRight:
		p.panRight()
	case braille.KeyLineUp:
		p.moveLine(p.ctx.GoPreviousLine(p.opts.WrapLines), true)
	case braille.KeyLineDown:
		p.moveLine(p.ctx.GoNextLine(p.opts.WrapLines), true)
	case braille.KeyTop:
		p.ctx.GoToStartOf(flatreview.UnitWindow)
		p.presentLine(true, itemSpeak, 0)
	case braille.KeyBottom:
		p.ctx.GoToEndOf(flatreview.UnitWindow)
		p.presentLine(true, itemSpeak, 0)
	default:
		return false
	}
	return true
}

// routeCell moves the review cursor to the character shown on the 1-based
// cell.
func (p *Presenter) routeCell(cell int) bool {
	region, offset := p.opts.Engine.RegionAtCell(cell)
	if !p.ctx.RouteTo(region, offset) {
		logging.Debug("Routing key outside review zones", zap.Int("cell", cell))
		return true
	}
	p.presentCharacter(true, itemSpeak, cell)
	p.target = p.cursorCell()
	return true
}

// panLeft pans the display left. At the start of the line it moves to the
// end of the previous line instead.
func (p *Presenter) panLeft() {
	e := p.opts.Engine
	if e.PanLeft(0) {
		e.Refresh(false, 0, false)
		p.followViewport()
		return
	}
	p.ctx.GoToStartOf(flatreview.UnitLine)
	if !p.ctx.GoPreviousLine(p.opts.WrapLines) {
		return
	}
	p.ctx.GoToEndOf(flatreview.UnitLine)
	p.presentLine(true, itemSpeak, -1)
	p.target = p.cursorCell()
}

// panRight pans the display right. At the end of the line it moves to the
// start of the next line instead.
func (p *Presenter) panRight() {
	e := p.opts.Engine
	if e.PanRight(0) {
		e.Refresh(false, 0, false)
		p.followViewport()
		return
	}
	if !p.ctx.GoNextLine(p.opts.WrapLines) {
		return
	}
	p.presentLine(true, itemSpeak, 1)
	p.target = p.cursorCell()
}

// followViewport moves the review cursor to the first character shown on
// the display after a pan.
func (p *Presenter) followViewport() {
	for cell := 1; cell <= p.opts.Engine.LastFrame().Width; cell++ {
		region, offset := p.opts.Engine.RegionAtCell(cell)
		if p.ctx.RouteTo(region, offset) {
			p.presentCharacter(true, itemSpeak, cell)
			p.target = p.cursorCell()
			return
		}
	}
}
