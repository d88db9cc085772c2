package presenter

import "github.com/muurk/brlreview/internal/flatreview"

// Movement commands report whether the review cursor moved. The new
// position is presented only when it did.

// GoHome moves to the top left of the window.
func (p *Presenter) GoHome() bool {
	p.Context().GoToStartOf(flatreview.UnitWindow)
	p.presentLine(false, itemSpeak, 0)
	p.target = p.cursorCell()
	return true
}

// GoEnd moves to the bottom right of the window.
func (p *Presenter) GoEnd() bool {
	p.Context().GoToEndOf(flatreview.UnitWindow)
	p.presentLine(false, itemSpeak, 0)
	p.target = p.cursorCell()
	return true
}

// GoBottomLeft moves to the start of the last line.
func (p *Presenter) GoBottomLeft() bool {
	ctx := p.Context()
	ctx.GoToEndOf(flatreview.UnitWindow)
	ctx.GoToStartOf(flatreview.UnitLine)
	p.presentLine(false, itemSpeak, 0)
	p.target = p.cursorCell()
	return true
}

// PreviousLine moves to the previous line.
func (p *Presenter) PreviousLine() bool {
	return p.moveLine(p.Context().GoPreviousLine(p.opts.WrapLines), false)
}

// NextLine moves to the next line.
func (p *Presenter) NextLine() bool {
	return p.moveLine(p.Context().GoNextLine(p.opts.WrapLines), false)
}

func (p *Presenter) moveLine(moved, quiet bool) bool {
	if moved {
		p.presentLine(quiet, itemSpeak, 0)
		p.target = p.cursorCell()
	}
	return moved
}

// StartOfLine moves to the first character of the line.
func (p *Presenter) StartOfLine() bool {
	p.Context().GoToStartOf(flatreview.UnitLine)
	p.presentCharacter(false, itemSpeak, 0)
	p.target = p.cursorCell()
	return true
}

// EndOfLine moves to the last character of the line.
func (p *Presenter) EndOfLine() bool {
	p.Context().GoToEndOf(flatreview.UnitLine)
	p.presentCharacter(false, itemSpeak, 0)
	p.target = p.cursorCell()
	return true
}

// PreviousItem moves to the previous word.
func (p *Presenter) PreviousItem() bool {
	return p.moveItem(p.Context().GoPreviousWord())
}

// NextItem moves to the next word.
func (p *Presenter) NextItem() bool {
	return p.moveItem(p.Context().GoNextWord())
}

func (p *Presenter) moveItem(moved bool) bool {
	if moved {
		p.presentItem(false, itemSpeak, 0)
		p.target = p.cursorCell()
	}
	return moved
}

// PreviousCharacter moves to the previous character.
func (p *Presenter) PreviousCharacter() bool {
	return p.moveCharacter(p.Context().GoPreviousCharacter())
}

// NextCharacter moves to the next character.
func (p *Presenter) NextCharacter() bool {
	return p.moveCharacter(p.Context().GoNextCharacter())
}

// GoAbove moves to the character above.
func (p *Presenter) GoAbove() bool {
	return p.moveCharacter(p.Context().GoUp())
}

// GoBelow moves to the character below.
func (p *Presenter) GoBelow() bool {
	return p.moveCharacter(p.Context().GoDown())
}

func (p *Presenter) moveCharacter(moved bool) bool {
	if moved {
		p.presentCharacter(false, itemSpeak, 0)
		p.target = p.cursorCell()
	}
	return moved
}

// Activate performs the default action of the object under the cursor.
func (p *Presenter) Activate() bool {
	ctx := p.Context()
	obj := ctx.CurrentObject()
	if ctx.IsEmpty() {
		return false
	}
	return ctx.Tree().DoDefaultAction(obj)
}
