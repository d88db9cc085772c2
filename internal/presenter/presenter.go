package presenter

import (
	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/speech"
	"go.uber.org/zap"
)

// Window supplies the tree of the window being reviewed.
type Window interface {
	Tree() a11y.Tree
}

// WindowFunc adapts a function to Window.
type WindowFunc func() a11y.Tree

// Tree implements Window.
func (f WindowFunc) Tree() a11y.Tree {
	return f()
}

// Options configures a Presenter.
type Options struct {
	// Window is required.
	Window  Window
	Speaker speech.Speaker
	// Engine shows the review line in braille. Optional.
	Engine *braille.Engine
	// Clipboard defaults to SystemClipboard.
	Clipboard  Clipboard
	PixelDelta int
	// WrapLines lets line movement continue from the other end of the
	// window.
	WrapLines bool
	// Brief skips the start and stop messages.
	Brief bool
}

// Presenter is the flat review mode of the screen reader. It owns the review
// context, speaks what the review cursor lands on and keeps the braille
// display on the review line.
//
// A Presenter is not safe for concurrent use; with an Engine it must be
// driven from the engine's loop.
type Presenter struct {
	opts   Options
	ctx    *flatreview.Context
	finder *flatreview.Finder

	restrict     bool
	restrictRoot a11y.ObjectID

	// contents is the text presented last, for the clipboard commands.
	contents string
	// target is the braille cell the cursor should stay on.
	target int
}

// New creates an inactive presenter.
func New(opts Options) *Presenter {
	if opts.Window == nil {
		panic("presenter: Options.Window is required")
	}
	if opts.Speaker == nil {
		opts.Speaker = speech.SpeakerFunc(func(string, speech.Voice) {})
	}
	if opts.Clipboard == nil {
		opts.Clipboard = SystemClipboard{}
	}
	p := &Presenter{opts: opts, finder: flatreview.NewFinder()}
	p.finder.OnWrap = func(backwards bool) {
		if backwards {
			p.message(MsgWrapBottom)
			return
		}
		p.message(MsgWrapTop)
	}
	return p
}

// IsActive reports whether flat review is on.
func (p *Presenter) IsActive() bool {
	return p.ctx != nil
}

// IsRestricted reports whether review is restricted to one object.
func (p *Presenter) IsRestricted() bool {
	return p.restrict
}

// Contents returns the text presented last.
func (p *Presenter) Contents() string {
	return p.contents
}

// Context returns the review context, building it if flat review is off.
func (p *Presenter) Context() *flatreview.Context {
	if p.ctx != nil {
		return p.ctx
	}
	tree := p.opts.Window.Tree()
	opts := flatreview.Options{PixelDelta: p.opts.PixelDelta}
	if p.restrict {
		opts.Root = p.restrictRoot
	}
	p.ctx = flatreview.New(tree, opts)
	p.target = p.cursorCell()

	logging.Debug("Created flat review context",
		zap.Bool("restricted", p.restrict),
		zap.Uint64("root", uint64(p.ctx.Root())),
		zap.Int("lines", p.ctx.LineCount()),
	)
	return p.ctx
}

// Reset drops the context so the next command reads the window again.
func (p *Presenter) Reset() {
	p.ctx = nil
}

// Start turns flat review on and presents the current item.
func (p *Presenter) Start() {
	if p.ctx != nil {
		logging.Debug("Already in flat review")
		return
	}
	p.Context()
	if !p.opts.Brief {
		p.message(MsgStart)
	}
	p.presentItem(false, itemSpeak, p.target)
}

// Quit turns flat review off.
func (p *Presenter) Quit() {
	if p.ctx == nil {
		logging.Debug("Not in flat review")
		return
	}
	p.ctx = nil
	if !p.opts.Brief {
		p.message(MsgStop)
	}
	if e := p.opts.Engine; e != nil {
		e.Clear()
		e.Refresh(true, 0, true)
	}
}

// Toggle starts or quits flat review.
func (p *Presenter) Toggle() {
	if p.IsActive() {
		p.Quit()
		return
	}
	p.Start()
}

// ToggleRestrict restricts review to the object under the review cursor,
// or to the focused object when review is off, or lifts the restriction.
// An active review is restarted.
func (p *Presenter) ToggleRestrict() {
	p.restrict = !p.restrict
	if p.restrict {
		p.restrictRoot = p.objectOfInterest()
		p.message(MsgRestricted)
	} else {
		p.restrictRoot = a11y.None
		p.message(MsgUnrestricted)
	}
	if p.IsActive() {
		p.ctx = nil
		p.Start()
	}
}

// objectOfInterest returns the container to restrict review to: the object
// under the review cursor or with focus when it has children, else its
// parent.
func (p *Presenter) objectOfInterest() a11y.ObjectID {
	var tree a11y.Tree
	obj := a11y.None
	if p.ctx != nil {
		tree = p.ctx.Tree()
		obj = p.ctx.CurrentObject()
	} else {
		tree = p.opts.Window.Tree()
	}
	if obj == a11y.None {
		obj = tree.Focus()
	}
	if obj == a11y.None || len(tree.Children(obj)) > 0 {
		return obj
	}
	return tree.Parent(obj)
}

func (p *Presenter) speak(text string) {
	p.opts.Speaker.Speak(text, speech.VoiceFor(text))
}

func (p *Presenter) message(text string) {
	p.opts.Speaker.Speak(text, speech.VoiceSystem)
}

// cursorCell returns the 1-based cell showing the braille cursor, 0 when
// there is none.
func (p *Presenter) cursorCell() int {
	if p.opts.Engine == nil {
		return 0
	}
	return p.opts.Engine.LastFrame().Cursor
}

// updateBraille shows the review line. A non-zero target asks for the
// cursor to land on that cell.
func (p *Presenter) updateBraille(target int) {
	e := p.opts.Engine
	if e == nil || p.ctx == nil {
		return
	}
	regions, focus := p.ctx.BrailleRegions()
	e.Clear()
	if len(regions) > 0 {
		e.AddLine(braille.NewLine(regions...))
		e.SetFocus(focus, true)
	}
	e.Refresh(true, target, true)
}
