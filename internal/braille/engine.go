package braille

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/mainloop"
)

const (
	// DefaultWidth is the width rendered for the monitor while no display
	// has reported its size.
	DefaultWidth = 40

	// DefaultRetryDelay is the first reconnect delay after a failure.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential reconnect delay.
	DefaultMaxRetryDelay = 30 * time.Second

	// DefaultConnectTimeout bounds one connect + handshake attempt.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultInflightTimeout bounds a single device call.
	DefaultInflightTimeout = 5 * time.Second

	// DefaultWidthPollInterval is how often a display reporting zero cells
	// is asked again.
	DefaultWidthPollInterval = 250 * time.Millisecond

	// DefaultKeyPollInterval is how often pending keys are read.
	DefaultKeyPollInterval = 50 * time.Millisecond

	// DefaultQueueSize is the capacity of the device task queue.
	DefaultQueueSize = 64
)

// ConnState is the state of the device connection.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	// StateConnected means connected but the display has not reported a
	// usable width yet.
	StateConnected
	StateReady
	// StateIdle is connected with lowered priority.
	StateIdle
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReady:
		return "ready"
	case StateIdle:
		return "idle"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// Frame is one rendered display buffer, as sent to the device and to the
// monitor.
type Frame struct {
	// Line is the complete logical line.
	Line string
	// Offset is the viewport start within Line.
	Offset int
	// Text is the visible slice padded to Width.
	Text string
	Mask []byte
	// Cursor is the 1-based cursor cell, 0 for none.
	Cursor int
	Width  int
}

// Viewport is the pan position: the first visible cell of the line and the
// index of the displayed line.
type Viewport struct {
	X    int
	Line int
}

// TextInfo records where the cursor was for the last text region shown, so
// the next refresh can keep it on the same cell.
type TextInfo struct {
	Obj         a11y.ObjectID
	CaretOffset int
	LineOffset  int
	CursorCell  int
}

// Options configures an Engine. Zero durations use the Default* values.
type Options struct {
	// Loop runs every engine operation. Required.
	Loop *mainloop.Loop
	// Dialer connects to the display. Without one the engine only renders
	// to the monitor.
	Dialer     Dialer
	Settings   SettingsSource
	Translator Translator
	// KeyHandler sees display keys before the built-in commands and
	// returns true to consume them.
	KeyHandler func(Key) bool
	// Monitor receives every rendered frame.
	Monitor func(Frame)

	DefaultWidth      int
	RetryDelay        time.Duration
	MaxRetryDelay     time.Duration
	ConnectTimeout    time.Duration
	InflightTimeout   time.Duration
	WidthPollInterval time.Duration
	KeyPollInterval   time.Duration
	QueueSize         int
}

func (o *Options) applyDefaults() {
	if o.Settings == nil {
		o.Settings = StaticSettings(DefaultSettings())
	}
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = DefaultWidth
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.MaxRetryDelay <= 0 {
		o.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.InflightTimeout <= 0 {
		o.InflightTimeout = DefaultInflightTimeout
	}
	if o.WidthPollInterval <= 0 {
		o.WidthPollInterval = DefaultWidthPollInterval
	}
	if o.KeyPollInterval <= 0 {
		o.KeyPollInterval = DefaultKeyPollInterval
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
}

type flashState struct {
	lines    []*Line
	focus    *Region
	viewport Viewport
	timer    mainloop.Timer
}

// Engine owns the displayed lines, the viewport and the device connection.
// Every method must be called from the loop.
type Engine struct {
	opts Options
	loop *mainloop.Loop

	lines     []*Line
	focus     *Region
	viewport  Viewport
	lastText  TextInfo
	lastFrame Frame
	flash     *flashState

	contractedOverride *bool

	state          ConnState
	token          uint64
	width          int
	stopped        bool
	backoff        *backoff.ExponentialBackOff
	lastRetryDelay time.Duration
	cancelConnect  context.CancelFunc
	worker         *worker

	connectTimer mainloop.Timer
	retryTimer   mainloop.Timer
	widthTimer   mainloop.Timer
	keyTimer     mainloop.Timer
	watchdog     mainloop.Timer

	inflightSeq      uint64
	inflight         bool
	keyPollPending   bool
	widthPollPending bool
}

// NewEngine creates a disconnected engine.
func NewEngine(opts Options) *Engine {
	if opts.Loop == nil {
		panic("braille: Options.Loop is required")
	}
	opts.applyDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.RetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = opts.MaxRetryDelay
	b.MaxElapsedTime = 0
	b.Reset()

	return &Engine{
		opts:    opts,
		loop:    opts.Loop,
		backoff: b,
	}
}

// SetMonitor replaces the monitor callback.
func (e *Engine) SetMonitor(fn func(Frame)) {
	e.opts.Monitor = fn
}

// SetKeyHandler replaces the key handler.
func (e *Engine) SetKeyHandler(fn func(Key) bool) {
	e.opts.KeyHandler = fn
}

// State returns the connection state.
func (e *Engine) State() ConnState { return e.state }

// Token returns the current session token. It changes on every teardown.
func (e *Engine) Token() uint64 { return e.token }

// Width returns the width reported by the display, 0 when unknown.
func (e *Engine) Width() int { return e.width }

// Lines returns the displayed lines.
func (e *Engine) Lines() []*Line { return e.lines }

// Focus returns the focused region.
func (e *Engine) Focus() *Region { return e.focus }

// Viewport returns the current pan position.
func (e *Engine) Viewport() Viewport { return e.viewport }

// LastFrame returns the most recently rendered frame.
func (e *Engine) LastFrame() Frame { return e.lastFrame }

// LastTextInfo returns the text cursor remembered by the last refresh.
func (e *Engine) LastTextInfo() TextInfo { return e.lastText }

// RetryDelay returns the delay of the most recently scheduled reconnect.
func (e *Engine) RetryDelay() time.Duration { return e.lastRetryDelay }

// IsFlashing reports whether a flash message is shown.
func (e *Engine) IsFlashing() bool { return e.flash != nil }

func (e *Engine) settings() Settings {
	return e.opts.Settings.BrailleSettings()
}

func (e *Engine) displayWidth() int {
	if e.width > 0 {
		return e.width
	}
	return e.opts.DefaultWidth
}

func (e *Engine) renderOptions(s Settings) RenderOptions {
	opts := s.RenderOptions()
	if e.contractedOverride != nil {
		opts.Contracted = *e.contractedOverride
	}
	return opts
}

// Contracted reports whether contracted braille is in effect.
func (e *Engine) Contracted() bool {
	return e.renderOptions(e.settings()).Contracted
}

// SetContracted overrides the configured contraction setting and
// re-renders.
func (e *Engine) SetContracted(on bool) {
	e.contractedOverride = &on
	e.invalidate()
	e.Refresh(true, 0, false)
}

// ToggleContracted switches contraction. FlagToggleOn and FlagToggleOff
// force a direction.
func (e *Engine) ToggleContracted(flags KeyFlags) {
	on := !e.Contracted()
	switch {
	case flags&FlagToggleOn != 0:
		on = true
	case flags&FlagToggleOff != 0:
		on = false
	}
	e.SetContracted(on)
}

func (e *Engine) invalidate() {
	for _, l := range e.lines {
		l.Invalidate()
	}
}

// Clear removes every line and the focus.
func (e *Engine) Clear() {
	e.lines = nil
	e.focus = nil
	e.viewport = Viewport{}
}

// SetLines replaces the displayed lines. Focus is dropped if its region is
// not on any of them.
func (e *Engine) SetLines(lines []*Line) {
	e.lines = lines
	e.viewport = Viewport{}
	if e.focus != nil && e.lineOf(e.focus) < 0 {
		e.focus = nil
	}
}

// AddLine appends a line.
func (e *Engine) AddLine(line *Line) {
	e.lines = append(e.lines, line)
}

func (e *Engine) lineOf(region *Region) int {
	for i, l := range e.lines {
		if l.Contains(region) {
			return i
		}
	}
	return -1
}

// SetFocus makes region the focused region. With panToFocus the viewport
// moves to its line and start, scrolled further right if needed to keep
// its cursor on the display. Regions that are not on a displayed line are
// ignored.
func (e *Engine) SetFocus(region *Region, panToFocus bool) {
	lineIndex := -1
	if region != nil {
		lineIndex = e.lineOf(region)
		if lineIndex < 0 {
			return
		}
	}
	e.focus = region
	e.invalidate()

	if !panToFocus || region == nil {
		return
	}

	width := e.displayWidth()
	e.viewport.Line = lineIndex
	info := e.lines[lineIndex].Info(region, e.renderOptions(e.settings()), e.opts.Translator, width)
	offset := info.FocusOffset
	if cursor := region.CursorOffset(); cursor >= width {
		offset += cursor - width + 1
	}
	e.viewport.X = max(0, offset)
}

// DisplayRegions shows regions on a single line with focus on
// regions[focusIndex].
func (e *Engine) DisplayRegions(regions []*Region, focusIndex int) {
	if len(regions) == 0 {
		e.Clear()
		e.Refresh(true, 0, true)
		return
	}
	if focusIndex < 0 || focusIndex >= len(regions) {
		focusIndex = 0
	}
	e.Clear()
	e.AddLine(NewLine(regions...))
	e.SetFocus(regions[focusIndex], true)
	e.Refresh(true, 0, true)
}

// ReturnToRegionWithFocus pans back to the focused region.
func (e *Engine) ReturnToRegionWithFocus() {
	e.SetFocus(e.focus, true)
	e.Refresh(true, 0, false)
}

// RegionAtCell returns the region under the 1-based cell and the displayed
// offset inside it.
func (e *Engine) RegionAtCell(cell int) (*Region, int) {
	if len(e.lines) == 0 || cell < 1 {
		return nil, -1
	}
	offset := cell - 1 + e.viewport.X
	return e.lines[e.viewport.Line].RegionAtOffset(offset)
}

// CaretContext returns the text object and text offset under the 1-based
// cell, or a11y.None and -1 when the cell does not show text.
func (e *Engine) CaretContext(cell int) (a11y.ObjectID, int) {
	region, offset := e.RegionAtCell(cell)
	if region == nil {
		return a11y.None, -1
	}
	textOffset := region.TextOffset(offset)
	if textOffset < 0 {
		return a11y.None, -1
	}
	return region.Object(), textOffset
}

// ProcessRoutingKey routes the 1-based cell to the region under it.
func (e *Engine) ProcessRoutingKey(cell int) bool {
	region, offset := e.RegionAtCell(cell)
	if region == nil {
		return false
	}
	return region.Route(offset)
}
