package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/config"
	"github.com/muurk/brlreview/internal/contraction"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/mainloop"
	"github.com/muurk/brlreview/internal/presenter"
	"github.com/muurk/brlreview/internal/speech"
	"go.uber.org/zap"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("session closed")

// Options configures a Session.
type Options struct {
	// Window is the window under review. Required.
	Window presenter.Window
	// Store supplies settings. Nil uses the defaults.
	Store *config.Store
	// Dialer connects the braille display. Nil renders to OnFrame only.
	Dialer     braille.Dialer
	Translator braille.Translator
	// Speaker receives speech in addition to the session's own record.
	Speaker   speech.Speaker
	Clipboard presenter.Clipboard
	// OnFrame is called on the loop goroutine for every rendered frame.
	OnFrame func(braille.Frame)
	// Clock drives the loop timers. Nil means the real clock.
	Clock mainloop.Clock
}

// Snapshot is the review state after a command.
type Snapshot struct {
	Active     bool
	Restricted bool
	Lines      []string
	Location   flatreview.Location
	Frame      braille.Frame
	State      braille.ConnState
	// Spoken is what the command said.
	Spoken []speech.Utterance
}

// Session runs a presenter and a braille engine on their own loop so they
// can be driven from other goroutines.
type Session struct {
	loop      *mainloop.Loop
	engine    *braille.Engine
	presenter *presenter.Presenter
	recorder  *speech.Recorder

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	closed  bool
}

// New wires a session. Nothing runs until Start.
func New(opts Options) (*Session, error) {
	if opts.Window == nil {
		return nil, errors.New("session: window is required")
	}
	store := opts.Store
	if store == nil {
		store = config.NewStore(nil)
	}
	tr := opts.Translator
	if tr == nil {
		t, err := contraction.New()
		if err != nil {
			return nil, fmt.Errorf("failed to load contraction tables: %w", err)
		}
		tr = t
	}

	settings := store.Settings()
	s := &Session{
		loop:     mainloop.New(opts.Clock),
		recorder: &speech.Recorder{},
	}
	s.engine = braille.NewEngine(braille.Options{
		Loop:         s.loop,
		Dialer:       opts.Dialer,
		Settings:     store,
		Translator:   tr,
		Monitor:      opts.OnFrame,
		DefaultWidth: settings.Display.Width,
	})
	s.presenter = presenter.New(presenter.Options{
		Window:     opts.Window,
		Speaker:    speech.Multi(s.recorder, opts.Speaker),
		Engine:     s.engine,
		Clipboard:  opts.Clipboard,
		PixelDelta: settings.FlatReview.PixelDelta,
		WrapLines:  settings.FlatReview.WrapLines,
		Brief:      settings.FlatReview.Brief,
	})
	s.engine.SetKeyHandler(s.presenter.HandleBrailleKey)
	return s, nil
}

// Start runs the loop on its own goroutine and starts connecting the
// display.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("Review loop stopped", zap.Error(err))
		}
	}()
	s.loop.Post(func() { s.engine.Init() })
}

// Do runs fn on the loop and returns the state it left behind.
func (s *Session) Do(fn func(p *presenter.Presenter)) (Snapshot, error) {
	s.mu.Lock()
	done := s.done
	running := s.started && !s.closed
	s.mu.Unlock()
	if !running {
		return Snapshot{}, ErrClosed
	}

	result := make(chan Snapshot, 1)
	ok := s.loop.Post(func() {
		s.recorder.Reset()
		if fn != nil {
			fn(s.presenter)
		}
		result <- s.snapshot()
	})
	if !ok {
		return Snapshot{}, ErrClosed
	}
	select {
	case snap := <-result:
		return snap, nil
	case <-done:
		return Snapshot{}, ErrClosed
	}
}

// snapshot runs on the loop.
func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Active:     s.presenter.IsActive(),
		Restricted: s.presenter.IsRestricted(),
		Frame:      s.engine.LastFrame(),
		State:      s.engine.State(),
		Spoken:     s.recorder.Utterances(),
	}
	if snap.Active {
		ctx := s.presenter.Context()
		snap.Lines = ctx.Lines()
		snap.Location = ctx.Location()
	}
	return snap
}

// Close shuts the display down and stops the loop.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	if !started {
		s.loop.Close()
		return
	}

	stopped := make(chan struct{})
	if s.loop.Post(func() {
		s.engine.Shutdown()
		close(stopped)
	}) {
		select {
		case <-stopped:
		case <-s.done:
		}
	}
	s.loop.Close()
	<-s.done
	s.cancel()
}
