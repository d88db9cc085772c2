package session

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/a11y/scene"
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/config"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/presenter"
)

const dialogScene = `
focus: ok
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: name
      role: label
      name: "Name:"
      rect: {x: 10, y: 10, width: 50, height: 20}
    - id: ok
      role: push button
      name: OK
      rect: {x: 10, y: 40, width: 40, height: 20}
`

func newSession(t *testing.T, onFrame func(braille.Frame)) *Session {
	t.Helper()
	s, err := scene.Parse([]byte(dialogScene))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	store := config.NewStore(nil)
	store.Update(func(c *config.Settings) { c.Display.Width = 20 })

	sess, err := New(Options{
		Window:    presenter.WindowFunc(func() a11y.Tree { return s }),
		Store:     store,
		Clipboard: &presenter.MemoryClipboard{},
		OnFrame:   onFrame,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sess.Start(context.Background())
	t.Cleanup(sess.Close)
	return sess
}

func TestNewRequiresWindow(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New() without a window returned no error")
	}
}

func TestDoStartsReview(t *testing.T) {
	frames := make(chan braille.Frame, 16)
	sess := newSession(t, func(f braille.Frame) {
		select {
		case frames <- f:
		default:
		}
	})

	snap, err := sess.Do(func(p *presenter.Presenter) { p.Start() })
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !snap.Active {
		t.Fatal("Active = false after Start")
	}
	if want := []string{"Name:", "OK"}; !reflect.DeepEqual(snap.Lines, want) {
		t.Errorf("Lines = %q, want %q", snap.Lines, want)
	}
	if want := (flatreview.Location{Line: 1}); snap.Location != want {
		t.Errorf("Location = %+v, want %+v", snap.Location, want)
	}
	if len(snap.Spoken) != 2 || snap.Spoken[0].Text != presenter.MsgStart || snap.Spoken[1].Text != "OK" {
		t.Errorf("Spoken = %+v, want start message then OK", snap.Spoken)
	}
	if snap.Frame.Width != 20 || !strings.HasPrefix(snap.Frame.Line, "OK") {
		t.Errorf("Frame = %+v, want the OK line at width 20", snap.Frame)
	}
	select {
	case f := <-frames:
		if f.Width != 20 {
			t.Errorf("OnFrame width = %d, want 20", f.Width)
		}
	default:
		t.Error("OnFrame was not called")
	}
	if snap.State != braille.StateDisconnected {
		t.Errorf("State = %v, want disconnected without a dialer", snap.State)
	}

	// Spoken only covers the last command.
	snap, err = sess.Do(func(p *presenter.Presenter) { p.PreviousLine() })
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(snap.Spoken) != 1 || snap.Spoken[0].Text != "Name:" {
		t.Errorf("Spoken = %+v, want [Name:]", snap.Spoken)
	}
	if snap.Location.Line != 0 {
		t.Errorf("Location.Line = %d, want 0", snap.Location.Line)
	}
}

func TestDoWithoutReview(t *testing.T) {
	sess := newSession(t, nil)
	snap, err := sess.Do(nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if snap.Active || snap.Lines != nil {
		t.Errorf("Snapshot = %+v, want inactive with no lines", snap)
	}
}

func TestDoAfterClose(t *testing.T) {
	sess := newSession(t, nil)
	sess.Close()
	sess.Close()

	if _, err := sess.Do(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() error = %v, want ErrClosed", err)
	}
}

func TestDoBeforeStart(t *testing.T) {
	s, err := scene.Parse([]byte(dialogScene))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sess, err := New(Options{Window: presenter.WindowFunc(func() a11y.Tree { return s })})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sess.Close()

	if _, err := sess.Do(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() error = %v, want ErrClosed", err)
	}
}
