package remote

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/mainloop"
)

func startServer(t *testing.T, config *Config) (*Server, string) {
	t.Helper()
	srv := NewServer(config)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
}

func dial(t *testing.T, url, name string) *Device {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	dev, err := (&Dialer{URL: url, Name: name}).Dial(ctx)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	return dev.(*Device)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDialReceivesSize(t *testing.T) {
	_, url := startServer(t, &Config{Width: 32})
	dev := dial(t, url, "reader")

	width, height, err := dev.DisplaySize()
	if err != nil {
		t.Fatalf("DisplaySize() error = %v", err)
	}
	if width != 32 || height != 1 {
		t.Errorf("DisplaySize() = %d, %d, want 32, 1", width, height)
	}
}

func TestWriteUpdatesDisplay(t *testing.T) {
	var mu sync.Mutex
	var changes int
	srv, url := startServer(t, &Config{
		OnChange: func(State) {
			mu.Lock()
			changes++
			mu.Unlock()
		},
	})
	dev := dial(t, url, "reader")

	if err := dev.EnterRawMode(); err != nil {
		t.Fatalf("EnterRawMode() error = %v", err)
	}
	cells := braille.Cells{Text: "OK Cancel", Mask: []byte{0xc0, 0xc0, 0, 0, 0, 0, 0, 0, 0}, Cursor: 1}
	if err := dev.Write(cells); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	waitFor(t, "write", func() bool { return srv.State().Cells.Text == "OK Cancel" })

	st := srv.State()
	if st.Cells.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", st.Cells.Cursor)
	}
	if string(st.Cells.Mask) != string(cells.Mask) {
		t.Errorf("Mask = %v, want %v", st.Cells.Mask, cells.Mask)
	}
	if st.Active == nil || st.Active.Name != "reader" || !st.Active.RawMode {
		t.Errorf("Active = %+v, want the raw mode reader", st.Active)
	}
	if st.Width != DefaultWidth {
		t.Errorf("Width = %d, want %d", st.Width, DefaultWidth)
	}

	mu.Lock()
	defer mu.Unlock()
	if changes < 3 {
		t.Errorf("OnChange called %d times, want at least 3", changes)
	}
}

func TestPriorityPicksActiveClient(t *testing.T) {
	srv, url := startServer(t, nil)
	first := dial(t, url, "first")
	second := dial(t, url, "second")

	waitFor(t, "two named clients", func() bool {
		st := srv.State()
		return len(st.Clients) == 2 && st.Clients[1].Name == "second"
	})
	if got := srv.State().Active.Name; got != "second" {
		t.Errorf("Active = %q, want the newest client", got)
	}

	if err := second.SetParameter(braille.ParamPriority, braille.IdlePriority); err != nil {
		t.Fatalf("SetParameter() error = %v", err)
	}
	waitFor(t, "first to take over", func() bool { return srv.State().Active.Name == "first" })

	key := braille.Key{Command: braille.KeyRoute, Argument: 5, Flags: braille.FlagRepeatInitial}
	if err := srv.PressKey(key); err != nil {
		t.Fatalf("PressKey() error = %v", err)
	}
	got, ok, err := first.ReadKey(true)
	if err != nil || !ok {
		t.Fatalf("ReadKey() = %v, %v", ok, err)
	}
	if got != key {
		t.Errorf("ReadKey() = %+v, want %+v", got, key)
	}
	if _, ok, _ := second.ReadKey(false); ok {
		t.Error("idle client received the key")
	}
}

func TestReadKeyWithoutWait(t *testing.T) {
	_, url := startServer(t, nil)
	dev := dial(t, url, "reader")

	if _, ok, err := dev.ReadKey(false); ok || err != nil {
		t.Errorf("ReadKey(false) = %v, %v, want no key", ok, err)
	}
}

func TestResize(t *testing.T) {
	srv, url := startServer(t, &Config{Width: 40})
	dev := dial(t, url, "reader")

	srv.Resize(20)
	waitFor(t, "resize", func() bool {
		w, _, _ := dev.DisplaySize()
		return w == 20
	})
	if got := srv.State().Width; got != 20 {
		t.Errorf("State().Width = %d, want 20", got)
	}
}

func TestCloseRemovesClient(t *testing.T) {
	srv, url := startServer(t, nil)
	dev := dial(t, url, "reader")
	waitFor(t, "client", func() bool { return srv.ActiveConnections() == 1 })

	if err := dev.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	waitFor(t, "disconnect", func() bool { return srv.ActiveConnections() == 0 })

	err := dev.Write(braille.Cells{Text: "x"})
	var devErr *braille.DeviceError
	if !errors.As(err, &devErr) || devErr.Type != braille.ErrTypeClosed {
		t.Errorf("Write() after Close error = %v, want a closed DeviceError", err)
	}
	if !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("Write() after Close error = %v, want ErrDeviceClosed", err)
	}
}

func TestShutdownFailsDevice(t *testing.T) {
	srv, url := startServer(t, nil)
	dev := dial(t, url, "reader")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	_, ok, err := dev.ReadKey(true)
	if ok || !braille.IsRetryable(err) {
		t.Errorf("ReadKey() after shutdown = %v, %v, want a retryable error", ok, err)
	}
	if _, _, err := dev.DisplaySize(); err == nil {
		t.Error("DisplaySize() after shutdown error = nil, want error")
	}
}

func TestPressKeyWithoutClient(t *testing.T) {
	srv := NewServer(nil)
	if err := srv.PressKey(braille.Key{Command: braille.KeyPanLeft}); !errors.Is(err, ErrNoClient) {
		t.Errorf("PressKey() error = %v, want ErrNoClient", err)
	}
	if srv.Addr() != nil {
		t.Errorf("Addr() before Listen = %v, want nil", srv.Addr())
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := (&Dialer{URL: "ws://127.0.0.1:1/"}).Dial(ctx)
	if err == nil {
		t.Fatal("Dial() error = nil, want error")
	}
	if !braille.IsRetryable(err) {
		t.Errorf("Dial() error = %v, want retryable", err)
	}
}

func TestEngineDrivesVirtualDisplay(t *testing.T) {
	srv, url := startServer(t, &Config{Width: 20})
	loop := mainloop.New(mainloop.RealClock{})
	e := braille.NewEngine(braille.Options{
		Loop:   loop,
		Dialer: &Dialer{URL: url, Name: "engine"},
	})
	defer e.Shutdown()

	drive := func(what string, done func() bool) {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if !loop.RunUntil(ctx, done) {
			t.Fatalf("timed out waiting for %s", what)
		}
	}

	e.Init()
	drive("ready", func() bool { return e.State() == braille.StateReady })
	if e.Width() != 20 {
		t.Errorf("Width() = %d, want 20", e.Width())
	}

	e.DisplayRegions([]*braille.Region{braille.NewRegion("Name: Orca", 0)}, 0)
	want := "Name: Orca" + strings.Repeat(" ", 10)
	drive("write", func() bool { return srv.State().Cells.Text == want })

	e.Idle()
	drive("idle", func() bool {
		st := srv.State()
		return st.Active != nil && st.Active.Priority == braille.IdlePriority
	})
}
