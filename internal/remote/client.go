package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/protocol"
	"go.uber.org/zap"
)

const (
	// DefaultHandshakeTimeout bounds the WebSocket upgrade.
	DefaultHandshakeTimeout = 5 * time.Second

	// DefaultWriteTimeout bounds a single message write.
	DefaultWriteTimeout = 2 * time.Second

	// DefaultSizeWait is how long Dial waits for the first size
	// announcement before returning a device that reports width 0.
	DefaultSizeWait = 500 * time.Millisecond

	keyBuffer = 64
)

// ErrDeviceClosed is the cause reported by a Device after Close.
var ErrDeviceClosed = errors.New("remote: device closed")

// Dialer connects to a virtual braille display server. It implements
// braille.Dialer.
type Dialer struct {
	// URL is the ws:// or wss:// address of the display.
	URL string
	// Name identifies this client to the display.
	Name string
	// TLSConfig is used for wss:// URLs.
	TLSConfig *tls.Config

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	SizeWait         time.Duration
}

// Dial implements braille.Dialer.
func (d *Dialer) Dial(ctx context.Context) (braille.Device, error) {
	handshake := d.HandshakeTimeout
	if handshake <= 0 {
		handshake = DefaultHandshakeTimeout
	}
	wd := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshake,
		TLSClientConfig:  d.TLSConfig,
	}

	conn, _, err := wd.DialContext(ctx, d.URL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, braille.NewTimeoutError("connect", fmt.Errorf("dial %s: %w", d.URL, err))
		}
		return nil, braille.NewIOError("connect", fmt.Errorf("dial %s: %w", d.URL, err))
	}

	dev := newDevice(conn, d.WriteTimeout)
	logging.LogConnection(dev.addr, "connected to display")

	if err := dev.send("hello", &protocol.Hello{Name: d.Name}); err != nil {
		dev.Close()
		return nil, err
	}
	go dev.readLoop()

	wait := d.SizeWait
	if wait <= 0 {
		wait = DefaultSizeWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-dev.sized:
	case <-timer.C:
		logging.Debug("Display did not announce its size yet", zap.String("url", d.URL))
	case <-dev.done:
		return nil, braille.NewClosedError("connect", dev.failure())
	case <-ctx.Done():
		dev.Close()
		return nil, braille.NewTimeoutError("connect", ctx.Err())
	}
	return dev, nil
}

// Device is a braille.Device backed by a WebSocket connection to a
// virtual display.
type Device struct {
	conn         *websocket.Conn
	addr         string
	writeTimeout time.Duration

	writeMu sync.Mutex

	keys      chan braille.Key
	sized     chan struct{}
	sizeOnce  sync.Once
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	width  int
	height int
	err    error
}

func newDevice(conn *websocket.Conn, writeTimeout time.Duration) *Device {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Device{
		conn:         conn,
		addr:         conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		keys:         make(chan braille.Key, keyBuffer),
		sized:        make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (d *Device) readLoop() {
	for {
		msgType, data, err := d.conn.ReadMessage()
		if err != nil {
			d.fail(err)
			return
		}
		logging.LogWebSocketMessage(d.addr, "received", msgType, data)
		if msgType != websocket.BinaryMessage {
			continue
		}

		_, msg, err := protocol.Decode(data)
		if err != nil {
			logging.Warn("Ignoring malformed display message",
				zap.String("remote_addr", d.addr),
				zap.Error(err),
			)
			continue
		}

		switch m := msg.(type) {
		case *protocol.Size:
			d.mu.Lock()
			d.width, d.height = m.Width, m.Height
			d.mu.Unlock()
			if m.Width > 0 {
				d.sizeOnce.Do(func() { close(d.sized) })
			}
			logging.Debug("Display size", zap.Int("width", m.Width), zap.Int("height", m.Height))
		case *protocol.Key:
			key := braille.Key{
				Command:  braille.KeyCommand(m.Command),
				Argument: m.Argument,
				Flags:    braille.KeyFlags(m.Flags),
			}
			select {
			case d.keys <- key:
			default:
				logging.Warn("Dropping display key, buffer full", zap.Stringer("command", key.Command))
			}
		default:
			logging.Debug("Ignoring display message", zap.Stringer("message", msg.Type()))
		}
	}
}

// fail records the first connection error and wakes blocked readers.
func (d *Device) fail(err error) {
	d.mu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.mu.Unlock()
	d.closeOnce.Do(func() { close(d.done) })
}

func (d *Device) failure() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Device) send(op string, msg protocol.Message) error {
	if err := d.failure(); err != nil {
		return braille.NewClosedError(op, err)
	}
	data, err := protocol.Encode(protocol.GenerateMessageID(), msg)
	if err != nil {
		return braille.NewProtocolError(op, err)
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	_ = d.conn.SetWriteDeadline(time.Now().Add(d.writeTimeout))
	if err := d.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		d.fail(err)
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return braille.NewTimeoutError(op, err)
		}
		return braille.NewIOError(op, err)
	}
	logging.LogWebSocketMessage(d.addr, "sent", websocket.BinaryMessage, data)
	return nil
}

// EnterRawMode implements braille.Device.
func (d *Device) EnterRawMode() error {
	return d.send("enter raw mode", &protocol.RawMode{On: true})
}

// LeaveRawMode implements braille.Device.
func (d *Device) LeaveRawMode() error {
	return d.send("leave raw mode", &protocol.RawMode{On: false})
}

// DisplaySize implements braille.Device. The width is 0 until the display
// has announced its size.
func (d *Device) DisplaySize() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return 0, 0, braille.NewClosedError("display size", d.err)
	}
	return d.width, d.height, nil
}

// Write implements braille.Device.
func (d *Device) Write(cells braille.Cells) error {
	return d.send("write", &protocol.Write{Text: cells.Text, Mask: cells.Mask, Cursor: cells.Cursor})
}

// ReadKey implements braille.Device. Keys already received are returned
// even after the connection has failed.
func (d *Device) ReadKey(wait bool) (braille.Key, bool, error) {
	select {
	case key := <-d.keys:
		return key, true, nil
	default:
	}
	if !wait {
		if err := d.failure(); err != nil {
			return braille.Key{}, false, braille.NewClosedError("read key", err)
		}
		return braille.Key{}, false, nil
	}

	select {
	case key := <-d.keys:
		return key, true, nil
	case <-d.done:
		return braille.Key{}, false, braille.NewClosedError("read key", d.failure())
	}
}

// SetParameter implements braille.Device.
func (d *Device) SetParameter(param braille.Param, value int) error {
	return d.send("set parameter", &protocol.Param{Param: byte(param), Value: int32(value)})
}

// Close implements braille.Device.
func (d *Device) Close() error {
	if d.failure() == nil {
		d.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = d.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(d.writeTimeout))
		d.writeMu.Unlock()
	}
	d.fail(ErrDeviceClosed)
	logging.LogConnection(d.addr, "closed display connection")
	return d.conn.Close()
}
