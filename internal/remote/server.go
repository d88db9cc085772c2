package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/protocol"
	"go.uber.org/zap"
)

const (
	// DefaultWidth is the cell count of a virtual display.
	DefaultWidth = 40

	// DefaultPingInterval is how often the server pings each client.
	DefaultPingInterval = 15 * time.Second

	// DefaultShutdownTimeout bounds Serve's shutdown once its context ends.
	DefaultShutdownTimeout = 10 * time.Second
)

// ErrNoClient is returned by PressKey when no screen reader is connected.
var ErrNoClient = errors.New("remote: no client connected")

// Config holds the virtual display server configuration.
type Config struct {
	// Addr is the host:port to listen on. Port 0 picks a free port.
	Addr string
	// Width and Height are the announced display geometry.
	Width  int
	Height int
	// CertPath and KeyPath enable TLS when both are set.
	CertPath string
	KeyPath  string
	// PingInterval is the keepalive interval. Clients that miss two pings
	// are dropped.
	PingInterval time.Duration
	// OnChange is called, outside any lock, whenever State changes.
	OnChange func(State)
}

// ClientInfo describes one connected screen reader.
type ClientInfo struct {
	ID       uint64
	Name     string
	Addr     string
	Priority int
	RawMode  bool
}

// State is a snapshot of the virtual display.
type State struct {
	Width  int
	Height int
	// Cells are the contents written by the active client.
	Cells braille.Cells
	// Active is the client that owns the display, if any.
	Active *ClientInfo
	// Clients are all connected clients, in connection order.
	Clients []ClientInfo
}

type client struct {
	info    ClientInfo
	cells   braille.Cells
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Server hosts a virtual braille display that screen readers connect to
// over WebSocket. The client with the highest priority owns the display;
// ties go to the most recent connection.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader

	listener   net.Listener
	httpServer *http.Server

	mu      sync.Mutex
	width   int
	height  int
	nextID  uint64
	clients map[uint64]*client
	wg      sync.WaitGroup
}

// NewServer creates a virtual display server.
func NewServer(config *Config) *Server {
	if config == nil {
		config = &Config{}
	}
	width := config.Width
	if width <= 0 {
		width = DefaultWidth
	}
	height := config.Height
	if height <= 0 {
		height = 1
	}
	return &Server{
		config:  config,
		width:   width,
		height:  height,
		clients: make(map[uint64]*client),
	}
}

// Listen opens the listening socket, wrapping it in TLS when configured.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	if s.config.CertPath != "" && s.config.KeyPath != "" {
		tlsConfig, err := NewTLSConfig(s.config.CertPath, s.config.KeyPath)
		if err != nil {
			_ = ln.Close()
			return err
		}
		ln = tls.NewListener(ln, tlsConfig)
	}
	s.listener = ln
	logging.Info("Virtual braille display listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("width", s.width),
		zap.Bool("tls", s.config.CertPath != ""),
	)
	return nil
}

// Addr returns the listening address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// ServeHTTP upgrades the request and serves one client until it leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Rejected WebSocket upgrade",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	c := s.register(conn, r.RemoteAddr)
	defer s.unregister(c)

	s.mu.Lock()
	size := &protocol.Size{Width: s.width, Height: s.height}
	s.mu.Unlock()
	if err := c.send(size); err != nil {
		logging.Warn("Failed to announce display size", zap.String("remote_addr", c.info.Addr), zap.Error(err))
		return
	}

	stop := make(chan struct{})
	defer close(stop)
	go s.keepalive(c, stop)

	s.readLoop(c)
}

func (s *Server) register(conn *websocket.Conn, addr string) *client {
	s.mu.Lock()
	s.nextID++
	c := &client{
		info: ClientInfo{ID: s.nextID, Addr: addr, Priority: braille.DefaultPriority},
		conn: conn,
	}
	s.clients[c.info.ID] = c
	s.mu.Unlock()

	logging.LogConnection(addr, "client connected")
	s.changed()
	return c
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c.info.ID)
	s.mu.Unlock()

	_ = c.conn.Close()
	logging.LogConnection(c.info.Addr, "client disconnected")
	s.changed()
}

func (s *Server) keepalive(c *client, stop <-chan struct{}) {
	interval := s.pingInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(DefaultWriteTimeout)); err != nil {
				logging.Debug("Ping failed", zap.String("remote_addr", c.info.Addr), zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) pingInterval() time.Duration {
	if s.config.PingInterval > 0 {
		return s.config.PingInterval
	}
	return DefaultPingInterval
}

func (s *Server) readLoop(c *client) {
	deadline := 2 * s.pingInterval()
	_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("Client read ended", zap.String("remote_addr", c.info.Addr), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
		logging.LogWebSocketMessage(c.info.Addr, "received", msgType, data)
		if msgType != websocket.BinaryMessage {
			continue
		}

		_, msg, err := protocol.Decode(data)
		if err != nil {
			logging.Warn("Ignoring malformed client message",
				zap.String("remote_addr", c.info.Addr),
				zap.Error(err),
			)
			continue
		}
		s.handle(c, msg)
	}
}

func (s *Server) handle(c *client, msg protocol.Message) {
	s.mu.Lock()
	switch m := msg.(type) {
	case *protocol.Hello:
		c.info.Name = m.Name
	case *protocol.Write:
		c.cells = braille.Cells{Text: m.Text, Mask: m.Mask, Cursor: m.Cursor}
	case *protocol.Param:
		if braille.Param(m.Param) == braille.ParamPriority {
			c.info.Priority = int(m.Value)
		}
	case *protocol.RawMode:
		c.info.RawMode = m.On
	default:
		s.mu.Unlock()
		logging.Debug("Ignoring client message", zap.Stringer("message", msg.Type()))
		return
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Server) changed() {
	if s.config.OnChange != nil {
		s.config.OnChange(s.State())
	}
}

// activeLocked returns the client owning the display. s.mu must be held.
func (s *Server) activeLocked() *client {
	var active *client
	for _, c := range s.clients {
		if active == nil ||
			c.info.Priority > active.info.Priority ||
			(c.info.Priority == active.info.Priority && c.info.ID > active.info.ID) {
			active = c
		}
	}
	return active
}

// State returns a snapshot of the display.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Width: s.width, Height: s.height}
	for _, c := range s.clients {
		st.Clients = append(st.Clients, c.info)
	}
	sort.Slice(st.Clients, func(i, j int) bool { return st.Clients[i].ID < st.Clients[j].ID })
	if active := s.activeLocked(); active != nil {
		info := active.info
		st.Active = &info
		st.Cells = active.cells
		st.Cells.Mask = append([]byte(nil), active.cells.Mask...)
	}
	return st
}

// PressKey delivers key to the active client.
func (s *Server) PressKey(key braille.Key) error {
	s.mu.Lock()
	active := s.activeLocked()
	s.mu.Unlock()
	if active == nil {
		return ErrNoClient
	}

	logging.Debug("Key pressed",
		zap.Stringer("command", key.Command),
		zap.Int("argument", key.Argument),
		zap.Uint64("client", active.info.ID),
	)
	return active.send(&protocol.Key{
		Command:  byte(key.Command),
		Argument: key.Argument,
		Flags:    uint32(key.Flags),
	})
}

// Resize changes the announced width and tells every client.
func (s *Server) Resize(width int) {
	s.mu.Lock()
	s.width = width
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	size := &protocol.Size{Width: width, Height: s.height}
	s.mu.Unlock()

	logging.Info("Display resized", zap.Int("width", width))
	for _, c := range clients {
		if err := c.send(size); err != nil {
			logging.Warn("Failed to announce display size", zap.String("remote_addr", c.info.Addr), zap.Error(err))
		}
	}
	s.changed()
}

// ActiveConnections returns the number of connected clients.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown stops accepting connections, closes every client and waits for
// their handlers to finish or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down virtual display...")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	} else if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	for _, c := range s.clients {
		logging.Info("Closing client connection", zap.String("remote_addr", c.info.Addr))
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "display shutting down")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
		return nil
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
		return ctx.Err()
	}
}

func (c *client) send(msg protocol.Message) error {
	data, err := protocol.Encode(protocol.GenerateMessageID(), msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type(), err)
	}
	logging.LogWebSocketMessage(c.info.Addr, "sent", websocket.BinaryMessage, data)
	return nil
}
