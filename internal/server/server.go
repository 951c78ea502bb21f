// ABOUTME: Floor server that broadcasts dance frames to websocket watchers
// ABOUTME: Manages connections, handshakes, control messages and mDNS advertisement
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/discovery"
	"github.com/harperreed/dancefloor/internal/protocol"
	"github.com/harperreed/dancefloor/internal/stage"
	"github.com/harperreed/dancefloor/internal/version"
)

const (
	sendBuffer     = 32
	frameBuffer    = 4
	writeDeadline  = 10 * time.Second
	helloTimeout   = 5 * time.Second
	pingInterval   = 30 * time.Second
	statusInterval = time.Second
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Debug      bool
	UseTUI     bool
	// FrameStride sends every Nth engine frame to watchers
	FrameStride int
}

// Server broadcasts a stage's frames to connected watchers
type Server struct {
	config   Config
	serverID string
	stage    *stage.Stage

	upgrader   websocket.Upgrader
	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*Client
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager

	tui       *ServerTUI
	startTime time.Time

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup

	sent atomic.Uint64
}

// Client represents a connected watcher
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	// Pre-encoded text messages
	sendChan chan []byte
	dropped  atomic.Uint64
}

// New creates a server around a stage. The stage is started by Start.
func New(config Config, st *stage.Stage) *Server {
	if config.FrameStride < 1 {
		config.FrameStride = 1
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		stage:    st,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Watchers run on the local network; browsers are allowed from any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[string]*Client),
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
	}
	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the websocket endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ID returns the server's identifier
func (s *Server) ID() string {
	return s.serverID
}

// Start runs the stage, broadcaster, mDNS and HTTP listener until Stop
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.config.UseTUI {
		s.tui = NewServerTUI()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.status()); err != nil {
				logrus.WithError(err).Error("Server TUI failed")
			}
		}()
	}

	logrus.WithFields(logrus.Fields{
		"function": "Server.Start",
		"name":     s.config.Name,
		"id":       s.serverID,
		"stride":   s.config.FrameStride,
	}).Info("Server starting")

	stageErr := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		stageErr <- s.stage.Run(ctx)
	}()

	s.startBroadcast(ctx)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Info: []string{
				"path=" + protocol.Path,
				fmt.Sprintf("version=%d", protocol.ProtocolVersion),
				fmt.Sprintf("fps=%d", s.stage.FrameRate()/s.config.FrameStride),
			},
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			logrus.WithError(err).Warn("Failed to start mDNS advertisement")
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	logrus.WithField("addr", addr).Info("WebSocket server listening")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	var serverErr error
	select {
	case <-s.stopChan:
		logrus.Info("Server shutting down")
	case <-tuiQuitChan:
		logrus.Info("TUI quit requested, shutting down")
	case err := <-stageErr:
		logrus.WithError(err).Error("Stage stopped")
		serverErr = err
	case err := <-errChan:
		logrus.WithError(err).Error("HTTP server error")
		serverErr = fmt.Errorf("HTTP server failed: %w", err)
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.tui != nil {
		s.tui.Stop()
	}
	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP server shutdown error")
	}
	s.closeClients()

	s.wg.Wait()
	logrus.Info("Server stopped cleanly")
	return serverErr
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// startBroadcast subscribes to the stage and fans frames out until ctx ends
func (s *Server) startBroadcast(ctx context.Context) {
	frames, unsubscribe := s.stage.Subscribe(frameBuffer)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		s.broadcast(ctx, frames)
	}()
}

func (s *Server) broadcast(ctx context.Context, frames <-chan protocol.Frame) {
	status := time.NewTicker(statusInterval)
	defer status.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-status.C:
			s.updateTUI()
		case frame, ok := <-frames:
			if !ok {
				return
			}
			n++
			if n%s.config.FrameStride != 0 {
				continue
			}
			s.broadcastMessage(protocol.TypeFrame, frame)
		}
	}
}

// broadcastMessage encodes once and queues to every client, skipping full queues
func (s *Server) broadcastMessage(msgType string, payload interface{}) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode broadcast")
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.sendChan <- data:
			s.sent.Add(1)
		default:
			c.dropped.Add(1)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	logrus.WithField("remote", r.RemoteAddr).Debug("New WebSocket connection")
	s.handleConnection(conn)
}

// handleConnection runs the handshake and then the read loop for one watcher
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		logrus.Debug("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	hello, err := s.readHello(conn)
	if err != nil {
		logrus.WithError(err).Warn("Handshake failed")
		return
	}

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan []byte, sendBuffer),
	}

	s.clientsMu.Lock()
	if existing, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		logrus.WithFields(logrus.Fields{
			"id":       hello.ClientID,
			"existing": existing.Name,
		}).Warn("Client ID already connected, rejecting duplicate")
		s.writeError(conn, protocol.ErrDuplicateClientID, "Client ID already connected")
		return
	}
	s.clients[client.ID] = client
	// Hello and metadata are queued before the broadcaster can see the client
	err = s.queue(client, protocol.TypeServerHello, s.serverHello())
	if err == nil {
		err = s.queue(client, protocol.TypeMetadata, s.metadata())
	}
	s.clientsMu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Server.handleConnection",
		"name":     client.Name,
		"id":       client.ID,
	}).Info("Watcher connected")
	s.updateTUI()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()
		close(client.sendChan)
		logrus.WithFields(logrus.Fields{
			"name":    client.Name,
			"dropped": client.dropped.Load(),
		}).Info("Watcher disconnected")
		s.updateTUI()
	}()

	if err != nil {
		logrus.WithError(err).Error("Failed to queue hello")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("WebSocket read error")
			}
			return
		}
		s.handleClientMessage(client, data)
	}
}

// readHello waits for client/hello and validates it, answering errors on the wire
func (s *Server) readHello(conn *websocket.Conn) (protocol.ClientHello, error) {
	var hello protocol.ClientHello

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return hello, fmt.Errorf("failed to read hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	env, err := protocol.Decode(data)
	if err != nil {
		s.writeError(conn, protocol.ErrBadHello, err.Error())
		return hello, err
	}
	if env.Type != protocol.TypeClientHello {
		err := fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, env.Type)
		s.writeError(conn, protocol.ErrBadHello, err.Error())
		return hello, err
	}
	if err := env.Into(&hello); err != nil {
		s.writeError(conn, protocol.ErrBadHello, err.Error())
		return hello, err
	}
	if hello.ClientID == "" || hello.Name == "" {
		err := fmt.Errorf("hello missing client_id or name")
		s.writeError(conn, protocol.ErrBadHello, err.Error())
		return hello, err
	}
	if hello.Version != protocol.ProtocolVersion {
		err := fmt.Errorf("protocol version %d, server speaks %d", hello.Version, protocol.ProtocolVersion)
		s.writeError(conn, protocol.ErrVersionMismatch, err.Error())
		return hello, err
	}
	return hello, nil
}

func (s *Server) writeError(conn *websocket.Conn, code, message string) {
	data, err := protocol.Encode(protocol.TypeServerError, protocol.ServerError{Error: code, Message: message})
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	conn.WriteMessage(websocket.TextMessage, data)
}

// clientWriter drains the client's queue onto the socket
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-client.sendChan:
			if !ok {
				return
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logrus.WithError(err).WithField("name", client.Name).Debug("Write failed")
				client.Conn.Close()
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes control and pause requests from watchers
func (s *Server) handleClientMessage(client *Client, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		logrus.WithError(err).Warn("Bad message from watcher")
		return
	}

	switch env.Type {
	case protocol.TypeControl:
		var cmd protocol.Control
		if err := env.Into(&cmd); err != nil {
			logrus.WithError(err).Warn("Bad control message")
			return
		}
		if err := s.stage.Control(cmd); err != nil {
			logrus.WithError(err).Warn("Control dropped")
			return
		}
		logrus.WithFields(logrus.Fields{
			"name":    client.Name,
			"command": cmd.String(),
		}).Debug("Control queued")

	case protocol.TypePause:
		var p protocol.Pause
		if err := env.Into(&p); err != nil {
			logrus.WithError(err).Warn("Bad pause message")
			return
		}
		s.stage.Pause(p.Paused)
		s.broadcastMessage(protocol.TypeMetadata, s.metadata())

	default:
		logrus.WithField("type", env.Type).Debug("Unknown message type")
	}
}

// queue encodes and queues a message for one client
func (s *Server) queue(client *Client, msgType string, payload interface{}) error {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}
	select {
	case client.sendChan <- data:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.Conn.Close()
	}
}

func (s *Server) serverHello() protocol.ServerHello {
	return protocol.ServerHello{
		ServerID:    s.serverID,
		Name:        s.config.Name,
		Version:     protocol.ProtocolVersion,
		Canvas:      s.stage.Latest().Canvas,
		FrameRate:   s.stage.FrameRate(),
		FrameStride: s.config.FrameStride,
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}
}

func (s *Server) metadata() protocol.Metadata {
	title, artist, album := s.stage.Metadata()
	return protocol.Metadata{
		Title:  title,
		Artist: artist,
		Album:  album,
		Paused: s.stage.Paused(),
	}
}

// ClientCount returns the number of connected watchers
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
