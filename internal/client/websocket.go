// ABOUTME: WebSocket client that watches a remote dance floor
// ABOUTME: Handles connection, handshake, frame delivery and control messages
package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/protocol"
	"github.com/harperreed/dancefloor/internal/version"
)

const handshakeTimeout = 5 * time.Second

// Config holds client configuration
type Config struct {
	ServerAddr string
	// ClientID defaults to a random UUID
	ClientID string
	Name     string
}

// Client is a connected floor watcher
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex
	wmu    sync.Mutex

	hello protocol.ServerHello

	// Frames carries broadcast snapshots; the oldest is dropped when full
	Frames   chan protocol.Frame
	Metadata chan protocol.Metadata
	Errors   chan protocol.ServerError

	dropped   atomic.Uint64
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.ClientID == "" {
		config.ClientID = uuid.New().String()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:   config,
		Frames:   make(chan protocol.Frame, 4),
		Metadata: make(chan protocol.Metadata, 4),
		Errors:   make(chan protocol.ServerError, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect dials ws://addr/dancefloor and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: protocol.Path}
	logrus.WithField("url", u.String()).Info("Connecting to floor")

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()
	return nil
}

func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID: c.config.ClientID,
		Name:     c.config.Name,
		Version:  protocol.ProtocolVersion,
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}
	if err := c.send(protocol.TypeClientHello, hello); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	env, err := protocol.Decode(data)
	if err != nil {
		return err
	}

	switch env.Type {
	case protocol.TypeServerHello:
	case protocol.TypeServerError:
		var se protocol.ServerError
		if err := env.Into(&se); err != nil {
			return err
		}
		return fmt.Errorf("server refused: %s: %s", se.Error, se.Message)
	default:
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, env.Type)
	}

	var sh protocol.ServerHello
	if err := env.Into(&sh); err != nil {
		return err
	}
	c.mu.Lock()
	c.hello = sh
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Client.handshake",
		"server":   sh.Name,
		"fps":      sh.FrameRate,
		"stride":   sh.FrameStride,
	}).Info("Handshake complete")
	return nil
}

// readMessages routes incoming messages until the connection ends
func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				logrus.WithError(err).Warn("Read error")
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		logrus.WithError(err).Warn("Failed to parse message")
		return
	}

	switch env.Type {
	case protocol.TypeFrame:
		var frame protocol.Frame
		if err := env.Into(&frame); err != nil {
			logrus.WithError(err).Warn("Bad frame")
			return
		}
		c.deliverFrame(frame)

	case protocol.TypeMetadata:
		var meta protocol.Metadata
		if err := env.Into(&meta); err != nil {
			logrus.WithError(err).Warn("Bad metadata")
			return
		}
		for {
			select {
			case c.Metadata <- meta:
				return
			default:
			}
			select {
			case <-c.Metadata:
			default:
			}
		}

	case protocol.TypeServerError:
		var se protocol.ServerError
		if err := env.Into(&se); err == nil {
			select {
			case c.Errors <- se:
			default:
			}
		}

	default:
		logrus.WithField("type", env.Type).Debug("Unknown message type")
	}
}

// deliverFrame keeps the newest frames, evicting the oldest when the reader lags
func (c *Client) deliverFrame(frame protocol.Frame) {
	for {
		select {
		case c.Frames <- frame:
			return
		default:
		}
		select {
		case <-c.Frames:
			c.dropped.Add(1)
		default:
		}
	}
}

func (c *Client) send(msgType string, payload interface{}) error {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return fmt.Errorf("not connected")
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendControl asks the server to apply a floor command
func (c *Client) SendControl(cmd protocol.Control) error {
	return c.send(protocol.TypeControl, cmd)
}

// SendPause asks the server to pause or resume the floor
func (c *Client) SendPause(paused bool) error {
	return c.send(protocol.TypePause, protocol.Pause{Paused: paused})
}

// ServerHello returns the handshake reply
func (c *Client) ServerHello() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// Dropped counts frames evicted because the reader lagged
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		logrus.Debug("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
