// ABOUTME: Dancefloor wire message type definitions
// ABOUTME: JSON envelopes exchanged between the floor server and watchers
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/formation"
)

// ProtocolVersion is bumped on incompatible message changes
const ProtocolVersion = 1

// Path is the websocket endpoint served by the floor server
const Path = "/dancefloor"

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeServerError = "server/error"
	TypeFrame       = "floor/frame"
	TypeControl     = "floor/control"
	TypeMetadata    = "floor/metadata"
	TypePause       = "floor/pause"
)

// Error codes carried by server/error
const (
	ErrDuplicateClientID = "duplicate_client_id"
	ErrBadHello          = "bad_hello"
	ErrVersionMismatch   = "version_mismatch"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is a received message with its payload left undecoded
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClientHello is sent by watchers to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID    string           `json:"server_id"`
	Name        string           `json:"name"`
	Version     int              `json:"version"`
	Canvas      formation.Canvas `json:"canvas"`
	FrameRate   int              `json:"frame_rate"`
	FrameStride int              `json:"frame_stride"`
	DeviceInfo  *DeviceInfo      `json:"device_info,omitempty"`
}

// ServerError explains why the server is closing the connection
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Metadata describes what the floor is dancing to
type Metadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Paused bool   `json:"paused"`
}

// Pause asks the server to stop or resume ticking
type Pause struct {
	Paused bool `json:"paused"`
}

// Control wraps a floor command sent by a watcher
type Control = dance.Command

// Frame is one broadcast floor snapshot
type Frame = dance.Frame

// Encode marshals a typed message
func Encode(msgType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msgType, err)
	}
	return data, nil
}

// Decode reads the envelope of a received message
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("failed to decode message: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("message without type")
	}
	return env, nil
}

// Into decodes the payload into v
func (e Envelope) Into(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s: bad payload: %w", e.Type, err)
	}
	return nil
}
