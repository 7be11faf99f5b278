// ABOUTME: Frame feed message type definitions
// ABOUTME: Envelope, handshake and session messages exchanged over the websocket
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the feed protocol version
const Version = 1

// Path is the websocket endpoint
const Path = "/frames"

// Message types
const (
	TypeClientHello  = "client/hello"
	TypeSessionHello = "session/hello"
	TypeFrame        = "frame"
	TypeSessionEnd   = "session/end"
	TypeError        = "server/error"
)

// Message is the top-level wrapper for all feed messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is a received message with its payload left undecoded
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v
func (e Envelope) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// ClientHello is sent by feed clients to open a session
type ClientHello struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// SessionHello describes the running session. The server assigns
// ClientID to the connection.
type SessionHello struct {
	SessionID    string  `json:"session_id"`
	ClientID     string  `json:"client_id"`
	Name         string  `json:"name"`
	Version      int     `json:"version"`
	Product      string  `json:"product"`
	Manufacturer string  `json:"manufacturer"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	Keys         int     `json:"keys"`
	WindowMs     int64   `json:"window_ms"`
	TrackHeight  float64 `json:"track_height"`
}

// SessionEnd is sent when playback finishes or the server stops
type SessionEnd struct {
	Reason string `json:"reason"`
}

// Error reports a rejected handshake
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
