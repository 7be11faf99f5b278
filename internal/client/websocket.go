// ABOUTME: WebSocket client for the frame feed
// ABOUTME: Performs the session handshake and streams decoded frames on a channel
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Resonate-Protocol/lanescope/internal/protocol"
	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/internal/version"
	"github.com/gorilla/websocket"
)

const handshakeTimeout = 5 * time.Second

// Config holds client configuration
type Config struct {
	ServerAddr string
	Path       string
	Name       string
}

// Client receives frames from a feed
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Session is the server's handshake reply
	Session protocol.SessionHello

	// Frames is closed when the connection ends
	Frames chan render.Frame

	endReason string

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = protocol.Path
	}
	if config.Name == "" {
		config.Name = version.Product
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config: config,
		Frames: make(chan render.Frame, 32),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Dial connects to the feed at addr with default settings
func Dial(addr string) (*Client, error) {
	c := NewClient(Config{ServerAddr: addr})
	if err := c.Connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

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

// handshake sends client/hello and waits for session/hello
func (c *Client) handshake() error {
	hello := protocol.Message{
		Type: protocol.TypeClientHello,
		Payload: protocol.ClientHello{
			Name:    c.config.Name,
			Version: protocol.Version,
		},
	}
	if err := c.conn.WriteJSON(hello); err != nil {
		return fmt.Errorf("failed to send %s: %w", protocol.TypeClientHello, err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var env protocol.Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("failed to read %s: %w", protocol.TypeSessionHello, err)
	}
	c.conn.SetReadDeadline(time.Time{})

	switch env.Type {
	case protocol.TypeSessionHello:
	case protocol.TypeError:
		var e protocol.Error
		if err := env.Decode(&e); err != nil {
			return err
		}
		return fmt.Errorf("server rejected session: %s: %s", e.Error, e.Message)
	default:
		return fmt.Errorf("expected %s, got %s", protocol.TypeSessionHello, env.Type)
	}

	if err := env.Decode(&c.Session); err != nil {
		return err
	}

	log.Printf("Joined session %s on %s (client %s)", c.Session.SessionID, c.Session.Name, c.Session.ClientID)
	return nil
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer close(c.Frames)
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		if !c.handleMessage(data) {
			return
		}
	}
}

// handleMessage routes one message, returning false when the session ended
func (c *Client) handleMessage(data []byte) bool {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return true
	}

	switch env.Type {
	case protocol.TypeFrame:
		var f render.Frame
		if err := env.Decode(&f); err != nil {
			log.Printf("Dropping frame: %v", err)
			return true
		}
		select {
		case c.Frames <- f:
		case <-c.ctx.Done():
			return false
		}

	case protocol.TypeSessionEnd:
		var end protocol.SessionEnd
		env.Decode(&end)
		c.mu.Lock()
		c.endReason = end.Reason
		c.mu.Unlock()
		log.Printf("Session ended: %s", end.Reason)
		return false

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
	return true
}

// EndReason returns why the server ended the session, if it did
func (c *Client) EndReason() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endReason
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
