// ABOUTME: Frame feed server for remote renderers
// ABOUTME: Manages WebSocket connections, session handshake and frame fan-out
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/lanescope/internal/discovery"
	"github.com/Resonate-Protocol/lanescope/internal/protocol"
	"github.com/Resonate-Protocol/lanescope/internal/render"
	"github.com/Resonate-Protocol/lanescope/internal/version"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultQueueSize = 16
	pingInterval     = 30 * time.Second
	writeDeadline    = 10 * time.Second
	helloTimeout     = 5 * time.Second
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	QueueSize  int // frames buffered per client before dropping

	// OnClientsChanged receives the client count after each connect and
	// disconnect. It runs on the connection's goroutine.
	OnClientsChanged func(count int)

	// Session is sent to every client; ids, version and product are filled in
	Session protocol.SessionHello
}

// Server broadcasts frames to websocket clients
type Server struct {
	config    Config
	sessionID string

	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux
	listener   net.Listener

	clients   map[string]*Client
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client is a connected feed consumer
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	// Encoded messages waiting to be written
	sendChan chan []byte
	dropped  atomic.Int64
}

// Dropped returns how many frames were dropped for this client
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// New creates a new server instance
func New(config Config) *Server {
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}

	s := &Server{
		config:    config,
		sessionID: uuid.New().String(),
		mux:       http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Feeds are meant for local networks
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Accepting feed WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// SessionID returns the id sent in every handshake
func (s *Server) SessionID() string {
	return s.sessionID
}

// Handler returns the HTTP handler serving the feed
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens and serves until Stop is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	log.Printf("Frame feed starting: %s (session: %s)", s.config.Name, s.sessionID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        ln.Addr().(*net.TCPAddr).Port,
			Path:        protocol.Path,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	log.Printf("WebSocket feed listening on %s%s", ln.Addr(), protocol.Path)

	s.httpServer = &http.Server{Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Frame feed shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// hijacked websocket connections are not closed by Shutdown
	s.clientsMu.RLock()
	for _, c := range s.clients {
		c.Conn.Close()
	}
	s.clientsMu.RUnlock()

	s.wg.Wait()
	log.Printf("Frame feed stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Push encodes f once and queues it for every client. A client whose
// queue is full misses the frame.
func (s *Server) Push(f render.Frame) {
	data, err := json.Marshal(protocol.Message{Type: protocol.TypeFrame, Payload: f})
	if err != nil {
		log.Printf("Error marshaling frame: %v", err)
		return
	}
	s.broadcast(data)
}

// End tells every client the session is over
func (s *Server) End(reason string) {
	data, err := json.Marshal(protocol.Message{
		Type:    protocol.TypeSessionEnd,
		Payload: protocol.SessionEnd{Reason: reason},
	})
	if err != nil {
		log.Printf("Error marshaling session end: %v", err)
		return
	}
	s.broadcast(data)
}

func (s *Server) broadcast(data []byte) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		select {
		case c.sendChan <- data:
		default:
			c.dropped.Add(1)
		}
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Add must not race the Wait in Start, so it happens under the
	// shutdown lock that Start takes before waiting
	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection from %s during shutdown", r.RemoteAddr)
		http.Error(w, "feed shutting down", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.shutdownMu.RUnlock()
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New feed connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection runs the handshake then reads until the client leaves
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var env protocol.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	if env.Type != protocol.TypeClientHello {
		log.Printf("Expected %s, got %s", protocol.TypeClientHello, env.Type)
		s.reject(conn, "unexpected_message", "expected "+protocol.TypeClientHello)
		return
	}

	var hello protocol.ClientHello
	if err := env.Decode(&hello); err != nil {
		log.Printf("Error decoding client hello: %v", err)
		s.reject(conn, "bad_hello", err.Error())
		return
	}
	if hello.Version != 0 && hello.Version != protocol.Version {
		log.Printf("Client %s speaks version %d, rejecting", hello.Name, hello.Version)
		s.reject(conn, "unsupported_version", fmt.Sprintf("server speaks version %d", protocol.Version))
		return
	}

	client := &Client{
		ID:       uuid.New().String(),
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan []byte, s.config.QueueSize),
	}
	if client.Name == "" {
		client.Name = client.ID
	}

	session := s.config.Session
	session.SessionID = s.sessionID
	session.ClientID = client.ID
	session.Version = protocol.Version
	session.Product = version.Product
	session.Manufacturer = version.Manufacturer
	if session.Name == "" {
		session.Name = s.config.Name
	}

	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(protocol.Message{Type: protocol.TypeSessionHello, Payload: session}); err != nil {
		log.Printf("Error sending session hello: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[client.ID] = client
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.notifyClients(count)

	log.Printf("Feed client connected: %s (ID: %s)", client.Name, client.ID)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		count := len(s.clients)
		s.clientsMu.Unlock()
		close(client.sendChan)
		s.notifyClients(count)
		log.Printf("Feed client disconnected: %s (dropped %d frames)", client.Name, client.Dropped())
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	// Feed clients send nothing after the hello; reading surfaces the close
	// and services pongs
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *Server) notifyClients(count int) {
	if s.config.OnClientsChanged != nil {
		s.config.OnClientsChanged(count)
	}
}

// reject sends an error message before the connection is closed
func (s *Server) reject(conn *websocket.Conn, code, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	conn.WriteJSON(protocol.Message{
		Type:    protocol.TypeError,
		Payload: protocol.Error{Error: code, Message: message},
	})
}

// clientWriter sends queued messages and pings to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	// a failed write ends the read loop too
	defer client.Conn.Close()

	for {
		select {
		case data, ok := <-client.sendChan:
			if !ok {
				return
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing to %s: %v", client.Name, err)
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}
