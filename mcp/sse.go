package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/devguide/router"
	"github.com/foomo/devguide/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`

	sessionID string
}

// PageSetEvent is the payload of a "pageset" event.
type PageSetEvent struct {
	SessionID string              `json:"sessionId"`
	Language  router.LanguageCode `json:"language"`
	Pages     router.PageSet      `json:"pages"`
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID        string
	SessionID string
	Writer    http.ResponseWriter
	Flusher   http.Flusher
	Done      chan struct{}
	LastSeen  time.Time

	mu sync.Mutex
}

// SSEServer pushes page set changes to the rendering hosts of a session.
type SSEServer struct {
	logger       *zap.Logger
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
	sessions     SessionLookup

	closeMutex sync.Mutex
	closed     bool
}

// SessionLookup reports whether a session exists. *session.Store implements it.
type SessionLookup interface {
	Get(id string) (session.Session, bool)
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewSSEServer creates the server and starts its broadcast loop. Close stops
// the loop. Subscriptions are only accepted for sessions known to sessions.
func NewSSEServer(logger *zap.Logger, config *SSEServerConfig, sessions SessionLookup) *SSEServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SSEServer{
		logger:    logger,
		config:    config,
		clients:   make(map[string]*SSEClient),
		broadcast: make(chan SSEEvent, config.BufferSize),
		sessions:  sessions,
	}
	go s.broadcastLoop()
	return s
}

// Close stops the broadcast loop. Events queued afterwards are dropped.
func (s *SSEServer) Close() {
	s.closeMutex.Lock()
	defer s.closeMutex.Unlock()
	if !s.closed {
		s.closed = true
		close(s.broadcast)
	}
}

func (s *SSEServer) broadcastLoop() {
	for event := range s.broadcast {
		s.clientsMutex.RLock()
		targets := make([]*SSEClient, 0, len(s.clients))
		for _, client := range s.clients {
			if event.sessionID == "" || client.SessionID == event.sessionID {
				targets = append(targets, client)
			}
		}
		s.clientsMutex.RUnlock()

		for _, client := range targets {
			if err := s.sendEventToClient(client, event); err != nil {
				s.logger.Error("failed to send event to client", zap.String("clientID", client.ID), zap.Error(err))
				s.removeClient(client.ID)
			}
		}
	}
}

// sendEventToClient sends an SSE event to a specific client
func (s *SSEServer) sendEventToClient(client *SSEClient, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	select {
	case <-client.Done:
		return nil
	default:
	}

	if _, err := fmt.Fprintf(client.Writer, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return err
	}
	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

func newEvent(name string, data interface{}) SSEEvent {
	return SSEEvent{
		ID:        name + "_" + uuid.NewString(),
		Event:     name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (s *SSEServer) addClient(w http.ResponseWriter, sessionID string) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := &SSEClient{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Writer:    w,
		Flusher:   flusher,
		Done:      make(chan struct{}),
		LastSeen:  time.Now(),
	}

	s.clientsMutex.Lock()
	s.clients[client.ID] = client
	s.clientsMutex.Unlock()

	connectEvent := newEvent("connected", map[string]string{"clientID": client.ID, "sessionID": sessionID})
	if err := s.sendEventToClient(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		s.removeClient(client.ID)
		return nil
	}

	s.logger.Info("SSE client connected", zap.String("clientID", client.ID), zap.String("sessionID", sessionID))
	return client
}

// removeClient removes a client from the server
func (s *SSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	client, exists := s.clients[clientID]
	delete(s.clients, clientID)
	s.clientsMutex.Unlock()

	if !exists {
		return
	}
	client.mu.Lock()
	close(client.Done)
	client.mu.Unlock()
	s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
}

// broadcastEvent queues an event for delivery
func (s *SSEServer) broadcastEvent(event SSEEvent) {
	s.closeMutex.Lock()
	defer s.closeMutex.Unlock()
	if s.closed {
		s.logger.Debug("SSE server closed, dropping event", zap.String("eventID", event.ID))
		return
	}
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

// Notify tells every client of sessionID that its page set changed.
func (s *SSEServer) Notify(sessionID string, code router.LanguageCode, pages router.PageSet) {
	event := newEvent("pageset", PageSetEvent{
		SessionID: sessionID,
		Language:  code,
		Pages:     pages,
	})
	event.sessionID = sessionID
	s.broadcastEvent(event)
}

// HandleSSE streams the events of one session. The session is taken from the
// session cookie, or from the "session" query parameter for clients that
// cannot send cookies.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		sessionID = cookie.Value
	}
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session")
	}
	if sessionID == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}
	if s.sessions == nil {
		http.Error(w, "sessions unavailable", http.StatusServiceUnavailable)
		return
	}
	if _, ok := s.sessions.Get(sessionID); !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	client := s.addClient(w, sessionID)
	if client == nil {
		return
	}

	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.removeClient(client.ID)
			return
		case <-client.Done:
			return
		case <-ticker.C:
			keepalive := newEvent("keepalive", map[string]interface{}{"timestamp": time.Now()})
			if err := s.sendEventToClient(client, keepalive); err != nil {
				s.removeClient(client.ID)
				return
			}
		}
	}
}

// GetConnectedClients returns information about connected clients
func (s *SSEServer) GetConnectedClients() []map[string]interface{} {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	clients := make([]map[string]interface{}, 0, len(s.clients))
	for _, client := range s.clients {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		clients = append(clients, map[string]interface{}{
			"id":        client.ID,
			"sessionID": client.SessionID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats returns server statistics
func (s *SSEServer) GetStats() map[string]interface{} {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]interface{}{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}
