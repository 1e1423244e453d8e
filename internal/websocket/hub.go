// Package websocket streams analysis run progress to connected
// browsers. The hub fans out JSON messages to every client; clients
// that cannot keep up are dropped rather than allowed to block the
// pipeline.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Message types pushed over the stream.
const (
	TypeConnection   = "connection"
	TypeRunPhase     = "run:phase"
	TypeTableSkipped = "run:table_skipped"
	TypeRunComplete  = "run:complete"
	TypeRunFailed    = "run:failed"
)

// Message is the wire envelope for all pushed events.
type Message struct {
	Type      string      `json:"type"`
	RunID     string      `json:"run_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *slog.Logger
	running bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Start launches the hub loop. Idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()
	go h.run()
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()
	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", "clients", count)

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer, drop it.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to every connected client. Marshal errors
// are logged and dropped; progress delivery is best effort.
func (h *Hub) Broadcast(msg Message) {
	msg.Timestamp = time.Now().UTC()
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast message", "error", err, "type", msg.Type)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunPhase implements the orchestrator's Broadcaster interface
// alongside TableSkipped; the adapter in the app layer converts the
// orchestrator types to plain strings so this package stays free of
// pipeline imports.
func (h *Hub) RunPhase(runID, phase string) {
	h.Broadcast(Message{Type: TypeRunPhase, RunID: runID, Payload: map[string]string{"phase": phase}})
}

// TableSkipped pushes a skipped-table notice for a run.
func (h *Hub) TableSkipped(runID string, payload interface{}) {
	h.Broadcast(Message{Type: TypeTableSkipped, RunID: runID, Payload: payload})
}
