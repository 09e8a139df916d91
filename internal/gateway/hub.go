// Package gateway fans out per-instrument summaries to WebSocket
// clients. Dashboards connect, receive the latest summary for every
// watched instrument, then get each new cycle's summaries as they are
// produced. Slow clients are dropped rather than allowed to backpressure
// the monitor loop.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stockwatch/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The gateway serves local dashboards; origin checks are handled
	// upstream when the port is exposed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub manages WebSocket clients and summary fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry
}

type latestEntry struct {
	Data json.RawMessage
	TS   time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		latest:  make(map[string]latestEntry),
	}
}

// Broadcast sends one summary envelope to every connected client and
// records it as the latest state for the instrument. Clients whose send
// queue is full miss the message.
func (h *Hub) Broadcast(s *model.Summary) {
	envelope, err := json.Marshal(map[string]interface{}{
		"type":    "summary",
		"code":    s.Code,
		"data":    s,
		"ts":      s.At.Format(time.RFC3339Nano),
		"alerted": s.Alerted(),
	})
	if err != nil {
		log.Printf("[gateway] marshal summary: %v", err)
		return
	}

	h.mu.Lock()
	h.latest[s.Code] = latestEntry{Data: envelope, TS: s.At}
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
		}
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

// removeClient unregisters a client; safe to call more than once. The
// send channel stays open: closing done tells writePump to finish, so
// goroutines still holding the client cannot hit a closed channel.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.done)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// LatestAll returns a snapshot of the latest envelope per instrument.
func (h *Hub) LatestAll() map[string]json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[string]json.RawMessage, len(h.latest))
	for k, v := range h.latest {
		cp[k] = v.Data
	}
	return cp
}
