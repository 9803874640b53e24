package realtime

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

// ChangeEvent is pushed to clients subscribed to a table. Delivery is
// at-least-once and unordered: consumers must re-query and recompute their
// derived view state, never patch it incrementally.
type ChangeEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"` // insert | update | delete
	ID     string `json:"id,omitempty"`
}

// connection represents a single websocket client
type connection struct {
	userID int64
	send   chan []byte
	tables map[string]bool // subscribed table names
}

// Hub manages change-feed subscriptions across all connected clients
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]bool
}

func NewHub() *Hub {
	return &Hub{connections: make(map[*connection]bool)}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c] {
		delete(h.connections, c)
		close(c.send)
	}
}

func (h *Hub) subscribe(c *connection, table string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.tables[table] = true
}

func (h *Hub) unsubscribe(c *connection, table string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.tables, table)
}

// Publish fans a change event out to every client subscribed to the table.
// Slow clients are skipped rather than blocking the writer.
func (h *Hub) Publish(table, action, id string) {
	data, err := json.Marshal(ChangeEvent{Table: table, Action: action, ID: id})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		if c.tables[table] {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}
