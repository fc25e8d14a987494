package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rachita-nanda/social-media-performance-analytics/utils"
)

// writeTimeout is the deadline for a single write to a client.
const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RunNotice is the JSON envelope broadcast to clients when a pipeline run
// finishes.
type RunNotice struct {
	RunID            string    `json:"run_id"`
	Status           string    `json:"status"`
	RecordsProcessed int       `json:"records_processed"`
	EntitiesScored   int       `json:"entities_scored"`
	DurationSeconds  float64   `json:"duration_seconds"`
	FinishedAt       time.Time `json:"finished_at"`
}

// client is one subscribed connection. The mutex serializes writes:
// gorilla/websocket allows at most one concurrent writer per connection,
// and broadcasts may arrive from concurrent callers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks subscribed websocket clients and pushes a RunNotice to all of
// them after every pipeline run. Dashboards subscribe to /ws and refetch
// the results API when a notice arrives.
type Hub struct {
	logger *utils.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// HandleConnections upgrades the HTTP request to a websocket and keeps the
// client subscribed until it disconnects.
func (h *Hub) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Websocket client subscribed (%d connected)", count)

	// Clients only listen; the read loop exists to detect disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(c)
				return
			}
		}
	}()
}

// Broadcast sends the notice to every subscribed client, dropping clients
// whose writes fail. Safe for concurrent callers.
func (h *Hub) Broadcast(notice RunNotice) {
	payload, err := json.Marshal(notice)
	if err != nil {
		h.logger.Error("Could not encode run notice: %v", err)
		return
	}

	h.mu.Lock()
	subscribers := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		subscribers = append(subscribers, c)
	}
	h.mu.Unlock()

	for _, c := range subscribers {
		if err := c.write(payload); err != nil {
			h.remove(c)
		}
	}
}

// Close disconnects every subscribed client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.conn.Close()
	}
	h.mu.Unlock()
}
