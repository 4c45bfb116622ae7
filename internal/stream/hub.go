package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kyaraz/halkaarz/internal/model"
)

// sendBufferSize is the per-client backlog. A client that falls this far
// behind is disconnected rather than allowed to stall the broadcast.
const sendBufferSize = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The mobile app connects without a browser origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans event frames out to every connected WebSocket client.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	sent    atomic.Int64
	dropped atomic.Int64
}

// HubStats contains runtime statistics.
type HubStats struct {
	Clients     int
	FramesSent  int64
	SlowDropped int64
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeWS upgrades the request and serves the connection until the client
// disconnects. It blocks, which is fine inside an http handler.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait),
		)
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("stream client connected", "remote", r.RemoteAddr, "clients", n)

	go c.writePump()
	c.readPump()
}

// Broadcast marshals the event once and queues it to every client. Clients
// with a full backlog are dropped.
func (h *Hub) Broadcast(ev model.Event) {
	data, err := json.Marshal(newFrame(ev))
	if err != nil {
		h.logger.Error("marshal stream frame", "type", ev.Type, "error", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
			h.sent.Add(1)
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.dropped.Add(1)
		h.logger.Warn("dropping slow stream client")
		h.remove(c)
	}
}

// remove takes the client out of the hub and closes its send channel. The
// channel close is done under the lock so it cannot race a Broadcast send.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	c.closeOnce.Do(func() { close(c.send) })
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns current statistics.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()

	return HubStats{
		Clients:     n,
		FramesSent:  h.sent.Load(),
		SlowDropped: h.dropped.Load(),
	}
}

// Close disconnects every client and rejects new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.closeOnce.Do(func() { close(c.send) })
	}
	h.mu.Unlock()

	h.logger.Info("stream hub closed")
}
