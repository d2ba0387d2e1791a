package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.lessons/pkg/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Message is the envelope sent to feed clients.
type Message struct {
	Kind      string             `json:"kind"` // "dashboard" or "event"
	Event     *RunEvent          `json:"event,omitempty"`
	Dashboard *DashboardSnapshot `json:"dashboard,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub streams collector events to WebSocket clients. Slow clients
// miss events instead of blocking the collector.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	dashboard *Dashboard
	upgrader  websocket.Upgrader
	logger    logging.Logger
	closed    bool
}

// NewHub creates a hub fed by collector. allowOrigin decides which
// browser origins may connect; nil allows all.
func NewHub(collector *EventCollector, logger logging.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	h := &Hub{
		clients:   make(map[*client]struct{}),
		dashboard: BuildDashboard(collector),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     allowOrigin,
		},
		logger: logger,
	}
	collector.OnEvent(func(event RunEvent) {
		h.dashboard.UpdateFromEvent(event)
		ev := event
		h.broadcast(Message{Kind: "event", Event: &ev})
	})
	return h
}

// Dashboard returns the current dashboard snapshot.
func (h *Hub) Dashboard() DashboardSnapshot {
	return h.dashboard.Snapshot()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the
// client disconnects. The first message is the dashboard snapshot.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.ErrorField(err))
		return
	}

	c := &client{conn: conn, send: make(chan Message, sendBuffer)}
	snap := h.dashboard.Snapshot()
	c.send <- Message{Kind: "dashboard", Dashboard: &snap}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("feed client connected", logging.StringField("remote", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
