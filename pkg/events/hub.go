package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pantrypal/pkg/logger"
)

// Event types pushed to connected clients
const (
	TypeItemAdded     = "item_added"
	TypeItemUpdated   = "item_updated"
	TypeItemDeleted   = "item_deleted"
	TypeExpiryWarning = "expiry_warning"
)

// Event is one message on the hub. Events are scoped to a user: only that
// user's connections receive them.
type Event struct {
	Type    string    `json:"type"`
	UserID  string    `json:"-"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 54 * time.Second
	pongWait       = 60 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the router level
	},
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub fans events out to each user's connected websocket clients
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan *Event
	clients    map[*client]bool
	active     atomic.Int64
	log        *logger.Logger
}

// NewHub creates an event hub; call Run before serving connections
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *Event, 64),
		clients:    make(map[*client]bool),
		log:        logger.Get().With("component", "events"),
	}
}

// Run owns the client set; it exits when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.active.Store(0)
			return
		case c := <-h.register:
			h.clients[c] = true
			h.active.Add(1)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				close(c.send)
				delete(h.clients, c)
				h.active.Add(-1)
			}
		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("failed to marshal event", "type", ev.Type, "error", err)
				continue
			}
			for c := range h.clients {
				if c.userID != ev.UserID {
					continue
				}
				select {
				case c.send <- data:
				default:
					// Slow consumer, drop the connection
					close(c.send)
					delete(h.clients, c)
					h.active.Add(-1)
				}
			}
		}
	}
}

// ActiveConnections reports how many websocket clients are attached
func (h *Hub) ActiveConnections() int {
	return int(h.active.Load())
}

// Publish queues an event for delivery. Never blocks; events are dropped
// when the hub is saturated.
func (h *Hub) Publish(ev *Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("event hub saturated, dropping event", "type", ev.Type)
	}
}

// ServeWS upgrades the request and attaches the connection to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump discards client messages and detects closed connections
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

// writePump delivers hub messages and keeps the connection alive with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
