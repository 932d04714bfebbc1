// Package stream pushes notifications to users over WebSocket
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message is the frame written to the socket
type Message struct {
	Type      string                     `json:"type"`
	Data      *notification.Notification `json:"data,omitempty"`
	Timestamp int64                      `json:"timestamp"`
}

// Config tunes the hub's keepalive. Zero values use the defaults.
type Config struct {
	PingPeriod     time.Duration
	PongWait       time.Duration
	AllowedOrigins []string
}

type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// offer queues payload without blocking. It reports false when the buffer
// is full; frames for a closed client are discarded.
func (c *client) offer(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Hub tracks the open connections of every user
type Hub struct {
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	pongWait   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

var _ outbound.NotificationPusher = (*Hub)(nil)

// NewHub creates an empty hub
func NewHub(cfg Config, logger *zap.Logger) *Hub {
	if cfg.PongWait <= 0 {
		cfg.PongWait = pongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = (cfg.PongWait * 9) / 10
	}

	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	allowAll := len(cfg.AllowedOrigins) == 0
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[o] = struct{}{}
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowAll {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		pingPeriod: cfg.PingPeriod,
		pongWait:   cfg.PongWait,
		logger:     logger.Named("notification-hub"),
		clients:    make(map[uuid.UUID]map[*client]struct{}),
	}
}

// Serve upgrades the request and streams userID's notifications until the
// peer goes away. It blocks for the lifetime of the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		return conn.Close()
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.writePump(c)
	}()

	h.enqueue(c, Message{Type: "hello", Timestamp: time.Now().UnixMilli()})
	h.readPump(c)
	return nil
}

// Push delivers n to every open connection of userID. Slow connections
// whose buffer is full miss the frame; the notification stays stored.
func (h *Hub) Push(userID uuid.UUID, n *notification.Notification) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	msg := Message{Type: "notification", Data: n, Timestamp: time.Now().UnixMilli()}
	for _, c := range targets {
		h.enqueue(c, msg)
	}
}

// Connections returns how many sockets userID has open
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Close disconnects everyone and waits for the writers to exit
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for userID, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, userID)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}

	h.logger.Debug("Stream opened", zap.String("user_id", c.userID.String()), zap.Int("connections", len(set)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()

	c.close()
	h.logger.Debug("Stream closed", zap.String("user_id", c.userID.String()))
}

func (h *Hub) enqueue(c *client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode stream message", zap.Error(err))
		return
	}

	if !c.offer(payload) {
		h.logger.Warn("Dropping stream message for slow client", zap.String("user_id", c.userID.String()))
	}
}

// readPump keeps the read deadline moving on pongs and detects disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("Stream read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump is the only writer of the connection
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
