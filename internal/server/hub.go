package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
)

type (
	// Hub fans progress changes out to the WebSocket clients watching each
	// user's onboarding
	Hub struct {
		logger  *slog.Logger
		mu      sync.Mutex
		clients map[string]map[*Client]struct{}
	}

	// Client is one WebSocket connection subscribed to a single user
	Client struct {
		hub    *Hub
		userID string
		conn   *websocket.Conn
		send   chan []byte
		once   sync.Once
	}

	// Message is the envelope of every frame sent to clients
	Message struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	wsBufferSize   = 1024
	sendBufferSize = 32

	MessageView     = "view"
	MessageProgress = "progress"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: map[string]map[*Client]struct{}{},
	}
}

// Publish sends c to every client of c.UserID. Slow clients drop frames
// rather than block the orchestrator.
func (h *Hub) Publish(c orchestrator.Change) {
	data, err := json.Marshal(Message{Type: MessageProgress, Data: c})
	if err != nil {
		h.logger.Error("Failed to marshal progress", log.UserID(c.UserID), log.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[c.UserID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("Dropping progress frame for slow client", log.UserID(c.UserID))
		}
	}
}

// Count returns the number of clients watching userID.
func (h *Hub) Count(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Serve upgrades the request and streams progress for userID, starting with
// the initial view.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string, initial orchestrator.View) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", log.Error(err))
		return
	}
	client := &Client{
		hub:    h,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	if data, err := json.Marshal(Message{Type: MessageView, Data: initial}); err == nil {
		client.send <- data
	}
	h.register(client)
	go client.run()
}

// CloseAll closes every open connection.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = map[*Client]struct{}{}
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Close unregisters the client and closes its connection.
func (c *Client) Close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	})
}

func (c *Client) run() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	closed := make(chan struct{})
	go c.readMessages(closed)

	for {
		select {
		case <-closed:
			return
		case data := <-c.send:
			if !c.write(websocket.TextMessage, data) {
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

// readMessages discards client frames; it only notices when the peer goes
// away.
func (c *Client) readMessages(closed chan struct{}) {
	defer close(closed)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) write(kind int, data []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(kind, data); err != nil {
		c.hub.logger.Debug("WebSocket write failed", log.UserID(c.userID), log.Error(err))
		return false
	}
	return true
}
