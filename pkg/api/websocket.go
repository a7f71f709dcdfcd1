package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSMessage is one event pushed to connected run-progress clients.
type WSMessage struct {
	Type         string `json:"type"`
	BrandSlug    string `json:"brand_slug,omitempty"`
	ScenarioSlug string `json:"scenario_slug,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// WSHub fans run lifecycle events out to every connected WebSocket client,
// broadcasting run lifecycle events to every connected client.
type WSHub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan WSMessage
	mu         sync.RWMutex
}

// NewWSHub constructs an unstarted hub; call Run in its own goroutine.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan WSMessage, 256),
	}
}

// Run drains the register/unregister/broadcast channels until the process
// exits; there is no Stop because the hub lives for the server's lifetime.
func (h *WSHub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteJSON(msg); err != nil {
					go func(c *websocket.Conn) { h.unregister <- c }(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues msgType for delivery to every connected client.
func (h *WSHub) Broadcast(msgType, brandSlug, scenarioSlug string, data any) {
	h.broadcast <- WSMessage{Type: msgType, BrandSlug: brandSlug, ScenarioSlug: scenarioSlug, Data: data}
}

// wsHandler upgrades GET /api/v1/ws to a WebSocket and registers the
// connection with the hub.
func (s *Server) wsHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("api: websocket upgrade failed", "error", err)
		return
	}
	s.hub.register <- conn

	_ = conn.WriteJSON(WSMessage{Type: "connected"})

	go func() {
		defer func() { s.hub.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
