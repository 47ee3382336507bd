package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// Hub fans notified signals out to connected dashboard clients.
// Broadcast-only: clients subscribe by connecting, nothing more.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*streamClient]bool
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty stream hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*streamClient]bool),
	}
}

// BroadcastSignal sends one signal envelope to every connected
// client. Slow clients are skipped, not waited on.
func (h *Hub) BroadcastSignal(sig model.Signal) {
	envelope, err := json.Marshal(map[string]any{
		"type":   "signal",
		"signal": sig,
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
		}
	}
}

// ClientCount returns the number of connected stream clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the peer until it
// disconnects.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &streamClient{
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	log.Printf("[stream] client connected (%d total)", h.ClientCount())

	go client.writePump()
	client.readPump(h)
	return nil
}

func (h *Hub) unregister(c *streamClient) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump discards inbound frames; it exists to detect disconnects.
func (c *streamClient) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
