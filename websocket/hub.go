package websocket

import (
	"context"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID string
	Conn   Conn
}

// Event is what connected clients receive.
type Event struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Reader  string              `json:"reader_id,omitempty"`
	Count   int                 `json:"count,omitempty"`
}

type delivery struct {
	to    string
	event Event
}

// Hub keeps one live connection per user and pushes chat events to them.
type Hub struct {
	clients    map[string]Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	online     chan chan []string
	done       chan struct{}
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery),
		online:     make(chan chan []string),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Once Run has returned the senders do nothing and a late client is closed.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Conn.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Deliver pushes a new message to its receiver, if connected.
func (h *Hub) Deliver(msg models.ChatMessage) {
	h.send(delivery{to: msg.ReceiverID, event: Event{Type: "message", Message: &msg}})
}

// NotifyRead tells peer that reader has read count of their messages.
func (h *Hub) NotifyRead(reader, peer string, count int) {
	h.send(delivery{to: peer, event: Event{Type: "read", Reader: reader, Count: count}})
}

func (h *Hub) send(d delivery) {
	select {
	case h.broadcast <- d:
	case <-h.done:
	}
}

// Online lists the users with a live connection.
func (h *Hub) Online() []string {
	reply := make(chan []string, 1)
	select {
	case h.online <- reply:
		return <-reply
	case <-h.done:
		return nil
	}
}

// Run serves the hub until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, conn := range h.clients {
				conn.Close()
				delete(h.clients, id)
			}
			return
		case client := <-h.register:
			h.log.Debug("Client registered", "user_id", client.UserID)
			if old, ok := h.clients[client.UserID]; ok && old != client.Conn {
				old.Close()
			}
			h.clients[client.UserID] = client.Conn
		case client := <-h.unregister:
			h.log.Debug("Client unregistered", "user_id", client.UserID)
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
		case d := <-h.broadcast:
			conn, ok := h.clients[d.to]
			if !ok {
				continue
			}
			if err := conn.WriteJSON(d.event); err != nil {
				h.log.Warn("Error sending event to client", "user_id", d.to, "error", err)
				conn.Close()
				delete(h.clients, d.to)
			}
		case reply := <-h.online:
			ids := make([]string, 0, len(h.clients))
			for id := range h.clients {
				ids = append(ids, id)
			}
			reply <- ids
		}
	}
}
