package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/anjiri1684/grading_portal/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type ContactResponse struct {
	User   UserResponse `json:"user"`
	Unread int          `json:"unread"`
}

type ConversationResponse struct {
	ID          string              `json:"id"`
	Peer        UserResponse        `json:"peer"`
	LastMessage *models.ChatMessage `json:"last_message,omitempty"`
	Unread      int                 `json:"unread"`
}

// unreadBySender counts the caller's unread messages per sender.
func unreadBySender(msgs []models.ChatMessage, userID string) map[string]int {
	out := make(map[string]int)
	for _, m := range msgs {
		if m.ReceiverID == userID && !m.IsRead {
			out[m.SenderID]++
		}
	}
	return out
}

// GetContacts lists who the caller can talk to: students see doctors and
// doctors see students.
func (h *Handler) GetContacts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := middleware.CurrentSession(c)

	role := models.RoleDoctor
	if sess.IsDoctor() {
		role = models.RoleStudent
	}
	users, err := h.Portal.Identity.UsersByRole(ctx, role)
	if err != nil {
		return h.fail(c, err)
	}
	msgs, err := h.Portal.Messages.Messages(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	unread := unreadBySender(msgs, sess.UserID)

	out := make([]ContactResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ContactResponse{User: toUserResponse(u), Unread: unread[u.ID]})
	}
	return c.JSON(out)
}

func (h *Handler) GetConversations(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := middleware.CurrentSession(c)

	rooms, err := h.Portal.Messages.Conversations(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	msgs, err := h.Portal.Messages.Messages(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	unread := unreadBySender(msgs, sess.UserID)

	out := make([]ConversationResponse, 0, len(rooms))
	for _, r := range rooms {
		peerID := r.Peer(sess.UserID)
		peer, err := h.Portal.Identity.UserByID(ctx, peerID)
		if err != nil && !errors.Is(err, services.ErrUserNotFound) {
			return h.fail(c, err)
		}
		if err != nil {
			peer = models.User{ID: peerID}
		}
		out = append(out, ConversationResponse{
			ID:          r.ID,
			Peer:        toUserResponse(peer),
			LastMessage: r.LastMessage,
			Unread:      unread[peerID],
		})
	}
	return c.JSON(out)
}

func (h *Handler) GetMessages(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	msgs, err := h.Portal.Messages.MessagesBetween(c.UserContext(), sess.UserID, c.Params("peerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(msgs)
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if !parseBody(c, &req) {
		return nil
	}
	sess := middleware.CurrentSession(c)
	msg, err := h.send(c.UserContext(), sess.UserID, c.Params("peerId"), req.Message)
	if errors.Is(err, errSelfMessage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *Handler) MarkMessagesRead(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	n, err := h.markRead(c.UserContext(), sess.UserID, c.Params("peerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

var errSelfMessage = errors.New("cannot send a message to yourself")

func (h *Handler) send(ctx context.Context, from, to, text string) (models.ChatMessage, error) {
	if from == to {
		return models.ChatMessage{}, errSelfMessage
	}
	if _, err := h.Portal.Identity.UserByID(ctx, to); err != nil {
		return models.ChatMessage{}, err
	}
	msg, err := h.Portal.Messages.SendMessage(ctx, models.ChatMessage{SenderID: from, ReceiverID: to, Message: text})
	if err != nil {
		return models.ChatMessage{}, err
	}
	if h.Hub != nil {
		h.Hub.Deliver(msg)
	}
	return msg, nil
}

func (h *Handler) markRead(ctx context.Context, reader, peer string) (int, error) {
	n, err := h.Portal.Messages.MarkRead(ctx, reader, peer)
	if err != nil {
		return 0, err
	}
	if n > 0 && h.Hub != nil {
		h.Hub.NotifyRead(reader, peer, n)
	}
	return n, nil
}

// wsConn serializes writes from the hub and the read loop.
type wsConn struct {
	mu sync.Mutex
	*websocketcontrib.Conn
}

func (w *wsConn) WriteJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(v)
}

type wsPayload struct {
	Type       string `json:"type"`
	Token      string `json:"token,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	PeerID     string `json:"peer_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// sendRequest applies the same rules to a "message" frame as the REST
// endpoint applies to its body.
func (p wsPayload) sendRequest() (SendMessageRequest, error) {
	req := SendMessageRequest{Message: p.Message}
	if p.ReceiverID == "" {
		return req, errors.New("receiver_id is required")
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

// ServeWs authenticates with a first {"type":"auth"} frame, then accepts
// "message" and "read" frames until the client goes away.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	conn := &wsConn{Conn: c}

	var auth wsPayload
	if err := c.ReadJSON(&auth); err != nil || auth.Type != "auth" {
		h.Log.Warn("WebSocket auth failed: invalid or missing auth message", "error", err)
		_ = conn.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}
	claims, err := parseToken(auth.Token, h.JWTSecret)
	if err != nil {
		h.Log.Warn("WebSocket auth failed: invalid token", "error", err)
		_ = conn.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}
	sess, err := middleware.SessionFromClaims(claims)
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: sess.UserID, Conn: conn}
	h.Hub.Register(client)
	h.Log.Info("WebSocket client registered", "user_id", sess.UserID)
	defer func() {
		h.Hub.Unregister(client)
		c.Close()
	}()

	ctx := context.Background()
	for {
		var msg wsPayload
		if err := c.ReadJSON(&msg); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				h.Log.Debug("WebSocket read error", "user_id", sess.UserID, "error", err)
			}
			return
		}

		switch msg.Type {
		case "message":
			req, err := msg.sendRequest()
			if err != nil {
				_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
				continue
			}
			sent, err := h.send(ctx, sess.UserID, msg.ReceiverID, req.Message)
			if err != nil {
				h.Log.Warn("Failed to save message", "user_id", sess.UserID, "error", err)
				_ = conn.WriteJSON(fiber.Map{"error": "Failed to send message"})
				continue
			}
			_ = conn.WriteJSON(websocket.Event{Type: "sent", Message: &sent})
		case "read":
			if _, err := h.markRead(ctx, sess.UserID, msg.PeerID); err != nil {
				h.Log.Warn("Failed to mark messages read", "user_id", sess.UserID, "error", err)
			}
		default:
			_ = conn.WriteJSON(fiber.Map{"error": "Unknown message type"})
		}
	}
}

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
