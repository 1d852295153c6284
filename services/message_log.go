package services

import (
	"context"
	"sort"
	"time"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
	"github.com/google/uuid"
)

type MessageLog struct {
	slots *storage.Slots
	now   func() time.Time
}

// RoomID names the conversation between two users independent of order.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// SendMessage appends msg to the log and moves its conversation to the
// top of both participants' room lists.
func (l *MessageLog) SendMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = l.now().UTC()
	}
	msg.IsRead = false

	err := storage.UpdateList(ctx, l.slots, storage.KeyMessages, func(msgs []models.ChatMessage) ([]models.ChatMessage, error) {
		return append(msgs, msg), nil
	})
	if err != nil {
		return models.ChatMessage{}, err
	}

	err = storage.UpdateList(ctx, l.slots, storage.KeyRooms, func(rooms []models.ChatRoom) ([]models.ChatRoom, error) {
		id := RoomID(msg.SenderID, msg.ReceiverID)
		last := msg
		for i := range rooms {
			if rooms[i].ID == id {
				rooms[i].LastMessage = &last
				rooms[i].UpdatedAt = msg.Timestamp
				return rooms, nil
			}
		}
		participants := []string{msg.SenderID, msg.ReceiverID}
		sort.Strings(participants)
		return append(rooms, models.ChatRoom{
			ID:           id,
			Participants: participants,
			LastMessage:  &last,
			UpdatedAt:    msg.Timestamp,
		}), nil
	})
	if err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}

func (l *MessageLog) Messages(ctx context.Context) ([]models.ChatMessage, error) {
	return storage.LoadList[models.ChatMessage](ctx, l.slots, storage.KeyMessages)
}

// MessagesBetween returns the conversation of a and b, oldest first.
func (l *MessageLog) MessagesBetween(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	all, err := l.Messages(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, 0)
	for _, m := range all {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// MarkRead flags every unread message from peer to reader as read and
// returns how many changed.
func (l *MessageLog) MarkRead(ctx context.Context, reader, peer string) (int, error) {
	changed := 0
	err := storage.UpdateList(ctx, l.slots, storage.KeyMessages, func(msgs []models.ChatMessage) ([]models.ChatMessage, error) {
		for i := range msgs {
			if msgs[i].SenderID == peer && msgs[i].ReceiverID == reader && !msgs[i].IsRead {
				msgs[i].IsRead = true
				changed++
			}
		}
		return msgs, nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (l *MessageLog) UnreadCount(ctx context.Context, userID string) (int, error) {
	all, err := l.Messages(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range all {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// Conversations lists the rooms userID takes part in, most recent first.
func (l *MessageLog) Conversations(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	rooms, err := storage.LoadList[models.ChatRoom](ctx, l.slots, storage.KeyRooms)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatRoom, 0)
	for _, r := range rooms {
		if r.Has(userID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
