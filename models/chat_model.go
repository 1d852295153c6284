package models

import "time"

type ChatMessage struct {
	ID         string    `json:"id" validate:"required"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	IsRead     bool      `json:"isRead"`
}

// ChatRoom tracks the latest message of a two-person conversation.
type ChatRoom struct {
	ID           string       `json:"id" validate:"required"`
	Participants []string     `json:"participants" validate:"len=2"`
	LastMessage  *ChatMessage `json:"lastMessage,omitempty"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (r ChatRoom) Has(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Peer returns the other participant.
func (r ChatRoom) Peer(userID string) string {
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
