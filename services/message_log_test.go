package services

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/grading_portal/models"
)

func TestRoomID_OrderIndependent(t *testing.T) {
	if RoomID("b", "a") != RoomID("a", "b") {
		t.Fatal("room id depends on argument order")
	}
	if RoomID("a", "b") != "a:b" {
		t.Fatalf("unexpected room id %q", RoomID("a", "b"))
	}
}

func TestMessagesBetween_SymmetricAndSorted(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	send := func(from, to, text string, at time.Time) {
		t.Helper()
		if _, err := p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: from, ReceiverID: to, Message: text, Timestamp: at}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	send("doc", "stu", "third", base.Add(3*time.Minute))
	send("stu", "doc", "first", base.Add(1*time.Minute))
	send("doc", "other", "elsewhere", base.Add(2*time.Minute))
	send("doc", "stu", "second", base.Add(2*time.Minute))

	ab, err := p.Messages.MessagesBetween(ctx, "doc", "stu")
	if err != nil {
		t.Fatalf("MessagesBetween: %v", err)
	}
	ba, _ := p.Messages.MessagesBetween(ctx, "stu", "doc")
	if len(ab) != 3 || len(ba) != 3 {
		t.Fatalf("expected 3 messages both ways, got %d and %d", len(ab), len(ba))
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if ab[i].Message != want[i] || ba[i].ID != ab[i].ID {
			t.Fatalf("position %d: got %q / %q", i, ab[i].Message, ba[i].Message)
		}
	}
}

func TestSendMessage_DefaultsAndRooms(t *testing.T) {
	ctx := context.Background()
	p, _, clock := newTestPortal(t)

	m, err := p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: "a", ReceiverID: "b", Message: "hi", IsRead: true})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == "" || m.Timestamp.IsZero() || m.IsRead {
		t.Fatalf("unexpected defaults %+v", m)
	}

	clock.Advance(time.Minute)
	p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: "c", ReceiverID: "a", Message: "later"})
	clock.Advance(time.Minute)
	p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: "b", ReceiverID: "a", Message: "reply"})

	rooms, err := p.Messages.Conversations(ctx, "a")
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	if rooms[0].ID != RoomID("a", "b") || rooms[0].LastMessage == nil || rooms[0].LastMessage.Message != "reply" {
		t.Fatalf("most recent room should be a:b with reply, got %+v", rooms[0])
	}
	if rooms[1].Peer("a") != "c" {
		t.Fatalf("expected second room with c, got %+v", rooms[1])
	}
	if none, _ := p.Messages.Conversations(ctx, "z"); len(none) != 0 {
		t.Fatalf("expected no rooms for z, got %d", len(none))
	}
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)
	for i := 0; i < 3; i++ {
		p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: "doc", ReceiverID: "stu", Message: "m"})
	}
	p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: "stu", ReceiverID: "doc", Message: "r"})
	p.Messages.SendMessage(ctx, models.ChatMessage{SenderID: "x", ReceiverID: "stu", Message: "y"})

	if n, _ := p.Messages.UnreadCount(ctx, "stu"); n != 4 {
		t.Fatalf("unread before = %d, want 4", n)
	}
	changed, err := p.Messages.MarkRead(ctx, "stu", "doc")
	if err != nil || changed != 3 {
		t.Fatalf("MarkRead changed %d err=%v", changed, err)
	}
	if n, _ := p.Messages.UnreadCount(ctx, "stu"); n != 1 {
		t.Fatalf("unread after = %d, want 1", n)
	}
	if n, _ := p.Messages.UnreadCount(ctx, "doc"); n != 1 {
		t.Fatalf("doctor's unread changed: %d", n)
	}
	if again, _ := p.Messages.MarkRead(ctx, "stu", "doc"); again != 0 {
		t.Fatalf("second MarkRead changed %d", again)
	}
}
