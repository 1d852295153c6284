package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anjiri1684/grading_portal/models"
)

func TestLoadList_EmptySlot(t *testing.T) {
	s := New(NewMemoryBackend())
	users, err := LoadList[models.User](context.Background(), s, KeyUsers)
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}
}

func TestSaveAndLoadList(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	grades := []models.Grade{
		{ID: "g1", StudentID: "s1", Type: models.GradeExam, Score: 8, MaxScore: 10},
		{ID: "g2", StudentID: "s2", Type: models.GradeProject, Score: 40, MaxScore: 50},
	}
	if err := SaveList(ctx, s, KeyGrades, grades); err != nil {
		t.Fatalf("SaveList: %v", err)
	}

	got, err := LoadList[models.Grade](ctx, s, KeyGrades)
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if len(got) != 2 || got[0].ID != "g1" || got[1].ID != "g2" {
		t.Fatalf("unexpected grades: %+v", got)
	}
}

func TestLoadList_CorruptJSON(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	_ = b.Put(ctx, KeyAttempts, []byte(`[{"id": "a1", "examId": `))
	s := New(b)

	_, err := LoadList[models.ExamAttempt](ctx, s, KeyAttempts)
	if !errors.Is(err, ErrCorruptSlot) {
		t.Fatalf("expected ErrCorruptSlot, got %v", err)
	}
	var cerr *CorruptSlotError
	if !errors.As(err, &cerr) || cerr.Key != KeyAttempts {
		t.Fatalf("expected CorruptSlotError for %s, got %v", KeyAttempts, err)
	}
}

func TestLoadList_SchemaMismatch(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"unknown field":       `[{"id":"1","question":"q","options":["a","b","c","d"],"correctAnswer":0,"category":"x","extra":1}]`,
		"wrong option count":  `[{"id":"1","question":"q","options":["a","b"],"correctAnswer":0,"category":"x"}]`,
		"answer out of range": `[{"id":"1","question":"q","options":["a","b","c","d"],"correctAnswer":7,"category":"x"}]`,
		"missing id":          `[{"question":"q","options":["a","b","c","d"],"correctAnswer":1,"category":"x"}]`,
		"wrong type":          `{"id":"1"}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			b := NewMemoryBackend()
			_ = b.Put(ctx, KeyQuestions, []byte(doc))
			_, err := LoadList[models.Question](ctx, New(b), KeyQuestions)
			if !errors.Is(err, ErrCorruptSlot) {
				t.Fatalf("expected ErrCorruptSlot, got %v", err)
			}
		})
	}
}

func TestLoadOne_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	u, err := LoadOne[models.User](ctx, s, KeySession)
	if err != nil || u != nil {
		t.Fatalf("expected empty session, got %+v err=%v", u, err)
	}

	if err := SaveOne(ctx, s, KeySession, models.User{ID: "1", Email: "a@students.alquds.edu", Role: models.RoleStudent}); err != nil {
		t.Fatalf("SaveOne: %v", err)
	}
	u, err = LoadOne[models.User](ctx, s, KeySession)
	if err != nil {
		t.Fatalf("LoadOne: %v", err)
	}
	if u == nil || u.ID != "1" {
		t.Fatalf("unexpected session user: %+v", u)
	}

	if err := s.Clear(ctx, KeySession); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	u, err = LoadOne[models.User](ctx, s, KeySession)
	if err != nil || u != nil {
		t.Fatalf("expected cleared session, got %+v err=%v", u, err)
	}
}

func TestUpdateList_SerializesWriters(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := UpdateList(ctx, s, KeyMessages, func(msgs []models.ChatMessage) ([]models.ChatMessage, error) {
				return append(msgs, models.ChatMessage{ID: "m"}), nil
			})
			if err != nil {
				t.Errorf("UpdateList: %v", err)
			}
		}()
	}
	wg.Wait()

	msgs, err := LoadList[models.ChatMessage](ctx, s, KeyMessages)
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if len(msgs) != writers {
		t.Fatalf("expected %d messages, got %d", writers, len(msgs))
	}
}

func TestUpdateList_ErrorLeavesSlotUntouched(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())
	_ = SaveList(ctx, s, KeyGrades, []models.Grade{{ID: "g1"}})

	boom := errors.New("boom")
	err := UpdateList(ctx, s, KeyGrades, func(g []models.Grade) ([]models.Grade, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := LoadList[models.Grade](ctx, s, KeyGrades)
	if len(got) != 1 {
		t.Fatalf("slot changed after failed update: %+v", got)
	}
}

func TestWrites_RejectInvalidItems(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())
	valid := models.ExamAttempt{ID: "a1", ExamID: "1", StudentID: "s1", Score: 50}
	if err := SaveList(ctx, s, KeyAttempts, []models.ExamAttempt{valid}); err != nil {
		t.Fatalf("SaveList: %v", err)
	}

	err := UpdateList(ctx, s, KeyAttempts, func(a []models.ExamAttempt) ([]models.ExamAttempt, error) {
		return append(a, models.ExamAttempt{ID: "a2", Score: 150}), nil
	})
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("UpdateList: expected ErrInvalidItem, got %v", err)
	}
	var ierr *InvalidItemError
	if !errors.As(err, &ierr) || ierr.Key != KeyAttempts || ierr.Index != 1 {
		t.Fatalf("expected InvalidItemError at index 1, got %v", err)
	}

	if err := SaveList(ctx, s, KeyAttempts, []models.ExamAttempt{{Score: 10}}); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("SaveList: expected ErrInvalidItem, got %v", err)
	}
	if err := SaveOne(ctx, s, KeySession, models.User{}); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("SaveOne: expected ErrInvalidItem, got %v", err)
	}

	got, err := LoadList[models.ExamAttempt](ctx, s, KeyAttempts)
	if err != nil {
		t.Fatalf("slot unreadable after refused writes: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("slot changed after refused writes: %+v", got)
	}
}
