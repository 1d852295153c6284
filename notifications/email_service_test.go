package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
)

func TestNewNotifier_Unconfigured(t *testing.T) {
	n := NewNotifier("", "", "", logger.Nop())
	if _, ok := n.(Noop); !ok {
		t.Fatalf("expected Noop notifier, got %T", n)
	}
}

func TestBrevoService_GradePosted(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewNotifier("key-123", "portal@alquds.edu", "Portal", logger.Nop()).(*BrevoService)
	svc.endpoint = srv.URL

	feedback := "Good <work>"
	svc.GradePosted(
		models.User{Name: "Sara", Email: "sara@students.alquds.edu"},
		models.Grade{Title: "Lab 1", Type: models.GradeAssignment, Score: 9, MaxScore: 10, Feedback: &feedback, GradedBy: "Dr. Omar"},
		90,
	)

	if apiKey != "key-123" {
		t.Fatalf("expected api key header, got %q", apiKey)
	}
	if len(got.To) != 1 || got.To[0]["email"] != "sara@students.alquds.edu" {
		t.Fatalf("unexpected recipients: %+v", got.To)
	}
	if got.Subject != "New grade: Lab 1" {
		t.Fatalf("unexpected subject %q", got.Subject)
	}
	if !strings.Contains(got.HTMLContent, "9/10") || !strings.Contains(got.HTMLContent, "90%") {
		t.Fatalf("grade missing from body: %s", got.HTMLContent)
	}
	if strings.Contains(got.HTMLContent, "<work>") {
		t.Fatalf("feedback was not escaped: %s", got.HTMLContent)
	}
}

func TestBrevoService_RejectsBadRecipient(t *testing.T) {
	svc := NewNotifier("k", "a@b.c", "n", logger.Nop()).(*BrevoService)
	if err := svc.send(context.Background(), "not-an-email", "", "s", "b"); err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}
