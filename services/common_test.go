package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
)

type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), step: time.Millisecond}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestPortal(tb testing.TB) (*Portal, *storage.Slots, *stepClock) {
	tb.Helper()
	slots := storage.New(storage.NewMemoryBackend())
	clock := newStepClock()
	p, err := Open(context.Background(), slots, Options{
		Now:  clock.Now,
		Rand: rand.New(rand.NewSource(42)),
	})
	if err != nil {
		tb.Fatalf("open portal: %v", err)
	}
	return p, slots, clock
}

func registerStudent(tb testing.TB, p *Portal, email string) models.User {
	tb.Helper()
	sid := "S-" + email
	u, err := p.Identity.Register(context.Background(), RegisterInput{
		Email:     email,
		Name:      "Student " + email,
		Role:      models.RoleStudent,
		StudentID: &sid,
	})
	if err != nil {
		tb.Fatalf("register %s: %v", email, err)
	}
	return u
}

// perfectAnswers returns the answer key of exam.
func perfectAnswers(exam models.Exam) []int {
	answers := make([]int, len(exam.Questions))
	for i, q := range exam.Questions {
		answers[i] = q.CorrectAnswer
	}
	return answers
}

// wrongAnswers returns an answer that misses every question of exam.
func wrongAnswers(exam models.Exam) []int {
	answers := make([]int, len(exam.Questions))
	for i, q := range exam.Questions {
		answers[i] = (q.CorrectAnswer + 1) % optionsPerQuestion
	}
	return answers
}
