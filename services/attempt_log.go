package services

import (
	"context"
	"math"
	"time"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
	"github.com/google/uuid"
)

type AttemptLog struct {
	slots *storage.Slots
	now   func() time.Time
}

// Score is the percentage of questions whose answer matches the key.
// Missing or unanswered positions never count.
func Score(exam models.Exam, answers []int) float64 {
	if len(exam.Questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range exam.Questions {
		if i < len(answers) && answers[i] != models.Unanswered && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(exam.Questions)) * 100
}

// RecordAttempt appends an attempt as given. Several attempts for the
// same exam and student are accepted.
func (l *AttemptLog) RecordAttempt(ctx context.Context, attempt models.ExamAttempt) (models.ExamAttempt, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = l.now().UTC()
	}
	err := storage.UpdateList(ctx, l.slots, storage.KeyAttempts, func(attempts []models.ExamAttempt) ([]models.ExamAttempt, error) {
		return append(attempts, attempt), nil
	})
	if err != nil {
		return models.ExamAttempt{}, err
	}
	return attempt, nil
}

// Submit scores answers against exam and records the resulting attempt.
func (l *AttemptLog) Submit(ctx context.Context, exam models.Exam, studentID string, answers []int, startedAt time.Time) (models.ExamAttempt, error) {
	normalized := make([]int, len(exam.Questions))
	for i := range normalized {
		normalized[i] = models.Unanswered
		if i < len(answers) {
			normalized[i] = answers[i]
		}
	}

	now := l.now()
	minutes := 0
	if !startedAt.IsZero() && now.After(startedAt) {
		minutes = int(math.Round(now.Sub(startedAt).Minutes()))
	}

	return l.RecordAttempt(ctx, models.ExamAttempt{
		ExamID:      exam.ID,
		StudentID:   studentID,
		Answers:     normalized,
		Score:       Score(exam, normalized),
		CompletedAt: now.UTC(),
		Duration:    minutes,
	})
}

func (l *AttemptLog) Attempts(ctx context.Context) ([]models.ExamAttempt, error) {
	return storage.LoadList[models.ExamAttempt](ctx, l.slots, storage.KeyAttempts)
}

// AttemptsFor returns a student's attempts in the order they were recorded.
func (l *AttemptLog) AttemptsFor(ctx context.Context, studentID string) ([]models.ExamAttempt, error) {
	all, err := l.Attempts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExamAttempt, 0)
	for _, a := range all {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}
