package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
	"github.com/google/uuid"
)

var ErrGradeNotFound = errors.New("grade not found")

type GradeLedger struct {
	slots *storage.Slots
	now   func() time.Time
}

// Percentage rounds score/maxScore to a whole percent. A grade without
// a positive maxScore has no meaningful percentage and yields 0.
func Percentage(g models.Grade) int {
	return int(math.Round(ratio(g) * 100))
}

func ratio(g models.Grade) float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return g.Score / g.MaxScore
}

// UpsertGrade replaces the grade with the same id in place, or appends
// it. created reports which one happened.
func (l *GradeLedger) UpsertGrade(ctx context.Context, grade models.Grade) (saved models.Grade, created bool, err error) {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.GradedAt.IsZero() {
		grade.GradedAt = l.now().UTC()
	}
	err = storage.UpdateList(ctx, l.slots, storage.KeyGrades, func(grades []models.Grade) ([]models.Grade, error) {
		for i := range grades {
			if grades[i].ID == grade.ID {
				grades[i] = grade
				return grades, nil
			}
		}
		created = true
		return append(grades, grade), nil
	})
	if err != nil {
		return models.Grade{}, false, err
	}
	return grade, created, nil
}

type GradeUpdate struct {
	Type     *models.GradeType
	Title    *string
	Score    *float64
	MaxScore *float64
	Feedback *string
}

// UpdateGrade applies the non-nil fields of upd to an existing grade.
func (l *GradeLedger) UpdateGrade(ctx context.Context, id string, upd GradeUpdate) (models.Grade, error) {
	var updated models.Grade
	err := storage.UpdateList(ctx, l.slots, storage.KeyGrades, func(grades []models.Grade) ([]models.Grade, error) {
		for i := range grades {
			if grades[i].ID != id {
				continue
			}
			g := grades[i]
			if upd.Type != nil {
				g.Type = *upd.Type
			}
			if upd.Title != nil {
				g.Title = *upd.Title
			}
			if upd.Score != nil {
				g.Score = *upd.Score
			}
			if upd.MaxScore != nil {
				g.MaxScore = *upd.MaxScore
			}
			if upd.Feedback != nil {
				g.Feedback = upd.Feedback
			}
			grades[i] = g
			updated = g
			return grades, nil
		}
		return nil, ErrGradeNotFound
	})
	if err != nil {
		return models.Grade{}, err
	}
	return updated, nil
}

func (l *GradeLedger) Grades(ctx context.Context) ([]models.Grade, error) {
	return storage.LoadList[models.Grade](ctx, l.slots, storage.KeyGrades)
}

func (l *GradeLedger) GradesFor(ctx context.Context, studentID string) ([]models.Grade, error) {
	all, err := l.Grades(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Grade, 0)
	for _, g := range all {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (l *GradeLedger) GradeByID(ctx context.Context, id string) (models.Grade, error) {
	all, err := l.Grades(ctx)
	if err != nil {
		return models.Grade{}, err
	}
	for _, g := range all {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Grade{}, ErrGradeNotFound
}
