package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
)

const (
	questionsPerExam    = 10
	examDurationMinutes = 30
)

var ErrExamNotFound = errors.New("exam not found")

var examTitles = []string{
	"Human Anatomy Fundamentals",
	"Pathophysiology Basics",
	"Pharmacology Principles",
	"Medical Ethics & Law",
	"Clinical Diagnosis Methods",
	"Emergency Medicine Protocols",
}

type ExamCatalog struct {
	slots *storage.Slots
	bank  *QuestionBank
}

// SeedExams creates the fixed module sequence when the catalog is empty.
// Questions must be seeded first.
func (c *ExamCatalog) SeedExams(ctx context.Context) (bool, error) {
	seeded := false
	err := storage.UpdateList(ctx, c.slots, storage.KeyExams, func(existing []models.Exam) ([]models.Exam, error) {
		if len(existing) > 0 {
			return existing, nil
		}
		exams := make([]models.Exam, 0, len(examTitles))
		for i, title := range examTitles {
			questions, err := c.bank.RandomQuestions(ctx, questionsPerExam)
			if err != nil {
				return nil, err
			}
			exams = append(exams, models.Exam{
				ID:           fmt.Sprint(i + 1),
				Title:        title,
				Description:  "Comprehensive examination covering " + strings.ToLower(title),
				Questions:    questions,
				Duration:     examDurationMinutes,
				IsActive:     true,
				ModuleNumber: i + 1,
			})
		}
		seeded = true
		return exams, nil
	})
	return seeded, err
}

// Exams returns the catalog in module order.
func (c *ExamCatalog) Exams(ctx context.Context) ([]models.Exam, error) {
	return storage.LoadList[models.Exam](ctx, c.slots, storage.KeyExams)
}

func (c *ExamCatalog) ExamByID(ctx context.Context, id string) (models.Exam, error) {
	exams, err := c.Exams(ctx)
	if err != nil {
		return models.Exam{}, err
	}
	for _, e := range exams {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Exam{}, ErrExamNotFound
}
