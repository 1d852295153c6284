package services

import (
	"context"
	"fmt"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
)

const (
	seedQuestionCount  = 100
	optionsPerQuestion = 4
)

var questionCategories = []string{"Biology", "Chemistry", "Physics", "Mathematics", "Anatomy"}

type randSource interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type QuestionBank struct {
	slots *storage.Slots
	rng   randSource
}

// SeedQuestions fills an empty bank with the generated question pool.
// It reports whether anything was written.
func (b *QuestionBank) SeedQuestions(ctx context.Context) (bool, error) {
	seeded := false
	err := storage.UpdateList(ctx, b.slots, storage.KeyQuestions, func(existing []models.Question) ([]models.Question, error) {
		if len(existing) > 0 {
			return existing, nil
		}
		seeded = true
		return generateQuestions(b.rng, seedQuestionCount), nil
	})
	return seeded, err
}

func generateQuestions(rng randSource, n int) []models.Question {
	questions := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		options := make([]string, optionsPerQuestion)
		for o := range options {
			options[o] = fmt.Sprintf("Option %c for question %d", 'A'+o, i)
		}
		questions = append(questions, models.Question{
			ID:            fmt.Sprint(i),
			Question:      fmt.Sprintf("Sample medical question %d: What is the correct answer for this medical scenario?", i),
			Options:       options,
			CorrectAnswer: rng.Intn(optionsPerQuestion),
			Category:      questionCategories[rng.Intn(len(questionCategories))],
		})
	}
	return questions
}

func (b *QuestionBank) Questions(ctx context.Context) ([]models.Question, error) {
	return storage.LoadList[models.Question](ctx, b.slots, storage.KeyQuestions)
}

// RandomQuestions shuffles the whole bank and keeps the first n.
// Separate calls sample independently.
func (b *QuestionBank) RandomQuestions(ctx context.Context, n int) ([]models.Question, error) {
	all, err := b.Questions(ctx)
	if err != nil {
		return nil, err
	}
	b.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n], nil
}
