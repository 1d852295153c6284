package models

import "time"

// Unanswered marks a question the student left blank.
const Unanswered = -1

type ExamAttempt struct {
	ID          string    `json:"id" validate:"required"`
	ExamID      string    `json:"examId"`
	StudentID   string    `json:"studentId"`
	Answers     []int     `json:"answers" validate:"dive,min=-1"`
	Score       float64   `json:"score" validate:"min=0,max=100"`
	CompletedAt time.Time `json:"completedAt"`
	Duration    int       `json:"duration" validate:"min=0"`
}
