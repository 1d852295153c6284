package models

import "time"

type GradeType string

const (
	GradeExam          GradeType = "exam"
	GradeAssignment    GradeType = "assignment"
	GradeParticipation GradeType = "participation"
	GradeProject       GradeType = "project"
)

type Grade struct {
	ID        string    `json:"id" validate:"required"`
	StudentID string    `json:"studentId"`
	Type      GradeType `json:"type"`
	Title     string    `json:"title"`
	Score     float64   `json:"score"`
	MaxScore  float64   `json:"maxScore"`
	Feedback  *string   `json:"feedback,omitempty"`
	GradedAt  time.Time `json:"gradedAt"`
	GradedBy  string    `json:"gradedBy"`
}
