package models

type Exam struct {
	ID           string     `json:"id" validate:"required"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Questions    []Question `json:"questions" validate:"dive"`
	Duration     int        `json:"duration" validate:"min=0"`
	IsActive     bool       `json:"isActive"`
	ModuleNumber int        `json:"moduleNumber" validate:"min=1"`
}

// Seconds is the exam time limit in seconds.
func (e Exam) Seconds() int { return e.Duration * 60 }
