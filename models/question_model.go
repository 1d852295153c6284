package models

type Question struct {
	ID            string   `json:"id" validate:"required"`
	Question      string   `json:"question"`
	Options       []string `json:"options" validate:"len=4"`
	CorrectAnswer int      `json:"correctAnswer" validate:"min=0,max=3"`
	Category      string   `json:"category"`
}
