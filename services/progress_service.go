package services

import (
	"math"

	"github.com/anjiri1684/grading_portal/models"
)

type ModuleStatus string

const (
	ModuleCompleted ModuleStatus = "completed"
	ModuleAvailable ModuleStatus = "available"
	ModuleLocked    ModuleStatus = "locked"
)

// AveragePercentage is the mean of score/maxScore*100 over grades, 0 when
// there are none.
func AveragePercentage(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range grades {
		sum += ratio(g) * 100
	}
	return sum / float64(len(grades))
}

// ClassAverage is the average grade percentage across every student,
// rounded to a whole percent.
func ClassAverage(grades []models.Grade) int {
	return int(math.Round(AveragePercentage(grades)))
}

// ModuleUnlocked reports whether exams[index] may be taken: the first
// module always, any later one once the previous module has an attempt.
func ModuleUnlocked(exams []models.Exam, attempts []models.ExamAttempt, index int) bool {
	if index == 0 {
		return true
	}
	if index < 0 || index >= len(exams) {
		return false
	}
	return AttemptForExam(attempts, exams[index-1].ID) != nil
}

func AttemptForExam(attempts []models.ExamAttempt, examID string) *models.ExamAttempt {
	for i := range attempts {
		if attempts[i].ExamID == examID {
			return &attempts[i]
		}
	}
	return nil
}

func CompletionCount(attempts []models.ExamAttempt) int {
	return len(attempts)
}

func AverageAttemptScore(attempts []models.ExamAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range attempts {
		sum += a.Score
	}
	return sum / float64(len(attempts))
}

type ModuleState struct {
	ExamID        string              `json:"exam_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	ModuleNumber  int                 `json:"module_number"`
	Duration      int                 `json:"duration"`
	QuestionCount int                 `json:"question_count"`
	Status        ModuleStatus        `json:"status"`
	Attempt       *models.ExamAttempt `json:"attempt,omitempty"`
}

// ModuleStatuses lays out the student's view of the catalog in order.
func ModuleStatuses(exams []models.Exam, attempts []models.ExamAttempt) []ModuleState {
	out := make([]ModuleState, 0, len(exams))
	for i, e := range exams {
		st := ModuleState{
			ExamID:        e.ID,
			Title:         e.Title,
			Description:   e.Description,
			ModuleNumber:  e.ModuleNumber,
			Duration:      e.Duration,
			QuestionCount: len(e.Questions),
			Status:        ModuleLocked,
		}
		if a := AttemptForExam(attempts, e.ID); a != nil {
			attempt := *a
			st.Attempt = &attempt
			st.Status = ModuleCompleted
		} else if ModuleUnlocked(exams, attempts, i) {
			st.Status = ModuleAvailable
		}
		out = append(out, st)
	}
	return out
}

// AllModulesCompleted is true once every exam in the catalog has an attempt.
func AllModulesCompleted(exams []models.Exam, attempts []models.ExamAttempt) bool {
	if len(exams) == 0 {
		return false
	}
	for _, e := range exams {
		if AttemptForExam(attempts, e.ID) == nil {
			return false
		}
	}
	return true
}

type StudentSummary struct {
	StudentID      string  `json:"student_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	StudentNumber  *string `json:"student_number,omitempty"`
	CompletedExams int     `json:"completed_exams"`
	AverageScore   float64 `json:"average_score"`
	GradeCount     int     `json:"grade_count"`
	AverageGrade   float64 `json:"average_grade"`
}

func SummarizeStudent(student models.User, attempts []models.ExamAttempt, grades []models.Grade) StudentSummary {
	return StudentSummary{
		StudentID:      student.ID,
		Name:           student.Name,
		Email:          student.Email,
		StudentNumber:  student.StudentID,
		CompletedExams: CompletionCount(attempts),
		AverageScore:   AverageAttemptScore(attempts),
		GradeCount:     len(grades),
		AverageGrade:   AveragePercentage(grades),
	}
}
