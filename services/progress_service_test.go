package services

import (
	"context"
	"testing"

	"github.com/anjiri1684/grading_portal/models"
)

func threeExams() []models.Exam {
	return []models.Exam{
		{ID: "1", Title: "One", ModuleNumber: 1, Questions: make([]models.Question, 10)},
		{ID: "2", Title: "Two", ModuleNumber: 2},
		{ID: "3", Title: "Three", ModuleNumber: 3},
	}
}

func TestModuleUnlocked(t *testing.T) {
	exams := threeExams()
	attempts := []models.ExamAttempt{{ID: "a", ExamID: "1", Score: 70}}

	tests := []struct {
		index int
		want  bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{-1, false},
		{3, false},
	}
	for _, tt := range tests {
		if got := ModuleUnlocked(exams, attempts, tt.index); got != tt.want {
			t.Errorf("ModuleUnlocked(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
	if !ModuleUnlocked(exams, nil, 0) {
		t.Fatal("first module must always be unlocked")
	}
}

func TestModuleStatuses(t *testing.T) {
	exams := threeExams()
	attempts := []models.ExamAttempt{{ID: "a", ExamID: "1", Score: 70}}

	states := ModuleStatuses(exams, attempts)
	want := []ModuleStatus{ModuleCompleted, ModuleAvailable, ModuleLocked}
	for i, st := range states {
		if st.Status != want[i] {
			t.Errorf("module %d status %s, want %s", i+1, st.Status, want[i])
		}
	}
	if states[0].Attempt == nil || states[0].Attempt.Score != 70 || states[0].QuestionCount != 10 {
		t.Fatalf("completed module missing attempt: %+v", states[0])
	}
	if AllModulesCompleted(exams, attempts) {
		t.Fatal("not all modules are completed")
	}
	all := append(attempts, models.ExamAttempt{ID: "b", ExamID: "2"}, models.ExamAttempt{ID: "c", ExamID: "3"})
	if !AllModulesCompleted(exams, all) {
		t.Fatal("expected all modules completed")
	}
	if AllModulesCompleted(nil, all) {
		t.Fatal("an empty catalog is never completed")
	}
}

func TestAggregates(t *testing.T) {
	if AveragePercentage(nil) != 0 || AverageAttemptScore(nil) != 0 {
		t.Fatal("averages over nothing must be 0")
	}
	grades := []models.Grade{
		{Score: 8, MaxScore: 10},
		{Score: 30, MaxScore: 50},
		{Score: 5, MaxScore: 0},
	}
	if got := AveragePercentage(grades); got < 46.66 || got > 46.67 {
		t.Fatalf("AveragePercentage = %v, want ~46.67", got)
	}
	attempts := []models.ExamAttempt{{Score: 80}, {Score: 60}, {Score: 100}}
	if got := AverageAttemptScore(attempts); got != 80 {
		t.Fatalf("AverageAttemptScore = %v, want 80", got)
	}
	if got := ClassAverage(grades); got != 47 {
		t.Fatalf("ClassAverage = %d, want 47", got)
	}
	if CompletionCount(attempts) != 3 {
		t.Fatal("CompletionCount")
	}
}

func TestStudentProgressScenario(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)
	student := registerStudent(t, p, "maya@students.alquds.edu")

	exams, _ := p.Exams.Exams(ctx)
	if _, err := p.Attempts.Submit(ctx, exams[0], student.ID, perfectAnswers(exams[0]), p.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Attempts.Submit(ctx, exams[1], student.ID, wrongAnswers(exams[1]), p.Now()); err != nil {
		t.Fatal(err)
	}
	p.Grades.UpsertGrade(ctx, models.Grade{StudentID: student.ID, Score: 9, MaxScore: 10})

	attempts, _ := p.Attempts.AttemptsFor(ctx, student.ID)
	grades, _ := p.Grades.GradesFor(ctx, student.ID)
	states := ModuleStatuses(exams, attempts)
	if states[2].Status != ModuleAvailable || states[3].Status != ModuleLocked {
		t.Fatalf("unexpected states %s %s", states[2].Status, states[3].Status)
	}

	sum := SummarizeStudent(student, attempts, grades)
	if sum.CompletedExams != 2 || sum.AverageScore != 50 || sum.GradeCount != 1 || sum.AverageGrade != 90 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.StudentNumber == nil || *sum.StudentNumber != "S-maya@students.alquds.edu" {
		t.Fatalf("student number missing: %+v", sum)
	}
}

func TestPerfectFirstModuleUnlocksSecondOnly(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)
	exams, _ := p.Exams.Exams(ctx)

	a, err := p.Attempts.Submit(ctx, exams[0], "stu", perfectAnswers(exams[0]), p.Now())
	if err != nil {
		t.Fatal(err)
	}
	if a.Score != 100 {
		t.Fatalf("score = %v, want 100", a.Score)
	}
	attempts, _ := p.Attempts.AttemptsFor(ctx, "stu")
	if !ModuleUnlocked(exams, attempts, 1) {
		t.Fatal("module two should be unlocked")
	}
	if ModuleUnlocked(exams, attempts, 2) {
		t.Fatal("module three should stay locked")
	}
}
