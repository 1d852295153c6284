package handlers

import (
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListStudents(c *fiber.Ctx) error {
	ctx := c.UserContext()
	students, err := h.Portal.Identity.UsersByRole(ctx, models.RoleStudent)
	if err != nil {
		return h.fail(c, err)
	}
	attempts, err := h.Portal.Attempts.Attempts(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	grades, err := h.Portal.Grades.Grades(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]services.StudentSummary, 0, len(students))
	for _, s := range students {
		out = append(out, services.SummarizeStudent(s, attemptsOf(attempts, s.ID), gradesOf(grades, s.ID)))
	}
	return c.JSON(out)
}

func (h *Handler) GetStudent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	student, err := h.studentByID(ctx, c.Params("studentId"))
	if err != nil {
		return h.fail(c, err)
	}
	exams, err := h.Portal.Exams.Exams(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	attempts, err := h.Portal.Attempts.AttemptsFor(ctx, student.ID)
	if err != nil {
		return h.fail(c, err)
	}
	grades, err := h.Portal.Grades.GradesFor(ctx, student.ID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"student":  toUserResponse(student),
		"summary":  services.SummarizeStudent(student, attempts, grades),
		"modules":  services.ModuleStatuses(exams, attempts),
		"attempts": attempts,
		"grades":   toGradeResponses(grades),
	})
}

func attemptsOf(all []models.ExamAttempt, studentID string) []models.ExamAttempt {
	var out []models.ExamAttempt
	for _, a := range all {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out
}

func gradesOf(all []models.Grade, studentID string) []models.Grade {
	var out []models.Grade
	for _, g := range all {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out
}
