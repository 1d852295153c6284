package handlers

import (
	"sort"

	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
)

const recentGradeCount = 5

func recentGrades(grades []models.Grade) []GradeResponse {
	sorted := append([]models.Grade(nil), grades...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].GradedAt.After(sorted[j].GradedAt) })
	if len(sorted) > recentGradeCount {
		sorted = sorted[:recentGradeCount]
	}
	return toGradeResponses(sorted)
}

// Dashboard returns the landing-page aggregates for the caller's role.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := middleware.CurrentSession(c)

	unread, err := h.Portal.Messages.UnreadCount(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}

	if sess.IsDoctor() {
		students, err := h.Portal.Identity.UsersByRole(ctx, models.RoleStudent)
		if err != nil {
			return h.fail(c, err)
		}
		grades, err := h.Portal.Grades.Grades(ctx)
		if err != nil {
			return h.fail(c, err)
		}
		attempts, err := h.Portal.Attempts.Attempts(ctx)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{
			"role":            sess.Role,
			"pages":           models.PagesFor(sess.Role),
			"student_count":   len(students),
			"grade_count":     len(grades),
			"attempt_count":   services.CompletionCount(attempts),
			"class_average":   services.ClassAverage(grades),
			"recent_grades":   recentGrades(grades),
			"unread_messages": unread,
		})
	}

	user, err := h.Portal.Identity.UserByID(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	exams, err := h.Portal.Exams.Exams(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	attempts, err := h.Portal.Attempts.AttemptsFor(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	grades, err := h.Portal.Grades.GradesFor(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"role":            sess.Role,
		"pages":           models.PagesFor(sess.Role),
		"summary":         services.SummarizeStudent(user, attempts, grades),
		"total_exams":     len(exams),
		"modules":         services.ModuleStatuses(exams, attempts),
		"recent_grades":   recentGrades(grades),
		"unread_messages": unread,
	})
}
