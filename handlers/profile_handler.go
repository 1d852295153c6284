package handlers

import (
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	user, err := h.Portal.Identity.UserByID(c.UserContext(), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) GetProgress(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := middleware.CurrentSession(c)
	user, err := h.Portal.Identity.UserByID(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	exams, err := h.Portal.Exams.Exams(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	attempts, err := h.Portal.Attempts.AttemptsFor(ctx, user.ID)
	if err != nil {
		return h.fail(c, err)
	}
	grades, err := h.Portal.Grades.GradesFor(ctx, user.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"summary":            services.SummarizeStudent(user, attempts, grades),
		"modules":            services.ModuleStatuses(exams, attempts),
		"all_completed":      services.AllModulesCompleted(exams, attempts),
		"average_percentage": services.AveragePercentage(grades),
	})
}

func (h *Handler) GenerateTranscript(c *fiber.Ctx) error {
	if h.Transcripts == nil {
		return h.fail(c, services.ErrUploadNotConfigured)
	}
	sess := middleware.CurrentSession(c)
	url, err := h.Transcripts.Generate(c.UserContext(), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transcript_url": url})
}
