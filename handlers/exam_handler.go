package handlers

import (
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
)

type AnswerRequest struct {
	QuestionIndex int `json:"question_index" validate:"min=0"`
	Option        int `json:"option" validate:"min=-1,max=3"`
}

// StudentListExams shows every module with its completed, available or
// locked state for the caller.
func (h *Handler) StudentListExams(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := middleware.CurrentSession(c)

	exams, err := h.Portal.Exams.Exams(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	attempts, err := h.Portal.Attempts.AttemptsFor(ctx, sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(services.ModuleStatuses(exams, attempts))
}

func (h *Handler) StartExam(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	view, err := h.Sessions.Start(c.UserContext(), sess.UserID, c.Params("examId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) GetExamSession(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	view, err := h.Sessions.Get(c.Params("sessionId"), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) AnswerQuestion(c *fiber.Ctx) error {
	var req AnswerRequest
	if !parseBody(c, &req) {
		return nil
	}
	sess := middleware.CurrentSession(c)
	view, err := h.Sessions.Answer(c.Params("sessionId"), sess.UserID, req.QuestionIndex, req.Option)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) SubmitExam(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	view, err := h.Sessions.Submit(c.UserContext(), c.Params("sessionId"), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) MyAttempts(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	attempts, err := h.Portal.Attempts.AttemptsFor(c.UserContext(), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(attempts)
}
