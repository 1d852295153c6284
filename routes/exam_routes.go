package routes

import (
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExamRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	exams := api.Group("/exams", middleware.Protected(h.JWTSecret), middleware.StudentRequired())
	exams.Get("", h.StudentListExams)
	exams.Get("/attempts/me", h.MyAttempts)
	exams.Post("/:examId/start", h.StartExam)

	sessions := exams.Group("/sessions")
	sessions.Get("/:sessionId", h.GetExamSession)
	sessions.Put("/:sessionId/answers", h.AnswerQuestion)
	sessions.Post("/:sessionId/submit", h.SubmitExam)
}
