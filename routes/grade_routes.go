package routes

import (
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/gofiber/fiber/v2"
)

func GradeRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	grades := api.Group("/grades", middleware.Protected(h.JWTSecret))
	grades.Get("/me", middleware.StudentRequired(), h.MyGrades)
	grades.Get("", middleware.DoctorRequired(), h.ListGrades)
	grades.Post("", middleware.DoctorRequired(), h.CreateGrade)
	grades.Put("/:gradeId", middleware.DoctorRequired(), h.UpdateGrade)

	students := api.Group("/students", middleware.Protected(h.JWTSecret), middleware.DoctorRequired())
	students.Get("", h.ListStudents)
	students.Get("/:studentId", h.GetStudent)
}
