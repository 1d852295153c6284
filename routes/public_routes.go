package routes

import (
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to the Al-Quds grading portal API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

// Setup mounts every route group of the portal on app.
func Setup(app *fiber.App, h *handlers.Handler) {
	PublicRoutes(app)
	AuthRoutes(app, h)
	ProfileRoutes(app, h)
	ExamRoutes(app, h)
	GradeRoutes(app, h)
	MessagingRoutes(app, h)
}
