package routes

import (
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Get("/dashboard", middleware.Protected(h.JWTSecret), h.Dashboard)

	profile := api.Group("/profile/me", middleware.Protected(h.JWTSecret))
	profile.Get("", h.GetProfile)
	profile.Get("/progress", middleware.StudentRequired(), h.GetProgress)
	profile.Post("/transcript", middleware.StudentRequired(), h.GenerateTranscript)
}
