package routes

import (
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.LoginUser)
	auth.Post("/logout", middleware.Protected(h.JWTSecret), h.LogoutUser)
	auth.Get("/session", middleware.Protected(h.JWTSecret), h.GetSession)
}
