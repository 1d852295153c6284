package routes

import (
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	chat := api.Group("/chat", middleware.Protected(h.JWTSecret))
	chat.Get("/contacts", h.GetContacts)
	chat.Get("/conversations", h.GetConversations)
	chat.Get("/messages/:peerId", h.GetMessages)
	chat.Post("/messages/:peerId", h.SendMessage)
	chat.Post("/messages/:peerId/read", h.MarkMessagesRead)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
