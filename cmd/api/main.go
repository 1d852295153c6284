package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/grading_portal/configs"
	"github.com/anjiri1684/grading_portal/database"
	"github.com/anjiri1684/grading_portal/handlers"
	"github.com/anjiri1684/grading_portal/jobs"
	applog "github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/notifications"
	"github.com/anjiri1684/grading_portal/routes"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/anjiri1684/grading_portal/storage"
	"github.com/anjiri1684/grading_portal/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	log, err := applog.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := database.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open slot storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			log.Warn("Failed to close slot storage", "error", err)
		}
	}()
	log.Info("Slot storage ready", "driver", cfg.StorageDriver)

	portal, err := services.Open(ctx, storage.New(backend), services.Options{
		VerifyPasswords: cfg.VerifyPasswords,
		Log:             log,
	})
	if err != nil {
		log.Fatal("Failed to open portal", "error", err)
	}

	sessions := services.NewSessionManager(portal, services.SessionManagerOptions{
		Log: log.With("component", "exam_sessions"),
		OnSubmit: func(a models.ExamAttempt, forced bool) {
			if forced {
				log.Info("Exam time ran out; attempt recorded", "attempt_id", a.ID, "student_id", a.StudentID)
			}
		},
	})
	defer sessions.Close()

	hub := websocket.NewHub(log.With("component", "chat_hub"))
	go hub.Run(ctx)

	c, err := jobs.Schedule(sessions, cfg.SessionRetention, log.With("component", "jobs"))
	if err != nil {
		log.Fatal("Failed to schedule jobs", "error", err)
	}
	c.Start()
	defer c.Stop()
	log.Info("Cron job for exam session sweep scheduled", "schedule", jobs.SweepSchedule)

	h := &handlers.Handler{
		Portal:      portal,
		Sessions:    sessions,
		Transcripts: services.NewTranscriptService(portal, cfg.CloudinaryURL),
		Notifier:    notifications.NewNotifier(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, log.With("component", "email")),
		Hub:         hub,
		JWTSecret:   cfg.JWTSecret,
		JWTTTL:      cfg.JWTTTL,
		Log:         log.With("component", "http"),
	}

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Al-Quds Grading Portal",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			log.Error("Unhandled request error", "error", err, "path", c.Path(), "method", c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jerusalem",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, h)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("Server shutdown failed", "error", err)
		}
	}()

	log.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start", "error", err)
	}
}
