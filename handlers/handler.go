package handlers

import (
	"errors"
	"time"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/notifications"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/anjiri1684/grading_portal/storage"
	"github.com/anjiri1684/grading_portal/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("alquds_email", func(fl validator.FieldLevel) bool {
		return services.ValidateAlQudsEmail(fl.Field().String())
	})
	return v
}

// Handler serves the portal API. Every field except Transcripts and Hub
// must be set.
type Handler struct {
	Portal      *services.Portal
	Sessions    *services.SessionManager
	Transcripts *services.TranscriptService
	Notifier    notifications.Notifier
	Hub         *websocket.Hub
	JWTSecret   string
	JWTTTL      time.Duration
	Log         *logger.Logger
}

type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	Address     *string     `json:"address,omitempty"`
	PhoneNumber *string     `json:"phone_number,omitempty"`
	StudentID   *string     `json:"student_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		StudentID:   u.StudentID,
		CreatedAt:   u.CreatedAt,
	}
}

// parseBody decodes and validates the request body. On failure it has
// already written the 400 response and reports false.
func parseBody(c *fiber.Ctx, req interface{}) bool {
	if err := c.BodyParser(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		return false
	}
	if err := validate.Struct(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		return false
	}
	return true
}

// fail maps a service error to a response.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrExamNotFound),
		errors.Is(err, services.ErrGradeNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrModuleLocked),
		errors.Is(err, services.ErrExamInactive):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrModuleCompleted),
		errors.Is(err, services.ErrSessionSubmitted),
		errors.Is(err, services.ErrTranscriptNotReady):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidAnswer),
		errors.Is(err, storage.ErrInvalidItem):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUploadNotConfigured):
		status = fiber.StatusServiceUnavailable
	}

	if status == fiber.StatusInternalServerError {
		var corrupt *storage.CorruptSlotError
		if errors.As(err, &corrupt) {
			h.Log.Error("Corrupt slot", "key", corrupt.Key, "error", corrupt.Err, "path", c.Path())
		} else {
			h.Log.Error("Request failed", "error", err, "path", c.Path(), "method", c.Method())
		}
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
