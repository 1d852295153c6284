package handlers

import (
	"errors"
	"time"

	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email,alquds_email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=doctor student"`
	Address         string `json:"address" validate:"required"`
	PhoneNumber     string `json:"phone_number" validate:"required"`
	StudentID       string `json:"student_id" validate:"required_if=Role student"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,alquds_email"`
	Password string `json:"password"`
}

func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if !parseBody(c, &req) {
		return nil
	}

	ctx := c.UserContext()
	if _, err := h.Portal.Identity.UserByEmail(ctx, req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
	} else if !errors.Is(err, services.ErrUserNotFound) {
		return h.fail(c, err)
	}

	in := services.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		Role:        models.Role(req.Role),
		Address:     &req.Address,
		PhoneNumber: &req.PhoneNumber,
		Password:    req.Password,
	}
	if in.Role == models.RoleStudent {
		in.StudentID = &req.StudentID
	}

	user, err := h.Portal.Identity.Register(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Info("User registered", "user_id", user.ID, "role", user.Role)
	go h.Notifier.Welcome(user)

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

func (h *Handler) LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if !parseBody(c, &req) {
		return nil
	}

	ctx := c.UserContext()
	user, err := h.Portal.Identity.Login(ctx, req.Email, req.Password)
	if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if err != nil {
		return h.fail(c, err)
	}

	t, err := h.issueToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}
	if err := h.Portal.Identity.SetSession(ctx, user); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{"token": t, "user": toUserResponse(user)})
}

func (h *Handler) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"email":   user.Email,
		"name":    user.Name,
		"exp":     time.Now().Add(h.JWTTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}

func (h *Handler) LogoutUser(c *fiber.Ctx) error {
	if err := h.Portal.Identity.ClearSession(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	user, err := h.Portal.Identity.UserByID(c.UserContext(), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"session": sess,
		"user":    toUserResponse(user),
		"pages":   models.PagesFor(user.Role),
	})
}
