package middleware

import (
	"errors"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const sessionKey = "session"

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		ErrorHandler:   jwtError,
		SuccessHandler: attachSession,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// attachSession turns the verified token into an explicit session for
// the rest of the request.
func attachSession(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, errors.New("invalid token"))
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, errors.New("invalid token"))
	}
	sess, err := SessionFromClaims(claims)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}

// SessionFromClaims reads the identity carried by a portal token.
func SessionFromClaims(claims jwt.MapClaims) (services.Session, error) {
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return services.Session{}, errors.New("token is missing user_id or role")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return services.Session{UserID: userID, Email: email, Name: name, Role: models.Role(role)}, nil
}

// CurrentSession returns the session attached by Protected.
func CurrentSession(c *fiber.Ctx) services.Session {
	sess, _ := c.Locals(sessionKey).(services.Session)
	return sess
}

func DoctorRequired() fiber.Handler {
	return requireRole(models.RoleDoctor, "Forbidden: Doctor access required")
}

func StudentRequired() fiber.Handler {
	return requireRole(models.RoleStudent, "Forbidden: Student access required")
}

func requireRole(role models.Role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentSession(c).Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": message,
			})
		}
		return c.Next()
	}
}
