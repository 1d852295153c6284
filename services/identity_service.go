package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
	"golang.org/x/crypto/bcrypt"
)

const AlQudsEmailSuffix = "@students.alquds.edu"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func ValidateAlQudsEmail(email string) bool {
	return strings.HasSuffix(email, AlQudsEmailSuffix)
}

type RegisterInput struct {
	Email       string
	Name        string
	Role        models.Role
	Address     *string
	PhoneNumber *string
	StudentID   *string
	Password    string
}

// Session is the identity a request acts as. Handlers build it from the
// bearer token and pass it down explicitly.
type Session struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
}

func SessionFor(u models.User) Session {
	return Session{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (s Session) IsDoctor() bool  { return s.Role == models.RoleDoctor }
func (s Session) IsStudent() bool { return s.Role == models.RoleStudent }

type IdentityService struct {
	slots           *storage.Slots
	now             func() time.Time
	verifyPasswords bool
}

// Register appends a user to the directory. It does not validate the
// profile; callers check the email domain and required fields first.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	now := s.now()
	user := models.User{
		Email:       in.Email,
		Name:        in.Name,
		Role:        in.Role,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
		StudentID:   in.StudentID,
		CreatedAt:   now.UTC(),
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	err := storage.UpdateList(ctx, s.slots, storage.KeyUsers, func(users []models.User) ([]models.User, error) {
		user.ID = uniqueTimestampID(users, now.UnixMilli())
		return append(users, user), nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// uniqueTimestampID moves ms forward until no user holds it.
func uniqueTimestampID(users []models.User, ms int64) string {
	taken := make(map[string]bool, len(users))
	for _, u := range users {
		taken[u.ID] = true
	}
	for taken[strconv.FormatInt(ms, 10)] {
		ms++
	}
	return strconv.FormatInt(ms, 10)
}

// Login looks the user up by email. The password is only checked when
// password verification is enabled and the user has a stored hash.
func (s *IdentityService) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if s.verifyPasswords && user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return models.User{}, ErrInvalidCredentials
		}
	}
	return user, nil
}

func (s *IdentityService) Users(ctx context.Context) ([]models.User, error) {
	return storage.LoadList[models.User](ctx, s.slots, storage.KeyUsers)
}

func (s *IdentityService) UserByID(ctx context.Context, id string) (models.User, error) {
	return s.findUser(ctx, func(u models.User) bool { return u.ID == id })
}

func (s *IdentityService) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, func(u models.User) bool { return u.Email == email })
}

func (s *IdentityService) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *IdentityService) findUser(ctx context.Context, match func(models.User) bool) (models.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// CurrentSession returns the user held in the session slot, or nil.
func (s *IdentityService) CurrentSession(ctx context.Context) (*models.User, error) {
	return storage.LoadOne[models.User](ctx, s.slots, storage.KeySession)
}

// SetSession stores user as the current session. The password hash is
// not copied into the slot.
func (s *IdentityService) SetSession(ctx context.Context, user models.User) error {
	user.PasswordHash = ""
	return storage.SaveOne(ctx, s.slots, storage.KeySession, user)
}

func (s *IdentityService) ClearSession(ctx context.Context) error {
	return s.slots.Clear(ctx, storage.KeySession)
}
