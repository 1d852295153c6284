package models

import "time"

type Role string

const (
	RoleDoctor  Role = "doctor"
	RoleStudent Role = "student"
)

type User struct {
	ID          string    `json:"id" validate:"required"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Address     *string   `json:"address,omitempty"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	StudentID   *string   `json:"studentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	// bcrypt hash, only present when a password was supplied at registration.
	PasswordHash string `json:"passwordHash,omitempty"`
}

func (u User) IsDoctor() bool  { return u.Role == RoleDoctor }
func (u User) IsStudent() bool { return u.Role == RoleStudent }
