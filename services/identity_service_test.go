package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/storage"
)

func TestRegisterThenLogin_IgnoresPassword(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)

	u, err := p.Identity.Register(ctx, RegisterInput{
		Email:    "lina@students.alquds.edu",
		Name:     "Lina",
		Role:     models.RoleStudent,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("expected id and createdAt to be assigned: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret123" {
		t.Fatalf("expected a bcrypt hash, got %q", u.PasswordHash)
	}

	for _, pw := range []string{"secret123", "wrong", ""} {
		got, err := p.Identity.Login(ctx, "lina@students.alquds.edu", pw)
		if err != nil {
			t.Fatalf("login with %q: %v", pw, err)
		}
		if got.Email != u.Email || got.ID != u.ID {
			t.Fatalf("login returned %+v, want %+v", got, u)
		}
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	p, _, _ := newTestPortal(t)
	if _, err := p.Identity.Login(context.Background(), "nobody@students.alquds.edu", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLogin_VerifyPasswordsEnabled(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	p, err := Open(ctx, storage.New(storage.NewMemoryBackend()), Options{
		Now:             clock.Now,
		Rand:            rand.New(rand.NewSource(1)),
		VerifyPasswords: true,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := p.Identity.Register(ctx, RegisterInput{Email: "d@students.alquds.edu", Role: models.RoleDoctor, Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := p.Identity.Login(ctx, "d@students.alquds.edu", "hunter22"); err != nil {
		t.Fatalf("login with right password: %v", err)
	}
	if _, err := p.Identity.Login(ctx, "d@students.alquds.edu", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_IDsAreTimestamps(t *testing.T) {
	p, _, clock := newTestPortal(t)
	before := clock.Now().UnixMilli()
	u := registerStudent(t, p, "a@students.alquds.edu")
	var ms int64
	for _, r := range u.ID {
		if r < '0' || r > '9' {
			t.Fatalf("id %q is not a timestamp", u.ID)
		}
		ms = ms*10 + int64(r-'0')
	}
	if ms <= before {
		t.Fatalf("id %d should be after %d", ms, before)
	}
}

func TestUsersByRole(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)
	registerStudent(t, p, "s1@students.alquds.edu")
	registerStudent(t, p, "s2@students.alquds.edu")
	if _, err := p.Identity.Register(ctx, RegisterInput{Email: "doc@students.alquds.edu", Role: models.RoleDoctor}); err != nil {
		t.Fatalf("register doctor: %v", err)
	}

	students, err := p.Identity.UsersByRole(ctx, models.RoleStudent)
	if err != nil {
		t.Fatalf("UsersByRole: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	doctors, _ := p.Identity.UsersByRole(ctx, models.RoleDoctor)
	if len(doctors) != 1 || doctors[0].Email != "doc@students.alquds.edu" {
		t.Fatalf("unexpected doctors: %+v", doctors)
	}
}

func TestSessionSlot(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)

	if u, err := p.Identity.CurrentSession(ctx); err != nil || u != nil {
		t.Fatalf("expected no session, got %+v err=%v", u, err)
	}

	a := registerStudent(t, p, "a@students.alquds.edu")
	b := registerStudent(t, p, "b@students.alquds.edu")
	if err := p.Identity.SetSession(ctx, a); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	if err := p.Identity.SetSession(ctx, b); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	cur, err := p.Identity.CurrentSession(ctx)
	if err != nil || cur == nil || cur.ID != b.ID {
		t.Fatalf("expected session for %s, got %+v err=%v", b.ID, cur, err)
	}

	if err := p.Identity.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if cur, _ := p.Identity.CurrentSession(ctx); cur != nil {
		t.Fatalf("expected cleared session, got %+v", cur)
	}
}

func TestValidateAlQudsEmail(t *testing.T) {
	cases := map[string]bool{
		"ahmad@students.alquds.edu":     true,
		"ahmad@alquds.edu":              false,
		"ahmad@students.alquds.edu.com": false,
		"":                              false,
		"@students.alquds.edu":          true,
	}
	for email, want := range cases {
		if got := ValidateAlQudsEmail(email); got != want {
			t.Errorf("ValidateAlQudsEmail(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestRegister_SameMillisecondGetsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	slots := storage.New(storage.NewMemoryBackend())
	frozen := newStepClock()
	frozen.step = 0
	p, err := Open(ctx, slots, Options{Now: frozen.Now, Rand: rand.New(rand.NewSource(3))})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := registerStudent(t, p, "a@students.alquds.edu")
	b := registerStudent(t, p, "b@students.alquds.edu")
	if a.ID == b.ID {
		t.Fatalf("both users got id %s", a.ID)
	}
}

func TestSetSession_DropsPasswordHash(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPortal(t)

	u, err := p.Identity.Register(ctx, RegisterInput{
		Email:    "doc@students.alquds.edu",
		Name:     "Dr. Omar",
		Role:     models.RoleDoctor,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.PasswordHash == "" {
		t.Fatal("expected a stored password hash")
	}
	if err := p.Identity.SetSession(ctx, u); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	cur, err := p.Identity.CurrentSession(ctx)
	if err != nil || cur == nil {
		t.Fatalf("CurrentSession: %+v err=%v", cur, err)
	}
	if cur.PasswordHash != "" {
		t.Fatalf("session slot holds a password hash: %q", cur.PasswordHash)
	}
	stored, _ := p.Identity.UserByID(ctx, u.ID)
	if stored.PasswordHash == "" {
		t.Fatal("directory entry lost its password hash")
	}
}
