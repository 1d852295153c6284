package handlers

import (
	"context"
	"errors"

	"github.com/anjiri1684/grading_portal/middleware"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/anjiri1684/grading_portal/services"
	"github.com/gofiber/fiber/v2"
)

type CreateGradeRequest struct {
	StudentID string   `json:"student_id" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=exam assignment participation project"`
	Title     string   `json:"title" validate:"required"`
	Score     *float64 `json:"score" validate:"required,gte=0"`
	MaxScore  float64  `json:"max_score" validate:"gt=0"`
	Feedback  *string  `json:"feedback"`
}

type UpdateGradeRequest struct {
	Type     *string  `json:"type" validate:"omitempty,oneof=exam assignment participation project"`
	Title    *string  `json:"title" validate:"omitempty,min=1"`
	Score    *float64 `json:"score" validate:"omitempty,gte=0"`
	MaxScore *float64 `json:"max_score" validate:"omitempty,gt=0"`
	Feedback *string  `json:"feedback"`
}

type GradeResponse struct {
	models.Grade
	Percentage int `json:"percentage"`
}

func toGradeResponses(grades []models.Grade) []GradeResponse {
	out := make([]GradeResponse, len(grades))
	for i, g := range grades {
		out[i] = GradeResponse{Grade: g, Percentage: services.Percentage(g)}
	}
	return out
}

func (h *Handler) MyGrades(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	grades, err := h.Portal.Grades.GradesFor(c.UserContext(), sess.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"grades":  toGradeResponses(grades),
		"average": services.AveragePercentage(grades),
	})
}

// ListGrades returns the whole ledger, or one student's grades when
// student_id is given.
func (h *Handler) ListGrades(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		grades []models.Grade
		err    error
	)
	if sid := c.Query("student_id"); sid != "" {
		grades, err = h.Portal.Grades.GradesFor(ctx, sid)
	} else {
		grades, err = h.Portal.Grades.Grades(ctx)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toGradeResponses(grades))
}

func (h *Handler) CreateGrade(c *fiber.Ctx) error {
	var req CreateGradeRequest
	if !parseBody(c, &req) {
		return nil
	}

	ctx := c.UserContext()
	student, err := h.studentByID(ctx, req.StudentID)
	if err != nil {
		return h.fail(c, err)
	}

	sess := middleware.CurrentSession(c)
	grade, _, err := h.Portal.Grades.UpsertGrade(ctx, models.Grade{
		StudentID: student.ID,
		Type:      models.GradeType(req.Type),
		Title:     req.Title,
		Score:     *req.Score,
		MaxScore:  req.MaxScore,
		Feedback:  req.Feedback,
		GradedBy:  h.graderName(ctx, sess),
	})
	if err != nil {
		return h.fail(c, err)
	}

	percent := services.Percentage(grade)
	h.Log.Info("Grade posted", "grade_id", grade.ID, "student_id", student.ID, "percentage", percent)
	go h.Notifier.GradePosted(student, grade, percent)

	return c.Status(fiber.StatusCreated).JSON(GradeResponse{Grade: grade, Percentage: percent})
}

func (h *Handler) UpdateGrade(c *fiber.Ctx) error {
	var req UpdateGradeRequest
	if !parseBody(c, &req) {
		return nil
	}

	upd := services.GradeUpdate{
		Title:    req.Title,
		Score:    req.Score,
		MaxScore: req.MaxScore,
		Feedback: req.Feedback,
	}
	if req.Type != nil {
		t := models.GradeType(*req.Type)
		upd.Type = &t
	}

	grade, err := h.Portal.Grades.UpdateGrade(c.UserContext(), c.Params("gradeId"), upd)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(GradeResponse{Grade: grade, Percentage: services.Percentage(grade)})
}

func (h *Handler) studentByID(ctx context.Context, id string) (models.User, error) {
	user, err := h.Portal.Identity.UserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsStudent() {
		return models.User{}, services.ErrUserNotFound
	}
	return user, nil
}

// graderName prefers the directory name over the one in the token.
func (h *Handler) graderName(ctx context.Context, sess services.Session) string {
	user, err := h.Portal.Identity.UserByID(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, services.ErrUserNotFound) {
			h.Log.Warn("Failed to look up grader", "user_id", sess.UserID, "error", err)
		}
		return sess.Name
	}
	return user.Name
}
