package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Notifier tells portal users about things that happened to them.
type Notifier interface {
	Welcome(user models.User)
	GradePosted(student models.User, grade models.Grade, percent int)
}

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string

	endpoint string
	client   *http.Client
	log      *logger.Logger
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewNotifier returns a Brevo-backed notifier, or a no-op one when the
// service is not configured.
func NewNotifier(apiKey, senderEmail, senderName string, log *logger.Logger) Notifier {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Warn("Email service not configured; notifications disabled")
		return Noop{}
	}
	log.Info("Email service initialized", "sender", senderEmail)
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

func (s *BrevoService) send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func (s *BrevoService) deliver(toName, toEmail, subject, htmlContent string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.send(ctx, toEmail, toName, subject, htmlContent); err != nil {
		s.log.Error("Failed to send email", "to", toEmail, "subject", subject, "error", err)
		return
	}
	s.log.Info("Email sent", "to", toEmail, "subject", subject)
}

func (s *BrevoService) Welcome(user models.User) {
	s.deliver(user.Name, user.Email, "Welcome to the Al-Quds grading portal",
		fmt.Sprintf("<h1>Welcome, %s!</h1><p>Your %s account is ready.</p>", html.EscapeString(user.Name), user.Role))
}

func (s *BrevoService) GradePosted(student models.User, grade models.Grade, percent int) {
	content := fmt.Sprintf("<h1>New grade posted</h1><p>%s (%s): <b>%g/%g</b> (%d%%)</p>",
		html.EscapeString(grade.Title), grade.Type, grade.Score, grade.MaxScore, percent)
	if grade.Feedback != nil && *grade.Feedback != "" {
		content += fmt.Sprintf("<p>Feedback: %s</p>", html.EscapeString(*grade.Feedback))
	}
	content += fmt.Sprintf("<p>Graded by %s</p>", html.EscapeString(grade.GradedBy))
	s.deliver(student.Name, student.Email, "New grade: "+grade.Title, content)
}

type Noop struct{}

func (Noop) Welcome(models.User)                        {}
func (Noop) GradePosted(models.User, models.Grade, int) {}
