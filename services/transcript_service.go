package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/anjiri1684/grading_portal/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

//go:embed templates/transcript.html
var templateFS embed.FS

var transcriptTmpl = template.Must(template.ParseFS(templateFS, "templates/transcript.html"))

var (
	ErrTranscriptNotReady  = errors.New("all exam modules must be completed before a transcript is issued")
	ErrUploadNotConfigured = errors.New("transcript upload is not configured")
)

type PDFRenderer func(ctx context.Context, html string) ([]byte, error)

type Uploader func(ctx context.Context, pdf []byte, studentID string) (string, error)

type TranscriptService struct {
	portal *Portal
	render PDFRenderer
	upload Uploader
}

// NewTranscriptService prints with headless Chrome and uploads to the
// Cloudinary account in cloudinaryURL.
func NewTranscriptService(p *Portal, cloudinaryURL string) *TranscriptService {
	return &TranscriptService{
		portal: p,
		render: generatePDFFromHTML,
		upload: cloudinaryUploader(cloudinaryURL),
	}
}

type transcriptModule struct {
	ModuleNumber int
	Title        string
	Score        float64
	CompletedAt  string
}

type transcriptGrade struct {
	Type     models.GradeType
	Title    string
	Score    float64
	MaxScore float64
	Percent  int
	GradedBy string
}

type TranscriptData struct {
	StudentName    string
	Email          string
	StudentNumber  string
	IssuedAt       string
	Modules        []transcriptModule
	Grades         []transcriptGrade
	CompletedExams int
	AverageScore   float64
	AverageGrade   float64
}

func BuildTranscriptData(student models.User, exams []models.Exam, attempts []models.ExamAttempt, grades []models.Grade, issuedAt time.Time) TranscriptData {
	data := TranscriptData{
		StudentName:    student.Name,
		Email:          student.Email,
		IssuedAt:       issuedAt.Format("January 2, 2006"),
		CompletedExams: CompletionCount(attempts),
		AverageScore:   AverageAttemptScore(attempts),
		AverageGrade:   AveragePercentage(grades),
	}
	if student.StudentID != nil {
		data.StudentNumber = *student.StudentID
	}
	for _, e := range exams {
		a := AttemptForExam(attempts, e.ID)
		if a == nil {
			continue
		}
		data.Modules = append(data.Modules, transcriptModule{
			ModuleNumber: e.ModuleNumber,
			Title:        e.Title,
			Score:        a.Score,
			CompletedAt:  a.CompletedAt.Format("2006-01-02"),
		})
	}
	for _, g := range grades {
		data.Grades = append(data.Grades, transcriptGrade{
			Type:     g.Type,
			Title:    g.Title,
			Score:    g.Score,
			MaxScore: g.MaxScore,
			Percent:  Percentage(g),
			GradedBy: g.GradedBy,
		})
	}
	return data
}

func RenderTranscriptHTML(data TranscriptData) (string, error) {
	var out bytes.Buffer
	if err := transcriptTmpl.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Generate renders, prints and uploads the student's transcript and
// returns its public URL.
func (t *TranscriptService) Generate(ctx context.Context, studentID string) (string, error) {
	student, err := t.portal.Identity.UserByID(ctx, studentID)
	if err != nil {
		return "", err
	}
	exams, err := t.portal.Exams.Exams(ctx)
	if err != nil {
		return "", err
	}
	attempts, err := t.portal.Attempts.AttemptsFor(ctx, studentID)
	if err != nil {
		return "", err
	}
	if !AllModulesCompleted(exams, attempts) {
		return "", ErrTranscriptNotReady
	}
	grades, err := t.portal.Grades.GradesFor(ctx, studentID)
	if err != nil {
		return "", err
	}

	html, err := RenderTranscriptHTML(BuildTranscriptData(student, exams, attempts, grades, t.portal.Now()))
	if err != nil {
		return "", fmt.Errorf("render transcript: %w", err)
	}
	pdf, err := t.render(ctx, html)
	if err != nil {
		return "", fmt.Errorf("print transcript: %w", err)
	}
	url, err := t.upload(ctx, pdf, studentID)
	if err != nil {
		return "", fmt.Errorf("upload transcript: %w", err)
	}
	t.portal.log.Info("Transcript generated", "student_id", studentID, "url", url)
	return url, nil
}

func generatePDFFromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func cloudinaryUploader(cloudinaryURL string) Uploader {
	return func(ctx context.Context, pdf []byte, studentID string) (string, error) {
		if cloudinaryURL == "" {
			return "", ErrUploadNotConfigured
		}
		cld, err := cloudinary.NewFromURL(cloudinaryURL)
		if err != nil {
			return "", err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(pdf), uploader.UploadParams{
			PublicID:     fmt.Sprintf("transcripts/%s_%s", studentID, uuid.NewString()),
			Folder:       "grading_portal_transcripts",
			ResourceType: "raw",
		})
		if err != nil {
			return "", err
		}
		return uploadResult.SecureURL, nil
	}
}
