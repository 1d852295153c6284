package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/models"
	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
)

var (
	ErrSessionNotFound  = errors.New("exam session not found")
	ErrSessionSubmitted = errors.New("exam session already submitted")
	ErrModuleLocked     = errors.New("previous module must be completed first")
	ErrModuleCompleted  = errors.New("module already completed")
	ErrExamInactive     = errors.New("exam is not active")
	ErrInvalidAnswer    = errors.New("invalid question or option index")
)

type examSession struct {
	id        string
	exam      models.Exam
	studentID string
	status    SessionStatus
	answers   []int
	remaining int
	startedAt time.Time
	forced    bool
	attempt   *models.ExamAttempt
	doneAt    time.Time
	cancel    context.CancelFunc
}

type QuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// SessionView is what a student sees of a running exam. Answer keys
// are never included.
type SessionView struct {
	ID               string              `json:"id"`
	ExamID           string              `json:"exam_id"`
	Title            string              `json:"title"`
	Status           SessionStatus       `json:"status"`
	Questions        []QuestionView      `json:"questions"`
	Answers          []int               `json:"answers"`
	Answered         int                 `json:"answered"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	StartedAt        time.Time           `json:"started_at"`
	AutoSubmitted    bool                `json:"auto_submitted"`
	Attempt          *models.ExamAttempt `json:"attempt,omitempty"`
}

type SessionManagerOptions struct {
	// Tick is the countdown step; one tick takes one second off the
	// clock. Defaults to time.Second.
	Tick time.Duration
	Now  func() time.Time
	Log  *logger.Logger
	// OnSubmit runs after an attempt has been recorded.
	OnSubmit func(attempt models.ExamAttempt, forced bool)
}

// SessionManager runs in-progress exams. Each session moves one way from
// in_progress to submitted, by explicit submit or when its countdown
// reaches zero.
type SessionManager struct {
	exams    *ExamCatalog
	attempts *AttemptLog
	tick     time.Duration
	now      func() time.Time
	log      *logger.Logger
	onSubmit func(models.ExamAttempt, bool)

	mu       sync.Mutex
	sessions map[string]*examSession

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSessionManager(p *Portal, opts SessionManagerOptions) *SessionManager {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Now == nil {
		opts.Now = p.now
	}
	if opts.Log == nil {
		opts.Log = p.log
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		exams:    p.Exams,
		attempts: p.Attempts,
		tick:     opts.Tick,
		now:      opts.Now,
		log:      opts.Log,
		onSubmit: opts.OnSubmit,
		sessions: make(map[string]*examSession),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start opens an exam for a student, or resumes the one already running
// for that exam. Locked and already completed modules are refused.
func (m *SessionManager) Start(ctx context.Context, studentID, examID string) (SessionView, error) {
	exams, err := m.exams.Exams(ctx)
	if err != nil {
		return SessionView{}, err
	}
	index := -1
	for i := range exams {
		if exams[i].ID == examID {
			index = i
			break
		}
	}
	if index < 0 {
		return SessionView{}, ErrExamNotFound
	}
	exam := exams[index]
	if !exam.IsActive {
		return SessionView{}, ErrExamInactive
	}

	attempts, err := m.attempts.AttemptsFor(ctx, studentID)
	if err != nil {
		return SessionView{}, err
	}
	if AttemptForExam(attempts, examID) != nil {
		return SessionView{}, ErrModuleCompleted
	}
	if !ModuleUnlocked(exams, attempts, index) {
		return SessionView{}, ErrModuleLocked
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// The attempt list read above may predate a submit still writing its
	// attempt, so a submitted session for the exam also counts as done.
	for _, s := range m.sessions {
		if s.studentID != studentID || s.exam.ID != examID {
			continue
		}
		if s.status == SessionInProgress {
			return s.view(), nil
		}
		return SessionView{}, ErrModuleCompleted
	}

	answers := make([]int, len(exam.Questions))
	for i := range answers {
		answers[i] = models.Unanswered
	}
	sessCtx, cancel := context.WithCancel(m.ctx)
	s := &examSession{
		id:        uuid.NewString(),
		exam:      exam,
		studentID: studentID,
		status:    SessionInProgress,
		answers:   answers,
		remaining: exam.Seconds(),
		startedAt: m.now(),
		cancel:    cancel,
	}
	m.sessions[s.id] = s

	m.wg.Add(1)
	go m.countdown(sessCtx, s)

	m.log.Info("Exam session started", "session_id", s.id, "exam_id", examID, "student_id", studentID)
	return s.view(), nil
}

func (m *SessionManager) countdown(ctx context.Context, s *examSession) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			if s.status != SessionInProgress {
				m.mu.Unlock()
				return
			}
			s.remaining--
			expired := s.remaining <= 0
			m.mu.Unlock()

			if expired {
				if _, err := m.submit(context.Background(), s, true); err != nil && !errors.Is(err, ErrSessionSubmitted) {
					m.log.Error("Failed to auto-submit exam session", "session_id", s.id, "error", err)
				}
				return
			}
		}
	}
}

func (m *SessionManager) lookup(id, studentID string) (*examSession, error) {
	s, ok := m.sessions[id]
	if !ok || s.studentID != studentID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Get(id, studentID string) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(id, studentID)
	if err != nil {
		return SessionView{}, err
	}
	return s.view(), nil
}

// Answer records option for a question; option -1 clears the answer.
func (m *SessionManager) Answer(id, studentID string, questionIndex, option int) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(id, studentID)
	if err != nil {
		return SessionView{}, err
	}
	if s.status != SessionInProgress {
		return SessionView{}, ErrSessionSubmitted
	}
	if questionIndex < 0 || questionIndex >= len(s.answers) {
		return SessionView{}, ErrInvalidAnswer
	}
	if option < models.Unanswered || option >= len(s.exam.Questions[questionIndex].Options) {
		return SessionView{}, ErrInvalidAnswer
	}
	s.answers[questionIndex] = option
	return s.view(), nil
}

func (m *SessionManager) Submit(ctx context.Context, id, studentID string) (SessionView, error) {
	m.mu.Lock()
	s, err := m.lookup(id, studentID)
	m.mu.Unlock()
	if err != nil {
		return SessionView{}, err
	}
	return m.submit(ctx, s, false)
}

func (m *SessionManager) submit(ctx context.Context, s *examSession, forced bool) (SessionView, error) {
	m.mu.Lock()
	if s.status != SessionInProgress {
		m.mu.Unlock()
		return SessionView{}, ErrSessionSubmitted
	}
	s.status = SessionSubmitted
	answers := append([]int(nil), s.answers...)
	m.mu.Unlock()

	attempt, err := m.attempts.Submit(ctx, s.exam, s.studentID, answers, s.startedAt)

	m.mu.Lock()
	if err != nil {
		s.status = SessionInProgress
		m.mu.Unlock()
		return SessionView{}, fmt.Errorf("record attempt: %w", err)
	}
	s.attempt = &attempt
	s.forced = forced
	s.doneAt = m.now()
	s.cancel()
	view := s.view()
	m.mu.Unlock()

	m.log.Info("Exam session submitted",
		"session_id", s.id, "exam_id", s.exam.ID, "student_id", s.studentID,
		"score", attempt.Score, "auto", forced)
	if m.onSubmit != nil {
		m.onSubmit(attempt, forced)
	}
	return view, nil
}

// Prune forgets submitted sessions finished more than olderThan ago and
// reports how many were dropped.
func (m *SessionManager) Prune(olderThan time.Duration) int {
	cutoff := m.now().Add(-olderThan)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.status == SessionSubmitted && s.doneAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Active counts sessions still in progress.
func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.status == SessionInProgress {
			n++
		}
	}
	return n
}

// Close stops every countdown. Running sessions stay in progress and
// are not submitted.
func (m *SessionManager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (s *examSession) view() SessionView {
	questions := make([]QuestionView, len(s.exam.Questions))
	for i, q := range s.exam.Questions {
		questions[i] = QuestionView{ID: q.ID, Question: q.Question, Options: q.Options, Category: q.Category}
	}
	answered := 0
	for _, a := range s.answers {
		if a != models.Unanswered {
			answered++
		}
	}
	remaining := s.remaining
	if remaining < 0 || s.status == SessionSubmitted {
		remaining = 0
	}
	v := SessionView{
		ID:               s.id,
		ExamID:           s.exam.ID,
		Title:            s.exam.Title,
		Status:           s.status,
		Questions:        questions,
		Answers:          append([]int(nil), s.answers...),
		Answered:         answered,
		RemainingSeconds: remaining,
		StartedAt:        s.startedAt,
		AutoSubmitted:    s.forced,
	}
	if s.attempt != nil {
		a := *s.attempt
		v.Attempt = &a
	}
	return v
}
