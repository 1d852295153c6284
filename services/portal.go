package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/anjiri1684/grading_portal/storage"
)

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Rand drives question generation and sampling. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
	// VerifyPasswords turns on bcrypt checks at login.
	VerifyPasswords bool
	Log             *logger.Logger
}

// Portal is a fully seeded handle over every store of the portal.
type Portal struct {
	Identity  *IdentityService
	Questions *QuestionBank
	Exams     *ExamCatalog
	Attempts  *AttemptLog
	Grades    *GradeLedger
	Messages  *MessageLog

	slots *storage.Slots
	log   *logger.Logger
	now   func() time.Time
}

// Open builds the stores over slots and runs the one-time seeding of
// the question bank and exam catalog before returning.
func Open(ctx context.Context, slots *storage.Slots, opts Options) (*Portal, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	rng := &lockedRand{r: opts.Rand}
	bank := &QuestionBank{slots: slots, rng: rng}
	p := &Portal{
		Identity:  &IdentityService{slots: slots, now: opts.Now, verifyPasswords: opts.VerifyPasswords},
		Questions: bank,
		Exams:     &ExamCatalog{slots: slots, bank: bank},
		Attempts:  &AttemptLog{slots: slots, now: opts.Now},
		Grades:    &GradeLedger{slots: slots, now: opts.Now},
		Messages:  &MessageLog{slots: slots, now: opts.Now},
		slots:     slots,
		log:       opts.Log,
		now:       opts.Now,
	}

	seeded, err := p.Questions.SeedQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed questions: %w", err)
	}
	if seeded {
		p.log.Info("Seeded question bank", "count", seedQuestionCount)
	}

	seeded, err = p.Exams.SeedExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed exams: %w", err)
	}
	if seeded {
		p.log.Info("Seeded exam catalog", "count", len(examTitles))
	}
	return p, nil
}

func (p *Portal) Now() time.Time { return p.now() }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
