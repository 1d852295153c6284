package jobs

import (
	"time"

	"github.com/anjiri1684/grading_portal/logger"
	"github.com/robfig/cron/v3"
)

const SweepSchedule = "*/5 * * * *"

// Pruner drops finished exam sessions older than a cutoff.
type Pruner interface {
	Prune(olderThan time.Duration) int
	Active() int
}

// SweepExamSessions forgets submitted exam sessions kept past retention.
func SweepExamSessions(p Pruner, retention time.Duration, log *logger.Logger) {
	log.Debug("Running job: SweepExamSessions")

	n := p.Prune(retention)
	if n == 0 {
		log.Debug("No finished exam sessions to sweep", "active", p.Active())
		return
	}
	log.Info("Swept finished exam sessions", "count", n, "active", p.Active())
}

// Schedule registers the sweep on a new cron scheduler. The caller starts
// and stops it.
func Schedule(p Pruner, retention time.Duration, log *logger.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(SweepSchedule, func() { SweepExamSessions(p, retention, log) }); err != nil {
		return nil, err
	}
	return c, nil
}
