package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger drops expired entries from a cache and reports how many went.
type Purger interface {
	Purge() int
}

// Sweeper periodically deletes finished jobs older than the retention
// window and purges expired cache entries.
type Sweeper struct {
	store     Store
	retention time.Duration
	schedule  string
	purgers   []Purger
	log       *zap.SugaredLogger
	now       func() time.Time
	cron      *cron.Cron
}

// NewSweeper creates a sweeper running on a robfig/cron schedule expression such
// as "@every 10m".
func NewSweeper(store Store, retention time.Duration, schedule string, log *zap.SugaredLogger, purgers ...Purger) *Sweeper {
	return &Sweeper{
		store:     store,
		retention: retention,
		schedule:  schedule,
		purgers:   purgers,
		log:       log,
		now:       time.Now,
	}
}

// Start registers the sweep on the schedule and starts the scheduler.
func (s *Sweeper) Start() error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.SweepOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid job sweep schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Infow("job sweeper started", "schedule", s.schedule, "retention", s.retention)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// SweepOnce runs a single sweep and returns the number of jobs removed.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.store.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		s.log.Errorw("job sweep failed", "error", err, "cutoff", cutoff)
	} else if removed > 0 {
		s.log.Infow("removed finished jobs", "count", removed, "cutoff", cutoff)
	}

	for _, p := range s.purgers {
		if n := p.Purge(); n > 0 {
			s.log.Debugw("purged expired cache entries", "count", n)
		}
	}
	return removed
}
