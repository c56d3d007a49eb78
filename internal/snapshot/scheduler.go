package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs periodic exports on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	exporter *Exporter
	retain   int
	timeout  time.Duration
	logger   *zap.Logger
}

// NewScheduler registers an export on spec, a standard five-field cron
// expression or a descriptor such as "@daily". After each export at most
// retain snapshots are kept; retain <= 0 keeps all.
func NewScheduler(exp *Exporter, spec string, retain int, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		exporter: exp,
		retain:   retain,
		timeout:  5 * time.Minute,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("register snapshot schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("snapshot scheduler started")
}

// Stop stops the scheduler and waits for a running export, or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("snapshot scheduler stopped")
}

// RunNow executes one scheduled export immediately.
func (s *Scheduler) RunNow() {
	s.run()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.exporter.Export(ctx); err != nil {
		s.logger.Error("scheduled snapshot failed", zap.Error(err))
		return
	}
	if _, err := s.exporter.Prune(ctx, s.retain); err != nil {
		s.logger.Warn("snapshot prune failed", zap.Error(err))
	}
}
