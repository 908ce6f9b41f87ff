package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopsim/internal/config"
	"github.com/mamadbah2/shopsim/internal/service/reporting"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	spec         string
	location     *time.Location
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reportingSvc *reporting.Service, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// standard 5-field cron expressions (min, hour, dom, month, dow)
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:         c,
		reportingSvc: reportingSvc,
		spec:         cfg.CronSchedule,
		location:     loc,
		logger:       logger,
	}, nil
}

// Start registers the sales summary job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.spec, s.logDailySummary); err != nil {
		return fmt.Errorf("schedule sales summary %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) logDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.reportingSvc.DailySummary(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.Error("failed to generate sales summary", zap.Error(err))
		return
	}

	s.logger.Info(summary.String(),
		zap.Int("orders", summary.Orders),
		zap.Int("units", summary.Units),
		zap.String("total", summary.Total.StringFixed(2)))
}
