// Package schedule runs the recurring maintenance jobs, currently just the
// deleted-notes purge.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/returnscoi/returns/internal/config"
)

// Purger is implemented by the notes service.
type Purger interface {
	PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error)
}

type Service struct {
	logger    *slog.Logger
	cron      *cron.Cron
	purger    Purger
	spec      string
	retention time.Duration
}

func NewService(log *slog.Logger, purger Purger, cfg config.CleanupConfig) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	retention, err := time.ParseDuration(cfg.Retention)
	if err != nil {
		return nil, fmt.Errorf("parse cleanup retention: %w", err)
	}
	if retention <= 0 {
		return nil, fmt.Errorf("cleanup retention must be positive")
	}
	return &Service{
		logger:    log.With(slog.String("service", "schedule")),
		cron:      cron.New(),
		purger:    purger,
		spec:      cfg.Schedule,
		retention: retention,
	}, nil
}

// Start registers the purge job and starts the cron loop.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runPurge)
	if err != nil {
		return fmt.Errorf("register cleanup job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("cleanup scheduled",
		slog.String("spec", s.spec),
		slog.Duration("retention", s.retention))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Service) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	count, err := s.purger.PurgeDeleted(ctx, s.retention)
	if err != nil {
		s.logger.Error("notes purge failed", slog.Any("error", err))
		return
	}
	if count > 0 {
		s.logger.Info("notes purge finished", slog.Int64("deleted", count))
	}
}
