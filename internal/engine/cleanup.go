package engine

import (
	"context"
	"errors"
	"time"

	"docgen/internal/domain"
	"docgen/internal/infra"
)

// CleanupScheduler periodically deletes terminal requests past the retention
// window. It is row-only: document blobs in the content store are left to a
// separate content retention policy. Non-terminal rows are never touched, no
// matter how old; a stuck IN_PROGRESS row belongs to the claim coordinator.
type CleanupScheduler struct {
	repo      domain.RequestRepository
	clock     Clock
	logger    infra.Logger
	interval  time.Duration
	retention time.Duration
}

func NewCleanupScheduler(repo domain.RequestRepository, clock Clock, logger infra.Logger, interval, retention time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		repo:      repo,
		clock:     clock,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}
}

// Run executes RunOnce on a fixed ticker until ctx is cancelled.
func (s *CleanupScheduler) Run(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("retention", s.retention).
		Msg("cleanup: scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cleanup: scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Msg("cleanup: pass failed")
			}
		}
	}
}

// RunOnce deletes expired terminal rows and reports how many went away.
func (s *CleanupScheduler) RunOnce(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	deleted, err := s.repo.DeleteExpired(ctx, now.Add(-s.retention), now)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("cleanup: removed expired requests")
	}
	return deleted, nil
}
