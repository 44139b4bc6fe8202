// Package sweeper purges expired share links in the background, giving
// storage-level TTL behavior independent of the lazy check performed on
// every resolve.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/repository"
)

type Sweeper struct {
	repo     repository.Repository
	interval time.Duration
	logger   *zap.Logger
}

func New(repo repository.Repository, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on a ticker until the context is cancelled. Errors are
// logged and the loop keeps going; a failed sweep only delays cleanup,
// since resolve checks expiry itself.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("share link sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("share link sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.repo.DeleteExpiredShareLinks(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Warn("share link sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("purged expired share links", zap.Int64("count", deleted))
	}
}
