package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kursplatform/kurs-api/internal/models"
	appErrors "github.com/kursplatform/kurs-api/pkg/errors"
)

type statsRepository interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// StatsService serves the admin dashboard counters with a short-lived
// Redis cache in front of the database aggregates.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// PlatformStats returns the four headline counters. The bool reports
// whether the payload came from cache.
func (s *StatsService) PlatformStats(ctx context.Context) (*models.PlatformStats, bool, error) {
	var cached models.PlatformStats
	if hit, err := s.cache.Get(ctx, CacheKeyStats, &cached); err == nil && hit {
		return &cached, true, nil
	}

	stats, err := s.repo.PlatformStats(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load platform stats")
	}

	if err := s.cache.Set(ctx, CacheKeyStats, stats, s.ttl); err != nil {
		s.logger.Warn("failed to cache platform stats", zap.Error(err))
	}
	return stats, false, nil
}
