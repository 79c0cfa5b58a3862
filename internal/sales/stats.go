package sales

import (
	"context"
	"fmt"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/settings"

	"go.uber.org/zap"
)

type StatsSource interface {
	DailySalesStats(ctx context.Context) (api.DailySalesStats, error)
}

// Stats serves the daily sales figures, reusing a copy saved in settings
// until it goes stale.
type Stats struct {
	source StatsSource
	store  *settings.Store
	key    settings.Key[api.DailySalesStats]
	logger *zap.Logger
}

func NewStats(client *api.Client, store *settings.Store, cfg config.Config, logger *zap.Logger) *Stats {
	return newStats(client, store, cfg.StatsTTL, logger)
}

func newStats(source StatsSource, store *settings.Store, ttl time.Duration, logger *zap.Logger) *Stats {
	return &Stats{
		source: source,
		store:  store,
		key:    settings.Key[api.DailySalesStats]{Name: "sales.stats.daily", TTL: ttl},
		logger: logger.Named("sales"),
	}
}

// Daily returns cached stats when fresh, otherwise fetches and caches them.
// The bool reports whether the value came from the cache.
func (s *Stats) Daily(ctx context.Context) (api.DailySalesStats, bool, error) {
	cached, ok, err := settings.Get(ctx, s.store, s.key)
	if err != nil {
		s.logger.Warn("read cached stats", zap.Error(err))
	}
	if ok {
		return cached, true, nil
	}
	stats, err := s.Refresh(ctx)
	return stats, false, err
}

// Refresh always goes to the server and replaces the cached copy.
func (s *Stats) Refresh(ctx context.Context) (api.DailySalesStats, error) {
	stats, err := s.source.DailySalesStats(ctx)
	if err != nil {
		s.logger.Error("fetch daily stats", zap.Error(err))
		return api.DailySalesStats{}, fmt.Errorf("fetch daily stats: %w", err)
	}
	if err := settings.Set(ctx, s.store, s.key, stats); err != nil {
		s.logger.Warn("cache daily stats", zap.Error(err))
	}
	return stats, nil
}

func (s *Stats) Invalidate(ctx context.Context) error {
	return settings.Delete(ctx, s.store, s.key)
}
