package redis

import (
	"context"
	"errors"

	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/pkg/circuitbreaker"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache implements query.StatsCache on Redis. Reads and writes go
// through a circuit breaker so a Redis outage degrades to recomputing
// statistics instead of piling up timeouts.
type StatsCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewStatsCache creates a new StatsCache.
func NewStatsCache(cache *Cache, log *logger.Logger) *StatsCache {
	return &StatsCache{
		cache: cache,
		breaker: circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("cache circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		log: log.With(logger.Component("stats_cache")),
	}
}

// Get returns the cached statistics for a course, if present.
func (c *StatsCache) Get(ctx context.Context, courseID string) (*query.CourseStatsDTO, bool) {
	result, err := c.breaker.Execute(func() (any, error) {
		var stats query.CourseStatsDTO
		if err := c.cache.Get(ctx, StatsKey(courseID), &stats); err != nil {
			return nil, err
		}
		return &stats, nil
	})
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Debug("stats cache read failed",
				logger.CourseID(courseID),
				logger.Err(err),
			)
		}
		return nil, false
	}
	return result.(*query.CourseStatsDTO), true
}

// Set stores computed statistics. Failures are logged and swallowed.
func (c *StatsCache) Set(ctx context.Context, stats *query.CourseStatsDTO) {
	if stats == nil {
		return
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.cache.Set(ctx, StatsKey(stats.CourseID), stats, TTLStatsCache)
	})
	if err != nil {
		c.log.Debug("stats cache write failed",
			logger.CourseID(stats.CourseID),
			logger.Err(err),
		)
	}
}
