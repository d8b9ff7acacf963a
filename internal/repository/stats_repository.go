package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/pkg/cache"
)

// StatsRepository provides provider network statistics with a Redis cache in
// front of PostgreSQL.
type StatsRepository struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool, redis *redis.Client, ttl time.Duration, log *zap.Logger) *StatsRepository {
	return &StatsRepository{pool: pool, redis: redis, ttl: ttl, log: log.Named("stats")}
}

const redisStatsKey = "providers:stats"

// ProviderStats returns totals, average rating and type distribution.
//
// Strategy:
//  1. Try Redis cache first.
//  2. On cache miss (or Redis error), query PostgreSQL, then cache the result.
func (r *StatsRepository) ProviderStats(ctx context.Context) (*model.ProviderStats, error) {
	// ── Fast path: Redis cache ──────────────────────────
	var cached model.ProviderStats
	err := cache.GetJSON(ctx, r.redis, redisStatsKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.log.Warn("stats cache read failed, falling back to postgres", zap.Error(err))
	}

	// ── Slow path: aggregate query ──────────────────────
	stats, err := r.queryStats(ctx)
	if err != nil {
		return nil, err
	}

	// Fire-and-forget cache write.
	if err := cache.SetJSON(ctx, r.redis, redisStatsKey, stats, r.ttl); err != nil {
		r.log.Warn("stats cache write failed", zap.Error(err))
	}

	return stats, nil
}

func (r *StatsRepository) queryStats(ctx context.Context) (*model.ProviderStats, error) {
	stats := &model.ProviderStats{TypeDistribution: []model.TypeCount{}}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int,
		       (COUNT(*) FILTER (WHERE is_available))::int,
		       COALESCE(ROUND(AVG(rating), 2), 0)::float8,
		       COALESCE(SUM(total_jobs), 0)::int
		FROM service_providers
	`).Scan(&stats.TotalProviders, &stats.AvailableProviders, &stats.AverageRating, &stats.TotalJobs)
	if err != nil {
		return nil, fmt.Errorf("query provider stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT provider_type, COUNT(*)::int
		FROM service_providers
		GROUP BY provider_type
		ORDER BY provider_type
	`)
	if err != nil {
		return nil, fmt.Errorf("query provider type distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc model.TypeCount
		if err := rows.Scan(&tc.ProviderType, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		stats.TypeDistribution = append(stats.TypeDistribution, tc)
	}
	return stats, rows.Err()
}

// InvalidateStats clears the cached statistics. Call after any write that
// changes provider counters.
func (r *StatsRepository) InvalidateStats(ctx context.Context) {
	_ = r.redis.Del(ctx, redisStatsKey).Err()
}
