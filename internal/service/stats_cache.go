package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"exam-hub/internal/cache"
	"exam-hub/internal/domain"
	"exam-hub/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StatsCache memoises aggregate stats in the shared cache. Entries are keyed
// by a global generation that every content mutation bumps, so a write
// invalidates all stats at once and stale entries simply expire.
// A nil cache disables caching. Cache faults are logged and never returned.
type StatsCache struct {
	cache domain.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewStatsCache creates a StatsCache. c may be nil.
func NewStatsCache(c domain.Cache, ttl time.Duration) *StatsCache {
	return &StatsCache{cache: c, ttl: ttl}
}

// Invalidate starts a new generation.
func (s *StatsCache) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, cache.StatsGenerationKey()); err != nil {
		logger.Get().Warn("StatsCache: failed to bump generation", zap.Error(err))
	}
}

func (s *StatsCache) generation(ctx context.Context) (int64, error) {
	raw, err := s.cache.Get(ctx, cache.StatsGenerationKey())
	if errors.Is(err, domain.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// loadStats returns the cached value for kind/id or computes and stores it.
// Concurrent misses for the same entry share one computation.
func loadStats[T any](ctx context.Context, s *StatsCache, kind, id string, compute func(ctx context.Context) (*T, error)) (*T, error) {
	if s == nil || s.cache == nil {
		return compute(ctx)
	}

	gen, err := s.generation(ctx)
	if err != nil {
		logger.Get().Warn("StatsCache: generation unavailable, bypassing cache", zap.Error(err))
		return compute(ctx)
	}
	key := cache.StatsKey(kind, id, gen)

	raw, err, _ := s.group.Do(key, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			return []byte(cached), nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("StatsCache: read failed", zap.String("key", key), zap.Error(err))
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
			logger.Get().Warn("StatsCache: write failed", zap.String("key", key), zap.Error(err))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw.([]byte), &out); err != nil {
		logger.Get().Warn("StatsCache: discarding undecodable entry", zap.String("key", key), zap.Error(err))
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Get().Warn("StatsCache: delete failed", zap.String("key", key), zap.Error(err))
		}
		return compute(ctx)
	}
	return &out, nil
}
