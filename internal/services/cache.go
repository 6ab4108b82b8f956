package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned for absent keys and when no cache is
// configured at all; callers recompute either way.
var ErrCacheMiss = errors.New("cache miss")

// CacheService memoizes built datasets and reports between runs. The
// client may be nil, in which case every Get misses and every Set is a
// no-op: the pipeline works the same without Redis, just colder.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

func (s *CacheService) Enabled() bool {
	return s.client != nil
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if s.client == nil {
		return ErrCacheMiss
	}
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

// Cache key generators
func FeatureRowsCacheKey(runID string) string {
	return fmt.Sprintf("features:%s", runID)
}

func ReportCacheKey(runID string) string {
	return fmt.Sprintf("report:%s", runID)
}

func LatestRunCacheKey(teamID int) string {
	return fmt.Sprintf("latest_run:%d", teamID)
}
