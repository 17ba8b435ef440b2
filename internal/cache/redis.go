package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisClient builds the process-wide client shared by the cache, the
// rate limiter and the readiness check.
func NewRedisClient(config *CacheConfig) *redis.Client {
	if config == nil {
		config = DefaultCacheConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})
}

// RedisCache stores JSON values in Redis. Calls go through a circuit breaker
// so an unreachable Redis fails fast instead of stalling every request.
type RedisCache struct {
	client  *redis.Client
	breaker *CircuitBreaker
	metrics *CacheMetrics
	timeout time.Duration
}

func NewRedisCache(client *redis.Client, breaker *CircuitBreaker) *RedisCache {
	if breaker == nil {
		breaker = NewCircuitBreaker(nil)
	}
	return &RedisCache{
		client:  client,
		breaker: breaker,
		metrics: NewCacheMetrics(),
		timeout: 3 * time.Second,
	}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	err = r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.client.Set(ctx, key, data, expiration).Err()
	})
	if err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to set cache: %w", err)
	}

	r.metrics.RecordSet()
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	miss := false

	err := r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		var err error
		data, err = r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// a miss is a healthy answer
			miss = true
			return nil
		}
		return err
	})
	if err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to get from cache: %w", err)
	}
	if miss {
		r.metrics.RecordMiss()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	r.metrics.RecordHit()
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	err := r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to delete from cache: %w", err)
	}

	r.metrics.RecordDelete()
	return nil
}

func (r *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Metrics() *CacheMetrics {
	return r.metrics
}

func (r *RedisCache) Stats() map[string]interface{} {
	poolStats := r.client.PoolStats()
	stats := r.metrics.Snapshot()

	return map[string]interface{}{
		"hits":            stats.Hits,
		"misses":          stats.Misses,
		"errors":          stats.Errors,
		"sets":            stats.Sets,
		"deletes":         stats.Deletes,
		"hit_rate":        stats.HitRate(),
		"circuit_breaker": r.breaker.GetStats(),
		"pool_hits":       poolStats.Hits,
		"pool_misses":     poolStats.Misses,
		"pool_timeouts":   poolStats.Timeouts,
		"pool_total":      poolStats.TotalConns,
		"pool_idle":       poolStats.IdleConns,
		"pool_stale":      poolStats.StaleConns,
	}
}
