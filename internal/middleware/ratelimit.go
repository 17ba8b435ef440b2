package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"taskify/server/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// LimiterStore decides whether one more request from key fits in its budget.
// retryAfter is only meaningful when allowed is false.
type LimiterStore interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit rejects over-budget clients with 429 and the given message. A
// failing store lets the request through.
func RateLimit(store LimiterStore, message string) gin.HandlerFunc {
	// one log line per interval while the store is down
	storeErrors := &rate.Sometimes{First: 1, Interval: 10 * time.Second}

	return func(c *gin.Context) {
		allowed, retryAfter, err := store.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			storeErrors.Do(func() {
				log.Printf("rate limiter unavailable, allowing requests: %v", err)
			})
			c.Next()
			return
		}

		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewError(
				dto.CodeRateLimited, message))
			return
		}

		c.Next()
	}
}

type counter struct {
	start time.Time
	count int
}

// MemoryStore counts requests per key in fixed windows, matching RedisStore
// for a single instance. A window opens on a key's first request; expired
// windows are dropped during Allow.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*counter
	limit     int
	window    time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= s.window {
		w = &counter{start: now}
		s.windows[key] = w
	}

	if w.count < s.limit {
		w.count++
		return true, 0, nil
	}

	return false, w.start.Add(s.window).Sub(now), nil
}

func (s *MemoryStore) prune(now time.Time) {
	if now.Sub(s.lastPrune) < s.window {
		return
	}
	for key, w := range s.windows {
		if now.Sub(w.start) >= s.window {
			delete(s.windows, key)
		}
	}
	s.lastPrune = now
}

// Len reports how many clients are currently tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// RedisStore counts requests per key in fixed windows so every server
// instance shares one budget.
type RedisStore struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, limit int, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", s.prefix, key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("increment %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	if count <= int64(s.limit) {
		return true, 0, nil
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ttl %s: %w", redisKey, err)
	}
	if ttl < 0 {
		// the expiry was lost; start a fresh window
		if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", redisKey, err)
		}
		ttl = s.window
	}
	return false, ttl, nil
}
