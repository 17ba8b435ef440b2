package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taskify/server/internal/cache"
	"taskify/server/internal/config"
	"taskify/server/internal/database"
	"taskify/server/internal/middleware"
	"taskify/server/internal/monitoring"
	"taskify/server/internal/repositories"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// App owns the process-wide resources. Everything a request needs is built
// once in New and handed to the router.
type App struct {
	cfg     *config.Config
	pool    *database.DatabasePool
	redis   *redis.Client
	cache   *cache.RedisCache
	metrics *metricsBundle
	tokens  *services.TokenManager
	auth    services.AuthService
	tasks   services.TaskService
	limits  limiterStores
	router  *gin.Engine
}

type metricsBundle struct {
	requests *monitoring.Metrics
	health   *monitoring.HealthChecker
}

type limiterStores struct {
	global middleware.LimiterStore
	auth   middleware.LimiterStore
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{cfg: cfg, pool: pool}

	if cfg.Redis.Enabled {
		a.redis = cache.NewRedisClient(&cache.CacheConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close(context.Background())
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.cache = cache.NewRedisCache(a.redis, cache.NewCircuitBreaker(nil))
	}

	a.tokens = services.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	a.auth = services.NewAuthService(repositories.NewUserRepository(pool.DB), a.tokens, cfg.Auth.BCryptCost)

	a.tasks = services.NewTaskService(repositories.NewTaskRepository(pool.DB))
	if a.cache != nil {
		a.tasks = services.NewCachedTaskService(a.tasks, a.cache, cfg.Cache.TaskListTTL)
	}

	if cfg.RateLimit.Enabled {
		a.limits = a.newLimiterStores()
	}

	a.metrics = &metricsBundle{
		requests: monitoring.NewMetrics(),
		health:   monitoring.NewHealthChecker(5 * time.Second),
	}
	a.metrics.health.Register("database", pool.Health)
	if a.cache != nil {
		a.metrics.health.Register("redis", a.cache.Health)
	}

	a.router = a.routes()

	return a, nil
}

func (a *App) newLimiterStores() limiterStores {
	rl := a.cfg.RateLimit
	if rl.Store == "redis" && a.redis != nil {
		return limiterStores{
			global: middleware.NewRedisStore(a.redis, "global", rl.MaxRequests, rl.Window),
			auth:   middleware.NewRedisStore(a.redis, "auth", rl.AuthMaxRequests, rl.Window),
		}
	}
	return limiterStores{
		global: middleware.NewMemoryStore(rl.MaxRequests, rl.Window),
		auth:   middleware.NewMemoryStore(rl.AuthMaxRequests, rl.Window),
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases Redis before the database pool. It is safe to call on a
// partially built App.
func (a *App) Close(ctx context.Context) error {
	_ = ctx
	var errs []error

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Println("application resources released")
	return nil
}
