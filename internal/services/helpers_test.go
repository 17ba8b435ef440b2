package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"taskify/server/internal/database"
	"taskify/server/internal/repositories"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestPool(t *testing.T) *database.DatabasePool {
	t.Helper()

	config := database.DefaultPoolConfig()
	config.Driver = "sqlite"
	config.DSN = ":memory:"
	config.LogLevel = logger.Silent

	pool, err := database.NewDatabasePool(config)
	require.NoError(t, err)
	require.NoError(t, pool.Migrate(context.Background()))
	t.Cleanup(func() { pool.Close() })
	return pool
}

func newRepositories(t *testing.T) (*repositories.GormUserRepository, *repositories.GormTaskRepository, *database.DatabasePool) {
	pool := newTestPool(t)
	return repositories.NewUserRepository(pool.DB), repositories.NewTaskRepository(pool.DB), pool
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var testCost = bcrypt.MinCost
