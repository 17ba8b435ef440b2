package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"taskify/server/internal/cache"
	"taskify/server/internal/models"

	"github.com/gofrs/uuid"
)

// TaskListCache is the subset of cache.RedisCache the task layer uses.
type TaskListCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedTaskService keeps each owner's task list in the cache and drops it
// whenever that owner writes. Cache trouble is logged and never surfaces to
// the caller.
//
// A list read from the store is only cached if no write finished while it
// was being read. The guard covers writes through this instance; writes from
// other instances are bounded by the TTL.
type CachedTaskService struct {
	taskService TaskService
	cache       TaskListCache
	ttl         time.Duration

	mu         sync.RWMutex
	generation uint64
}

func NewCachedTaskService(taskService TaskService, cache TaskListCache, ttl time.Duration) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cache,
		ttl:         ttl,
	}
}

func userTasksKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s", ownerID.String())
}

func (s *CachedTaskService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	key := userTasksKey(ownerID)

	s.mu.RLock()
	generation := s.generation
	s.mu.RUnlock()

	var cached []models.Task
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		if cached == nil {
			cached = []models.Task{}
		}
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("task cache read failed for %s: %v", key, err)
	}

	tasks, err := s.taskService.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation != generation {
		return tasks, nil
	}
	if err := s.cache.Set(ctx, key, tasks, s.ttl); err != nil {
		log.Printf("task cache write failed for %s: %v", key, err)
	}
	return tasks, nil
}

func (s *CachedTaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	return s.taskService.Get(ctx, ownerID, taskID)
}

func (s *CachedTaskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	task, err := s.taskService.Create(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return task, nil
}

func (s *CachedTaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskService.Update(ctx, ownerID, taskID, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return task, nil
}

func (s *CachedTaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*DeletedTask, error) {
	deleted, err := s.taskService.Delete(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return deleted, nil
}

// invalidate runs after a committed write. Bumping the generation waits for
// in-flight cache fills, so the delete below always lands after them.
func (s *CachedTaskService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	key := userTasksKey(ownerID)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("task cache invalidation failed for %s: %v", key, err)
	}
}
