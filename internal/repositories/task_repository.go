package repositories

import (
	"context"
	"fmt"

	"taskify/server/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskRepository scopes every lookup and write by (task id, owner id), so a
// task owned by someone else is indistinguishable from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error)
	FindOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error)
	UpdateOwned(ctx context.Context, task *models.Task) error
	DeleteOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error)
}

type GormTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's tasks newest first; id breaks ties.
func (r *GormTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *GormTaskRepository) FindOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	return findOwned(r.db.WithContext(ctx), ownerID, taskID)
}

// UpdateOwned writes title, description, status and updated_at. The owner
// column is never part of the update.
func (r *GormTaskRepository) UpdateOwned(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned removes the task permanently and returns what was deleted.
func (r *GormTaskRepository) DeleteOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	var deleted *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findOwned(tx, ownerID, taskID)
		if err != nil {
			return err
		}

		result := tx.Where("id = ? AND user_id = ?", taskID, ownerID).Delete(&models.Task{})
		if result.Error != nil {
			return fmt.Errorf("delete task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func findOwned(db *gorm.DB, ownerID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", taskID, ownerID).First(&task).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}
