package services

import (
	"context"
	"errors"
	"time"

	"taskify/server/internal/models"
	"taskify/server/internal/repositories"

	"github.com/gofrs/uuid"
)

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *string
}

// UpdateTaskInput carries only the fields the client sent. Completed is
// ignored when Status is also set.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Completed   *bool
}

type DeletedTask struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type TaskService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*models.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*DeletedTask, error)
}

type taskService struct {
	tasks repositories.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks repositories.TaskRepository) TaskService {
	return NewTaskServiceWithClock(tasks, time.Now)
}

func NewTaskServiceWithClock(tasks repositories.TaskRepository, now func() time.Time) TaskService {
	return &taskService{tasks: tasks, now: now}
}

// timestamp is truncated to what Postgres stores, so a write's response
// matches later reads.
func (s *taskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *taskService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *taskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.FindOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFound(err)
	}
	return task, nil
}

func (s *taskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	v := &ValidationError{}
	title := validateTitle(v, input.Title, "Title is required and must be at most 100 characters")
	description := validateDescription(v, input.Description)
	status := validateStatus(v, input.Status)
	if err := v.orNil(); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.TaskStatusPending
	}

	now := s.timestamp()
	task := &models.Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	v := &ValidationError{}
	var title string
	if input.Title != nil {
		title = validateTitle(v, *input.Title, "Title must be between 1 and 100 characters")
	}
	description := validateDescription(v, input.Description)
	status := validateStatus(v, input.Status)
	if err := v.orNil(); err != nil {
		return nil, err
	}
	if input.Status == nil && input.Completed != nil {
		status = models.TaskStatusPending
		if *input.Completed {
			status = models.TaskStatusCompleted
		}
	}

	task, err := s.tasks.FindOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFound(err)
	}

	if input.Title != nil {
		task.Title = title
	}
	if input.Description != nil {
		task.Description = description
	}
	if status != "" {
		task.Status = status
	}
	task.UpdatedAt = s.timestamp()

	if err := s.tasks.UpdateOwned(ctx, task); err != nil {
		return nil, notFound(err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*DeletedTask, error) {
	task, err := s.tasks.DeleteOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFound(err)
	}
	return &DeletedTask{ID: task.ID, Title: task.Title}, nil
}

func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
