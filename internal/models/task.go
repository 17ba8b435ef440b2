package models

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Task is owned by exactly one user. Status is the only stored completion
// state; Completed is derived from it.
type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Description string     `json:"description" gorm:"size:500"`
	Status      TaskStatus `json:"status" gorm:"size:16;not null;default:'pending'"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"not null;index"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		t.ID = id
	}
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	type taskView Task
	return json.Marshal(struct {
		taskView
		Completed bool `json:"completed"`
	}{
		taskView:  taskView(t),
		Completed: t.Completed(),
	})
}
