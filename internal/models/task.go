package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Open reports whether a task in this status still counts as outstanding work.
func (s TaskStatus) Open() bool {
	return s != TaskStatusCompleted && s != TaskStatusCancelled
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:varchar(1000)" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Priority    *int       `json:"priority"`
	DueDate     *time.Time `gorm:"index" json:"due_date"`
	CompletedAt *time.Time `gorm:"index" json:"completed_at"`
	UserID      *uint64    `gorm:"index" json:"user_id"`
	CategoryID  *uint64    `gorm:"index" json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []Tag     `gorm:"many2many:task_tags;" json:"tags,omitempty"`
}

// SetStatus changes the status and keeps CompletedAt in step with it.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	t.Status = status
	if status == TaskStatusCompleted {
		completedAt := now.UTC()
		t.CompletedAt = &completedAt
	} else {
		t.CompletedAt = nil
	}
}

// BeforeCreate defaults the status of new tasks.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	return nil
}

// BeforeSave keeps CompletedAt set exactly when the task is completed and
// stores both timestamps in UTC.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Status == TaskStatusCompleted {
		if t.CompletedAt == nil {
			now := time.Now()
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	t.DueDate = toUTC(t.DueDate)
	t.CompletedAt = toUTC(t.CompletedAt)
	return nil
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
