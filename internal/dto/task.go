package dto

import (
	"time"

	"github.com/yukikurage/task-insights-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status"`
	Priority     *int              `json:"priority"`
	DueDate      *time.Time        `json:"due_date"`
	CompletedAt  *time.Time        `json:"completed_at"`
	UserID       *uint64           `json:"user_id"`
	Username     string            `json:"username,omitempty"`
	CategoryID   *uint64           `json:"category_id"`
	CategoryName string            `json:"category_name,omitempty"`
	Tags         []TagDTO          `json:"tags"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TaskRequest is the body of POST /tasks and PUT /tasks/:id. due_date takes
// any DateTime form. Omitting tag_ids on update keeps the current tags.
type TaskRequest struct {
	Title       string            `json:"title" binding:"required,notblank,max=255"`
	Description string            `json:"description" binding:"max=1000"`
	Status      models.TaskStatus `json:"status" binding:"omitempty,task_status"`
	Priority    *int              `json:"priority"`
	DueDate     *DateTime         `json:"due_date"`
	UserID      *uint64           `json:"user_id"`
	CategoryID  *uint64           `json:"category_id"`
	TagIDs      []uint64          `json:"tag_ids"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// TaskCountResponse is returned by GET /tasks/count/user/:userId/status/:status
type TaskCountResponse struct {
	UserID uint64            `json:"user_id"`
	Status models.TaskStatus `json:"status"`
	Count  int64             `json:"count"`
}

// ToTaskDTO converts a Task model to TaskDTO. Relations that were not
// loaded are left out.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		UserID:      task.UserID,
		CategoryID:  task.CategoryID,
		Tags:        ToTagDTOs(task.Tags),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.User != nil {
		dto.Username = task.User.Username
	}
	if task.Category != nil {
		dto.CategoryName = task.Category.Name
	}

	return dto
}

// ToTaskDTOs converts a slice of Task models
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
