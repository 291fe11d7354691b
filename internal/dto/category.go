package dto

import (
	"time"

	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
)

// CategoryDTO represents a category in API responses. TaskCount is only
// filled on usage listings.
type CategoryDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	TaskCount   *int64    `json:"task_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRequest is the body of POST and PUT /categories
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"max=20"`
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func ToCategoryDTOs(categories []models.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i, category := range categories {
		dtos[i] = ToCategoryDTO(category)
	}
	return dtos
}

// ToCategoryUsageDTOs converts usage rows, keeping their order
func ToCategoryUsageDTOs(usage []repository.CategoryUsage) []CategoryDTO {
	dtos := make([]CategoryDTO, len(usage))
	for i, u := range usage {
		dtos[i] = ToCategoryDTO(u.Category)
		count := u.TaskCount
		dtos[i].TaskCount = &count
	}
	return dtos
}
