package dto

import (
	"time"

	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
)

// TagDTO represents a tag in API responses. TaskCount is only filled on
// usage listings.
type TagDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	TaskCount *int64    `json:"task_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagRequest is the body of POST and PUT /tags
type TagRequest struct {
	Name  string `json:"name" binding:"required,notblank,max=50"`
	Color string `json:"color" binding:"max=20"`
}

func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:        tag.ID,
		Name:      tag.Name,
		Color:     tag.Color,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}

func ToTagDTOs(tags []models.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, tag := range tags {
		dtos[i] = ToTagDTO(tag)
	}
	return dtos
}

// ToTagUsageDTOs converts usage rows, keeping their order
func ToTagUsageDTOs(usage []repository.TagUsage) []TagDTO {
	dtos := make([]TagDTO, len(usage))
	for i, u := range usage {
		dtos[i] = ToTagDTO(u.Tag)
		count := u.TaskCount
		dtos[i].TaskCount = &count
	}
	return dtos
}
