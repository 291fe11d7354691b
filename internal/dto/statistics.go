package dto

import (
	"strconv"

	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/services"
)

// CompletionRateResponse is returned by GET /statistics/user/:userId/completion-rate
type CompletionRateResponse struct {
	UserID         uint64  `json:"user_id"`
	TotalTasks     int64   `json:"total_tasks"`
	CompletedTasks int64   `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

// OverdueResponse carries an overdue task count; UserID is set for per-user counts
type OverdueResponse struct {
	UserID       *uint64 `json:"user_id,omitempty"`
	OverdueTasks int64   `json:"overdue_tasks"`
}

func ToCompletionRateResponse(rate services.CompletionRate) CompletionRateResponse {
	return CompletionRateResponse{
		UserID:         rate.UserID,
		TotalTasks:     rate.TotalTasks,
		CompletedTasks: rate.CompletedTasks,
		CompletionRate: rate.Rate,
	}
}

// ToStatusDistribution keys the distribution by status name
func ToStatusDistribution(distribution map[models.TaskStatus]int64) map[string]int64 {
	out := make(map[string]int64, len(distribution))
	for status, count := range distribution {
		out[string(status)] = count
	}
	return out
}

// ToPriorityDistribution keys the distribution by the decimal priority
func ToPriorityDistribution(distribution map[int]int64) map[string]int64 {
	out := make(map[string]int64, len(distribution))
	for priority, count := range distribution {
		out[strconv.Itoa(priority)] = count
	}
	return out
}
