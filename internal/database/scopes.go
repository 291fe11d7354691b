package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/utils"
)

// Paginate limits a query to one 1-based page. A non-positive page or size
// leaves the query unpaginated; otherwise both are clamped like request
// parameters.
func Paginate(page, size int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || size <= 0 {
			return db
		}
		params := utils.NewPaginationParams(page, size)
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
