package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/task-insights-api/internal/database"
	"github.com/yukikurage/task-insights-api/internal/models"
)

// likeEscaper makes a keyword match literally inside a LIKE pattern. '!' is
// the escape character since a backslash literal is not portable to MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task and links it to tagIDs
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task, tagIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return linkTags(tx, task.ID, tagIDs)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = preloadRelation(query, p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination. The total ignores pagination.
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.UserID != nil {
		query = query.Where("tasks.user_id = ?", *filter.UserID)
	}
	if filter.CategoryID != nil {
		query = query.Where("tasks.category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.TagID != nil {
		tagSubQuery := r.db.Model(&models.TaskTag{}).
			Select("1").
			Where("task_tags.task_id = tasks.id").
			Where("task_tags.tag_id = ?", *filter.TagID)
		query = query.Where("EXISTS (?)", tagSubQuery)
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", filter.DueFrom.UTC())
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date <= ?", filter.DueTo.UTC())
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
		query = query.Where("(LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.id ASC").Scopes(database.Paginate(filter.Page, filter.PageSize))

	tasks := []models.Task{}
	err := preloadRelation(listQuery.Preload("User").Preload("Category"), "Tags").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task's own columns. Tag links are rewritten only when
// tagIDs is non-nil.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task, tagIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		return linkTags(tx, task.ID, tagIDs)
	})
}

// Delete deletes a task and its tag associations
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddTag associates a tag with a task
func (r *GormTaskRepository) AddTag(ctx context.Context, taskID, tagID uint64) error {
	return linkTags(r.db.WithContext(ctx), taskID, []uint64{tagID})
}

// RemoveTag removes a tag association; removing a missing association is not an error
func (r *GormTaskRepository) RemoveTag(ctx context.Context, taskID, tagID uint64) error {
	return r.db.WithContext(ctx).
		Where("task_id = ? AND tag_id = ?", taskID, tagID).
		Delete(&models.TaskTag{}).Error
}

// CountByStatus groups tasks by status. Statuses without tasks are absent.
func (r *GormTaskRepository) CountByStatus(ctx context.Context, userID *uint64) ([]StatusCount, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var counts []StatusCount
	err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&counts).Error
	return counts, err
}

// CountByUser counts all tasks owned by a user
func (r *GormTaskRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByUserAndStatus counts a user's tasks in one status
func (r *GormTaskRepository) CountByUserAndStatus(ctx context.Context, userID uint64, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// CountByPriority groups tasks by priority, counting a missing priority as 0
func (r *GormTaskRepository) CountByPriority(ctx context.Context, userID *uint64) ([]PriorityCount, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var counts []PriorityCount
	err := query.
		Select("COALESCE(priority, 0) AS priority, COUNT(*) AS count").
		Group("COALESCE(priority, 0)").
		Order("COALESCE(priority, 0) ASC").
		Scan(&counts).Error
	return counts, err
}

// CountOverdue counts tasks that are neither completed nor cancelled and
// whose due date lies strictly before now. Times are stored in UTC, so the
// bound is converted too; SQLite compares them as text.
func (r *GormTaskRepository) CountOverdue(ctx context.Context, now time.Time, userID *uint64) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("status NOT IN ?", []models.TaskStatus{models.TaskStatusCompleted, models.TaskStatusCancelled}).
		Where("due_date IS NOT NULL AND due_date < ?", now.UTC())
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// ListCompletedBetween lists completed tasks whose completion time falls in [start, end]
func (r *GormTaskRepository) ListCompletedBetween(ctx context.Context, start, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("status = ?", models.TaskStatusCompleted).
		Where("completed_at IS NOT NULL AND completed_at >= ? AND completed_at <= ?", start.UTC(), end.UTC()).
		Order("completed_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// linkTags inserts task_tags rows, skipping links that already exist
func linkTags(db *gorm.DB, taskID uint64, tagIDs []uint64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]models.TaskTag, len(tagIDs))
	for i, tagID := range tagIDs {
		links[i] = models.TaskTag{TaskID: taskID, TagID: tagID}
	}

	return db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "tag_id"}},
			DoNothing: true,
		}).
		Create(&links).Error
}

// preloadRelation preloads one relation; tags come back in ID order
func preloadRelation(db *gorm.DB, relation string) *gorm.DB {
	if relation == "Tags" {
		return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id ASC")
		})
	}
	return db.Preload(relation)
}
