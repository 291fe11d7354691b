package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-insights-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByID reports whether a user with the given ID exists
	ExistsByID(ctx context.Context, id uint64) (bool, error)

	// ExistsByUsername reports whether the username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is taken
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List lists users, optionally restricted to active users or one role
	List(ctx context.Context, filter UserFilter) ([]models.User, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user together with the tasks it owns
	Delete(ctx context.Context, id uint64) error

	// CountTasks counts the tasks owned by a user
	CountTasks(ctx context.Context, userID uint64) (int64, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	ActiveOnly bool
	Role       *models.UserRole
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uint64) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Category, error)

	// ListWithTaskCount lists categories ordered by descending task count
	ListWithTaskCount(ctx context.Context) ([]CategoryUsage, error)

	Update(ctx context.Context, category *models.Category) error

	// Delete deletes a category and detaches it from its tasks
	Delete(ctx context.Context, id uint64) error
}

// CategoryUsage pairs a category with the number of tasks referencing it
type CategoryUsage struct {
	Category  models.Category
	TaskCount int64
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	FindByID(ctx context.Context, id uint64) (*models.Tag, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]models.Tag, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Tag, error)

	// ListWithTaskCount lists tags ordered by descending task count
	ListWithTaskCount(ctx context.Context) ([]TagUsage, error)

	Update(ctx context.Context, tag *models.Tag) error

	// Delete deletes a tag and its task associations
	Delete(ctx context.Context, id uint64) error
}

// TagUsage pairs a tag with the number of tasks carrying it
type TagUsage struct {
	Tag       models.Tag
	TaskCount int64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task and links it to tagIDs in one transaction
	Create(ctx context.Context, task *models.Task, tagIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task's own columns. A non-nil tagIDs replaces the
	// task's tag links in the same transaction.
	Update(ctx context.Context, task *models.Task, tagIDs []uint64) error

	// Delete deletes a task and its tag associations
	Delete(ctx context.Context, id uint64) error

	// AddTag associates a tag with a task; an existing association is kept as is
	AddTag(ctx context.Context, taskID, tagID uint64) error

	// RemoveTag removes a tag association
	RemoveTag(ctx context.Context, taskID, tagID uint64) error

	// CountByStatus groups tasks by status, optionally scoped to one user
	CountByStatus(ctx context.Context, userID *uint64) ([]StatusCount, error)

	// CountByUser counts all tasks owned by a user
	CountByUser(ctx context.Context, userID uint64) (int64, error)

	// CountByUserAndStatus counts a user's tasks in one status
	CountByUserAndStatus(ctx context.Context, userID uint64, status models.TaskStatus) (int64, error)

	// CountByPriority groups tasks by priority (missing priority counts as 0)
	CountByPriority(ctx context.Context, userID *uint64) ([]PriorityCount, error)

	// CountOverdue counts open tasks whose due date is before now
	CountOverdue(ctx context.Context, now time.Time, userID *uint64) (int64, error)

	// ListCompletedBetween lists completed tasks whose completion time falls in [start, end]
	ListCompletedBetween(ctx context.Context, start, end time.Time) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID     *uint64
	CategoryID *uint64
	TagID      *uint64
	Status     *models.TaskStatus
	DueFrom    *time.Time
	DueTo      *time.Time
	Keyword    string
	Page       int
	PageSize   int
}

// StatusCount is one row of a status distribution
type StatusCount struct {
	Status models.TaskStatus
	Count  int64
}

// PriorityCount is one row of a priority distribution
type PriorityCount struct {
	Priority int
	Count    int64
}
