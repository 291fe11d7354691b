package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/constants"
	"github.com/yukikurage/task-insights-api/internal/logger"
	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrDateRangeTooLong   = errors.New("date range is too long")
)

// utcNow is the default clock; stored timestamps are UTC.
func utcNow() time.Time { return time.Now().UTC() }

// taskPreloads are the relations returned with a single task
var taskPreloads = []string{"User", "Category", "Tags"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	log          *zap.Logger
	now          func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	log *zap.Logger,
) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		log:          log.Named("tasks"),
		now:          utcNow,
	}
}

// TaskInput represents input for creating a task or fully replacing one.
// A nil TagIDs on update keeps the current tags.
type TaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    *int
	DueDate     *time.Time
	UserID      *uint64
	CategoryID  *uint64
	TagIDs      []uint64
}

// CreateTask creates a task after resolving its user, category and tags
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	title, err := validateTaskInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, input.UserID, input.CategoryID); err != nil {
		return nil, err
	}
	tagIDs, err := s.resolveTagIDs(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	task.SetStatus(status, s.now())

	if err := s.taskRepo.Create(ctx, task, tagIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("task created", zap.Uint64("task_id", task.ID), zap.String("status", string(task.Status)))
	return s.GetTask(ctx, task.ID)
}

// GetTask returns a task with its user, category and tags
func (s *TaskService) GetTask(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns every task
func (s *TaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.list(ctx, repository.TaskFilter{})
}

// ListTasksPaginated returns one page of tasks and the total number of tasks
func (s *TaskService) ListTasksPaginated(ctx context.Context, page, pageSize int) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTasksByUser returns the tasks owned by a user
func (s *TaskService) ListTasksByUser(ctx context.Context, userID uint64) ([]models.Task, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.TaskFilter{UserID: &userID})
}

// ListTasksByUserPaginated returns one page of a user's tasks
func (s *TaskService) ListTasksByUserPaginated(ctx context.Context, userID uint64, page, pageSize int) ([]models.Task, int64, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{UserID: &userID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTasksByCategory returns the tasks filed under a category
func (s *TaskService) ListTasksByCategory(ctx context.Context, categoryID uint64) ([]models.Task, error) {
	if err := ensureCategoryExists(ctx, s.categoryRepo, categoryID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.TaskFilter{CategoryID: &categoryID})
}

// ListTasksByStatus returns the tasks in one status
func (s *TaskService) ListTasksByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.list(ctx, repository.TaskFilter{Status: &status})
}

// ListTasksDueBetween returns tasks whose due date falls within [start, end]
func (s *TaskService) ListTasksDueBetween(ctx context.Context, start, end time.Time) ([]models.Task, error) {
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	return s.list(ctx, repository.TaskFilter{DueFrom: &start, DueTo: &end})
}

// ListTasksByTag returns the tasks carrying a tag
func (s *TaskService) ListTasksByTag(ctx context.Context, tagID uint64) ([]models.Task, error) {
	if err := ensureTagExists(ctx, s.tagRepo, tagID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.TaskFilter{TagID: &tagID})
}

// SearchTasks returns a user's tasks whose title or description contains
// keyword, ignoring case. A blank keyword matches every task of the user.
func (s *TaskService) SearchTasks(ctx context.Context, userID uint64, keyword string) ([]models.Task, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.TaskFilter{UserID: &userID, Keyword: keyword})
}

// UpdateTask replaces every field of a task. An empty status keeps the
// current one; changing it goes through the same path as UpdateTaskStatus.
func (s *TaskService) UpdateTask(ctx context.Context, id uint64, input TaskInput) (*models.Task, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	title, err := validateTaskInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, input.UserID, input.CategoryID); err != nil {
		return nil, err
	}
	var tagIDs []uint64
	if input.TagIDs != nil {
		if tagIDs, err = s.resolveTagIDs(ctx, input.TagIDs); err != nil {
			return nil, err
		}
	}

	task.Title = title
	task.Description = input.Description
	task.Priority = input.Priority
	task.DueDate = input.DueDate
	task.UserID = input.UserID
	task.CategoryID = input.CategoryID
	if input.Status != "" && input.Status != task.Status {
		task.SetStatus(input.Status, s.now())
	}

	if err := s.taskRepo.Update(ctx, task, tagIDs); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("task updated", zap.Uint64("task_id", task.ID))
	return s.GetTask(ctx, task.ID)
}

// UpdateTaskStatus sets a task's status. Moving to COMPLETED stamps
// CompletedAt with the current time and any other status clears it.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := task.Status
	task.SetStatus(status, s.now())
	if err := s.taskRepo.Update(ctx, task, nil); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("task status changed",
		zap.Uint64("task_id", task.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)
	return s.GetTask(ctx, task.ID)
}

// DeleteTask deletes a task and its tag links
func (s *TaskService) DeleteTask(ctx context.Context, id uint64) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("task deleted", zap.Uint64("task_id", id))
	return nil
}

// CountTasksByUserAndStatus counts a user's tasks in one status
func (s *TaskService) CountTasksByUserAndStatus(ctx context.Context, userID uint64, status models.TaskStatus) (int64, error) {
	if !status.Valid() {
		return 0, ErrInvalidStatus
	}
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return 0, err
	}

	count, err := s.taskRepo.CountByUserAndStatus(ctx, userID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// AddTagToTask links a tag to a task. Adding a tag twice leaves one link.
func (s *TaskService) AddTagToTask(ctx context.Context, taskID, tagID uint64) (*models.Task, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}
	if err := ensureTagExists(ctx, s.tagRepo, tagID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.AddTag(ctx, taskID, tagID); err != nil {
		return nil, fmt.Errorf("failed to add tag: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("tag added to task", zap.Uint64("task_id", taskID), zap.Uint64("tag_id", tagID))
	return s.GetTask(ctx, taskID)
}

// RemoveTagFromTask unlinks a tag from a task
func (s *TaskService) RemoveTagFromTask(ctx context.Context, taskID, tagID uint64) (*models.Task, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}
	if err := ensureTagExists(ctx, s.tagRepo, tagID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.RemoveTag(ctx, taskID, tagID); err != nil {
		return nil, fmt.Errorf("failed to remove tag: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("tag removed from task", zap.Uint64("task_id", taskID), zap.Uint64("tag_id", tagID))
	return s.GetTask(ctx, taskID)
}

func (s *TaskService) list(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	tasks, _, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) findTask(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ensureReferences(ctx context.Context, userID, categoryID *uint64) error {
	if userID != nil {
		if err := ensureUserExists(ctx, s.userRepo, *userID); err != nil {
			return err
		}
	}
	if categoryID != nil {
		if err := ensureCategoryExists(ctx, s.categoryRepo, *categoryID); err != nil {
			return err
		}
	}
	return nil
}

// resolveTagIDs deduplicates ids and fails with ErrTagNotFound if any is unknown
func (s *TaskService) resolveTagIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	unique := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return unique, nil
	}

	tags, err := s.tagRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to find tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, ErrTagNotFound
	}
	return unique, nil
}

func validateTaskInput(input TaskInput) (string, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(input.Description) > constants.MaxTaskDescriptionLength {
		return "", ErrDescriptionTooLong
	}
	if input.Status != "" && !input.Status.Valid() {
		return "", ErrInvalidStatus
	}
	return title, nil
}
