package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/constants"
	"github.com/yukikurage/task-insights-api/internal/logger"
	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
	"github.com/yukikurage/task-insights-api/internal/utils"
)

// DayKeyLayout formats the keys of TasksCompletedByDay
const DayKeyLayout = "2006-01-02"

// StatisticsService computes read-only summaries over tasks. Nothing is
// cached; every call queries the store.
type StatisticsService struct {
	taskRepo     repository.TaskRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	log          *zap.Logger
	now          func() time.Time
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	log *zap.Logger,
) *StatisticsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatisticsService{
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		log:          log.Named("statistics"),
		now:          utcNow,
	}
}

// CompletionRate summarises how many of a user's tasks are completed
type CompletionRate struct {
	UserID         uint64
	TotalTasks     int64
	CompletedTasks int64
	// Percentage in [0, 100]; 0 when the user has no tasks
	Rate float64
}

// StatusDistribution counts tasks per status. Every status is present.
func (s *StatisticsService) StatusDistribution(ctx context.Context) (map[models.TaskStatus]int64, error) {
	return s.statusDistribution(ctx, nil)
}

// UserStatusDistribution counts a user's tasks per status. Every status is present.
func (s *StatisticsService) UserStatusDistribution(ctx context.Context, userID uint64) (map[models.TaskStatus]int64, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	return s.statusDistribution(ctx, &userID)
}

func (s *StatisticsService) statusDistribution(ctx context.Context, userID *uint64) (map[models.TaskStatus]int64, error) {
	counts, err := s.taskRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "status distribution", err)
	}

	distribution := make(map[models.TaskStatus]int64, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		distribution[status] = 0
	}
	for _, c := range counts {
		distribution[c.Status] += c.Count
	}
	return distribution, nil
}

// CategoriesByUsage lists categories by descending task count
func (s *StatisticsService) CategoriesByUsage(ctx context.Context) ([]repository.CategoryUsage, error) {
	usage, err := s.categoryRepo.ListWithTaskCount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "category usage", err)
	}
	return usage, nil
}

// TagsByUsage lists tags by descending task count
func (s *StatisticsService) TagsByUsage(ctx context.Context) ([]repository.TagUsage, error) {
	usage, err := s.tagRepo.ListWithTaskCount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "tag usage", err)
	}
	return usage, nil
}

// TasksCompletedByDay counts completed tasks per calendar day from the day
// of start to the day of end, both inclusive. Days are taken in start's
// location and every day in the range has a key, zero-filled.
func (s *StatisticsService) TasksCompletedByDay(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	loc := start.Location()
	firstDay := utils.StartOfDay(start)
	lastDay := utils.StartOfDay(end.In(loc))

	counts := make(map[string]int64)
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if len(counts) >= constants.MaxStatisticsRangeDays {
			return nil, ErrDateRangeTooLong
		}
		counts[day.Format(DayKeyLayout)] = 0
	}

	rangeEnd := lastDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	tasks, err := s.taskRepo.ListCompletedBetween(ctx, firstDay, rangeEnd)
	if err != nil {
		return nil, s.fail(ctx, "completed tasks by day", err)
	}

	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		key := task.CompletedAt.In(loc).Format(DayKeyLayout)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}
	return counts, nil
}

// UserCompletionRate returns the share of a user's tasks that are completed
func (s *StatisticsService) UserCompletionRate(ctx context.Context, userID uint64) (*CompletionRate, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	total, err := s.taskRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "completion rate", err)
	}
	completed, err := s.taskRepo.CountByUserAndStatus(ctx, userID, models.TaskStatusCompleted)
	if err != nil {
		return nil, s.fail(ctx, "completion rate", err)
	}

	rate := &CompletionRate{UserID: userID, TotalTasks: total, CompletedTasks: completed}
	if total > 0 {
		rate.Rate = float64(completed) / float64(total) * 100
	}
	return rate, nil
}

// OverdueCount counts open tasks whose due date has passed
func (s *StatisticsService) OverdueCount(ctx context.Context) (int64, error) {
	return s.overdueCount(ctx, nil)
}

// UserOverdueCount counts a user's open tasks whose due date has passed
func (s *StatisticsService) UserOverdueCount(ctx context.Context, userID uint64) (int64, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return 0, err
	}
	return s.overdueCount(ctx, &userID)
}

func (s *StatisticsService) overdueCount(ctx context.Context, userID *uint64) (int64, error) {
	count, err := s.taskRepo.CountOverdue(ctx, s.now(), userID)
	if err != nil {
		return 0, s.fail(ctx, "overdue count", err)
	}
	return count, nil
}

// PriorityDistribution counts tasks per priority; tasks without one count as 0
func (s *StatisticsService) PriorityDistribution(ctx context.Context) (map[int]int64, error) {
	return s.priorityDistribution(ctx, nil)
}

// UserPriorityDistribution counts a user's tasks per priority
func (s *StatisticsService) UserPriorityDistribution(ctx context.Context, userID uint64) (map[int]int64, error) {
	if err := ensureUserExists(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	return s.priorityDistribution(ctx, &userID)
}

func (s *StatisticsService) priorityDistribution(ctx context.Context, userID *uint64) (map[int]int64, error) {
	counts, err := s.taskRepo.CountByPriority(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "priority distribution", err)
	}

	distribution := make(map[int]int64, len(counts))
	for _, c := range counts {
		distribution[c.Priority] += c.Count
	}
	return distribution, nil
}

func (s *StatisticsService) fail(ctx context.Context, what string, err error) error {
	logger.WithRequestID(ctx, s.log).Error("statistics query failed", zap.String("statistic", what), zap.Error(err))
	return fmt.Errorf("failed to compute %s: %w", what, err)
}
