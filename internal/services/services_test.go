package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
	"github.com/yukikurage/task-insights-api/internal/testutil"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type ServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	users      *UserService
	categories *CategoryService
	tags       *TagService
	tasks      *TaskService
	stats      *StatisticsService
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())

	userRepo := repository.NewUserRepository(suite.db)
	categoryRepo := repository.NewCategoryRepository(suite.db)
	tagRepo := repository.NewTagRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)

	suite.users = NewUserService(userRepo, nil)
	suite.categories = NewCategoryService(categoryRepo, nil)
	suite.tags = NewTagService(tagRepo, nil)
	suite.tasks = NewTaskService(taskRepo, userRepo, categoryRepo, tagRepo, nil)
	suite.tasks.now = func() time.Time { return fixedNow }
	suite.stats = NewStatisticsService(taskRepo, userRepo, categoryRepo, tagRepo, nil)
	suite.stats.now = func() time.Time { return fixedNow }
}

func (suite *ServiceTestSuite) createUser(username string) *models.User {
	user, err := suite.users.CreateUser(suite.ctx, CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)
	return user
}

func (suite *ServiceTestSuite) createTask(title string, userID *uint64, status models.TaskStatus) *models.Task {
	task, err := suite.tasks.CreateTask(suite.ctx, TaskInput{Title: title, UserID: userID, Status: status})
	suite.Require().NoError(err)
	return task
}

// Users

func (suite *ServiceTestSuite) TestCreateUser_Defaults() {
	user := suite.createUser("alice")

	suite.Equal(models.RoleUser, user.Role)
	suite.True(user.Active)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
}

func (suite *ServiceTestSuite) TestCreateUser_WithoutPasswordGetsPlaceholder() {
	user, err := suite.users.CreateUser(suite.ctx, CreateUserInput{Username: "bob", Email: "bob@example.com"})
	suite.Require().NoError(err)
	suite.NotEmpty(user.PasswordHash)
	suite.Error(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("")))
}

func (suite *ServiceTestSuite) TestCreateUser_DuplicateUsername() {
	suite.createUser("alice")

	_, err := suite.users.CreateUser(suite.ctx, CreateUserInput{Username: "alice", Email: "other@example.com"})
	suite.ErrorIs(err, ErrUsernameTaken)

	users, err := suite.users.ListUsers(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(users, 1)
}

func (suite *ServiceTestSuite) TestCreateUser_DuplicateEmail() {
	suite.createUser("alice")

	_, err := suite.users.CreateUser(suite.ctx, CreateUserInput{Username: "alice2", Email: "alice@example.com"})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *ServiceTestSuite) TestCreateUser_Validation() {
	_, err := suite.users.CreateUser(suite.ctx, CreateUserInput{Username: "al", Email: "al@example.com"})
	suite.ErrorIs(err, ErrInvalidUsername)

	_, err = suite.users.CreateUser(suite.ctx, CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "123"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.users.CreateUser(suite.ctx, CreateUserInput{Username: "alice", Email: "alice@example.com", Role: "ROOT"})
	suite.ErrorIs(err, ErrInvalidRole)
}

func (suite *ServiceTestSuite) TestUpdateUser_OnlyRechecksChangedFields() {
	alice := suite.createUser("alice")
	suite.createUser("bob")

	same := "alice"
	fullName := "Alice Liddell"
	updated, err := suite.users.UpdateUser(suite.ctx, alice.ID, UpdateUserInput{Username: &same, FullName: &fullName})
	suite.Require().NoError(err)
	suite.Equal("Alice Liddell", updated.FullName)

	taken := "bob"
	_, err = suite.users.UpdateUser(suite.ctx, alice.ID, UpdateUserInput{Username: &taken})
	suite.ErrorIs(err, ErrUsernameTaken)

	inactive := false
	admin := models.RoleAdmin
	_, err = suite.users.UpdateUser(suite.ctx, alice.ID, UpdateUserInput{Active: &inactive, Role: &admin})
	suite.Require().NoError(err)

	active, err := suite.users.ListActiveUsers(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(active, 1)
	suite.Equal("bob", active[0].Username)

	admins, err := suite.users.ListUsersByRole(suite.ctx, models.RoleAdmin)
	suite.Require().NoError(err)
	suite.Require().Len(admins, 1)
	suite.Equal(alice.ID, admins[0].ID)
}

func (suite *ServiceTestSuite) TestDeleteUser_CascadesTasks() {
	alice := suite.createUser("alice")
	task := suite.createTask("mine", &alice.ID, "")

	count, err := suite.users.CountUserTasks(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	suite.Require().NoError(suite.users.DeleteUser(suite.ctx, alice.ID))

	_, err = suite.tasks.GetTask(suite.ctx, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
	_, err = suite.users.GetUser(suite.ctx, alice.ID)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestDeleteMissingEntities() {
	suite.createUser("alice")

	suite.ErrorIs(suite.users.DeleteUser(suite.ctx, 999), ErrUserNotFound)
	suite.ErrorIs(suite.categories.DeleteCategory(suite.ctx, 999), ErrCategoryNotFound)
	suite.ErrorIs(suite.tags.DeleteTag(suite.ctx, 999), ErrTagNotFound)
	suite.ErrorIs(suite.tasks.DeleteTask(suite.ctx, 999), ErrTaskNotFound)

	users, err := suite.users.ListUsers(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(users, 1)
}

// Categories and tags

func (suite *ServiceTestSuite) TestCategory_Lifecycle() {
	work, err := suite.categories.CreateCategory(suite.ctx, CategoryInput{Name: "Work", Color: "#FF5733"})
	suite.Require().NoError(err)

	_, err = suite.categories.CreateCategory(suite.ctx, CategoryInput{Name: "Work"})
	suite.ErrorIs(err, ErrCategoryNameTaken)

	_, err = suite.categories.CreateCategory(suite.ctx, CategoryInput{Name: "  "})
	suite.ErrorIs(err, ErrNameRequired)

	updated, err := suite.categories.UpdateCategory(suite.ctx, work.ID, CategoryInput{Name: "Work", Description: "day job"})
	suite.Require().NoError(err)
	suite.Equal("day job", updated.Description)

	_, err = suite.categories.GetCategory(suite.ctx, 999)
	suite.ErrorIs(err, ErrCategoryNotFound)
}

func (suite *ServiceTestSuite) TestTag_Lifecycle() {
	urgent, err := suite.tags.CreateTag(suite.ctx, TagInput{Name: "urgent", Color: "red"})
	suite.Require().NoError(err)
	_, err = suite.tags.CreateTag(suite.ctx, TagInput{Name: "later"})
	suite.Require().NoError(err)

	_, err = suite.tags.UpdateTag(suite.ctx, urgent.ID, TagInput{Name: "later"})
	suite.ErrorIs(err, ErrTagNameTaken)

	tags, err := suite.tags.ListTags(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(tags, 2)
}

// Tasks

func (suite *ServiceTestSuite) TestCreateTask_DefaultsToPending() {
	task := suite.createTask("write tests", nil, "")

	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Nil(task.CompletedAt)
}

func (suite *ServiceTestSuite) TestCreateTask_Validation() {
	_, err := suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "   "})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "x", Status: "DONE"})
	suite.ErrorIs(err, ErrInvalidStatus)

	missing := uint64(404)
	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "x", UserID: &missing})
	suite.ErrorIs(err, ErrUserNotFound)

	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "x", CategoryID: &missing})
	suite.ErrorIs(err, ErrCategoryNotFound)

	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "x", TagIDs: []uint64{missing}})
	suite.ErrorIs(err, ErrTagNotFound)

	tasks, err := suite.tasks.ListTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(tasks)
}

func (suite *ServiceTestSuite) TestCreateTask_Completed_StampsCompletedAt() {
	task := suite.createTask("done already", nil, models.TaskStatusCompleted)

	suite.Require().NotNil(task.CompletedAt)
	suite.True(task.CompletedAt.Equal(fixedNow))
}

func (suite *ServiceTestSuite) TestUpdateTaskStatus_TracksCompletedAt() {
	task := suite.createTask("report", nil, "")

	completed, err := suite.tasks.UpdateTaskStatus(suite.ctx, task.ID, models.TaskStatusCompleted)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, completed.Status)
	suite.Require().NotNil(completed.CompletedAt)
	suite.True(completed.CompletedAt.Equal(fixedNow))

	reopened, err := suite.tasks.UpdateTaskStatus(suite.ctx, task.ID, models.TaskStatusInProgress)
	suite.Require().NoError(err)
	suite.Nil(reopened.CompletedAt)

	_, err = suite.tasks.UpdateTaskStatus(suite.ctx, task.ID, "DONE")
	suite.ErrorIs(err, ErrInvalidStatus)

	_, err = suite.tasks.UpdateTaskStatus(suite.ctx, 999, models.TaskStatusCompleted)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestUpdateTask_ReplacesFields() {
	alice := suite.createUser("alice")
	work, err := suite.categories.CreateCategory(suite.ctx, CategoryInput{Name: "Work"})
	suite.Require().NoError(err)
	urgent, err := suite.tags.CreateTag(suite.ctx, TagInput{Name: "urgent"})
	suite.Require().NoError(err)

	two := 2
	task, err := suite.tasks.CreateTask(suite.ctx, TaskInput{
		Title: "draft", Priority: &two, UserID: &alice.ID, CategoryID: &work.ID, TagIDs: []uint64{urgent.ID},
	})
	suite.Require().NoError(err)
	suite.Len(task.Tags, 1)

	updated, err := suite.tasks.UpdateTask(suite.ctx, task.ID, TaskInput{Title: "final", Status: models.TaskStatusCompleted})
	suite.Require().NoError(err)
	suite.Equal("final", updated.Title)
	suite.Nil(updated.Priority)
	suite.Nil(updated.UserID)
	suite.Nil(updated.CategoryID)
	suite.Len(updated.Tags, 1, "nil tag ids keep the current tags")
	suite.Require().NotNil(updated.CompletedAt)

	updated, err = suite.tasks.UpdateTask(suite.ctx, task.ID, TaskInput{Title: "final", TagIDs: []uint64{}})
	suite.Require().NoError(err)
	suite.Empty(updated.Tags)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
}

func (suite *ServiceTestSuite) TestAddTagToTask_IsIdempotent() {
	task := suite.createTask("tagged", nil, "")
	tag, err := suite.tags.CreateTag(suite.ctx, TagInput{Name: "urgent"})
	suite.Require().NoError(err)

	_, err = suite.tasks.AddTagToTask(suite.ctx, task.ID, tag.ID)
	suite.Require().NoError(err)
	tagged, err := suite.tasks.AddTagToTask(suite.ctx, task.ID, tag.ID)
	suite.Require().NoError(err)
	suite.Len(tagged.Tags, 1)

	_, err = suite.tasks.AddTagToTask(suite.ctx, task.ID, 999)
	suite.ErrorIs(err, ErrTagNotFound)
	_, err = suite.tasks.AddTagToTask(suite.ctx, 999, tag.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	untagged, err := suite.tasks.RemoveTagFromTask(suite.ctx, task.ID, tag.ID)
	suite.Require().NoError(err)
	suite.Empty(untagged.Tags)
}

func (suite *ServiceTestSuite) TestListing() {
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	tag, err := suite.tags.CreateTag(suite.ctx, TagInput{Name: "urgent"})
	suite.Require().NoError(err)

	due := fixedNow.Add(24 * time.Hour)
	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{
		Title: "Write Report", UserID: &alice.ID, DueDate: &due, TagIDs: []uint64{tag.ID},
	})
	suite.Require().NoError(err)
	suite.createTask("buy milk", &alice.ID, models.TaskStatusCompleted)
	suite.createTask("report review", &bob.ID, "")

	found, err := suite.tasks.SearchTasks(suite.ctx, alice.ID, "report")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("Write Report", found[0].Title)

	byUser, err := suite.tasks.ListTasksByUser(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Len(byUser, 2)

	page, total, err := suite.tasks.ListTasksByUserPaginated(suite.ctx, alice.ID, 2, 1)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(page, 1)
	suite.Equal("buy milk", page[0].Title)

	byTag, err := suite.tasks.ListTasksByTag(suite.ctx, tag.ID)
	suite.Require().NoError(err)
	suite.Len(byTag, 1)

	byStatus, err := suite.tasks.ListTasksByStatus(suite.ctx, models.TaskStatusPending)
	suite.Require().NoError(err)
	suite.Len(byStatus, 2)

	due1, err := suite.tasks.ListTasksDueBetween(suite.ctx, fixedNow, due)
	suite.Require().NoError(err)
	suite.Len(due1, 1)

	_, err = suite.tasks.ListTasksDueBetween(suite.ctx, due, fixedNow)
	suite.ErrorIs(err, ErrInvalidDateRange)

	count, err := suite.tasks.CountTasksByUserAndStatus(suite.ctx, alice.ID, models.TaskStatusCompleted)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	_, err = suite.tasks.ListTasksByUser(suite.ctx, 999)
	suite.ErrorIs(err, ErrUserNotFound)
	_, err = suite.tasks.ListTasksByCategory(suite.ctx, 999)
	suite.ErrorIs(err, ErrCategoryNotFound)
	_, err = suite.tasks.ListTasksByTag(suite.ctx, 999)
	suite.ErrorIs(err, ErrTagNotFound)
}

// Statistics

func (suite *ServiceTestSuite) TestStatistics_WorkReportScenario() {
	work, err := suite.categories.CreateCategory(suite.ctx, CategoryInput{Name: "Work", Color: "#FF5733"})
	suite.Require().NoError(err)

	one := 1
	due := fixedNow.Add(48 * time.Hour)
	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{
		Title: "Report", CategoryID: &work.ID, Priority: &one, DueDate: &due, Status: models.TaskStatusPending,
	})
	suite.Require().NoError(err)

	usage, err := suite.stats.CategoriesByUsage(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(usage, 1)
	suite.Equal("Work", usage[0].Category.Name)
	suite.Equal(int64(1), usage[0].TaskCount)

	distribution, err := suite.stats.StatusDistribution(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(map[models.TaskStatus]int64{
		models.TaskStatusPending:    1,
		models.TaskStatusInProgress: 0,
		models.TaskStatusCompleted:  0,
		models.TaskStatusCancelled:  0,
	}, distribution)

	priorities, err := suite.stats.PriorityDistribution(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(map[int]int64{1: 1}, priorities)
}

func (suite *ServiceTestSuite) TestStatistics_UserWithoutTasks() {
	alice := suite.createUser("alice")

	distribution, err := suite.stats.UserStatusDistribution(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Len(distribution, 4)
	for _, status := range models.TaskStatuses {
		suite.Equal(int64(0), distribution[status], status)
	}

	rate, err := suite.stats.UserCompletionRate(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Equal(0.0, rate.Rate)
	suite.Zero(rate.TotalTasks)

	priorities, err := suite.stats.UserPriorityDistribution(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Empty(priorities)
}

func (suite *ServiceTestSuite) TestStatistics_UnknownUser() {
	_, err := suite.stats.UserStatusDistribution(suite.ctx, 999)
	suite.ErrorIs(err, ErrUserNotFound)
	_, err = suite.stats.UserCompletionRate(suite.ctx, 999)
	suite.ErrorIs(err, ErrUserNotFound)
	_, err = suite.stats.UserOverdueCount(suite.ctx, 999)
	suite.ErrorIs(err, ErrUserNotFound)
	_, err = suite.stats.UserPriorityDistribution(suite.ctx, 999)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestStatistics_CompletionRate() {
	alice := suite.createUser("alice")
	suite.createTask("a", &alice.ID, models.TaskStatusCompleted)
	suite.createTask("b", &alice.ID, models.TaskStatusPending)
	suite.createTask("c", &alice.ID, models.TaskStatusCancelled)
	suite.createTask("d", &alice.ID, models.TaskStatusCompleted)

	rate, err := suite.stats.UserCompletionRate(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(4), rate.TotalTasks)
	suite.Equal(int64(2), rate.CompletedTasks)
	suite.InDelta(50.0, rate.Rate, 0.0001)
}

func (suite *ServiceTestSuite) TestStatistics_OverdueExcludesClosedTasks() {
	alice := suite.createUser("alice")
	past := fixedNow.Add(-72 * time.Hour)
	future := fixedNow.Add(72 * time.Hour)

	for _, status := range models.TaskStatuses {
		_, err := suite.tasks.CreateTask(suite.ctx, TaskInput{Title: string(status), Status: status, DueDate: &past, UserID: &alice.ID})
		suite.Require().NoError(err)
	}
	_, err := suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "future", DueDate: &future})
	suite.Require().NoError(err)
	suite.createTask("no due date", nil, "")

	overdue, err := suite.stats.OverdueCount(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(2), overdue)

	overdue, err = suite.stats.UserOverdueCount(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), overdue)
}

func (suite *ServiceTestSuite) TestStatistics_TasksCompletedByDay() {
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	completeAt := func(title string, at time.Time) {
		suite.tasks.now = func() time.Time { return at }
		suite.createTask(title, nil, models.TaskStatusCompleted)
	}
	completeAt("first", day.Add(9*time.Hour))
	completeAt("second", day.Add(17*time.Hour))
	completeAt("third", day.Add(2*24*time.Hour+time.Hour))
	completeAt("outside", day.Add(-time.Hour))
	suite.createTask("open", nil, "")

	counts, err := suite.stats.TasksCompletedByDay(suite.ctx, day, day.Add(3*24*time.Hour))
	suite.Require().NoError(err)
	suite.Equal(map[string]int64{
		"2026-10-01": 2,
		"2026-10-02": 0,
		"2026-10-03": 1,
		"2026-10-04": 0,
	}, counts)

	_, err = suite.stats.TasksCompletedByDay(suite.ctx, day, day.Add(-time.Hour))
	suite.ErrorIs(err, ErrInvalidDateRange)

	_, err = suite.stats.TasksCompletedByDay(suite.ctx, day, day.AddDate(2, 0, 0))
	suite.ErrorIs(err, ErrDateRangeTooLong)
}

func (suite *ServiceTestSuite) TestStatistics_OffsetTimestamps() {
	tokyo := time.FixedZone("UTC+9", 9*60*60)

	// 01:00 UTC on fixedNow's day, so already overdue
	due := time.Date(2026, 10, 19, 10, 0, 0, 0, tokyo)
	_, err := suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "late", DueDate: &due})
	suite.Require().NoError(err)

	overdue, err := suite.stats.OverdueCount(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), overdue)

	suite.tasks.now = func() time.Time { return time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC) }
	suite.createTask("done", nil, models.TaskStatusCompleted)

	start := time.Date(2026, 10, 19, 0, 0, 0, 0, tokyo)
	counts, err := suite.stats.TasksCompletedByDay(suite.ctx, start, start)
	suite.Require().NoError(err)
	suite.Equal(map[string]int64{"2026-10-19": 1}, counts)
}

func (suite *ServiceTestSuite) TestStatistics_TagsByUsage() {
	urgent, err := suite.tags.CreateTag(suite.ctx, TagInput{Name: "urgent"})
	suite.Require().NoError(err)
	later, err := suite.tags.CreateTag(suite.ctx, TagInput{Name: "later"})
	suite.Require().NoError(err)

	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "a", TagIDs: []uint64{later.ID}})
	suite.Require().NoError(err)
	_, err = suite.tasks.CreateTask(suite.ctx, TaskInput{Title: "b", TagIDs: []uint64{later.ID, urgent.ID}})
	suite.Require().NoError(err)

	usage, err := suite.stats.TagsByUsage(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(usage, 2)
	suite.Equal(later.ID, usage[0].Tag.ID)
	suite.Equal(int64(2), usage[0].TaskCount)
	suite.Equal(int64(1), usage[1].TaskCount)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
