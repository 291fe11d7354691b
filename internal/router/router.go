package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/handlers"
	"github.com/yukikurage/task-insights-api/internal/middleware"
	"github.com/yukikurage/task-insights-api/internal/services"
)

// Handlers holds every HTTP handler the router mounts
type Handlers struct {
	Users      *handlers.UserHandler
	Categories *handlers.CategoryHandler
	Tags       *handlers.TagHandler
	Tasks      *handlers.TaskHandler
	Statistics *handlers.StatisticsHandler
	Health     *handlers.HealthHandler
}

// NewHandlers builds the handlers for svc
func NewHandlers(svc *services.Services, db *gorm.DB, log *zap.Logger) Handlers {
	return Handlers{
		Users:      handlers.NewUserHandler(svc.Users, log),
		Categories: handlers.NewCategoryHandler(svc.Categories, log),
		Tags:       handlers.NewTagHandler(svc.Tags, log),
		Tasks:      handlers.NewTaskHandler(svc.Tasks, log),
		Statistics: handlers.NewStatisticsHandler(svc.Statistics, log),
		Health:     handlers.NewHealthHandler(db, log),
	}
}

// New creates the gin engine with request ID, access logging and panic
// recovery, and mounts every route.
func New(h Handlers, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(log), gin.Recovery())

	r.GET("/health", h.Health.Check)

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", h.Users.CreateUser)
			users.GET("", h.Users.ListUsers)
			users.GET("/username/:username", h.Users.GetUserByUsername)
			users.GET("/:id", h.Users.GetUser)
			users.PUT("/:id", h.Users.UpdateUser)
			users.DELETE("/:id", h.Users.DeleteUser)
			users.GET("/:id/task-count", h.Users.GetUserTaskCount)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.Categories.ListCategories)
			categories.POST("", h.Categories.CreateCategory)
			categories.GET("/most-tasks", h.Categories.ListCategoriesByTaskCount)
			categories.GET("/:id", h.Categories.GetCategory)
			categories.PUT("/:id", h.Categories.UpdateCategory)
			categories.DELETE("/:id", h.Categories.DeleteCategory)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", h.Tags.ListTags)
			tags.POST("", h.Tags.CreateTag)
			tags.GET("/most-used", h.Tags.ListTagsByUsage)
			tags.GET("/:id", h.Tags.GetTag)
			tags.PUT("/:id", h.Tags.UpdateTag)
			tags.DELETE("/:id", h.Tags.DeleteTag)
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", h.Tasks.CreateTask)
			tasks.GET("", h.Tasks.ListTasks)
			tasks.GET("/paginated", h.Tasks.ListTasksPaginated)
			tasks.GET("/search", h.Tasks.SearchTasks)
			tasks.GET("/due-between", h.Tasks.ListTasksDueBetween)
			tasks.GET("/user/:userId", h.Tasks.ListTasksByUser)
			tasks.GET("/user/:userId/paginated", h.Tasks.ListTasksByUserPaginated)
			tasks.GET("/category/:categoryId", h.Tasks.ListTasksByCategory)
			tasks.GET("/status/:status", h.Tasks.ListTasksByStatus)
			tasks.GET("/tag/:tagId", h.Tasks.ListTasksByTag)
			tasks.GET("/count/user/:userId/status/:status", h.Tasks.CountTasksByUserAndStatus)
			tasks.GET("/:id", h.Tasks.GetTask)
			tasks.PUT("/:id", h.Tasks.UpdateTask)
			tasks.PATCH("/:id/status", h.Tasks.UpdateTaskStatus)
			tasks.DELETE("/:id", h.Tasks.DeleteTask)
			tasks.POST("/:id/tags/:tagId", h.Tasks.AddTag)
			tasks.DELETE("/:id/tags/:tagId", h.Tasks.RemoveTag)
		}

		stats := api.Group("/statistics")
		{
			stats.GET("/task-status", h.Statistics.GetTaskStatusDistribution)
			stats.GET("/task-status/user/:userId", h.Statistics.GetUserTaskStatusDistribution)
			stats.GET("/categories/most-tasks", h.Statistics.GetCategoriesWithMostTasks)
			stats.GET("/tags/most-used", h.Statistics.GetMostUsedTags)
			stats.GET("/tasks-completed-by-day", h.Statistics.GetTasksCompletedByDay)
			stats.GET("/user/:userId/completion-rate", h.Statistics.GetUserCompletionRate)
			stats.GET("/overdue-tasks", h.Statistics.GetOverdueTasks)
			stats.GET("/user/:userId/overdue-tasks", h.Statistics.GetUserOverdueTasks)
			stats.GET("/task-priority", h.Statistics.GetTaskPriorityDistribution)
			stats.GET("/task-priority/user/:userId", h.Statistics.GetUserTaskPriorityDistribution)
		}
	}

	return r
}
