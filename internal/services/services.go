package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/repository"
)

// Services groups the application services sharing one database handle
type Services struct {
	Users      *UserService
	Categories *CategoryService
	Tags       *TagService
	Tasks      *TaskService
	Statistics *StatisticsService
}

// New builds the GORM repositories and the services on top of them
func New(db *gorm.DB, log *zap.Logger) *Services {
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &Services{
		Users:      NewUserService(userRepo, log),
		Categories: NewCategoryService(categoryRepo, log),
		Tags:       NewTagService(tagRepo, log),
		Tasks:      NewTaskService(taskRepo, userRepo, categoryRepo, tagRepo, log),
		Statistics: NewStatisticsService(taskRepo, userRepo, categoryRepo, tagRepo, log),
	}
}
