package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/models"
)

// Migrate creates or updates the schema: users, categories, tags, tasks and
// the task_tags join table.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("running database migrations")

	if err := db.SetupJoinTable(&models.Task{}, "Tags", &models.TaskTag{}); err != nil {
		return fmt.Errorf("failed to set up task_tags join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Tag{}, "Tasks", &models.TaskTag{}); err != nil {
		return fmt.Errorf("failed to set up task_tags join table: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

// AddIndexes adds the composite indexes used by the statistics queries.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_user_status", "user_id, status"},
		{"tasks", "idx_tasks_status_due_date", "status, due_date"},
		{"tasks", "idx_tasks_status_completed_at", "status, completed_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug("index already exists", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
