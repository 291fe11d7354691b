// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/task-insights-api/internal/database"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test finishes.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: gets its own empty database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}
