// Package testdb opens throwaway in-memory databases for tests.
package testdb

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a migrated SQLite database that lives as long as the test.
// The pool is pinned to a single connection because every new connection to
// ":memory:" would see an empty database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}
