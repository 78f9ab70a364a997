// Package sqlitetest opens migrated in-memory databases for tests.
package sqlitetest

import (
	"testing"

	"gatherly-api/database"
	"gatherly-api/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a fresh, migrated in-memory database. A single connection
// keeps every query on the same in-memory file.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db, logger.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
