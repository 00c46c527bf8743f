package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// NewTestConnection returns an isolated in-memory SQLite database with models migrated.
// The database is closed when the test finishes.
func NewTestConnection(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := NewSQLiteConnection(dsn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := Migrate(db, models...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
