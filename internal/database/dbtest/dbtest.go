// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kitchen_ledger/internal/database"
)

// New returns a private in-memory database with the given migrations applied.
// It is closed when the test finishes.
func New(t testing.TB, migrations ...database.MigrateFunc) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.Logger = gormlogger.Discard

	if err := database.Migrate(db, migrations...); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
