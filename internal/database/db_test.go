package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "food.db?_foreign_keys=on", sqliteDSN("food.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "food.db?_foreign_keys=off", sqliteDSN("food.db?_foreign_keys=off"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open("sqlite", "file:opentest?mode=memory&cache=shared", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer Close(db)

	type probe struct {
		ID   string `gorm:"primaryKey"`
		Name string
	}
	called := 0
	err = Migrate(db, func(db *gorm.DB) error {
		called++
		return db.AutoMigrate(&probe{})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	assert.True(t, db.Migrator().HasTable(&probe{}))

	// sqlite never receives a locking clause
	assert.Equal(t, db, ForUpdate(db))
}
