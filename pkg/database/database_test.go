package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"taskflow-backend/pkg/config"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestNewConnection_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	db, err := NewConnection(&config.Config{DBDriver: DriverSQLite, DatabaseURL: path}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	require.NoError(t, Migrate(db, &widget{}))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(&config.Config{DBDriver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestNewTestConnection_IsIsolated(t *testing.T) {
	a := NewTestConnection(t, &widget{})
	b := NewTestConnection(t, &widget{})

	require.NoError(t, a.Create(&widget{Name: "only-in-a"}).Error)

	var count int64
	require.NoError(t, b.Model(&widget{}).Count(&count).Error)
	assert.Zero(t, count)
}
