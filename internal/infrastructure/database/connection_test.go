package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/spacestation-go/internal/adapters/persistence"
	"github.com/andrescamacho/spacestation-go/internal/infrastructure/config"
)

func TestNewConnection_SQLiteFileIsMigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db, zap.NewNop()))
	assert.True(t, db.Migrator().HasTable(&persistence.StationRunModel{}))
	assert.True(t, db.Migrator().HasTable(&persistence.ServiceOutcomeModel{}))
	assert.True(t, db.Migrator().HasTable(&persistence.ServiceEventModel{}))
	assert.FileExists(t, path)
}

func TestNewConnection_UnsupportedType(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Type: "oracle"}, nil)
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestNewConnection_FailedStatementsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	db, err := NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, zap.New(core))
	require.NoError(t, err)
	defer Close(db)

	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)

	failed := logs.FilterMessage("query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "gorm", failed[0].LoggerName)
	assert.Contains(t, failed[0].ContextMap()["sql"], "no_such_table")
}

func TestNewTestConnection(t *testing.T) {
	db, err := NewTestConnection()
	require.NoError(t, err)
	defer Close(db)

	var count int64
	require.NoError(t, db.Model(&persistence.StationRunModel{}).Count(&count).Error)
	assert.Zero(t, count)
}
