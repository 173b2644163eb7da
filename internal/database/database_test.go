package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

func TestNewDatabase(t *testing.T) {
	t.Run("creates missing parent directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "prefs.db")

		db, err := NewDatabase(dbPath, nil)
		require.NoError(t, err)
		defer db.Close()

		assert.NoError(t, db.Ping(context.Background()))
	})
}

func TestSettings(t *testing.T) {
	t.Run("GetSetting returns not found for unknown keys", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		setting, err := db.GetSetting("missing")

		assert.Nil(t, setting)
		assert.ErrorIs(t, err, ErrSettingNotFound)
	})

	t.Run("SetSetting creates a value", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		require.NoError(t, db.SetSetting(entities.SettingKeyCurrentWordLib, "english"))

		setting, err := db.GetSetting(entities.SettingKeyCurrentWordLib)
		require.NoError(t, err)
		assert.Equal(t, "english", setting.Value)
	})

	t.Run("SetSetting updates an existing value", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		require.NoError(t, db.SetSetting("k", "first"))
		require.NoError(t, db.SetSetting("k", "second"))

		setting, err := db.GetSetting("k")
		require.NoError(t, err)
		assert.Equal(t, "second", setting.Value)

		var count int64
		require.NoError(t, db.DB.Model(&entities.Setting{}).Where("key = ?", "k").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("DeleteSetting removes a value", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		require.NoError(t, db.SetSetting("k", "v"))
		require.NoError(t, db.DeleteSetting("k"))

		_, err := db.GetSetting("k")
		assert.ErrorIs(t, err, ErrSettingNotFound)
	})

	t.Run("DeleteSetting ignores unknown keys", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		assert.NoError(t, db.DeleteSetting("never-set"))
	})

	t.Run("values survive reopening", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "persist.db")

		db, err := NewDatabase(dbPath, nil)
		require.NoError(t, err)
		require.NoError(t, db.SetSetting("k", "kept"))
		require.NoError(t, db.Close())

		reopened, err := NewDatabase(dbPath, nil)
		require.NoError(t, err)
		defer reopened.Close()

		setting, err := reopened.GetSetting("k")
		require.NoError(t, err)
		assert.Equal(t, "kept", setting.Value)
	})

	t.Run("Ping fails after Close", func(t *testing.T) {
		db, _ := setupTestDB(t)
		require.NoError(t, db.Close())

		assert.Error(t, db.Ping(context.Background()))
	})
}
