package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, int32(8189), cfg.HTTP.Port)
		assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
		assert.Equal(t, 2, cfg.ShutdownTimeoutInSeconds)
		assert.Equal(t, DefaultWordLibDir, cfg.WordLib.Dir)
		assert.False(t, cfg.WordLib.CaseInsensitive)
		assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
		assert.True(t, cfg.Autosave.Enabled)
		assert.Equal(t, "*/5 * * * *", cfg.Autosave.Schedule)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("WORDLIB_DIR", "/data/libs")
		t.Setenv("WORDLIB_CASE_INSENSITIVE", "true")
		t.Setenv("AUTOSAVE_ENABLED", "false")
		t.Setenv("AUTOSAVE_SCHEDULE", "0 * * * *")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")

		cfg := NewConfig()

		assert.Equal(t, int32(9000), cfg.HTTP.Port)
		assert.Equal(t, "/data/libs", cfg.WordLib.Dir)
		assert.True(t, cfg.WordLib.CaseInsensitive)
		assert.False(t, cfg.Autosave.Enabled)
		assert.Equal(t, "0 * * * *", cfg.Autosave.Schedule)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("PREFS_DB_PATH wins over DATABASE_PATH", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", "/generic.db")
		assert.Equal(t, "/generic.db", NewConfig().Database.Path)

		t.Setenv("PREFS_DB_PATH", "/prefs.db")
		assert.Equal(t, "/prefs.db", NewConfig().Database.Path)
	})
}
