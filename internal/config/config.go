package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		WordLib
		Database
		Autosave
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	WordLib struct {
		Dir             string // Directory holding <name>.dat library files
		CaseInsensitive bool   // Fold library names that differ only by case
	}
	Database struct {
		Path string // sqlite file for application preferences
	}
	Autosave struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every 5 minutes
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // text or json
	}
)

// getDatabasePath returns the preferences database path, checking both the
// current and the generic env var names
func getDatabasePath(v *viper.Viper) string {
	if path := v.GetString("PREFS_DB_PATH"); path != "" {
		return path
	}
	return v.GetString("DATABASE_PATH")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("wordlib_dir", DefaultWordLibDir)
	v.SetDefault("wordlib_case_insensitive", false)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("autosave_enabled", true)
	v.SetDefault("autosave_schedule", "*/5 * * * *") // Every 5 minutes
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		WordLib: WordLib{
			Dir:             v.GetString("WORDLIB_DIR"),
			CaseInsensitive: v.GetBool("WORDLIB_CASE_INSENSITIVE"),
		},
		Database: Database{
			Path: getDatabasePath(v),
		},
		Autosave: Autosave{
			Enabled:  v.GetBool("AUTOSAVE_ENABLED"),
			Schedule: v.GetString("AUTOSAVE_SCHEDULE"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
