package http

import "log/slog"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Registry LibraryRegistry
	Database Pinger

	// Optional dependencies
	Preferences PreferenceInfo
	Autosave    Autosave

	// Directory holding library files, reported by /health
	StorageDir string

	// Application info
	Version string

	Logger *slog.Logger
}
