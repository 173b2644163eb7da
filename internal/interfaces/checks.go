package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/wordbook/internal/autosave"
	"github.com/mrlokans/wordbook/internal/database"
	"github.com/mrlokans/wordbook/internal/http"
	"github.com/mrlokans/wordbook/internal/library"
	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/settingsstore"
)

// =============================================================================
// Storage
// =============================================================================

// Storage implementations
var _ registry.Storage = (*library.Store)(nil)

// Preferences implementations
var _ registry.Preferences = (*settingsstore.SettingsStore)(nil)
var _ registry.Preferences = (*settingsstore.Memory)(nil)

// =============================================================================
// Hosts
// =============================================================================

// LibraryRegistry implementations
var _ http.LibraryRegistry = (*registry.Registry)(nil)

// PreferenceInfo implementations
var _ http.PreferenceInfo = (*settingsstore.SettingsStore)(nil)
var _ http.PreferenceInfo = (*settingsstore.Memory)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// Autosave implementations
var _ http.Autosave = (*autosave.Scheduler)(nil)

// Saver implementations
var _ autosave.Saver = (*registry.Registry)(nil)
