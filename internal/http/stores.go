package http

import (
	"context"
	"time"

	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/settingsstore"
	"github.com/mrlokans/wordbook/internal/wordlib"
)

// This file consolidates the dependency interfaces used by HTTP controllers.

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LibraryRegistry is the registry surface used by LibrariesController.
type LibraryRegistry interface {
	Names() []string
	Current() registry.Selection
	Select(name string) error
	ClearSelection() error
	Create(name string) error
	Open(name string) (*wordlib.WordLib, error)
	Commit(name string) error
	Replace(name, text string) (int, error)
	Merge(name, text string) (int, error)
	SaveAll() int
}

// PreferenceInfo reports where the stored library preference lives.
type PreferenceInfo interface {
	CurrentWordLibInfo() settingsstore.CurrentWordLibInfo
}

// Autosave is the scheduler surface used by /health and the save-all endpoint.
type Autosave interface {
	IsRunning() bool
	NextRun() *time.Time
	RunNow()
}
