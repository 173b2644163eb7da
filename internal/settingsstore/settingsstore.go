package settingsstore

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mrlokans/wordbook/internal/database"
	"github.com/mrlokans/wordbook/internal/entities"
)

// Sources reported by CurrentWordLibInfo.
const (
	SourceDatabase = "database"
	SourceMemory   = "memory"
	SourceDefault  = "default"
)

// SettingsStore keeps application preferences in the settings table.
// Read failures are logged and treated as "not set".
type SettingsStore struct {
	db     *database.Database
	logger *slog.Logger
}

func New(db *database.Database, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsStore{db: db, logger: logger.With("component", "settings")}
}

// CurrentWordLib returns the stored name of the selected library.
func (s *SettingsStore) CurrentWordLib() (string, bool) {
	setting, err := s.db.GetSetting(entities.SettingKeyCurrentWordLib)
	if errors.Is(err, database.ErrSettingNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Error("read current library preference failed", "error", err)
		return "", false
	}
	if setting.Value == "" {
		return "", false
	}
	return setting.Value, true
}

func (s *SettingsStore) SetCurrentWordLib(name string) error {
	return s.db.SetSetting(entities.SettingKeyCurrentWordLib, name)
}

func (s *SettingsStore) ClearCurrentWordLib() error {
	return s.db.DeleteSetting(entities.SettingKeyCurrentWordLib)
}

type CurrentWordLibInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"` // "database" or "default"
}

func (s *SettingsStore) CurrentWordLibInfo() CurrentWordLibInfo {
	if name, ok := s.CurrentWordLib(); ok {
		return CurrentWordLibInfo{Name: name, Source: SourceDatabase}
	}
	return CurrentWordLibInfo{Source: SourceDefault}
}

// Memory is an in-process preference store. It stands in for SettingsStore
// when the settings database cannot be opened, and in tests.
type Memory struct {
	mu      sync.RWMutex
	current string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CurrentWordLib() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current != ""
}

func (m *Memory) SetCurrentWordLib(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = name
	return nil
}

func (m *Memory) ClearCurrentWordLib() error {
	return m.SetCurrentWordLib("")
}

func (m *Memory) CurrentWordLibInfo() CurrentWordLibInfo {
	if name, ok := m.CurrentWordLib(); ok {
		return CurrentWordLibInfo{Name: name, Source: SourceMemory}
	}
	return CurrentWordLibInfo{Source: SourceDefault}
}
