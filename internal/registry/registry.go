// Package registry keeps the set of known word libraries, the selected
// ("current") library and the in-process cache of loaded libraries.
//
// A Registry is created empty and filled by Init, which scans the library
// directory once. Libraries are loaded lazily by Open and cached, so every
// caller in the process sees the same *wordlib.WordLib for a given name.
//
//	reg := registry.New(store, settingsstore.NewMemory(), logger)
//	reg.Init()
//	lib, err := reg.OpenCurrent()
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mrlokans/wordbook/internal/library"
	"github.com/mrlokans/wordbook/internal/wordlib"
)

var (
	ErrUnknownLibrary = errors.New("unknown library")
	ErrInvalidName    = errors.New("invalid library name")
	ErrNoLibrary      = errors.New("no library available")
	ErrNotInitialized = errors.New("registry not initialized")
)

// Sources of the current selection.
const (
	SourcePreference = "preference"
	SourceDefault    = "default"
	SourceNone       = "none"
)

// Preferences stores the name of the selected library.
type Preferences interface {
	CurrentWordLib() (string, bool)
	SetCurrentWordLib(name string) error
	ClearCurrentWordLib() error
}

// Storage is the subset of library.Store used by the registry.
type Storage interface {
	List() []string
	Ensure(name string)
	Load(name string) *wordlib.WordLib
	Save(name string, lib *wordlib.WordLib) bool
	SaveRaw(name, text string) bool
}

// Selection describes the resolved current library.
type Selection struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	// Stale is set when a stored preference names a library that no
	// longer exists and the default was used instead.
	Stale bool `json:"stale,omitempty"`
}

type cached struct {
	lib   *wordlib.WordLib
	saved uint64
}

type Registry struct {
	store  Storage
	prefs  Preferences
	logger *slog.Logger

	mu          sync.RWMutex
	initialized bool
	names       []string
	cache       map[string]*cached

	// writers serializes writes of one library file: Commit, SaveAll and
	// Replace hold the name's lock while the store writes.
	writersMu sync.Mutex
	writers   map[string]*sync.Mutex
}

func New(store Storage, prefs Preferences, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:   store,
		prefs:   prefs,
		logger:  logger.With("component", "registry"),
		names:   []string{},
		cache:   make(map[string]*cached),
		writers: make(map[string]*sync.Mutex),
	}
}

// Init scans the library directory and resolves the current library.
// Calling it again rescans and logs a warning.
func (r *Registry) Init() {
	r.mu.Lock()
	again := r.initialized
	r.names = r.store.List()
	r.initialized = true
	count := len(r.names)
	r.mu.Unlock()

	if again {
		r.logger.Warn("registry initialized more than once, rescanned library directory", "libraries", count)
	}

	sel := r.Current()
	switch {
	case sel.Source == SourceNone:
		r.logger.Info("no word libraries found", "libraries", count)
	case sel.Stale:
		r.logger.Warn("preferred library no longer exists, using default", "current", sel.Name, "libraries", count)
	default:
		r.logger.Info("registry initialized", "current", sel.Name, "source", sel.Source, "libraries", count)
	}
}

func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// Names returns a copy of the known library names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Has reports whether name is a known library.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasLocked(name)
}

func (r *Registry) hasLocked(name string) bool {
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

// Current resolves the selected library. It never writes the preference.
func (r *Registry) Current() Selection {
	pref, hasPref := r.prefs.CurrentWordLib()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if hasPref && r.hasLocked(pref) {
		return Selection{Name: pref, Source: SourcePreference}
	}
	if len(r.names) == 0 {
		return Selection{Source: SourceNone, Stale: hasPref}
	}
	return Selection{Name: r.names[0], Source: SourceDefault, Stale: hasPref}
}

// Select makes name the current library and persists the choice.
func (r *Registry) Select(name string) error {
	if !r.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownLibrary, name)
	}
	if err := r.prefs.SetCurrentWordLib(name); err != nil {
		return fmt.Errorf("failed to store current library: %w", err)
	}
	r.logger.Info("current library selected", "name", name)
	return nil
}

// ClearSelection forgets the stored preference, so Current falls back to
// the default library.
func (r *Registry) ClearSelection() error {
	if err := r.prefs.ClearCurrentWordLib(); err != nil {
		return fmt.Errorf("failed to clear current library: %w", err)
	}
	r.logger.Info("current library selection cleared")
	return nil
}

// Create makes sure a library file exists for name and adds it to the
// registry.
func (r *Registry) Create(name string) error {
	if err := library.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	r.store.Ensure(name)
	r.Refresh()
	if !r.Has(name) {
		return fmt.Errorf("library %q could not be created", name)
	}
	return nil
}

// Refresh rescans the library directory. Cached libraries whose files
// disappeared are dropped; unsaved changes in them are lost and logged.
func (r *Registry) Refresh() {
	names := r.store.List()

	r.mu.Lock()
	r.names = names
	r.initialized = true
	var lost []string
	for name, c := range r.cache {
		if r.hasLocked(name) {
			continue
		}
		if c.lib.Revision() != c.saved {
			lost = append(lost, name)
		}
		delete(r.cache, name)
	}
	r.mu.Unlock()

	for _, name := range lost {
		r.logger.Warn("library file is gone, dropping unsaved changes", "name", name)
	}
}

// Open returns the library named name, loading it on first access.
func (r *Registry) Open(name string) (*wordlib.WordLib, error) {
	r.mu.RLock()
	if c, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return c.lib, nil
	}
	known := r.hasLocked(name)
	r.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLibrary, name)
	}

	lib := r.store.Load(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have loaded it while the lock was released.
	if c, ok := r.cache[name]; ok {
		return c.lib, nil
	}
	r.cache[name] = &cached{lib: lib, saved: lib.Revision()}
	return lib, nil
}

// OpenCurrent opens the library returned by Current.
func (r *Registry) OpenCurrent() (string, *wordlib.WordLib, error) {
	if !r.Initialized() {
		return "", nil, ErrNotInitialized
	}
	sel := r.Current()
	if sel.Source == SourceNone {
		return "", nil, ErrNoLibrary
	}
	lib, err := r.Open(sel.Name)
	if err != nil {
		return "", nil, err
	}
	return sel.Name, lib, nil
}

// Commit writes the cached library to storage.
func (r *Registry) Commit(name string) error {
	w := r.writer(name)
	w.Lock()
	defer w.Unlock()

	r.mu.RLock()
	c, ok := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		if !r.Has(name) {
			return fmt.Errorf("%w: %q", ErrUnknownLibrary, name)
		}
		// Never opened, or replaced since; nothing to write.
		return nil
	}

	rev := c.lib.Revision()
	if !r.store.Save(name, c.lib) {
		return fmt.Errorf("library %q was not saved, see log", name)
	}
	r.markSaved(name, c, rev)
	return nil
}

// Replace stores text as the new content of name. The text must parse;
// the cached instance is dropped so the next Open reads the new file.
func (r *Registry) Replace(name, text string) (int, error) {
	if !r.Has(name) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLibrary, name)
	}
	lib, err := wordlib.Parse(text)
	if err != nil {
		return 0, err
	}

	w := r.writer(name)
	w.Lock()
	defer w.Unlock()

	if !r.store.SaveRaw(name, text) {
		return 0, fmt.Errorf("library %q was not saved, see log", name)
	}

	r.mu.Lock()
	delete(r.cache, name)
	r.mu.Unlock()

	r.logger.Info("library replaced", "name", name, "entries", lib.Size())
	return lib.Size(), nil
}

// Merge parses text and adds its entries to name. Terms already in the
// library keep their current definitions. The merged library is saved and
// the number of added entries returned.
func (r *Registry) Merge(name, text string) (int, error) {
	incoming, err := wordlib.Parse(text)
	if err != nil {
		return 0, err
	}
	lib, err := r.Open(name)
	if err != nil {
		return 0, err
	}

	added := lib.Merge(incoming)
	if err := r.Commit(name); err != nil {
		return added, err
	}

	r.logger.Info("library merged", "name", name, "added", added, "skipped", incoming.Size()-added)
	return added, nil
}

// SaveAll saves every cached library changed since its last save and
// returns how many were written.
func (r *Registry) SaveAll() int {
	r.mu.RLock()
	var pending []string
	for name, c := range r.cache {
		if c.lib.Revision() != c.saved {
			pending = append(pending, name)
		}
	}
	r.mu.RUnlock()

	saved := 0
	for _, name := range pending {
		if r.saveDirty(name) {
			saved++
		}
	}
	if saved > 0 {
		r.logger.Info("saved changed libraries", "count", saved)
	}
	return saved
}

// saveDirty writes name if it is still cached and changed. The cache is
// read again under the write lock, since a Replace may have run since
// SaveAll looked.
func (r *Registry) saveDirty(name string) bool {
	w := r.writer(name)
	w.Lock()
	defer w.Unlock()

	r.mu.RLock()
	c, ok := r.cache[name]
	var saved uint64
	if ok {
		saved = c.saved
	}
	r.mu.RUnlock()
	if !ok {
		return false
	}
	rev := c.lib.Revision()
	if rev == saved {
		return false
	}
	if !r.store.Save(name, c.lib) {
		return false
	}
	r.markSaved(name, c, rev)
	return true
}

func (r *Registry) writer(name string) *sync.Mutex {
	r.writersMu.Lock()
	defer r.writersMu.Unlock()
	w, ok := r.writers[name]
	if !ok {
		w = &sync.Mutex{}
		r.writers[name] = w
	}
	return w
}

func (r *Registry) markSaved(name string, c *cached, rev uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.cache[name]; ok && cur == c && rev > c.saved {
		c.saved = rev
	}
}
