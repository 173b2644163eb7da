// Package library persists word libraries as one file per library.
//
// A library named "demo" lives at <dir>/demo.dat and holds the text produced
// by wordlib.Serialize.
//
// Store methods are fail-soft: storage problems (missing directory,
// permissions, full disk, corrupt content) are logged and never returned.
// A failed load yields an empty library and a failed write leaves the old
// file in place. Callers that need to reject bad input validate it before
// calling the store (see ValidateName and wordlib.Parse).
//
// Operations on the same library name are serialized by the store; different
// names proceed in parallel.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/mrlokans/wordbook/internal/wordlib"
)

// Extension is the file suffix of a library file.
const Extension = ".dat"

const (
	tempPrefix = ".wordlib_tmp_"
	fileMode   = 0o644
)

var (
	// ErrInvalidName is returned by ValidateName.
	ErrInvalidName = errors.New("invalid library name")

	// Characters invalid in filenames on most filesystems
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
)

// ValidateName checks that name can be used as a library file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is blank", ErrInvalidName)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case invalidNameChars.MatchString(name):
		return fmt.Errorf("%w: %q contains characters not allowed in file names", ErrInvalidName, name)
	case len(name)+len(Extension) > 255:
		return fmt.Errorf("%w: name is too long", ErrInvalidName)
	}
	return nil
}

// Options tune a Store.
type Options struct {
	// CaseInsensitive collapses names that differ only by case when listing,
	// matching file systems such as APFS or NTFS defaults.
	CaseInsensitive bool
}

// Store reads and writes library files in a single directory.
type Store struct {
	dir    string
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on the
// first write if it does not exist yet.
func NewStore(dir string, logger *slog.Logger, opts Options) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		opts:   opts,
		logger: logger.With("component", "library"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a library name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+Extension)
}

// Exists reports whether a file for name is present.
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.resolve(name))
	return err == nil && info.Mode().IsRegular()
}

// resolve returns the path of the file holding name. A file whose
// extension differs in case (or, under CaseInsensitive, whose name does)
// is used when the canonical path is absent.
func (s *Store) resolve(name string) string {
	path := s.Path(name)
	if _, err := os.Lstat(path); err == nil {
		return path
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return path
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if stem, ok := libraryName(entry.Name()); ok && s.sameName(stem, name) {
			return filepath.Join(s.dir, entry.Name())
		}
	}
	return path
}

// Ensure creates an empty library file for name if none exists.
// Errors are logged and swallowed.
func (s *Store) Ensure(name string) {
	if err := ValidateName(name); err != nil {
		s.logger.Error("ensure library: rejected name", "name", name, "error", err)
		return
	}

	unlock := s.lock(name)
	defer unlock()

	if err := s.ensureDir(); err != nil {
		s.logger.Error("ensure library: storage unavailable", "name", name, "dir", s.dir, "error", err)
		return
	}

	path := s.resolve(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if errors.Is(err, fs.ErrExist) {
		s.logger.Debug("library file already exists", "name", name, "path", path)
		return
	}
	if err != nil {
		s.logger.Error("ensure library: create failed", "name", name, "path", path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(wordlib.Header + "\n"); err != nil {
		s.logger.Error("ensure library: write header failed", "name", name, "path", path, "error", err)
		return
	}
	s.logger.Info("created library file", "name", name, "path", path)
}

// Load reads the library stored under name. A missing, unreadable or
// malformed file yields an empty library.
func (s *Store) Load(name string) *wordlib.WordLib {
	if err := ValidateName(name); err != nil {
		s.logger.Error("load library: rejected name", "name", name, "error", err)
		return wordlib.New()
	}

	unlock := s.lock(name)
	defer unlock()

	path := s.resolve(name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("library file does not exist", "name", name, "path", path)
		return wordlib.New()
	}
	if err != nil {
		s.logger.Error("load library: storage unavailable", "name", name, "path", path, "error", err)
		return wordlib.New()
	}
	defer f.Close()

	lib, err := wordlib.Decode(f)
	if err != nil {
		s.logger.Error("load library: malformed file, using empty library", "name", name, "path", path, "error", err)
		return lib
	}

	s.logger.Debug("loaded library", "name", name, "entries", lib.Size())
	return lib
}

// Save serializes lib and replaces the file for name. Errors are logged and
// swallowed; Save reports whether the write succeeded so callers can keep
// track of unsaved changes.
func (s *Store) Save(name string, lib *wordlib.WordLib) bool {
	if lib == nil {
		lib = wordlib.New()
	}
	ok := s.write(name, lib.Serialize())
	if ok {
		s.logger.Debug("saved library", "name", name, "entries", lib.Size())
	}
	return ok
}

// SaveRaw writes already serialized library text for name. Errors are
// logged and swallowed.
func (s *Store) SaveRaw(name, text string) bool {
	ok := s.write(name, text)
	if ok {
		s.logger.Debug("saved raw library", "name", name, "bytes", len(text))
	}
	return ok
}

// List returns the names of all library files in ascending order, without
// duplicates. A missing or unreadable directory yields an empty list.
func (s *Store) List() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("library directory does not exist", "dir", s.dir)
		} else {
			s.logger.Error("list libraries: storage unavailable", "dir", s.dir, "error", err)
		}
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := libraryName(entry.Name())
		if !ok {
			continue
		}
		names = append(names, name)
	}

	return s.normalize(names)
}

// normalize sorts names and drops duplicates. Under CaseInsensitive the
// lexicographically least spelling of each case-folded name is kept.
func (s *Store) normalize(names []string) []string {
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		if len(out) > 0 && s.sameName(out[len(out)-1], name) {
			continue
		}
		if s.opts.CaseInsensitive && containsFold(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (s *Store) sameName(a, b string) bool {
	if s.opts.CaseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// libraryName strips the library extension (compared case-insensitively)
// from a file name.
func libraryName(filename string) (string, bool) {
	if strings.HasPrefix(filename, ".") || len(filename) <= len(Extension) {
		return "", false
	}
	ext := filename[len(filename)-len(Extension):]
	if !strings.EqualFold(ext, Extension) {
		return "", false
	}
	return filename[:len(filename)-len(Extension)], true
}

func (s *Store) write(name, text string) bool {
	if err := ValidateName(name); err != nil {
		s.logger.Error("save library: rejected name", "name", name, "error", err)
		return false
	}

	unlock := s.lock(name)
	defer unlock()

	if err := s.ensureDir(); err != nil {
		s.logger.Error("save library: storage unavailable", "name", name, "dir", s.dir, "error", err)
		return false
	}

	path := s.resolve(name)
	if err := s.writeAtomic(path, text); err != nil {
		s.logger.Error("save library failed", "name", name, "path", path, "error", err)
		return false
	}
	return true
}

// writeAtomic writes text to a temp file in the same directory and renames it
// over path, so readers never observe a partially written library.
func (s *Store) writeAtomic(path, text string) error {
	tmpFile, err := os.CreateTemp(s.dir, tempPrefix)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	// CreateTemp uses 0600; saved libraries keep the mode Ensure gives them.
	if err := tmpFile.Chmod(fileMode); err != nil {
		return err
	}
	if _, err := tmpFile.WriteString(text); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create library dir: %w", err)
	}
	return nil
}

// lock acquires the mutex for name and returns its release function.
func (s *Store) lock(name string) func() {
	key := name
	if s.opts.CaseInsensitive {
		key = strings.ToLower(name)
	}

	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
