package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/database"
	"github.com/mrlokans/wordbook/internal/library"
	"github.com/mrlokans/wordbook/internal/logging"
	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/settingsstore"
	"github.com/mrlokans/wordbook/internal/wordlib"
)

// CommonFlags are shared by every library command.
type CommonFlags struct {
	Dir             string
	DatabasePath    string
	CaseInsensitive bool
	Verbose         bool

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

func (c *CommonFlags) register(fs *flag.FlagSet) {
	cfg := config.NewConfig()
	fs.StringVar(&c.Dir, "dir", cfg.WordLib.Dir, "Directory holding library files")
	fs.StringVar(&c.DatabasePath, "db", cfg.Database.Path, "Path to the preferences database")
	fs.BoolVar(&c.CaseInsensitive, "case-insensitive", cfg.WordLib.CaseInsensitive, "Treat library names differing only by case as one")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable verbose logging")
}

func (c *CommonFlags) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *CommonFlags) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

// newFlagSet builds a flag set whose usage text follows the same layout for
// every command.
func newFlagSet(name, synopsis, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s %s\n\n", os.Args[0], name, synopsis)
		fmt.Fprintf(os.Stderr, "%s\n\n", description)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs
}

// workspace bundles the objects a command needs to work with libraries.
type workspace struct {
	Registry *registry.Registry
	Store    *library.Store
	db       *database.Database
	logger   *slog.Logger
}

func openWorkspace(c *CommonFlags) *workspace {
	level := "warn"
	if c.Verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, config.Log{Level: level, Format: "text"})

	store := library.NewStore(c.Dir, logger, library.Options{CaseInsensitive: c.CaseInsensitive})

	var prefs registry.Preferences
	db, err := database.NewDatabase(c.DatabasePath, logger)
	if err != nil {
		logger.Warn("preferences database unavailable, selection will not persist", "path", c.DatabasePath, "error", err)
		prefs = settingsstore.NewMemory()
	} else {
		prefs = settingsstore.New(db, logger)
	}

	reg := registry.New(store, prefs, logger)
	reg.Init()

	return &workspace{Registry: reg, Store: store, db: db, logger: logger}
}

func (w *workspace) Close() {
	if w.db != nil {
		if err := w.db.Close(); err != nil {
			w.logger.Warn("failed to close preferences database", "error", err)
		}
	}
}

// open returns the named library, or the current one when name is empty.
func (w *workspace) open(name string) (string, *wordlib.WordLib, error) {
	if name == "" {
		return w.Registry.OpenCurrent()
	}
	lib, err := w.Registry.Open(name)
	if err != nil {
		return "", nil, err
	}
	return name, lib, nil
}
