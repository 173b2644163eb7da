package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/autosave"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/database"
	http_controllers "github.com/mrlokans/wordbook/internal/http"
	"github.com/mrlokans/wordbook/internal/library"
	"github.com/mrlokans/wordbook/internal/logging"
	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/settingsstore"
)

// App holds the wired components of a running server.
type App struct {
	Store     *library.Store
	Registry  *registry.Registry
	Database  *database.Database // nil when the preferences database is unavailable
	Autosave  *autosave.Scheduler
	Router    *gin.Engine
	logger    *slog.Logger
	closeOnce sync.Once
}

// Build wires storage, preferences, registry, autosave and the router.
// The registry is initialized exactly once here.
func Build(cfg *config.Config, version string, logger *slog.Logger) (*App, error) {
	if err := checkStorageDir(cfg.WordLib.Dir); err != nil {
		return nil, err
	}
	logger.Info("library directory ready", "dir", cfg.WordLib.Dir)

	store := library.NewStore(cfg.WordLib.Dir, logger, library.Options{
		CaseInsensitive: cfg.WordLib.CaseInsensitive,
	})

	var prefs interface {
		registry.Preferences
		http_controllers.PreferenceInfo
	}
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.Warn("preferences database unavailable, current library selection will not persist",
			"path", cfg.Database.Path, "error", err)
		prefs = settingsstore.NewMemory()
	} else {
		prefs = settingsstore.New(db, logger)
	}

	reg := registry.New(store, prefs, logger)
	reg.Init()

	scheduler := autosave.NewScheduler(reg, autosave.Config{
		Enabled:  cfg.Autosave.Enabled,
		Schedule: cfg.Autosave.Schedule,
	}, logger)

	routerCfg := http_controllers.RouterConfig{
		Registry:    reg,
		Preferences: prefs,
		Autosave:    scheduler,
		StorageDir:  cfg.WordLib.Dir,
		Version:     version,
		Logger:      logger,
	}
	if db != nil {
		routerCfg.Database = db
	}

	return &App{
		Store:    store,
		Registry: reg,
		Database: db,
		Autosave: scheduler,
		Router:   http_controllers.NewRouter(routerCfg),
		logger:   logger,
	}, nil
}

// Shutdown stops autosave, waits for requested saves, flushes changed
// libraries and closes the preferences database.
func (a *App) Shutdown(_ context.Context) {
	a.closeOnce.Do(func() { a.shutdown() })
}

func (a *App) shutdown() {
	a.Autosave.Stop()
	a.Autosave.Wait()

	saved := a.Registry.SaveAll()
	a.logger.Info("flushed libraries on shutdown", "saved", saved)

	if a.Database != nil {
		if err := a.Database.Close(); err != nil {
			a.logger.Warn("failed to close preferences database", "error", err)
		}
	}
}

// checkStorageDir makes sure dir exists and is writable by touching and
// removing an empty file.
func checkStorageDir(dir string) error {
	if dir == "" {
		return errors.New("library directory is not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("library directory %s cannot be created: %w", dir, err)
	}

	marker := filepath.Join(dir, ".wordbook")
	f, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("library directory %s is not writable: %w", dir, err)
	}
	f.Close()
	return os.Remove(marker)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully and calls onShutdown.
func Serve(ctx context.Context, router http.Handler, cfg *config.Config, logger *slog.Logger, onShutdown func(ctx context.Context)) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Flush after the server stops accepting writes
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	logger.Info("server exiting")
	return nil
}

func Run(cfg *config.Config, version string) {
	logger := logging.NewLogger(cfg.Log)
	logger.Info("starting wordbook", "version", version)

	gin.SetMode(gin.ReleaseMode)

	app, err := Build(cfg, version, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Autosave.Start(ctx); err != nil {
		logger.Error("autosave not started", "error", err)
	}

	if err := Serve(ctx, app.Router, cfg, logger, app.Shutdown); err != nil {
		app.Shutdown(context.Background())
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
