package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db         Pinger
	autosave   Autosave
	storageDir string
	version    string
}

func NewHealthController(db Pinger, autosave Autosave, storageDir, version string) *HealthController {
	return &HealthController{
		db:         db,
		autosave:   autosave,
		storageDir: storageDir,
		version:    version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check preferences database connectivity
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Check library directory. A missing directory is created on first write.
	info, err := os.Stat(h.storageDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		checks["storage"] = "not created yet"
	case err != nil:
		checks["storage"] = "error: " + err.Error()
		status = "unhealthy"
	case !info.IsDir():
		checks["storage"] = "error: not a directory"
		status = "unhealthy"
	default:
		checks["storage"] = "ok"
	}

	// Autosave is informational; a stopped scheduler does not fail the check.
	switch {
	case h.autosave == nil:
		checks["autosave"] = "not configured"
	case !h.autosave.IsRunning():
		checks["autosave"] = "stopped"
	default:
		checks["autosave"] = "running"
		if next := h.autosave.NextRun(); next != nil {
			checks["autosave"] = "running, next run " + next.Format(time.RFC3339)
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
