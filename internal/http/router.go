package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger.With("component", "http")))
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Autosave, cfg.StorageDir, cfg.Version)
	libraries := NewLibrariesController(cfg.Registry, cfg.Preferences, cfg.Autosave)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Library endpoints
	api := router.Group("/api/libraries")
	api.GET("", libraries.List)
	api.POST("", libraries.Create)
	api.POST("/save-all", libraries.SaveAll)
	api.GET("/current", libraries.GetCurrent)
	api.PUT("/current", libraries.SelectCurrent)
	api.DELETE("/current", libraries.ClearCurrent)
	api.GET("/:name", libraries.Get)
	api.GET("/:name/terms", libraries.Terms)
	api.POST("/:name/save", libraries.Save)
	api.GET("/:name/export", libraries.Export)
	api.PUT("/:name/import", libraries.Import)

	// Word endpoints
	api.DELETE("/:name/words", libraries.Clear)
	api.GET("/:name/words/:term", libraries.GetWord)
	api.PUT("/:name/words/:term", libraries.PutWord)
	api.DELETE("/:name/words/:term", libraries.DeleteWord)

	return router
}
