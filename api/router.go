package api

import (
	"time"

	"github.com/AmanSainju12/pagecapture/api/handler"
	"github.com/AmanSainju12/pagecapture/api/middleware"
	"github.com/AmanSainju12/pagecapture/browser"
	"github.com/AmanSainju12/pagecapture/cache"
	"github.com/AmanSainju12/pagecapture/config"
	"github.com/gin-gonic/gin"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(b *browser.Browser, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(b, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Screenshot
	protected.POST("/screenshot", handler.Screenshot(b, cc))

	// Batch
	protected.POST("/batch/screenshot", handler.PostBatch(b))
	protected.GET("/batch/:id", handler.GetBatch())

	return r
}
