package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/filecache/internal/handlers"
	"github.com/charlesng35/filecache/internal/middleware"
	"github.com/charlesng35/filecache/internal/monitoring"
)

// Options carries the collaborators served by the admin router.
type Options struct {
	Cache      handlers.EntryReader
	Folder     string
	Monitoring *monitoring.Module
}

// NewRouter builds the read-only admin router: health probes, Prometheus
// metrics and cache inspection.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("cache must be provided")
	}
	if opts.Monitoring == nil {
		return nil, fmt.Errorf("monitoring module must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	registerHealthRoutes(r, opts.Monitoring)

	r.GET("/metrics", gin.WrapH(opts.Monitoring.Handler()))

	entries := handlers.NewEntriesHandler(opts.Cache)
	summary := handlers.NewMonitoringHandler(opts.Monitoring, opts.Cache, opts.Folder)

	api := r.Group("/api")
	{
		api.GET("/summary", summary.Summary)
		api.GET("/entries", entries.List)
		api.GET("/entries/:key", entries.Get)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
