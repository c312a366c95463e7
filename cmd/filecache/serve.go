package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesng35/filecache/internal/api"
	"github.com/charlesng35/filecache/internal/app"
	"github.com/charlesng35/filecache/internal/app/maintenance"
	"github.com/charlesng35/filecache/internal/monitoring"
	"github.com/charlesng35/filecache/internal/monitoring/checks"
	"github.com/charlesng35/filecache/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the maintenance sweeper and the admin endpoints until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), c.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *app.Config) error {
	log := logger.WithModule("bootstrap")

	stack, err := bootstrapRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			log.Warn("runtime shutdown", zap.Error(err))
		}
	}()

	mon := monitoring.NewModule(monitoring.Options{})
	monitoring.SetModule(mon)
	mon.Health().RegisterReadiness(
		checks.Database(stack.DB, 0),
		checks.Folder(stack.Cache.Folder()),
	)

	sweeper := maintenance.NewSweeper(stack.Cache,
		maintenance.WithRetention(cfg.Maintenance.Retention),
		maintenance.WithSchedule(cfg.Maintenance.Schedule),
	)
	if cfg.Maintenance.Enabled && sweeper.Enabled() {
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("start maintenance jobs: %w", err)
		}
		mon.Health().RegisterReadiness(checks.Sweeper(mon, 0))
		defer func() {
			stopCtx := sweeper.Stop()
			<-stopCtx.Done()
		}()
	}

	log.Info("filecache ready",
		zap.String("folder", stack.Cache.Folder()),
		zap.String("table", stack.Cache.Table()),
		zap.Bool("maintenance", cfg.Maintenance.Enabled),
	)

	if !cfg.Admin.Enabled {
		<-ctx.Done()
		log.Info("shutdown signal received")
		return nil
	}

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.Options{
		Cache:      stack.Cache,
		Folder:     stack.Cache.Folder(),
		Monitoring: mon,
	})
	if err != nil {
		return fmt.Errorf("build admin router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Admin.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("admin server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("admin server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("admin server error: %w", err)
	}

	log.Info("admin server stopped gracefully")
	return nil
}
