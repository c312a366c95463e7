package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlesng35/filecache/internal/app"
	"github.com/charlesng35/filecache/pkg/logger"
)

type cli struct {
	configPath string
	verbose    bool
	cfg        *app.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "filecache",
		Short:         "Disk-backed file cache keyed by caller-chosen identifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadApplicationConfig(c.configPath)
			if err != nil {
				return err
			}

			logCfg := cfg.Log
			// One-shot commands print results on stdout; keep stderr quiet unless asked.
			if cmd.Name() != "serve" && !c.verbose {
				logCfg.Level = "warn"
			}
			if err := app.ConfigureLogging(logCfg); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			c.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to configuration directory or file")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at the configured level instead of warn")

	rootCmd.AddCommand(
		c.addCmd(),
		c.getCmd(),
		c.rmCmd(),
		c.clearCmd(),
		c.expireCmd(),
		c.lsCmd(),
		c.serveCmd(),
	)

	return rootCmd
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}
