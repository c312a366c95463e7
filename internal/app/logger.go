package app

import (
	"strings"

	"github.com/charlesng35/filecache/pkg/logger"
)

// ConfigureLogging initialises the global logger from the log section, defaulting the level to info.
func ConfigureLogging(cfg LogConfig) error {
	opts := cfg.LoggerOptions()
	opts.Level = strings.TrimSpace(opts.Level)
	if opts.Level == "" {
		opts.Level = "info"
	}
	opts.File = strings.TrimSpace(opts.File)
	return logger.InitWithOptions(opts)
}
