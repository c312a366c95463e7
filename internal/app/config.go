package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/charlesng35/filecache/internal/database"
	"github.com/charlesng35/filecache/pkg/logger"
	"github.com/charlesng35/filecache/pkg/validator"
)

// Config represents the runtime configuration for filecache.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Admin       AdminConfig       `mapstructure:"admin"`
}

// LogConfig controls the global logger and its optional rotating file sink.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// DatabaseConfig describes connection options for the supported metadata stores.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver" validate:"omitempty,oneof=sqlite sqlite3 postgres postgresql pg mysql mariadb"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig locates the metadata table and the folder holding stored files.
type CacheConfig struct {
	Table         string `mapstructure:"table" validate:"required,sqlident"`
	Folder        string `mapstructure:"folder" validate:"required"`
	ExclusiveLock bool   `mapstructure:"exclusive_lock"`
}

// MaintenanceConfig schedules the age-based sweep.
type MaintenanceConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Retention time.Duration `mapstructure:"retention" validate:"gte=0"`
	Schedule  string        `mapstructure:"schedule"`
}

// AdminConfig toggles the health and metrics listener.
type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"required_if=Enabled true"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("filecache")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("FILECACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	config.normalise()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.compress", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/filecache.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "filecache")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.mysql.host", "")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "filecache")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("cache.table", "cache")
	v.SetDefault("cache.folder", "./data/cache-files")
	v.SetDefault("cache.exclusive_lock", false)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.retention", "720h") // 30 days
	v.SetDefault("maintenance.schedule", "@hourly")

	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.address", "127.0.0.1:9464")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

func (c *Config) normalise() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.File = strings.TrimSpace(c.Log.File)
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Cache.Table = strings.TrimSpace(c.Cache.Table)
	c.Cache.Folder = strings.TrimSpace(c.Cache.Folder)
	c.Maintenance.Schedule = strings.TrimSpace(c.Maintenance.Schedule)
	c.Admin.Address = strings.TrimSpace(c.Admin.Address)
}

// Validate checks the struct rules declared on Config.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	if err := validator.ValidateStruct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DatabaseOptions maps the configured driver section onto database.Config.
func (c *Config) DatabaseOptions() database.Config {
	dbCfg := database.Config{
		Driver: database.NormalizeDriver(c.Database.Driver),
		Path:   strings.TrimSpace(c.Database.Path),
		DSN:    strings.TrimSpace(c.Database.DSN),
	}

	var auth DBAuthConfig
	switch dbCfg.Driver {
	case "postgres":
		auth = c.Database.Postgres
	case "mysql":
		auth = c.Database.MySQL
	default:
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(auth.Host)
	dbCfg.Port = auth.Port
	dbCfg.Name = strings.TrimSpace(auth.Database)
	dbCfg.User = strings.TrimSpace(auth.Username)
	dbCfg.Password = strings.TrimSpace(auth.Password)
	return dbCfg
}

// LoggerOptions maps the log section onto logger.Options.
func (c LogConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}
