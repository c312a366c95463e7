package main

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/filecache/internal/app"
	"github.com/charlesng35/filecache/internal/cache"
	"github.com/charlesng35/filecache/internal/database"
	"github.com/charlesng35/filecache/pkg/logger"
)

// runtimeStack bundles the store handle and the engine built on it.
type runtimeStack struct {
	DB    *gorm.DB
	Cache *cache.Engine
}

// bootstrapRuntime opens the metadata store and prepares the cache engine.
func bootstrapRuntime(cfg *app.Config) (*runtimeStack, error) {
	db, err := initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	opts := []cache.Option{cache.WithLogger(logger.WithModule("cache"))}
	if cfg.Cache.ExclusiveLock {
		opts = append(opts, cache.WithExclusiveLock())
	}

	engine, err := cache.New(db, cfg.Cache.Table, cfg.Cache.Folder, opts...)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("initialise cache: %w", err)
	}

	return &runtimeStack{DB: db, Cache: engine}, nil
}

// Close releases the folder lock and the database handle.
func (s *runtimeStack) Close() error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Cache != nil {
		errs = multierr.Append(errs, s.Cache.Close())
	}
	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseOptions()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger.WithModule("database").Debug("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}
