package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteBusyTimeoutMillis = 5000

func sqliteDialector(cfg Config) (gorm.Dialector, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn != "" {
		return sqlite.Open(dsn), nil
	}

	path := strings.TrimSpace(cfg.Path)
	if isMemorySQLite(cfg) {
		return sqlite.Open(fmt.Sprintf("file::memory:?_busy_timeout=%d", sqliteBusyTimeoutMillis)), nil
	}

	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return sqlite.Open(buildSQLiteDSN(path)), nil
}

func buildSQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d", filepath.ToSlash(path), sqliteBusyTimeoutMillis)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// configureSQLite pins in-memory databases to a single connection so every
// caller sees the same database.
func configureSQLite(db *gorm.DB, cfg Config) error {
	if !isMemorySQLite(cfg) {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

func isMemorySQLite(cfg Config) bool {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	}
	path := strings.TrimSpace(cfg.Path)
	return path == "" || strings.EqualFold(path, ":memory:")
}
