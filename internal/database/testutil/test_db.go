package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/filecache/internal/database"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	path  string
	table string
}

// WithPath opens the SQLite database at path instead of a fresh file in a
// temporary directory. Useful for reopening the same store within a test.
func WithPath(path string) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.path = path
	}
}

// WithEntryTable creates the entry table with the given name after opening.
func WithEntryTable(table string) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.table = table
	}
}

// MustOpenTestDB opens a file-backed SQLite database for tests, isolated per test.
// The returned connection is automatically closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.path == "" {
		cfg.path = filepath.Join(t.TempDir(), "test.db")
	}

	db, err := database.Open(database.Config{Driver: "sqlite", Path: cfg.path})
	require.NoError(t, err)

	if cfg.table != "" {
		_, err := database.EnsureFileEntryTable(db, cfg.table)
		require.NoError(t, err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
