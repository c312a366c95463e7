package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/filecache/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t, "")

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestOpenSQLiteCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	db := openTestDB(t, path)

	require.NoError(t, db.Exec("SELECT 1").Error)
	require.FileExists(t, path)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{
		"":           "sqlite",
		"SQLite3":    "sqlite",
		"postgresql": "postgres",
		" pg ":       "postgres",
		"MariaDB":    "mysql",
		"oracle":     "oracle",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeDriver(in), "driver %q", in)
	}
}

func TestEnsureFileEntryTableIsIdempotent(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "cache.db"))

	created, err := EnsureFileEntryTable(db, "cache")
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, db.Table("cache").Create(&models.FileEntry{
		Key:       "k",
		FileName:  "k.txt",
		Timestamp: "2024-01-02T03:04:05+00:00",
	}).Error)

	created, err = EnsureFileEntryTable(db, "cache")
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, db.Table("cache").Count(&count).Error)
	require.Equal(t, int64(1), count)

	migrator := db.Migrator()
	require.True(t, migrator.HasColumn("cache", "key"))
	require.True(t, migrator.HasColumn("cache", "file_name"))
	require.True(t, migrator.HasColumn("cache", "timestamp"))
}

func TestEnsureFileEntryTableRejectsBadNames(t *testing.T) {
	db := openTestDB(t, "")

	_, err := EnsureFileEntryTable(db, "cache; drop table x")
	require.Error(t, err)

	_, err = EnsureFileEntryTable(nil, "cache")
	require.Error(t, err)
}

func TestEnsureFileEntryTableRejectsDuplicatePrimaryKey(t *testing.T) {
	db := openTestDB(t, "")

	_, err := EnsureFileEntryTable(db, "entries")
	require.NoError(t, err)

	entry := models.FileEntry{Key: "dup", FileName: "a", Timestamp: "2024-01-02T03:04:05+00:00"}
	require.NoError(t, db.Table("entries").Create(&entry).Error)

	again := models.FileEntry{Key: "dup", FileName: "b", Timestamp: "2024-01-02T03:04:05+00:00"}
	require.Error(t, db.Table("entries").Create(&again).Error)
}

func openTestDB(t *testing.T, path string) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}
