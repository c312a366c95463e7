package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/filecache/internal/models"
	"github.com/charlesng35/filecache/pkg/validator"
)

// EnsureFileEntryTable creates the entry table named table when the catalog
// does not list it yet. Existing tables are never altered or recreated.
// It reports whether the table was created by this call.
func EnsureFileEntryTable(db *gorm.DB, table string) (bool, error) {
	if db == nil {
		return false, errors.New("nil database handle")
	}
	if !validator.IsSQLIdentifier(table) {
		return false, fmt.Errorf("invalid table name %q", table)
	}

	if db.Migrator().HasTable(table) {
		return false, nil
	}

	if err := db.Table(table).Migrator().CreateTable(&models.FileEntry{}); err != nil {
		return false, fmt.Errorf("create table %s: %w", table, err)
	}
	return true, nil
}
