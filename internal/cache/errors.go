package cache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// EvictionFailure records a stored file that could not be removed. Its
// metadata row is left in place.
type EvictionFailure struct {
	Key      string
	FileName string
	Err      error
}

func (f EvictionFailure) Error() string {
	return fmt.Sprintf("evict %q (%s): %v", f.Key, f.FileName, f.Err)
}

// Unwrap exposes the filesystem error for errors.Is / errors.As.
func (f EvictionFailure) Unwrap() error {
	return f.Err
}

// EvictionFailures lists per-entry failures of a delete, clear or expire call.
type EvictionFailures []EvictionFailure

// Keys returns the keys whose files could not be removed, in encounter order.
func (f EvictionFailures) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, failure := range f {
		keys = append(keys, failure.Key)
	}
	return keys
}

// Err folds all failures into a single error, or nil when there are none.
func (f EvictionFailures) Err() error {
	var err error
	for _, failure := range f {
		err = multierr.Append(err, failure)
	}
	return err
}

// isUniqueConstraintError detects primary key violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
