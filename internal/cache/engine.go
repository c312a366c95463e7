package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/filecache/internal/database"
	"github.com/charlesng35/filecache/internal/models"
	apperrors "github.com/charlesng35/filecache/pkg/errors"
	"github.com/charlesng35/filecache/pkg/logger"
	"github.com/charlesng35/filecache/pkg/validator"
)

const (
	lockFileName    = ".filecache.lock"
	defaultFilePerm = 0o644
	defaultDirPerm  = 0o755
)

// Entry is a cache row with its timestamp decoded.
type Entry struct {
	Key       string
	FileName  string
	Path      string
	CreatedAt time.Time
}

// Engine maps caller keys to files stored in a single folder. It is safe for
// concurrent use by multiple goroutines; mutating calls are serialised.
type Engine struct {
	db     *gorm.DB
	table  string
	folder string

	mu sync.Mutex

	now       func() time.Time
	log       *zap.Logger
	filePerm  os.FileMode
	dirPerm   os.FileMode
	exclusive bool
	lock      *flock.Flock
}

// Option customises the Engine.
type Option func(*Engine)

// WithLogger overrides the logger, which defaults to the global "cache" module logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNow overrides the clock used for entry timestamps and age cutoffs.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithExclusiveLock makes New take a non-blocking advisory lock on the cache
// folder, failing with ErrFolderLocked when another engine already holds it.
func WithExclusiveLock() Option {
	return func(e *Engine) {
		e.exclusive = true
	}
}

// WithFilePerm sets the permissions of copied files.
func WithFilePerm(mode os.FileMode) Option {
	return func(e *Engine) {
		if mode != 0 {
			e.filePerm = mode
		}
	}
}

// WithDirPerm sets the permissions used when creating the cache folder.
func WithDirPerm(mode os.FileMode) Option {
	return func(e *Engine) {
		if mode != 0 {
			e.dirPerm = mode
		}
	}
}

// New prepares the entry table and the cache folder, creating either when
// missing. Running it against an existing table and folder keeps their
// contents.
func New(db *gorm.DB, table, folder string, opts ...Option) (*Engine, error) {
	if db == nil {
		return nil, apperrors.ErrStoreUnavailable.WithInternal(errors.New("database handle is required"))
	}
	table = strings.TrimSpace(table)
	if !validator.IsSQLIdentifier(table) {
		return nil, apperrors.NewInvalidArgument(fmt.Sprintf("table name %q is not a valid identifier", table))
	}
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil, apperrors.NewInvalidArgument("cache folder is required")
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("cache: resolve folder: %w", err)
	}

	e := &Engine{
		db:       db,
		table:    table,
		folder:   abs,
		now:      time.Now,
		log:      logger.WithModule("cache"),
		filePerm: defaultFilePerm,
		dirPerm:  defaultDirPerm,
	}
	for _, opt := range opts {
		opt(e)
	}

	created, err := database.EnsureFileEntryTable(db, table)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable.WithInternal(err)
	}

	if err := os.MkdirAll(abs, e.dirPerm); err != nil {
		return nil, fmt.Errorf("cache: create folder: %w", err)
	}

	if e.exclusive {
		if err := e.acquireFolderLock(); err != nil {
			return nil, err
		}
	}

	e.log.Debug("cache ready",
		zap.String("table", table),
		zap.String("folder", abs),
		zap.Bool("table_created", created),
	)
	return e, nil
}

func (e *Engine) acquireFolderLock() error {
	fl := flock.New(filepath.Join(e.folder, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("cache: lock folder: %w", err)
	}
	if !locked {
		return apperrors.ErrFolderLocked.WithInternal(fmt.Errorf("folder %s", e.folder))
	}
	e.lock = fl
	return nil
}

// Close releases the folder lock, if held. The database handle stays open; it
// belongs to the caller.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lock == nil {
		return nil
	}
	err := e.lock.Unlock()
	e.lock = nil
	return err
}

// Folder returns the absolute cache folder.
func (e *Engine) Folder() string {
	return e.folder
}

// Table returns the metadata table name.
func (e *Engine) Table() string {
	return e.table
}

// GetPath returns the stored path for key. It does not check that the file
// is still present on disk.
func (e *Engine) GetPath(ctx context.Context, key string) (string, bool, error) {
	row, err := e.lookup(e.db.WithContext(ctx), key)
	if err != nil {
		observeLookup("error")
		return "", false, apperrors.ErrStoreUnavailable.WithInternal(err)
	}
	if row == nil {
		observeLookup("miss")
		return "", false, nil
	}
	observeLookup("hit")
	return e.pathFor(row.FileName), true, nil
}

// Entry returns the full row for key, or nil when the key is unknown.
func (e *Engine) Entry(ctx context.Context, key string) (*Entry, error) {
	row, err := e.lookup(e.db.WithContext(ctx), key)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable.WithInternal(err)
	}
	if row == nil {
		return nil, nil
	}
	entry, err := e.decode(*row)
	if err != nil {
		e.log.Warn("entry has malformed timestamp",
			zap.String("key", row.Key),
			zap.String("timestamp", row.Timestamp),
		)
	}
	return &entry, nil
}

// Entries lists all rows ordered by key.
func (e *Engine) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := e.selectAll(e.db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable.WithInternal(err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := e.decode(row)
		if err != nil {
			e.log.Warn("listing entry with malformed timestamp",
				zap.String("key", row.Key),
				zap.String("timestamp", row.Timestamp),
			)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Count returns the number of rows in the metadata table.
func (e *Engine) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := e.db.WithContext(ctx).Table(e.table).Count(&count).Error; err != nil {
		return 0, apperrors.ErrStoreUnavailable.WithInternal(err)
	}
	return count, nil
}

// FileNameExists reports whether the cache folder already has an entry named
// name. A name that cannot be checked is reported as absent.
func (e *Engine) FileNameExists(name string) bool {
	taken, err := e.nameTaken(name)
	return taken && err == nil
}

// nameTaken reports whether name is occupied in the cache folder. Stat errors
// other than "does not exist" (ENAMETOOLONG, EACCES) are returned.
func (e *Engine) nameTaken(name string) (bool, error) {
	_, err := os.Lstat(e.pathFor(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (e *Engine) pathFor(name string) string {
	return filepath.Join(e.folder, name)
}

// decode converts a row. A malformed timestamp leaves CreatedAt zero and is
// reported alongside the otherwise complete entry.
func (e *Engine) decode(row models.FileEntry) (Entry, error) {
	entry := Entry{
		Key:      row.Key,
		FileName: row.FileName,
		Path:     e.pathFor(row.FileName),
	}
	createdAt, err := ParseTimestamp(row.Timestamp)
	if err != nil {
		return entry, fmt.Errorf("cache: entry %q has malformed timestamp %q: %w", row.Key, row.Timestamp, err)
	}
	entry.CreatedAt = createdAt
	return entry, nil
}

func (e *Engine) lookup(db *gorm.DB, key string) (*models.FileEntry, error) {
	var row models.FileEntry
	err := db.Table(e.table).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (e *Engine) selectAll(db *gorm.DB) ([]models.FileEntry, error) {
	var rows []models.FileEntry
	err := db.Table(e.table).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&rows).Error
	return rows, err
}
