package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/filecache/internal/models"
	apperrors "github.com/charlesng35/filecache/pkg/errors"
)

// TransferMode selects how Add places the source file into the cache.
type TransferMode int

const (
	// Copy leaves the source file in place.
	Copy TransferMode = iota
	// Move consumes the source file.
	Move
)

func (m TransferMode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Move:
		return "move"
	default:
		return fmt.Sprintf("TransferMode(%d)", int(m))
	}
}

// Add stores the file at sourcePath under key and returns the stored path.
// The stored name is desiredName, or desiredName with a " (n)" suffix when a
// file of that name is already in the folder. Adding an existing key fails
// with ErrDuplicateKey and touches nothing.
func (e *Engine) Add(ctx context.Context, key, sourcePath, desiredName string, mode TransferMode) (string, error) {
	start := time.Now()
	defer observeLatency("add", start)

	if err := validateAdd(key, sourcePath, desiredName, mode); err != nil {
		observeAdd(mode, "invalid")
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	db := e.db.WithContext(ctx)

	existing, err := e.lookup(db, key)
	if err != nil {
		observeAdd(mode, "store_error")
		return "", apperrors.ErrStoreUnavailable.WithInternal(err)
	}
	if existing != nil {
		observeAdd(mode, "duplicate")
		return "", apperrors.ErrDuplicateKey.WithInternal(fmt.Errorf("key %q", key))
	}

	name, err := UniqueName(e.nameTaken, desiredName)
	if err != nil {
		observeAdd(mode, "transfer_error")
		return "", apperrors.ErrTransferFailed.WithInternal(fmt.Errorf("resolve stored name for %q: %w", desiredName, err))
	}
	if name != desiredName {
		observeCollision()
		e.log.Debug("stored name adjusted",
			zap.String("key", key),
			zap.String("requested", desiredName),
			zap.String("stored", name),
		)
	}

	target := e.pathFor(name)
	if err := e.transfer(sourcePath, target, mode); err != nil {
		observeAdd(mode, "transfer_error")
		return "", apperrors.ErrTransferFailed.WithInternal(err)
	}

	row := models.FileEntry{
		Key:       key,
		FileName:  name,
		Timestamp: FormatTimestamp(e.now()),
	}
	if err := db.Table(e.table).Create(&row).Error; err != nil {
		e.undoTransfer(sourcePath, target, mode)
		if isUniqueConstraintError(err) {
			observeAdd(mode, "duplicate")
			return "", apperrors.ErrDuplicateKey.WithInternal(err)
		}
		observeAdd(mode, "store_error")
		return "", apperrors.ErrStoreUnavailable.WithInternal(err)
	}

	observeAdd(mode, "stored")
	e.log.Info("file cached",
		zap.String("key", key),
		zap.String("file_name", name),
		zap.Stringer("mode", mode),
	)
	return target, nil
}

func validateAdd(key, sourcePath, desiredName string, mode TransferMode) error {
	if key == "" {
		return apperrors.NewInvalidArgument("key is required")
	}
	if strings.TrimSpace(sourcePath) == "" {
		return apperrors.NewInvalidArgument("source path is required")
	}
	if mode != Copy && mode != Move {
		return apperrors.NewInvalidArgument(fmt.Sprintf("unknown transfer mode %d", int(mode)))
	}
	return ValidateName(desiredName)
}
