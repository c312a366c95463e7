package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/filecache/internal/models"
	apperrors "github.com/charlesng35/filecache/pkg/errors"
)

// deleteBatchSize keeps IN lists well below SQLite's bound-parameter limit.
const deleteBatchSize = 500

// Delete evicts the entry for key. Unknown keys are a no-op.
func (e *Engine) Delete(ctx context.Context, key string) (EvictionFailures, error) {
	return e.evict(ctx, "delete", func(db *gorm.DB) ([]models.FileEntry, error) {
		row, err := e.lookup(db, key)
		if err != nil || row == nil {
			return nil, err
		}
		return []models.FileEntry{*row}, nil
	})
}

// Clear evicts every entry.
func (e *Engine) Clear(ctx context.Context) (EvictionFailures, error) {
	return e.evict(ctx, "clear", e.selectAll)
}

// DeleteOlderThan evicts entries whose timestamp is strictly before now-age.
// Timestamps are compared as instants, so rows written under different UTC
// offsets are ordered correctly.
func (e *Engine) DeleteOlderThan(ctx context.Context, age time.Duration) (EvictionFailures, error) {
	if age < 0 {
		return nil, apperrors.NewInvalidArgument(fmt.Sprintf("age must not be negative, got %s", age))
	}

	return e.evict(ctx, "expire", func(db *gorm.DB) ([]models.FileEntry, error) {
		cutoff := e.now().Add(-age).Truncate(time.Second)

		rows, err := e.selectAll(db)
		if err != nil {
			return nil, err
		}

		expired := rows[:0]
		for _, row := range rows {
			createdAt, err := ParseTimestamp(row.Timestamp)
			if err != nil {
				e.log.Warn("skipping entry with malformed timestamp",
					zap.String("key", row.Key),
					zap.String("timestamp", row.Timestamp),
				)
				continue
			}
			if createdAt.Before(cutoff) {
				expired = append(expired, row)
			}
		}
		return expired, nil
	})
}

// evict removes the files of the selected rows, then deletes the rows whose
// files were removed in one transaction. Rows whose file could not be removed
// stay and are reported.
func (e *Engine) evict(ctx context.Context, operation string, selectRows func(*gorm.DB) ([]models.FileEntry, error)) (EvictionFailures, error) {
	start := time.Now()
	defer observeLatency(operation, start)

	e.mu.Lock()
	defer e.mu.Unlock()

	db := e.db.WithContext(ctx)

	candidates, err := selectRows(db)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable.WithInternal(err)
	}

	var failures EvictionFailures
	removed := make([]interface{}, 0, len(candidates))
	for _, row := range candidates {
		if err := e.removeFile(row.FileName); err != nil {
			failures = append(failures, EvictionFailure{Key: row.Key, FileName: row.FileName, Err: err})
			e.log.Warn("failed to remove cached file",
				zap.String("operation", operation),
				zap.String("key", row.Key),
				zap.String("file_name", row.FileName),
				zap.Error(err),
			)
			continue
		}
		removed = append(removed, row.Key)
	}

	if len(removed) > 0 {
		err := db.Transaction(func(tx *gorm.DB) error {
			for begin := 0; begin < len(removed); begin += deleteBatchSize {
				end := min(begin+deleteBatchSize, len(removed))
				err := tx.Table(e.table).
					Where(clause.IN{Column: clause.Column{Name: "key"}, Values: removed[begin:end]}).
					Delete(&models.FileEntry{}).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return failures, apperrors.ErrStoreUnavailable.WithInternal(err)
		}
	}

	observeEvictions(operation, len(removed), len(failures))
	if len(candidates) > 0 {
		e.log.Info("cache entries evicted",
			zap.String("operation", operation),
			zap.Int("candidates", len(candidates)),
			zap.Int("removed", len(removed)),
			zap.Int("failed", len(failures)),
		)
	}
	return failures, nil
}

func (e *Engine) removeFile(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return os.Remove(e.pathFor(name))
}
