package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (e *Engine) transfer(src, dst string, mode TransferMode) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	if mode == Move {
		return e.moveFile(src, dst)
	}
	return e.copyFile(src, dst)
}

// copyFile writes src to a temp file beside dst and renames it into place, so
// dst never exists half-written.
func (e *Engine) copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmpPath := filepath.Join(filepath.Dir(dst), ".filecache-"+uuid.NewString()+".tmp")
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, e.filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}

// moveFile renames src to dst, falling back to copy and remove when the two
// live on different filesystems.
func (e *Engine) moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := e.copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// undoTransfer puts the filesystem back after the metadata insert failed.
func (e *Engine) undoTransfer(src, dst string, mode TransferMode) {
	var err error
	switch mode {
	case Move:
		err = e.moveFile(dst, src)
	default:
		err = os.Remove(dst)
	}
	if err != nil {
		e.log.Warn("failed to roll back file transfer",
			zap.String("source", src),
			zap.String("target", dst),
			zap.Stringer("mode", mode),
			zap.Error(err),
		)
	}
}
