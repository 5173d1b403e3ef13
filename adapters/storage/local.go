// Package storage provides Sink implementations for the output artifact.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/prepress/cmyk2srgb/errors"
)

// Local writes output files to the local filesystem.  Paths are taken as
// given (the output location is user-supplied, not bucket-rooted).
type Local struct {
	permissions os.FileMode
}

// NewLocal creates a Local sink.  perm 0 defaults to 0644.
func NewLocal(perm os.FileMode) *Local {
	if perm == 0 {
		perm = 0o644
	}
	return &Local{permissions: perm}
}

func (l *Local) Write(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.write", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Wrap(apperrors.CategoryStorage, "local.write.mkdir", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.permissions)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.write.open", err)
	}

	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		// Do not leave a truncated artifact behind.
		os.Remove(path)
		return apperrors.Wrap(apperrors.CategoryStorage, "local.write.copy", err)
	}
	if err = f.Close(); err != nil {
		os.Remove(path)
		return apperrors.Wrap(apperrors.CategoryStorage, "local.write.close", err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "local.exists", err)
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CategoryStorage, "local.exists.stat", err)
}
