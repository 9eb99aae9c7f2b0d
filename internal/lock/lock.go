// Package lock keeps two sgrenew runs from touching the same security
// groups at once.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
	"github.com/ksyq12/sgrenew/internal/logger"
)

// RunLock is an exclusive advisory lock on a file.
type RunLock struct {
	flock *flock.Flock
}

// Acquire takes the lock at path without blocking. If another process
// holds it, the error matches errors.ErrLocked.
func Acquire(path string) (*RunLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLock, "failed to create lock directory", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLock, fmt.Sprintf("failed to lock %s", path), err)
	}
	if !locked {
		return nil, apperrors.Wrap(apperrors.ErrCodeLock, fmt.Sprintf("another run is in progress (lock held on %s)", path), nil)
	}

	logger.Debug("Acquired run lock %s", path)
	return &RunLock{flock: fl}, nil
}

// Release unlocks. The lock file itself is left in place.
func (l *RunLock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeLock, "failed to release run lock", err)
	}
	logger.Debug("Released run lock %s", l.flock.Path())
	return nil
}
