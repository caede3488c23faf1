// Package runlock keeps two runapp invocations in the same project from racing.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"runapp/internal/logger"
)

// FileName is the lock file inside the project state directory.
const FileName = "run.lock"

// ErrBusy means another invocation currently holds the lock.
var ErrBusy = errors.New("another runapp invocation is already running in this project")

// Lock is a held run lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without waiting. It returns an error wrapping
// ErrBusy when the lock is held elsewhere.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrBusy, path)
	}
	logger.Debug("[DEBUG] Acquired run lock %s\n", path)
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.fl.Path() }

// Release unlocks. The file itself is left in place.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.fl.Path(), err)
	}
	return nil
}
