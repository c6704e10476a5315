package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock is an advisory file lock held for the duration of a sync so two runs never reconcile the same library at once.
type RunLock struct {
	path string
	lock *flock.Flock
}

// AcquireRunLock takes the lock at path without blocking. Returns [ErrLocked] when another process holds it.
func AcquireRunLock(path string) (*RunLock, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: lock file path is empty", ErrInvalidConfig)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock: %s)", ErrLocked, path)
	}

	return &RunLock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}

// Release unlocks the file. Safe to call more than once.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
