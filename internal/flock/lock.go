package flock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrz1836/gitsmart/internal/errors"
)

// Lock is an exclusive lock on a file, held until Release.
type Lock struct {
	file *os.File
}

// Acquire opens path, creating it if needed, and locks it without blocking.
// When another process holds the lock the error wraps errors.ErrRunInProgress.
// The holder's PID is written to the file for diagnostics.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // Lock file path is derived from the git directory
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is locked", errors.ErrRunInProgress, path)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{file: f}, nil
}

// Path returns the locked file's path.
func (l *Lock) Path() string {
	return l.file.Name()
}

// Release unlocks and closes the file. The file itself is left in place;
// removing it would let a waiting process lock an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	name := l.file.Name()
	unlockErr := Unlock(l.file.Fd())
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return fmt.Errorf("failed to unlock %s: %w", name, unlockErr)
	}
	return closeErr
}
