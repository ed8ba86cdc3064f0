//go:build unix

package flock_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/flock"
)

func TestExclusive(t *testing.T) {
	t.Parallel()

	t.Run("second descriptor is refused", func(t *testing.T) {
		t.Parallel()
		lockFile := filepath.Join(t.TempDir(), "test.lock")

		f1, err := os.OpenFile(lockFile, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test code using safe temp dir
		require.NoError(t, err)
		defer func() { _ = f1.Close() }()
		require.NoError(t, flock.Exclusive(f1.Fd()))

		f2, err := os.OpenFile(lockFile, os.O_RDWR, 0o600) // #nosec G304 -- test code using safe temp dir
		require.NoError(t, err)
		defer func() { _ = f2.Close() }()
		require.Error(t, flock.Exclusive(f2.Fd()))

		require.NoError(t, flock.Unlock(f1.Fd()))
		require.NoError(t, flock.Exclusive(f2.Fd()))
		require.NoError(t, flock.Unlock(f2.Fd()))
	})
}

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("creates the file and records the pid", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "gitsmart.lock")

		lock, err := flock.Acquire(path)
		require.NoError(t, err)
		defer func() { require.NoError(t, lock.Release()) }()

		assert.Equal(t, path, lock.Path())
		data, err := os.ReadFile(path) //nolint:gosec // test file
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
	})

	t.Run("held lock reports a run in progress", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "gitsmart.lock")

		first, err := flock.Acquire(path)
		require.NoError(t, err)

		_, err = flock.Acquire(path)
		require.ErrorIs(t, err, errors.ErrRunInProgress)
		assert.Contains(t, err.Error(), path)

		require.NoError(t, first.Release())

		second, err := flock.Acquire(path)
		require.NoError(t, err)
		require.NoError(t, second.Release())
		assert.FileExists(t, path)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		t.Parallel()
		lock, err := flock.Acquire(filepath.Join(t.TempDir(), "gitsmart.lock"))
		require.NoError(t, err)
		require.NoError(t, lock.Release())
		require.NoError(t, lock.Release())

		var nilLock *flock.Lock
		require.NoError(t, nilLock.Release())
	})
}
