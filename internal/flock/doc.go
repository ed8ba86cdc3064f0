// Package flock provides cross-platform file locking.
//
// gitsmart holds an exclusive, non-blocking lock on a file in the git
// directory while a run stages, commits, pushes or merges, so two runs never
// interleave index updates in the same repository:
//
//	lock, err := flock.Acquire(filepath.Join(gitDir, constants.RunLockName))
//	if err != nil {
//	    // errors.ErrRunInProgress: another run holds the lock
//	}
//	defer lock.Release()
package flock
