// Package git provides the version-control collaborator for gitsmart.
// This file defines types parsed from git status output.
package git

import "github.com/mrz1836/gitsmart/internal/domain"

// Status represents the current state of a Git working tree.
type Status struct {
	Entries  []StatusEntry // One entry per changed or untracked path
	Branch   string        // Current branch name; empty when detached
	Detached bool          // HEAD is not on a branch
	Unborn   bool          // Branch has no commits yet
	Ahead    int           // Commits ahead of upstream
	Behind   int           // Commits behind upstream
}

// StatusEntry is a single porcelain status line.
type StatusEntry struct {
	Path     string // File path relative to repo root
	OldPath  string // For renamed or copied files, the original path
	Index    byte   // Index (staged) status code
	WorkTree byte   // Work tree (unstaged) status code
}

// IsClean returns true if the working tree has no changes.
func (s *Status) IsClean() bool {
	return len(s.Entries) == 0
}

// Unmerged returns the paths with unresolved merge conflicts.
func (s *Status) Unmerged() []string {
	var out []string
	for _, e := range s.Entries {
		if e.IsUnmerged() {
			out = append(out, e.Path)
		}
	}
	return out
}

// IsUntracked reports whether the entry is an untracked file.
func (e StatusEntry) IsUntracked() bool {
	return e.Index == '?' && e.WorkTree == '?'
}

// IsUnmerged reports whether the entry is an unresolved conflict.
func (e StatusEntry) IsUnmerged() bool {
	if e.Index == 'U' || e.WorkTree == 'U' {
		return true
	}
	return (e.Index == 'A' && e.WorkTree == 'A') || (e.Index == 'D' && e.WorkTree == 'D')
}

// Kind maps the two status codes to the net change relative to HEAD.
// The second result is false when the entry has no net change, such as a
// file added to the index and then deleted from the work tree.
func (e StatusEntry) Kind() (domain.ChangeKind, bool) {
	switch {
	case e.IsUntracked():
		return domain.ChangeAdded, true
	case e.Index == 'A' && e.WorkTree == 'D':
		return "", false
	case e.Index == 'R' || e.WorkTree == 'R':
		return domain.ChangeRenamed, true
	case e.Index == 'D' || e.WorkTree == 'D':
		return domain.ChangeDeleted, true
	case e.Index == 'A' || e.Index == 'C':
		return domain.ChangeAdded, true
	case e.Index == 'M' || e.WorkTree == 'M' || e.Index == 'T' || e.WorkTree == 'T':
		return domain.ChangeModified, true
	default:
		return "", false
	}
}

// CommitOptions controls how a commit is created.
type CommitOptions struct {
	// NoVerify skips pre-commit and commit-msg hooks.
	NoVerify bool
}
