package domain

import (
	"fmt"
	"sort"
	"strings"

	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// ChangeKind is the kind of modification applied to a file in the working tree.
type ChangeKind string

// Change kinds recognized by the collector.
const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// String returns the string representation of the ChangeKind.
func (k ChangeKind) String() string {
	return string(k)
}

// IsValid reports whether k is a known change kind.
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeAdded, ChangeModified, ChangeDeleted, ChangeRenamed:
		return true
	}
	return false
}

// DiffStats holds per-file line deltas.
type DiffStats struct {
	Additions int  `json:"additions" yaml:"additions"`
	Deletions int  `json:"deletions" yaml:"deletions"`
	Binary    bool `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// FileChange is a single changed path in the working tree.
// Values are never mutated after collection.
type FileChange struct {
	// Path is relative to the repository root and unique within a ChangeSet.
	Path string `json:"path" yaml:"path"`

	// Kind is the modification kind.
	Kind ChangeKind `json:"kind" yaml:"kind"`

	// OldPath is the previous path, set for renames only.
	OldPath string `json:"old_path,omitempty" yaml:"old_path,omitempty"`

	// Stats carries line deltas when they are known.
	Stats DiffStats `json:"stats" yaml:"stats"`
}

// ChangeSet is the ordered, duplicate-free collection of file changes captured
// once per invocation. The zero value is an empty set.
type ChangeSet struct {
	changes []FileChange
	index   map[string]int
}

// NewChangeSet builds a ChangeSet sorted by path.
// It rejects empty paths and paths that appear more than once.
func NewChangeSet(changes []FileChange) (ChangeSet, error) {
	sorted := make([]FileChange, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	index := make(map[string]int, len(sorted))
	for i, fc := range sorted {
		if strings.TrimSpace(fc.Path) == "" {
			return ChangeSet{}, fmt.Errorf("change %d has no path: %w", i, gserrors.ErrEmptyValue)
		}
		if _, dup := index[fc.Path]; dup {
			return ChangeSet{}, fmt.Errorf("%s: %w", fc.Path, gserrors.ErrDuplicatePath)
		}
		index[fc.Path] = i
	}

	return ChangeSet{changes: sorted, index: index}, nil
}

// Len returns the number of changes.
func (c ChangeSet) Len() int {
	return len(c.changes)
}

// IsEmpty reports whether the set has no changes.
func (c ChangeSet) IsEmpty() bool {
	return len(c.changes) == 0
}

// Changes returns a copy of the changes in path order.
func (c ChangeSet) Changes() []FileChange {
	out := make([]FileChange, len(c.changes))
	copy(out, c.changes)
	return out
}

// Paths returns the changed paths in sorted order.
func (c ChangeSet) Paths() []string {
	out := make([]string, len(c.changes))
	for i, fc := range c.changes {
		out[i] = fc.Path
	}
	return out
}

// Lookup returns the change for path.
func (c ChangeSet) Lookup(path string) (FileChange, bool) {
	i, ok := c.index[path]
	if !ok {
		return FileChange{}, false
	}
	return c.changes[i], true
}

// CommitUnit is a non-empty group of file changes committed together.
type CommitUnit struct {
	// Files in the unit. Paths are unique.
	Files []FileChange `json:"files" yaml:"files"`

	// Scope is a short label for the unit, used as the conventional scope hint.
	Scope string `json:"scope" yaml:"scope"`

	// Rationale explains why the files belong together.
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// Paths returns the unit's file paths in order.
func (u CommitUnit) Paths() []string {
	out := make([]string, len(u.Files))
	for i, fc := range u.Files {
		out[i] = fc.Path
	}
	return out
}

// Len returns the number of files in the unit.
func (u CommitUnit) Len() int {
	return len(u.Files)
}

// LineDelta sums additions and deletions across the unit.
func (u CommitUnit) LineDelta() (additions, deletions int) {
	for _, fc := range u.Files {
		additions += fc.Stats.Additions
		deletions += fc.Stats.Deletions
	}
	return additions, deletions
}

// KindCounts counts the unit's files per change kind.
func (u CommitUnit) KindCounts() map[ChangeKind]int {
	counts := make(map[ChangeKind]int, 4)
	for _, fc := range u.Files {
		counts[fc.Kind]++
	}
	return counts
}
