package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// VerifyPartition checks that units cover every change in cs exactly once
// and that no unit is empty.
func VerifyPartition(cs domain.ChangeSet, units []domain.CommitUnit) error {
	seen := make(map[string]int, cs.Len())
	for i, u := range units {
		if u.Len() == 0 {
			return fmt.Errorf("unit %d is empty: %w", i, gserrors.ErrPartition)
		}
		for _, fc := range u.Files {
			if _, ok := cs.Lookup(fc.Path); !ok {
				return fmt.Errorf("unit %d has unknown path %s: %w", i, fc.Path, gserrors.ErrPartition)
			}
			if prev, dup := seen[fc.Path]; dup {
				return fmt.Errorf("path %s is in units %d and %d: %w", fc.Path, prev, i, gserrors.ErrPartition)
			}
			seen[fc.Path] = i
		}
	}

	if len(seen) != cs.Len() {
		var missing []string
		for _, p := range cs.Paths() {
			if _, ok := seen[p]; !ok {
				missing = append(missing, p)
			}
		}
		return fmt.Errorf("paths not assigned to any unit: %s: %w",
			strings.Join(missing, ", "), gserrors.ErrPartition)
	}
	return nil
}

// unitsFromGrouping resolves a classifier grouping against cs. Any grouping
// that is not an exact partition is reported as malformed.
func unitsFromGrouping(cs domain.ChangeSet, grouping Grouping) ([]domain.CommitUnit, error) {
	units := make([]domain.CommitUnit, 0, len(grouping.Groups))
	for _, g := range grouping.Groups {
		paths := make([]string, len(g.Paths))
		copy(paths, g.Paths)
		sort.Strings(paths)

		files := make([]domain.FileChange, 0, len(paths))
		for _, p := range paths {
			fc, ok := cs.Lookup(strings.TrimSpace(p))
			if !ok {
				return nil, fmt.Errorf("%w: unknown path %q: %w", gserrors.ErrClassifierMalformed, p, gserrors.ErrPartition)
			}
			files = append(files, fc)
		}

		unit := domain.CommitUnit{
			Files:     files,
			Scope:     normalizeScope(g.Scope),
			Rationale: strings.TrimSpace(g.Rationale),
		}
		if unit.Scope == "" && len(files) > 0 {
			unit.Scope = scopeForFiles(files)
		}
		units = append(units, unit)
	}

	if err := VerifyPartition(cs, units); err != nil {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrClassifierMalformed, err)
	}
	return units, nil
}

// normalizeScope lowercases a scope and replaces characters git tooling
// dislikes in a conventional header.
func normalizeScope(scope string) string {
	scope = strings.ToLower(strings.TrimSpace(scope))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '/', r == '.':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, scope)
}

// scopeForFiles picks a scope from the first categorized file.
func scopeForFiles(files []domain.FileChange) string {
	for _, fc := range files {
		cl := Categorize(fc.Path)
		if cl.Category == CategoryFeature {
			return cl.Feature
		}
		if s := cl.Category.Scope(); s != "" {
			return s
		}
	}
	return fallbackScope(files[0].Path)
}
