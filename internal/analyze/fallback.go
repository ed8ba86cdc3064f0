package analyze

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
)

// FallbackGrouper is the deterministic, rule-based partitioner used when the
// classifier is unavailable or degenerate. The same change set always
// yields the same units in the same order.
type FallbackGrouper struct {
	threshold int
}

// NewFallbackGrouper creates a grouper that sub-partitions buckets larger
// than threshold. A non-positive threshold uses the default.
func NewFallbackGrouper(threshold int) *FallbackGrouper {
	if threshold <= 0 {
		threshold = constants.DefaultDegeneracyThreshold
	}
	return &FallbackGrouper{threshold: threshold}
}

// bucket is an intermediate group keyed by category and location.
type bucket struct {
	category Category
	scope    string
	reason   string
	files    []domain.FileChange
}

// Group partitions cs into commit units:
//
//  1. files are bucketed by category; feature specification files are
//     bucketed per feature directory
//  2. other categories are split by immediate parent directory
//  3. buckets above the threshold are split by directory, one level deeper
//     each pass, until they fit or the tree bottoms out
//  4. uncategorized files become singleton units
func (g *FallbackGrouper) Group(cs domain.ChangeSet) []domain.CommitUnit {
	if cs.IsEmpty() {
		return nil
	}

	byKey := make(map[string]*bucket)
	var keys []string
	add := func(key string, b bucket, fc domain.FileChange) {
		existing, ok := byKey[key]
		if !ok {
			nb := b
			existing = &nb
			byKey[key] = existing
			keys = append(keys, key)
		}
		existing.files = append(existing.files, fc)
	}

	for _, fc := range cs.Changes() {
		cl := Categorize(fc.Path)
		switch cl.Category {
		case CategoryFeature:
			add("feature:"+cl.FeatureRoot, bucket{
				category: CategoryFeature,
				scope:    cl.Feature,
				reason:   "specification for feature " + cl.Feature,
			}, fc)
		case CategoryNone:
			add("none:"+fc.Path, bucket{
				category: CategoryNone,
				scope:    fallbackScope(fc.Path),
				reason:   "file outside any known category",
			}, fc)
		case CategoryTest, CategoryDocs, CategoryWeb, CategoryBackend, CategoryConfig:
			dir := parentDir(fc.Path)
			add(cl.Category.String()+":"+dir, bucket{
				category: cl.Category,
				scope:    cl.Category.Scope(),
				reason:   fmt.Sprintf("%s changes in %s", cl.Category, displayDir(dir)),
			}, fc)
		}
	}

	var buckets []bucket
	for _, key := range keys {
		b := byKey[key]
		for _, files := range g.granular(b.files) {
			part := *b
			part.files = files
			buckets = append(buckets, part)
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].category != buckets[j].category {
			return buckets[i].category < buckets[j].category
		}
		return buckets[i].files[0].Path < buckets[j].files[0].Path
	})

	units := make([]domain.CommitUnit, len(buckets))
	for i, b := range buckets {
		units[i] = domain.CommitUnit{Files: b.files, Scope: b.scope, Rationale: b.reason}
	}
	return units
}

// granular splits files by directory prefix, one level deeper each pass,
// until every part holds at most threshold files or no deeper split exists.
// Input and output files stay in path order.
func (g *FallbackGrouper) granular(files []domain.FileChange) [][]domain.FileChange {
	if len(files) <= g.threshold {
		return [][]domain.FileChange{files}
	}
	return g.splitAt(files, commonDirDepth(files)+1)
}

func (g *FallbackGrouper) splitAt(files []domain.FileChange, depth int) [][]domain.FileChange {
	if len(files) <= g.threshold {
		return [][]domain.FileChange{files}
	}

	deepest := 0
	for _, fc := range files {
		deepest = max(deepest, len(dirSegments(fc.Path)))
	}
	if depth > deepest {
		return [][]domain.FileChange{files}
	}

	groups := make(map[string][]domain.FileChange)
	var order []string
	for _, fc := range files {
		segs := dirSegments(fc.Path)
		key := strings.Join(segs[:min(depth, len(segs))], "/")
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], fc)
	}

	var out [][]domain.FileChange
	for _, key := range order {
		out = append(out, g.splitAt(groups[key], depth+1)...)
	}
	return out
}

// dirSegments returns the directory components of p; root files have none.
func dirSegments(p string) []string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return nil
	}
	return strings.Split(dir, "/")
}

// commonDirDepth returns the number of leading directory components shared by all files.
func commonDirDepth(files []domain.FileChange) int {
	if len(files) == 0 {
		return 0
	}
	prefix := dirSegments(files[0].Path)
	for _, fc := range files[1:] {
		segs := dirSegments(fc.Path)
		n := 0
		for n < len(prefix) && n < len(segs) && prefix[n] == segs[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return len(prefix)
}

// fallbackScope derives a scope for an uncategorized file: its parent
// directory name, or its base name without extension at the root.
func fallbackScope(p string) string {
	dir := path.Dir(p)
	if dir != "." {
		return path.Base(dir)
	}
	base := path.Base(p)
	if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" {
		return strings.TrimPrefix(stem, ".")
	}
	return strings.TrimPrefix(base, ".")
}

func displayDir(dir string) string {
	if dir == "." {
		return "the repository root"
	}
	return dir
}
