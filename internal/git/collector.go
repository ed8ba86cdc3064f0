// Package git provides the version-control collaborator for gitsmart.
// This file implements the change collector that turns working tree status
// into a domain.ChangeSet.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// maxCountedFileSize caps how much of an untracked file is read to count lines.
const maxCountedFileSize = 1 << 20

// ChangeReader is the subset of Repository the collector needs.
type ChangeReader interface {
	Status(ctx context.Context) (*Status, error)
	NumStat(ctx context.Context) (map[string]domain.DiffStats, error)
}

// Collector reads the working tree once and produces a ChangeSet.
type Collector struct {
	repo    ChangeReader
	workDir string
	logger  zerolog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithCollectorLogger sets the logger for the collector.
func WithCollectorLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// NewCollector creates a collector for the repository rooted at workDir.
func NewCollector(repo ChangeReader, workDir string, opts ...CollectorOption) *Collector {
	c := &Collector{
		repo:    repo,
		workDir: workDir,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect captures staged, unstaged, and untracked changes as a ChangeSet.
// Unresolved merge conflicts are reported as ErrMergeConflict.
func (c *Collector) Collect(ctx context.Context) (domain.ChangeSet, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.ChangeSet{}, err
	}

	status, err := c.repo.Status(ctx)
	if err != nil {
		return domain.ChangeSet{}, err
	}

	if unmerged := status.Unmerged(); len(unmerged) > 0 {
		return domain.ChangeSet{}, fmt.Errorf("unresolved conflicts in %s: %w: %w",
			strings.Join(unmerged, ", "), gserrors.ErrRepository, gserrors.ErrMergeConflict)
	}

	if status.IsClean() {
		return domain.ChangeSet{}, nil
	}

	stats, err := c.repo.NumStat(ctx)
	if err != nil {
		return domain.ChangeSet{}, err
	}

	changes := make([]domain.FileChange, 0, len(status.Entries))
	for _, entry := range status.Entries {
		kind, ok := entry.Kind()
		if !ok {
			c.logger.Debug().Str("path", entry.Path).
				Str("status", string([]byte{entry.Index, entry.WorkTree})).
				Msg("skipping entry with no net change")
			continue
		}

		fc := domain.FileChange{
			Path:  entry.Path,
			Kind:  kind,
			Stats: stats[entry.Path],
		}
		if kind == domain.ChangeRenamed {
			fc.OldPath = entry.OldPath
		}
		if entry.IsUntracked() {
			fc.Stats = c.countLines(entry.Path)
		}
		changes = append(changes, fc)
	}

	cs, err := domain.NewChangeSet(changes)
	if err != nil {
		return domain.ChangeSet{}, fmt.Errorf("failed to build change set: %w", err)
	}

	c.logger.Debug().Int("changes", cs.Len()).Msg("collected working tree changes")
	return cs, nil
}

// countLines counts lines of an untracked file. Files containing NUL bytes
// are reported as binary; unreadable or oversized files report zero.
func (c *Collector) countLines(path string) domain.DiffStats {
	full := filepath.Join(c.workDir, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() || info.Size() > maxCountedFileSize {
		return domain.DiffStats{}
	}

	data, err := os.ReadFile(full) //#nosec G304 -- path comes from git status of this repository
	if err != nil {
		return domain.DiffStats{}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return domain.DiffStats{Binary: true}
	}

	lines := bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		lines++
	}
	return domain.DiffStats{Additions: lines}
}
