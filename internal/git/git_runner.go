// Package git provides the version-control collaborator for gitsmart.
// This file implements the CLIRunner which wraps git CLI commands.
package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// Compile-time check that CLIRunner implements Repository.
var _ Repository = (*CLIRunner)(nil)

// CLIRunner implements Repository using the git CLI.
type CLIRunner struct {
	workDir string        // Working directory for git commands
	timeout time.Duration // Per-command timeout; zero disables it
}

// RunnerOption configures a CLIRunner.
type RunnerOption func(*CLIRunner)

// WithCommandTimeout bounds every git command run by the CLIRunner.
func WithCommandTimeout(d time.Duration) RunnerOption {
	return func(r *CLIRunner) {
		r.timeout = d
	}
}

// NewRunner creates a new CLIRunner for the given working directory.
// Returns an error if the directory is not a git repository.
func NewRunner(ctx context.Context, workDir string, opts ...RunnerOption) (*CLIRunner, error) {
	if workDir == "" {
		return nil, fmt.Errorf("work directory cannot be empty: %w", gserrors.ErrEmptyValue)
	}

	r := &CLIRunner{workDir: workDir}
	for _, opt := range opts {
		opt(r)
	}

	if _, err := r.runGitCommand(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrNotGitRepo, err)
	}

	return r, nil
}

// WorkDir returns the directory the runner operates in.
func (r *CLIRunner) WorkDir() string {
	return r.workDir
}

// TopLevel returns the absolute path of the repository root.
func (r *CLIRunner) TopLevel(ctx context.Context) (string, error) {
	out, err := r.runGitCommand(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root: %w", err)
	}
	return out, nil
}

// GitDir returns the absolute path of the repository's git directory.
// For a linked worktree this is the worktree's own directory under .git.
func (r *CLIRunner) GitDir(ctx context.Context) (string, error) {
	out, err := r.runGitCommand(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to resolve git directory: %w", err)
	}
	return out, nil
}

// Status returns the current working tree status.
func (r *CLIRunner) Status(ctx context.Context) (*Status, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	// --branch keeps the first line non-blank so trimming never eats a status code.
	output, err := r.runGitCommand(ctx, "status", "--porcelain", "-uall", "--branch")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return parseGitStatus(output), nil
}

// NumStat returns per-path line deltas of the working tree against HEAD.
// Untracked files are not included; the collector counts them itself.
func (r *CLIRunner) NumStat(ctx context.Context) (map[string]domain.DiffStats, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	head, err := r.ResolveRef(ctx, "HEAD")
	if err != nil {
		return nil, err
	}

	stats := make(map[string]domain.DiffStats)
	if head != "" {
		out, err := r.runGitRaw(ctx, "diff", "--numstat", "-z", "HEAD")
		if err != nil {
			return nil, fmt.Errorf("failed to get numstat: %w", err)
		}
		mergeNumstat(stats, parseNumstatZ(out))
		return stats, nil
	}

	// Unborn branch: staged content against the empty tree plus unstaged edits.
	for _, args := range [][]string{
		{"diff", "--numstat", "-z", "--cached"},
		{"diff", "--numstat", "-z"},
	} {
		out, err := r.runGitRaw(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to get numstat: %w", err)
		}
		mergeNumstat(stats, parseNumstatZ(out))
	}
	return stats, nil
}

// Diff returns the unified diff of paths against HEAD.
func (r *CLIRunner) Diff(ctx context.Context, paths []string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	head, err := r.ResolveRef(ctx, "HEAD")
	if err != nil {
		return "", err
	}

	args := []string{"diff"}
	if head != "" {
		args = append(args, "HEAD")
	} else {
		args = append(args, "--cached")
	}
	args = append(args, "--")
	args = append(args, paths...)

	out, err := r.runGitCommand(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get diff: %w", err)
	}
	return out, nil
}

// ResolveRef returns the commit id of ref, or "" when it does not exist.
func (r *CLIRunner) ResolveRef(ctx context.Context, ref string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	out, err := r.runGitCommand(ctx, "rev-parse", "--verify", "-q", ref+"^{commit}")
	if err != nil {
		if isExitStatus(err, 1) {
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	return out, nil
}

// CurrentBranch returns the name of the currently checked out branch.
// Works on unborn branches; returns ErrDetachedHead when HEAD is detached.
func (r *CLIRunner) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := r.runGitCommand(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil || output == "" {
		if err == nil || isExitStatus(err, 1) {
			return "", fmt.Errorf("repository is in detached HEAD state: %w", ErrorTypeDetachedHead.Sentinel())
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	return output, nil
}

// BranchExists checks if a branch exists in the repository.
func (r *CLIRunner) BranchExists(ctx context.Context, name string) (bool, error) {
	id, err := r.ResolveRef(ctx, "refs/heads/"+name)
	if err != nil {
		return false, fmt.Errorf("failed to check branch existence: %w", err)
	}
	return id != "", nil
}

// RemoteExists reports whether a remote is configured.
func (r *CLIRunner) RemoteExists(ctx context.Context, name string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	out, err := r.runGitCommand(ctx, "remote")
	if err != nil {
		return false, fmt.Errorf("failed to list remotes: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// HasUpstream reports whether branch has a tracking branch.
func (r *CLIRunner) HasUpstream(ctx context.Context, branch string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	_, err := r.runGitCommand(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", branch+"@{upstream}")
	if err != nil {
		if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
			return false, ctxErr
		}
		// No upstream configured is reported as a plain failure by git.
		return false, nil //nolint:nilerr // missing upstream is an expected answer
	}
	return true, nil
}

// StagedPaths returns the paths currently staged in the index. A staged
// rename lists both its source and destination.
func (r *CLIRunner) StagedPaths(ctx context.Context) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	out, err := r.runGitRaw(ctx, "diff", "--cached", "--name-only", "--no-renames", "-z")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged paths: %w", err)
	}
	return splitNul(out), nil
}

// ResetIndex unstages all staged changes.
func (r *CLIRunner) ResetIndex(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	head, err := r.ResolveRef(ctx, "HEAD")
	if err != nil {
		return err
	}

	if head == "" {
		_, err = r.runGitCommand(ctx, "rm", "-r", "--cached", "-q", "--ignore-unmatch", "--", ".")
	} else {
		_, err = r.runGitCommand(ctx, "reset", "-q")
	}
	if err != nil {
		return fmt.Errorf("failed to reset staging: %w", err)
	}
	return nil
}

// Stage adds the given paths to the index, including deletions.
func (r *CLIRunner) Stage(ctx context.Context, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no paths to stage: %w", gserrors.ErrEmptyValue)
	}

	args := append([]string{"add", "-A", "--"}, paths...)
	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// Unstage restores the index entries of paths to HEAD.
func (r *CLIRunner) Unstage(ctx context.Context, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	head, err := r.ResolveRef(ctx, "HEAD")
	if err != nil {
		return err
	}

	var args []string
	if head == "" {
		args = append([]string{"rm", "-r", "--cached", "-q", "--ignore-unmatch", "--"}, paths...)
	} else {
		args = append([]string{"reset", "-q", "--"}, paths...)
	}
	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to unstage files: %w", err)
	}
	return nil
}

// Commit creates a commit from the index and returns the new commit id.
func (r *CLIRunner) Commit(ctx context.Context, message string, opts CommitOptions) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit message cannot be empty: %w", gserrors.ErrEmptyValue)
	}

	// --cleanup=whitespace keeps body lines that begin with '#'.
	args := []string{"commit", "-m", message, "--cleanup=whitespace"}
	if opts.NoVerify {
		args = append(args, "--no-verify")
	}
	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	id, err := r.ResolveRef(ctx, "HEAD")
	if err != nil {
		return "", err
	}
	return id, nil
}

// ResetSoft moves the current branch to rev keeping index and work tree.
func (r *CLIRunner) ResetSoft(ctx context.Context, rev string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if rev == "" {
		return fmt.Errorf("reset target cannot be empty: %w", gserrors.ErrEmptyValue)
	}

	if _, err := r.runGitCommand(ctx, "reset", "--soft", rev); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", rev, err)
	}
	return nil
}

// UpdateRef points ref at value.
func (r *CLIRunner) UpdateRef(ctx context.Context, ref, value string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "update-ref", ref, value); err != nil {
		return fmt.Errorf("failed to update %s: %w", ref, err)
	}
	return nil
}

// DeleteRef removes ref.
func (r *CLIRunner) DeleteRef(ctx context.Context, ref string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "update-ref", "-d", ref); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}

// CreateBranch creates a branch at start without checking it out.
func (r *CLIRunner) CreateBranch(ctx context.Context, name, start string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("branch name cannot be empty: %w", gserrors.ErrEmptyValue)
	}

	args := []string{"branch", name}
	if start != "" {
		args = append(args, start)
	}
	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to create branch '%s': %w", name, err)
	}
	return nil
}

// Checkout switches to branch.
func (r *CLIRunner) Checkout(ctx context.Context, branch string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "checkout", "-q", branch); err != nil {
		return fmt.Errorf("failed to checkout '%s': %w", branch, err)
	}
	return nil
}

// Merge merges branch into the current branch.
func (r *CLIRunner) Merge(ctx context.Context, branch string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "merge", "--no-edit", branch); err != nil {
		return fmt.Errorf("failed to merge '%s': %w", branch, err)
	}
	return nil
}

// MergeAbort aborts an in-progress merge.
func (r *CLIRunner) MergeAbort(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "merge", "--abort"); err != nil {
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "there is no merge to abort") {
			return nil
		}
		return fmt.Errorf("failed to abort merge: %w", err)
	}
	return nil
}

// Push pushes commits to the remote repository.
func (r *CLIRunner) Push(ctx context.Context, remote, branch string, setUpstream bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, remote, branch)

	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// runGitCommand executes a git command and returns its trimmed output.
func (r *CLIRunner) runGitCommand(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return RunCommand(ctx, r.workDir, args...)
}

// runGitRaw executes a git command and returns its untrimmed output.
func (r *CLIRunner) runGitRaw(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return runRaw(ctx, r.workDir, args...)
}

func (r *CLIRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// isExitStatus reports whether err came from git exiting with code.
func isExitStatus(err error, code int) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return strings.Contains(err.Error(), "exit status "+strconv.Itoa(code))
}

// parseGitStatus parses git status --porcelain --branch output.
func parseGitStatus(output string) *Status {
	status := &Status{Entries: []StatusEntry{}}

	for _, line := range strings.Split(output, "\n") {
		if len(line) < 2 {
			continue
		}

		// Branch line: ## branch...origin/branch [ahead N, behind M]
		if strings.HasPrefix(line, "## ") {
			parseBranchLine(line, status)
			continue
		}

		if len(line) < 4 {
			continue
		}

		// XY PATH or XY ORIG -> PATH (for renames and copies)
		entry := StatusEntry{Index: line[0], WorkTree: line[1]}
		path := line[3:]
		if entry.Index == 'R' || entry.Index == 'C' || entry.WorkTree == 'R' {
			if parts := strings.SplitN(path, " -> ", 2); len(parts) == 2 {
				entry.OldPath = unquotePath(parts[0])
				path = parts[1]
			}
		}
		entry.Path = unquotePath(path)
		status.Entries = append(status.Entries, entry)
	}

	return status
}

// parseBranchLine parses the branch line from git status --porcelain --branch.
func parseBranchLine(line string, status *Status) {
	line = strings.TrimPrefix(line, "## ")

	switch {
	case strings.HasPrefix(line, "HEAD (no branch)"):
		status.Detached = true
		return
	case strings.HasPrefix(line, "No commits yet on "):
		status.Unborn = true
		status.Branch = strings.TrimPrefix(line, "No commits yet on ")
		return
	case strings.HasPrefix(line, "Initial commit on "):
		status.Unborn = true
		status.Branch = strings.TrimPrefix(line, "Initial commit on ")
		return
	}

	parts := strings.SplitN(line, "...", 2)
	status.Branch = parts[0]
	if len(parts) < 2 {
		return
	}

	remotePart := parts[1]
	bracketStart := strings.Index(remotePart, " [")
	if bracketStart == -1 {
		return
	}
	if len(remotePart) < bracketStart+4 || remotePart[len(remotePart)-1] != ']' {
		return
	}

	info := remotePart[bracketStart+2 : len(remotePart)-1]
	status.Ahead = parseAheadBehind(info, "ahead ")
	status.Behind = parseAheadBehind(info, "behind ")
}

// parseAheadBehind extracts the count from "ahead N" or "behind N" in the info string.
func parseAheadBehind(info, prefix string) int {
	idx := strings.Index(info, prefix)
	if idx == -1 {
		return 0
	}

	numStr := info[idx+len(prefix):]
	if commaIdx := strings.Index(numStr, ","); commaIdx != -1 {
		numStr = numStr[:commaIdx]
	}

	n, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil {
		return 0
	}
	return n
}

// unquotePath undoes git's C-style quoting of unusual paths.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}

// parseNumstatZ parses `git diff --numstat -z` output.
// Regular records are "add\tdel\tpath\x00"; renames are
// "add\tdel\t\x00old\x00new\x00". Binary files report "-" for both counts.
func parseNumstatZ(output string) map[string]domain.DiffStats {
	stats := make(map[string]domain.DiffStats)
	tokens := strings.Split(output, "\x00")

	for i := 0; i < len(tokens); i++ {
		parts := strings.SplitN(tokens[i], "\t", 3)
		if len(parts) < 3 {
			continue
		}

		path := parts[2]
		if path == "" && i+2 < len(tokens) {
			path = tokens[i+2]
			i += 2
		}
		if path == "" {
			continue
		}

		var s domain.DiffStats
		if parts[0] == "-" && parts[1] == "-" {
			s.Binary = true
		} else {
			s.Additions, _ = strconv.Atoi(parts[0])
			s.Deletions, _ = strconv.Atoi(parts[1])
		}
		stats[path] = s
	}

	return stats
}

func mergeNumstat(dst, src map[string]domain.DiffStats) {
	for path, s := range src {
		cur := dst[path]
		cur.Additions += s.Additions
		cur.Deletions += s.Deletions
		cur.Binary = cur.Binary || s.Binary
		dst[path] = cur
	}
}

func splitNul(output string) []string {
	var out []string
	for _, p := range strings.Split(output, "\x00") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
