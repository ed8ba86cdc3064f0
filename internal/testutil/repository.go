package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
)

// FakeCommit is a commit recorded by FakeRepository.
type FakeCommit struct {
	ID      string
	Parent  string
	Message string
	Paths   []string
	Options git.CommitOptions
}

// FakeRepository is an in-memory git.Repository.
//
// Failures maps an operation name to the error it returns. A key of the
// form "Commit#2" fails only the second call of that operation.
type FakeRepository struct {
	mu sync.Mutex

	Branch     string
	Branches   map[string]string
	RemoteRefs map[string]string
	Remotes    map[string]bool
	Upstreams  map[string]bool
	Index      map[string]bool

	StatusResult *git.Status
	Stats        map[string]domain.DiffStats
	DiffText     string

	Failures map[string]error

	Commits []FakeCommit
	Pushes  []string
	Merges  []string
	Calls   []string

	counts map[string]int
}

// NewFakeRepository returns a repository on branch "feature" with one
// commit and an "origin" remote.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		Branch:     "feature",
		Branches:   map[string]string{"feature": "c000"},
		RemoteRefs: map[string]string{},
		Remotes:    map[string]bool{"origin": true},
		Upstreams:  map[string]bool{},
		Index:      map[string]bool{},
		Failures:   map[string]error{},
		counts:     map[string]int{},
	}
}

// Head returns the commit id of the current branch.
func (r *FakeRepository) Head() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Branches[r.Branch]
}

// CallCount returns how often op was called.
func (r *FakeRepository) CallCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op]
}

// Called reports whether op was called at least once.
func (r *FakeRepository) Called(op string) bool {
	return r.CallCount(op) > 0
}

// call records op and returns its injected failure. The caller holds mu.
func (r *FakeRepository) call(op string) error {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[op]++
	r.Calls = append(r.Calls, op)
	if err, ok := r.Failures[fmt.Sprintf("%s#%d", op, r.counts[op])]; ok {
		return err
	}
	return r.Failures[op]
}

// Status implements git.Repository.
func (r *FakeRepository) Status(_ context.Context) (*git.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Status"); err != nil {
		return nil, err
	}
	if r.StatusResult == nil {
		return &git.Status{Branch: r.Branch}, nil
	}
	return r.StatusResult, nil
}

// NumStat implements git.Repository.
func (r *FakeRepository) NumStat(_ context.Context) (map[string]domain.DiffStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("NumStat"); err != nil {
		return nil, err
	}
	return r.Stats, nil
}

// Diff implements git.Repository.
func (r *FakeRepository) Diff(_ context.Context, _ []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Diff"); err != nil {
		return "", err
	}
	return r.DiffText, nil
}

// ResolveRef implements git.Repository.
func (r *FakeRepository) ResolveRef(_ context.Context, ref string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("ResolveRef"); err != nil {
		return "", err
	}
	switch {
	case ref == "HEAD":
		return r.Branches[r.Branch], nil
	case strings.HasPrefix(ref, "refs/heads/"):
		return r.Branches[strings.TrimPrefix(ref, "refs/heads/")], nil
	case strings.HasPrefix(ref, "refs/remotes/"):
		return r.RemoteRefs[strings.TrimPrefix(ref, "refs/remotes/")], nil
	default:
		return r.Branches[ref], nil
	}
}

// CurrentBranch implements git.Repository.
func (r *FakeRepository) CurrentBranch(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("CurrentBranch"); err != nil {
		return "", err
	}
	if r.Branch == "" {
		return "", fmt.Errorf("%w: %w", gserrors.ErrRepository, gserrors.ErrDetachedHead)
	}
	return r.Branch, nil
}

// BranchExists implements git.Repository.
func (r *FakeRepository) BranchExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("BranchExists"); err != nil {
		return false, err
	}
	_, ok := r.Branches[name]
	return ok, nil
}

// RemoteExists implements git.Repository.
func (r *FakeRepository) RemoteExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("RemoteExists"); err != nil {
		return false, err
	}
	return r.Remotes[name], nil
}

// HasUpstream implements git.Repository.
func (r *FakeRepository) HasUpstream(_ context.Context, branch string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("HasUpstream"); err != nil {
		return false, err
	}
	return r.Upstreams[branch], nil
}

// StagedPaths implements git.Repository.
func (r *FakeRepository) StagedPaths(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("StagedPaths"); err != nil {
		return nil, err
	}
	return r.staged(), nil
}

func (r *FakeRepository) staged() []string {
	out := make([]string, 0, len(r.Index))
	for p := range r.Index {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ResetIndex implements git.Repository.
func (r *FakeRepository) ResetIndex(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("ResetIndex"); err != nil {
		return err
	}
	r.Index = map[string]bool{}
	return nil
}

// Stage implements git.Repository.
func (r *FakeRepository) Stage(_ context.Context, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Stage"); err != nil {
		return err
	}
	if r.Index == nil {
		r.Index = map[string]bool{}
	}
	for _, p := range paths {
		r.Index[p] = true
	}
	return nil
}

// Unstage implements git.Repository.
func (r *FakeRepository) Unstage(_ context.Context, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Unstage"); err != nil {
		return err
	}
	for _, p := range paths {
		delete(r.Index, p)
	}
	return nil
}

// Commit implements git.Repository.
func (r *FakeRepository) Commit(_ context.Context, message string, opts git.CommitOptions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Commit"); err != nil {
		return "", err
	}
	if len(r.Index) == 0 {
		return "", fmt.Errorf("%w: nothing to commit", gserrors.ErrRepository)
	}
	id := fmt.Sprintf("c%03d", len(r.Commits)+1)
	r.Commits = append(r.Commits, FakeCommit{
		ID:      id,
		Parent:  r.Branches[r.Branch],
		Message: message,
		Paths:   r.staged(),
		Options: opts,
	})
	r.Branches[r.Branch] = id
	r.Index = map[string]bool{}
	return id, nil
}

// ResetSoft implements git.Repository.
func (r *FakeRepository) ResetSoft(_ context.Context, rev string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("ResetSoft"); err != nil {
		return err
	}
	r.Branches[r.Branch] = rev
	return nil
}

// UpdateRef implements git.Repository.
func (r *FakeRepository) UpdateRef(_ context.Context, ref, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("UpdateRef"); err != nil {
		return err
	}
	r.Branches[strings.TrimPrefix(ref, "refs/heads/")] = value
	return nil
}

// DeleteRef implements git.Repository.
func (r *FakeRepository) DeleteRef(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("DeleteRef"); err != nil {
		return err
	}
	delete(r.Branches, strings.TrimPrefix(ref, "refs/heads/"))
	return nil
}

// CreateBranch implements git.Repository.
func (r *FakeRepository) CreateBranch(_ context.Context, name, start string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("CreateBranch"); err != nil {
		return err
	}
	if id, ok := r.Branches[start]; ok {
		r.Branches[name] = id
		return nil
	}
	if id, ok := r.RemoteRefs[start]; ok {
		r.Branches[name] = id
		return nil
	}
	return fmt.Errorf("%w: unknown start point %s", gserrors.ErrRepository, start)
}

// Checkout implements git.Repository.
func (r *FakeRepository) Checkout(_ context.Context, branch string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Checkout"); err != nil {
		return err
	}
	if _, ok := r.Branches[branch]; !ok {
		return fmt.Errorf("%w: unknown branch %s", gserrors.ErrRepository, branch)
	}
	r.Branch = branch
	return nil
}

// Merge implements git.Repository.
func (r *FakeRepository) Merge(_ context.Context, branch string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Merge"); err != nil {
		return err
	}
	r.Merges = append(r.Merges, branch+"->"+r.Branch)
	r.Branches[r.Branch] = "merge-" + r.Branches[branch]
	return nil
}

// MergeAbort implements git.Repository.
func (r *FakeRepository) MergeAbort(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.call("MergeAbort")
}

// Push implements git.Repository.
func (r *FakeRepository) Push(_ context.Context, remote, branch string, setUpstream bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Push"); err != nil {
		return err
	}
	r.Pushes = append(r.Pushes, remote+"/"+branch)
	if setUpstream {
		r.Upstreams[branch] = true
	}
	return nil
}

var _ git.Repository = (*FakeRepository)(nil)
