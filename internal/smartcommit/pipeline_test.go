package smartcommit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/analyze"
	"github.com/mrz1836/gitsmart/internal/command"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
	"github.com/mrz1836/gitsmart/internal/message"
	"github.com/mrz1836/gitsmart/internal/testutil"
	"github.com/mrz1836/gitsmart/internal/validate"
)

func fakeWorkTree(paths ...string) *testutil.FakeRepository {
	repo := testutil.NewFakeRepository()
	repo.StatusResult = &git.Status{Branch: "feature"}
	repo.Stats = map[string]domain.DiffStats{}
	for _, p := range paths {
		repo.StatusResult.Entries = append(repo.StatusResult.Entries, git.StatusEntry{Path: p, Index: ' ', WorkTree: 'M'})
		repo.Stats[p] = domain.DiffStats{Additions: 2, Deletions: 1}
	}
	return repo
}

func newPipeline(t *testing.T, repo *testutil.FakeRepository, chain *validate.Chain, opts ...Option) *Pipeline {
	t.Helper()
	collector := git.NewCollector(repo, t.TempDir())
	generator := message.NewGenerator(nil, chain, message.WithDiffReader(repo))
	return New(collector, analyze.NewAnalyzer(nil), generator, opts...)
}

func TestPipeline_PlanDoesNotTouchIndex(t *testing.T) {
	repo := fakeWorkTree("web/app.js", "web/index.html", "api/server.go", "README.md")
	p := newPipeline(t, repo, nil, WithRunID("run-42"))

	plan, err := p.Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-42", plan.RunID)
	assert.Equal(t, domain.StyleConventional, plan.Style)
	assert.Equal(t, 4, plan.Changes)
	assert.Equal(t, analyze.SourceFallback, plan.Grouping.Kind)
	assert.Equal(t, analyze.ReasonDisabled, plan.Grouping.Reason)
	assert.Empty(t, plan.Failures)

	require.Len(t, plan.Commits, 3)
	var seen []string
	for _, c := range plan.Commits {
		seen = append(seen, c.Unit.Paths()...)
		assert.Equal(t, message.SourceDescriptor, c.Source)
		assert.NotEmpty(t, c.Message.Scope)
	}
	assert.ElementsMatch(t, []string{"web/app.js", "web/index.html", "api/server.go", "README.md"}, seen)

	for _, op := range []string{"ResetIndex", "Stage", "Unstage", "Commit", "Push", "Merge"} {
		assert.False(t, repo.Called(op), op)
	}
}

func TestPipeline_Run(t *testing.T) {
	repo := fakeWorkTree("web/app.js", "api/server.go", "README.md")
	p := newPipeline(t, repo, nil, WithExecutor(command.NewExecutor(repo)))

	result, err := p.Run(context.Background(), RunOptions{Push: true})
	require.NoError(t, err)
	require.NotNil(t, result.Report)

	assert.Equal(t, 3, result.Report.Count(command.OutcomeSucceeded))
	require.Len(t, repo.Commits, 3)
	for i, c := range repo.Commits {
		assert.Equal(t, result.Plan.Commits[i].Message.String(), c.Message)
	}
	assert.Equal(t, []string{"origin/feature"}, repo.Pushes)
}

func TestPipeline_NoChanges(t *testing.T) {
	repo := fakeWorkTree()
	p := newPipeline(t, repo, nil, WithExecutor(command.NewExecutor(repo)))

	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Equal(t, analyze.SourceEmpty, plan.Grouping.Kind)

	_, err = p.Execute(context.Background(), plan, RunOptions{})
	require.ErrorIs(t, err, gserrors.ErrNoChanges)
}

func TestPipeline_RejectedDraftIsReported(t *testing.T) {
	repo := fakeWorkTree("docs/an-exceptionally-long-guide-name.md")
	chain := validate.NewChain(validate.Options{SubjectMaxLength: 20, SubjectPolicy: validate.PolicyReject})
	p := newPipeline(t, repo, chain, WithExecutor(command.NewExecutor(repo)))

	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plan.Commits)
	require.Len(t, plan.Failures, 1)
	assert.Equal(t, validate.RuleSubjectLength, plan.Failures[0].Rule)
	assert.Equal(t, []string{"docs/an-exceptionally-long-guide-name.md"}, plan.Failures[0].Unit.Paths())
	assert.NotEmpty(t, plan.Failures[0].Draft.Subject)

	result, err := p.Execute(context.Background(), plan, RunOptions{})
	require.ErrorIs(t, err, gserrors.ErrRunFailed)
	require.ErrorIs(t, err, gserrors.ErrValidation)
	assert.Nil(t, result.Report)
	assert.False(t, repo.Called("ResetIndex"))
	assert.False(t, repo.Called("Commit"))
}

func TestPipeline_ExecutorFailure(t *testing.T) {
	repo := fakeWorkTree("web/app.js", "api/server.go")
	repo.Failures["Commit#2"] = testutil.ErrMockGitFailed
	p := newPipeline(t, repo, nil, WithExecutor(command.NewExecutor(repo)))

	result, err := p.Run(context.Background(), RunOptions{})
	require.ErrorIs(t, err, gserrors.ErrRunFailed)
	require.ErrorIs(t, err, testutil.ErrMockGitFailed)
	assert.Equal(t, command.OutcomeFailed, result.Report.Units[1].Outcome)
	assert.Len(t, repo.Commits, 1)
}

func TestPipeline_Errors(t *testing.T) {
	t.Run("collector failure", func(t *testing.T) {
		repo := fakeWorkTree("a.go")
		repo.Failures["Status"] = testutil.ErrMockGitFailed
		_, err := newPipeline(t, repo, nil).Plan(context.Background())
		require.ErrorIs(t, err, testutil.ErrMockGitFailed)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newPipeline(t, fakeWorkTree("a.go"), nil).Plan(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no executor", func(t *testing.T) {
		p := newPipeline(t, fakeWorkTree("a.go"), nil)
		_, err := p.Run(context.Background(), RunOptions{})
		require.ErrorIs(t, err, gserrors.ErrCommandNotConfigured)
	})

	t.Run("random run id", func(t *testing.T) {
		a := newPipeline(t, fakeWorkTree(), nil)
		b := newPipeline(t, fakeWorkTree(), nil)
		assert.Len(t, a.RunID(), 36)
		assert.NotEqual(t, a.RunID(), b.RunID())
	})
}
