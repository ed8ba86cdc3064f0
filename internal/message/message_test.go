package message

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/ai"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/validate"
)

var errTestRunner = errors.New("runner exploded")

type stubRunner struct {
	mu     sync.Mutex
	output string
	err    error
	reqs   []*domain.AIRequest
}

func (s *stubRunner) Run(_ context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AIResult{Success: true, Output: s.output}, nil
}

var _ ai.Runner = (*stubRunner)(nil)

// funcStrategy adapts a function to Strategy.
type funcStrategy struct {
	style domain.Style
	fn    func(ctx context.Context, unit domain.CommitUnit, mctx Context) (domain.CommitMessage, error)
}

func (f *funcStrategy) Style() domain.Style { return f.style }

func (f *funcStrategy) Draft(ctx context.Context, unit domain.CommitUnit, mctx Context) (domain.CommitMessage, error) {
	return f.fn(ctx, unit, mctx)
}

var _ Strategy = (*funcStrategy)(nil)

type stubDiffs struct {
	diff string
}

func (s stubDiffs) Diff(_ context.Context, _ []string) (string, error) {
	return s.diff, nil
}

func unitOf(scope string, files ...domain.FileChange) domain.CommitUnit {
	return domain.CommitUnit{Files: files, Scope: scope}
}

func modified(p string) domain.FileChange {
	return domain.FileChange{Path: p, Kind: domain.ChangeModified}
}

func added(p string) domain.FileChange {
	return domain.FileChange{Path: p, Kind: domain.ChangeAdded}
}

func TestIsGeneric(t *testing.T) {
	generic := []string{"update code", "Update Code.", "  fix stuff ", "WIP", "changes", "update files", "chore: update code", ""}
	for _, s := range generic {
		assert.True(t, IsGeneric(s), s)
	}
	specific := []string{"update README.md", "add login page", "fix nil config panic", "update documentation in docs"}
	for _, s := range specific {
		assert.False(t, IsGeneric(s), s)
	}
}

func TestDescriptor_Describe(t *testing.T) {
	tests := []struct {
		name    string
		unit    domain.CommitUnit
		kind    domain.CommitType
		scope   string
		subject string
	}{
		{
			name: "web",
			unit: unitOf("web",
				domain.FileChange{Path: "web/app.js", Kind: domain.ChangeModified, Stats: domain.DiffStats{Additions: 3, Deletions: 1}},
				added("web/index.html")),
			kind: domain.CommitTypeFeat, scope: "web", subject: "update web interface in web",
		},
		{
			name: "backend single file",
			unit: unitOf("api", modified("api/users.go")),
			kind: domain.CommitTypeFeat, scope: "api", subject: "update users.go",
		},
		{
			name: "feature specification",
			unit: unitOf("auth-flow", added("specs/auth-flow/plan.md"), added("specs/auth-flow/spec.md")),
			kind: domain.CommitTypeDocs, scope: "auth-flow", subject: "add auth-flow specification",
		},
		{
			name: "documentation",
			unit: unitOf("documentation", modified("README.md")),
			kind: domain.CommitTypeDocs, scope: "documentation", subject: "update README.md",
		},
		{
			name: "configuration",
			unit: unitOf("config", modified(".github/workflows/ci.yml"), modified("go.mod")),
			kind: domain.CommitTypeChore, scope: "config", subject: "update configuration",
		},
		{
			name: "tests",
			unit: unitOf("testing", modified("internal/foo/foo_test.go")),
			kind: domain.CommitTypeTest, scope: "testing", subject: "update foo_test.go",
		},
		{
			name: "uncategorized",
			unit: unitOf("", modified("data/blob.bin"), modified("data/other.bin")),
			kind: domain.CommitTypeFeat, scope: "general", subject: "update blob.bin and other.bin",
		},
		{
			name: "deleted files",
			unit: unitOf("", domain.FileChange{Path: "data/a.bin", Kind: domain.ChangeDeleted}),
			kind: domain.CommitTypeFeat, scope: "general", subject: "remove a.bin",
		},
		{
			name: "rename",
			unit: unitOf("api", domain.FileChange{Path: "api/people.go", OldPath: "api/users.go", Kind: domain.ChangeRenamed}),
			kind: domain.CommitTypeFeat, scope: "api", subject: "rename users.go to people.go",
		},
	}

	d := NewDescriptor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := d.Describe(tt.unit, domain.StyleConventional)
			assert.Equal(t, tt.kind, msg.Type)
			assert.Equal(t, tt.scope, msg.Scope)
			assert.Equal(t, tt.subject, msg.Subject)
			assert.NotEmpty(t, msg.Body)
		})
	}
}

func TestDescriptor_Body(t *testing.T) {
	unit := unitOf("web",
		domain.FileChange{Path: "web/app.js", Kind: domain.ChangeModified, Stats: domain.DiffStats{Additions: 3, Deletions: 1}},
		added("web/index.html"))
	msg := NewDescriptor().Describe(unit, domain.StyleConventional)
	assert.Equal(t, "Web Interface: 2 files changed (1 added, 1 modified), +3/-1 lines.", msg.Body)

	feature := NewDescriptor().Describe(unitOf("", added("specs/auth-flow/spec.md")), domain.StyleConventional)
	assert.Contains(t, feature.Body, "Auth Flow specification")
}

func TestDescriptor_SimpleStyle(t *testing.T) {
	msg := NewDescriptor().Describe(unitOf("documentation", modified("README.md")), domain.StyleSimple)
	assert.Empty(t, msg.Type)
	assert.Empty(t, msg.Scope)
	assert.Equal(t, "Update README.md", msg.Subject)
}

func TestDescriptor_NeverGeneric(t *testing.T) {
	paths := []string{
		"README.md", "web/README.md", "code", "src/code", "files", "a/b/c/d.txt",
		"specs/x/y.md", "internal/x/x_test.go", "Makefile", "web/app.css", "cmd/main.go",
	}
	d := NewDescriptor()

	for i := range paths {
		for j := i; j < len(paths); j++ {
			files := []domain.FileChange{modified(paths[i])}
			if j != i {
				files = append(files, modified(paths[j]))
			}
			unit := unitOf("", files...)
			for _, style := range []domain.Style{domain.StyleConventional, domain.StyleSimple} {
				msg := d.Describe(unit, style)
				assert.False(t, IsGeneric(msg.Subject), "%v: %q", unit.Paths(), msg.Subject)
				if style == domain.StyleConventional {
					assert.NotEmpty(t, msg.Scope)
				}
				again := d.Describe(unit, style)
				assert.Equal(t, msg, again)

				opts := validate.DefaultOptions()
				opts.Style = style
				_, err := validate.NewChain(opts).Run(msg)
				require.NoError(t, err, "%v", unit.Paths())
			}
		}
	}
}

func TestScopeSlug(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "auth-flow", 24, "auth-flow"},
		{"cut at dash", "very-long-feature-name-for-the-new-billing-system", 24, "very-long-feature-name"},
		{"no dash hard cut", "abcdefghijklmnopqrstuvwxyzabcdef", 10, "abcdefghij"},
		{"trailing separators dropped", "ab.cd_ef-gh", 6, "ab.cd"},
		{"spaces become dashes", "Billing System", 24, "billing-system"},
		{"empty", "  ", 24, "general"},
		{"no limit", "very-long-feature-name-for-the-new-billing-system", 0, "very-long-feature-name-for-the-new-billing-system"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scopeSlug(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			if tt.limit > 0 {
				assert.LessOrEqual(t, len(got), tt.limit)
			}
		})
	}
}

func TestDescriptor_LongFeatureScope(t *testing.T) {
	unit := unitOf("", added("specs/very-long-feature-name-for-the-new-billing-system/spec.md"))

	t.Run("default limit", func(t *testing.T) {
		msg := NewDescriptor().Describe(unit, domain.StyleConventional)
		assert.Equal(t, "very-long-feature-name", msg.Scope)
		_, err := validate.NewChain(validate.DefaultOptions()).Run(msg)
		require.NoError(t, err)
	})

	t.Run("tight header limit keeps room for the subject", func(t *testing.T) {
		opts := validate.DefaultOptions()
		opts.SubjectMaxLength = 20
		msg := NewDescriptor(WithHeaderLimit(opts.SubjectMaxLength)).Describe(unit, domain.StyleConventional)
		assert.Equal(t, "very", msg.Scope)

		got, err := validate.NewChain(opts).Run(msg)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got.Header()), 20)
		assert.NotEmpty(t, got.Subject)
	})

	t.Run("generator passes the chain limit", func(t *testing.T) {
		opts := validate.DefaultOptions()
		opts.SubjectMaxLength = 20
		drafts, err := NewGenerator(nil, validate.NewChain(opts)).Generate(context.Background(), []domain.CommitUnit{unit})
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		require.NoError(t, drafts[0].Err)
		assert.True(t, drafts[0].Valid())
		assert.LessOrEqual(t, len(drafts[0].Message.Header()), 20)
	})
}

func TestConventionalStrategy_Draft(t *testing.T) {
	unit := unitOf("api", modified("api/users.go"))

	t.Run("parses model answer", func(t *testing.T) {
		runner := &stubRunner{output: "```\nfeat(api): add users endpoint\n\nServe the list of users.\n```"}
		s := NewConventionalStrategy(runner, WithStrategyModel("haiku"))

		msg, err := s.Draft(context.Background(), unit, Context{})
		require.NoError(t, err)
		assert.Equal(t, domain.CommitTypeFeat, msg.Type)
		assert.Equal(t, "api", msg.Scope)
		assert.Equal(t, "add users endpoint", msg.Subject)
		assert.Equal(t, "Serve the list of users.", msg.Body)

		require.Len(t, runner.reqs, 1)
		assert.Equal(t, "haiku", runner.reqs[0].Model)
		assert.Contains(t, runner.reqs[0].Prompt, "api/users.go")
		assert.NotContains(t, runner.reqs[0].Prompt, "previous attempt")
	})

	t.Run("missing scope takes the unit scope", func(t *testing.T) {
		s := NewConventionalStrategy(&stubRunner{output: "fix: handle empty list"})
		msg, err := s.Draft(context.Background(), unit, Context{})
		require.NoError(t, err)
		assert.Equal(t, "api", msg.Scope)
	})

	t.Run("generic subject", func(t *testing.T) {
		s := NewConventionalStrategy(&stubRunner{output: "chore(api): update code"})
		_, err := s.Draft(context.Background(), unit, Context{})
		require.ErrorIs(t, err, gserrors.ErrGenericMessage)
	})

	t.Run("unparsable answer", func(t *testing.T) {
		s := NewConventionalStrategy(&stubRunner{output: "Here is a commit message for you"})
		_, err := s.Draft(context.Background(), unit, Context{})
		require.ErrorIs(t, err, gserrors.ErrAIInvalidFormat)
	})

	t.Run("empty answer", func(t *testing.T) {
		s := NewConventionalStrategy(&stubRunner{output: "  "})
		_, err := s.Draft(context.Background(), unit, Context{})
		require.ErrorIs(t, err, gserrors.ErrAIEmptyResponse)
	})

	t.Run("runner error", func(t *testing.T) {
		s := NewConventionalStrategy(&stubRunner{err: errTestRunner})
		_, err := s.Draft(context.Background(), unit, Context{})
		require.ErrorIs(t, err, errTestRunner)
	})
}

func TestSimpleStrategy_Draft(t *testing.T) {
	s := NewSimpleStrategy(&stubRunner{output: "feat(api): Add users endpoint"})
	assert.Equal(t, domain.StyleSimple, s.Style())

	msg, err := s.Draft(context.Background(), unitOf("api", modified("api/users.go")), Context{})
	require.NoError(t, err)
	assert.Empty(t, msg.Type)
	assert.Equal(t, "Add users endpoint", msg.Subject)
}

func TestNewStrategy(t *testing.T) {
	assert.Nil(t, NewStrategy(domain.StyleConventional, nil))
	assert.IsType(t, &SimpleStrategy{}, NewStrategy(domain.StyleSimple, &stubRunner{}))
	assert.IsType(t, &ConventionalStrategy{}, NewStrategy(domain.StyleConventional, &stubRunner{}))
}

func TestGenerator_Generate(t *testing.T) {
	units := []domain.CommitUnit{
		unitOf("web", modified("web/app.js")),
		unitOf("api", modified("api/users.go")),
		unitOf("documentation", modified("README.md")),
	}

	t.Run("model drafts in input order", func(t *testing.T) {
		strategy := &funcStrategy{style: domain.StyleConventional, fn: func(_ context.Context, u domain.CommitUnit, _ Context) (domain.CommitMessage, error) {
			// later units finish first
			time.Sleep(time.Duration(3-len(u.Scope)%3) * time.Millisecond)
			return domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: u.Scope, Subject: "describe " + u.Scope}, nil
		}}
		drafts, err := NewGenerator(strategy, nil).Generate(context.Background(), units)
		require.NoError(t, err)
		require.Len(t, drafts, 3)
		for i, d := range drafts {
			assert.True(t, d.Valid())
			assert.Equal(t, SourceModel, d.Source)
			assert.Equal(t, "describe "+units[i].Scope, d.Message.Subject)
			assert.Equal(t, units[i].Paths(), d.Unit.Paths())
		}
	})

	t.Run("strategy failure uses descriptor", func(t *testing.T) {
		strategy := NewConventionalStrategy(&stubRunner{err: errTestRunner})
		drafts, err := NewGenerator(strategy, nil).Generate(context.Background(), units[:1])
		require.NoError(t, err)
		assert.Equal(t, SourceDescriptor, drafts[0].Source)
		assert.False(t, drafts[0].Regenerated)
		assert.Equal(t, "feat(web): update app.js", drafts[0].Message.Header())
	})

	t.Run("nil strategy uses descriptor", func(t *testing.T) {
		drafts, err := NewGenerator(nil, nil).Generate(context.Background(), units)
		require.NoError(t, err)
		for _, d := range drafts {
			assert.Equal(t, SourceDescriptor, d.Source)
			assert.True(t, d.Valid())
		}
	})

	t.Run("invalid draft regenerated once", func(t *testing.T) {
		calls := atomic.Int32{}
		strategy := &funcStrategy{style: domain.StyleConventional, fn: func(context.Context, domain.CommitUnit, Context) (domain.CommitMessage, error) {
			calls.Add(1)
			return domain.CommitMessage{Type: "feature", Scope: "web", Subject: "add login page"}, nil
		}}
		drafts, err := NewGenerator(strategy, nil).Generate(context.Background(), units[:1])
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
		assert.True(t, drafts[0].Valid())
		assert.True(t, drafts[0].Regenerated)
		assert.Equal(t, SourceDescriptor, drafts[0].Source)
	})

	t.Run("regenerated draft still invalid", func(t *testing.T) {
		opts := validate.DefaultOptions()
		opts.SubjectMaxLength = 20
		opts.SubjectPolicy = validate.PolicyReject
		strategy := &funcStrategy{style: domain.StyleConventional, fn: func(context.Context, domain.CommitUnit, Context) (domain.CommitMessage, error) {
			return domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: "web", Subject: "add a much longer login page"}, nil
		}}
		drafts, err := NewGenerator(strategy, validate.NewChain(opts)).Generate(context.Background(), units[:1])
		require.NoError(t, err)

		d := drafts[0]
		assert.False(t, d.Valid())
		assert.True(t, d.Regenerated)
		require.ErrorIs(t, d.Err, gserrors.ErrValidation)
		var verr *validate.ValidationError
		require.True(t, errors.As(d.Err, &verr))
		assert.Equal(t, validate.RuleSubjectLength, verr.Rule)
		assert.Contains(t, d.Err.Error(), "web/app.js")
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		var cur, peak atomic.Int32
		strategy := &funcStrategy{style: domain.StyleConventional, fn: func(_ context.Context, u domain.CommitUnit, _ Context) (domain.CommitMessage, error) {
			n := cur.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			cur.Add(-1)
			return domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: u.Scope, Subject: "describe " + u.Scope}, nil
		}}
		many := make([]domain.CommitUnit, 8)
		for i := range many {
			many[i] = unitOf("web", modified("web/app.js"))
		}
		_, err := NewGenerator(strategy, nil, WithConcurrency(2)).Generate(context.Background(), many)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("diff summary reaches the prompt", func(t *testing.T) {
		runner := &stubRunner{output: "feat(web): add login form"}
		diff := "diff --git a/web/app.js b/web/app.js\n--- a/web/app.js\n+++ b/web/app.js\n@@ -1 +1 @@\n-old\n+new\n"
		g := NewGenerator(NewConventionalStrategy(runner), nil, WithDiffReader(stubDiffs{diff: diff}))
		_, err := g.Generate(context.Background(), units[:1])
		require.NoError(t, err)
		require.Len(t, runner.reqs, 1)
		assert.Contains(t, runner.reqs[0].Prompt, "web/app.js: +1/-1 lines")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewGenerator(nil, nil).Generate(ctx, units)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSummarizeDiff(t *testing.T) {
	diff := "diff --git a/a.go b/a.go\nindex 1..2 100644\n--- a/a.go\n+++ b/a.go\n@@ -1,2 +1,2 @@\n-x := 1\n+x := 2\n+y := 3\n" +
		"diff --git a/b.go b/b.go\n--- a/b.go\n+++ b/b.go\n@@ -1 +1 @@\n-z\n"

	got := SummarizeDiff(diff, []string{"a.go"})
	assert.Contains(t, got, "a.go: +2/-1 lines")
	assert.NotContains(t, got, "b.go")
	assert.Contains(t, got, "Actual changes:\n-x := 1\n+x := 2\n+y := 3")

	assert.Empty(t, SummarizeDiff("", []string{"a.go"}))
}
