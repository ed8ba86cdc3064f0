package validate

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

func ninetyCharSubject(t *testing.T) string {
	t.Helper()
	subject := "add paginated user listing endpoint with cursor support and stable ordering for admin tool"
	require.Len(t, subject, 90)
	return subject
}

func TestChain_Order(t *testing.T) {
	c := NewChain(Options{})
	assert.Equal(t, []string{
		RuleEmptySubject,
		RuleSubjectLength,
		RuleTrailingPeriod,
		RuleConventionalFormat,
		RuleBlankLine,
		RuleBodyLineLength,
	}, c.Names())
}

func TestNewChain_Defaults(t *testing.T) {
	opts := NewChain(Options{}).Options()
	assert.Equal(t, domain.StyleConventional, opts.Style)
	assert.Equal(t, 72, opts.SubjectMaxLength)
	assert.Equal(t, 72, opts.BodyLineWidth)
	assert.Equal(t, PolicyTruncate, opts.SubjectPolicy)
	assert.Equal(t, PolicyWrap, opts.BodyPolicy)
}

func TestChain_LongSubject(t *testing.T) {
	t.Run("truncates at a word boundary", func(t *testing.T) {
		subject := ninetyCharSubject(t)
		in := domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: "api", Subject: subject}

		out, err := NewChain(DefaultOptions()).Run(in)
		require.NoError(t, err)

		header := out.Header()
		assert.LessOrEqual(t, utf8.RuneCountInString(header), 72)
		assert.True(t, strings.HasPrefix(subject, out.Subject))
		assert.NotEqual(t, ' ', rune(out.Subject[len(out.Subject)-1]))
		// the cut lands between words
		assert.Equal(t, byte(' '), subject[len(out.Subject)])
	})

	t.Run("truncated output revalidates unchanged", func(t *testing.T) {
		c := NewChain(DefaultOptions())
		first, err := c.Run(domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: "api", Subject: ninetyCharSubject(t)})
		require.NoError(t, err)
		second, err := c.Run(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects under reject policy", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SubjectPolicy = PolicyReject
		in := domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: "api", Subject: ninetyCharSubject(t)}

		_, err := NewChain(opts).Run(in)
		require.ErrorIs(t, err, gserrors.ErrValidation)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, RuleSubjectLength, verr.Rule)
		assert.Equal(t, in, verr.Draft)
		assert.Contains(t, verr.Error(), "subject-length")
	})

	t.Run("exact word cut", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Style = domain.StyleSimple
		opts.SubjectMaxLength = 20
		out, err := NewChain(opts).Run(domain.CommitMessage{Subject: "Add the login page for users"})
		require.NoError(t, err)
		assert.Equal(t, "Add the login page", out.Subject)
	})

	t.Run("prefix without room is rejected", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SubjectMaxLength = 10
		_, err := NewChain(opts).Run(domain.CommitMessage{Type: domain.CommitTypeRefactor, Scope: "analyzer", Subject: "split"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, RuleSubjectLength, verr.Rule)
	})
}

func TestChain_Rules(t *testing.T) {
	tests := []struct {
		name     string
		opts     func(*Options)
		in       domain.CommitMessage
		want     domain.CommitMessage
		wantRule string
	}{
		{
			name:     "empty subject",
			in:       domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "   "},
			wantRule: RuleEmptySubject,
		},
		{
			name: "subject whitespace trimmed",
			in:   domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "  handle nil config "},
			want: domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "handle nil config"},
		},
		{
			name: "trailing periods stripped",
			in:   domain.CommitMessage{Type: domain.CommitTypeDocs, Scope: "documentation", Subject: "describe setup..."},
			want: domain.CommitMessage{Type: domain.CommitTypeDocs, Scope: "documentation", Subject: "describe setup"},
		},
		{
			name:     "only periods",
			in:       domain.CommitMessage{Type: domain.CommitTypeDocs, Subject: "..."},
			wantRule: RuleTrailingPeriod,
		},
		{
			name:     "missing type in conventional style",
			in:       domain.CommitMessage{Subject: "Add login page"},
			wantRule: RuleConventionalFormat,
		},
		{
			name:     "unknown type",
			in:       domain.CommitMessage{Type: "feature", Scope: "web", Subject: "add login page"},
			wantRule: RuleConventionalFormat,
		},
		{
			name:     "invalid scope characters",
			in:       domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: "web app", Subject: "add login page"},
			wantRule: RuleConventionalFormat,
		},
		{
			name: "scope is optional",
			in:   domain.CommitMessage{Type: domain.CommitTypeChore, Subject: "bump deps"},
			want: domain.CommitMessage{Type: domain.CommitTypeChore, Subject: "bump deps"},
		},
		{
			name: "simple style skips format",
			opts: func(o *Options) { o.Style = domain.StyleSimple },
			in:   domain.CommitMessage{Subject: "Add login page."},
			want: domain.CommitMessage{Subject: "Add login page"},
		},
		{
			name: "blank lines around body trimmed",
			in:   domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "\n\n  \nFirst line.  \n\n", Footer: "\nRefs: #1\n"},
			want: domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "First line.", Footer: "Refs: #1"},
		},
		{
			name: "body wrapped",
			opts: func(o *Options) { o.BodyLineWidth = 20 },
			in:   domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "one two three four five six seven"},
			want: domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "one two three four\nfive six seven"},
		},
		{
			name: "unbreakable line kept",
			opts: func(o *Options) { o.BodyLineWidth = 20; o.BodyPolicy = PolicyReject },
			in:   domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "https://example.com/a/very/long/path"},
			want: domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "https://example.com/a/very/long/path"},
		},
		{
			name:     "long body line rejected",
			opts:     func(o *Options) { o.BodyLineWidth = 20; o.BodyPolicy = PolicyReject },
			in:       domain.CommitMessage{Type: domain.CommitTypeFix, Subject: "x", Body: "one two three four five six seven"},
			wantRule: RuleBodyLineLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			out, err := NewChain(opts).Run(tt.in)
			if tt.wantRule != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantRule, verr.Rule)
				require.ErrorIs(t, err, gserrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestChain_Idempotent(t *testing.T) {
	inputs := []domain.CommitMessage{
		{Type: domain.CommitTypeFeat, Scope: "web", Subject: "add login page."},
		{Type: domain.CommitTypeFeat, Scope: "api", Subject: strings.Repeat("word ", 30)},
		{Type: domain.CommitTypeDocs, Subject: "x", Body: strings.Repeat("lorem ipsum dolor ", 20) + "\n\n  indented " + strings.Repeat("sit amet ", 12)},
		{Type: domain.CommitTypeTest, Scope: "testing", Subject: "cover parser", Body: "\n\nshort\n", Footer: "Refs: #3"},
	}

	for _, width := range []int{20, 40, 72} {
		opts := DefaultOptions()
		opts.BodyLineWidth = width
		opts.SubjectMaxLength = width + 10
		c := NewChain(opts)
		for _, in := range inputs {
			once, err := c.Run(in)
			require.NoError(t, err)
			twice, err := c.Run(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)

			for _, line := range strings.Split(once.Body, "\n") {
				assert.LessOrEqual(t, utf8.RuneCountInString(line), width, line)
			}
		}
	}
}

func TestChain_TrailingPeriodRuns(t *testing.T) {
	c := NewChain(DefaultOptions())
	for _, subject := range []string{"x. .", "x .\t. ", "x...", "x . . ."} {
		out, err := c.Run(domain.CommitMessage{Type: domain.CommitTypeFeat, Scope: "api", Subject: subject})
		require.NoError(t, err, subject)
		assert.Equal(t, "x", out.Subject, subject)
	}

	_, err := c.Run(domain.CommitMessage{Type: domain.CommitTypeFeat, Subject: ". . ."})
	require.ErrorIs(t, err, gserrors.ErrValidation)
}

// randomText builds text from an alphabet heavy in the characters the rules
// trim or split on.
func randomText(r *rand.Rand, maxLen int) string {
	const alphabet = "ab cd.. \t,;:-\nxyz"
	runes := []rune(alphabet)
	n := r.IntN(maxLen + 1)
	var sb strings.Builder
	for range n {
		sb.WriteRune(runes[r.IntN(len(runes))])
	}
	return sb.String()
}

func TestChain_IdempotentRandomInputs(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11)) //nolint:gosec // deterministic test input

	for _, opts := range []Options{
		DefaultOptions(),
		{Style: domain.StyleSimple, SubjectMaxLength: 20, BodyLineWidth: 12},
		{SubjectMaxLength: 30, BodyLineWidth: 16, BodyPolicy: PolicyReject},
	} {
		c := NewChain(opts)
		for range 5000 {
			in := domain.CommitMessage{
				Type:    domain.CommitTypeFix,
				Scope:   "api",
				Subject: strings.ReplaceAll(randomText(r, 90), "\n", " "),
				Body:    randomText(r, 200),
			}
			once, err := c.Run(in)
			if err != nil {
				continue
			}
			assert.False(t, strings.HasSuffix(once.Subject, "."), "%q -> %q", in.Subject, once.Subject)
			assert.Equal(t, strings.TrimSpace(once.Subject), once.Subject)

			twice, err := c.Run(once)
			require.NoError(t, err, "%q", once.Subject)
			require.Equal(t, once, twice, "input %q", in.Subject)
		}
	}
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"  aa bb", "  cc"}, wrapLine("  aa bb cc", 8))
	assert.Equal(t, []string{"single"}, wrapLine("single", 3))
	assert.Equal(t, []string{"a", "toolongword", "b"}, wrapLine("a toolongword b", 5))
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "short", truncateWords("short", 10))
	assert.Equal(t, "abcdefghij", truncateWords("abcdefghijklmnop", 10))
	assert.Equal(t, "keep this", truncateWords("keep this, please", 10))
	assert.Equal(t, "one two", truncateWords("one two three", 8))
}
