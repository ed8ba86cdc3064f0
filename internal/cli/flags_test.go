package cli

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/errors"
)

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitError)
	assert.Equal(t, 2, ExitInvalidInput)
	assert.Equal(t, 130, ExitInterrupted)
}

func TestAddGlobalFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	for name, def := range map[string]string{
		"output":  "text",
		"verbose": "false",
		"quiet":   "false",
		"path":    ".",
	} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}

	require.NoError(t, cmd.ParseFlags([]string{"-o", "yaml", "-v", "-C", "/repo"}))
	assert.Equal(t, "yaml", flags.Output)
	assert.True(t, flags.Verbose)
	assert.Equal(t, "/repo", flags.Path)
}

func TestAddCommitFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags := &CommitFlags{}
	AddCommitFlags(cmd, flags)

	require.NoError(t, cmd.ParseFlags([]string{
		"--dry-run", "--style", "simple", "--merge", "--main-branch", "trunk",
		"--remote", "upstream", "--timeout", "5s", "--model", "sonnet", "--agent", "none",
		"--metrics-file", "m.prom", "--log-file", "run.log", "-y",
	}))
	assert.True(t, flags.DryRun)
	assert.True(t, flags.Yes)
	assert.True(t, flags.Merge)
	assert.Equal(t, "simple", flags.Style)
	assert.Equal(t, "trunk", flags.MainBranch)
	assert.Equal(t, "upstream", flags.Remote)
	assert.Equal(t, 5*time.Second, flags.Timeout)
	assert.Equal(t, "m.prom", flags.MetricsFile)

	t.Run("push flags are exclusive", func(t *testing.T) {
		cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
		AddCommitFlags(cmd, &CommitFlags{})
		cmd.SetArgs([]string{"--auto-push", "--no-push"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})
}

func TestBindGlobalFlags(t *testing.T) {
	t.Run("flag values", func(t *testing.T) {
		cmd := &cobra.Command{Use: "test"}
		flags := &GlobalFlags{}
		AddGlobalFlags(cmd, flags)
		require.NoError(t, cmd.ParseFlags([]string{"--quiet"}))

		require.NoError(t, BindGlobalFlags(viper.New(), cmd, flags))
		assert.Equal(t, "text", flags.Output)
		assert.True(t, flags.Quiet)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("GITSMART_OUTPUT", "json")
		t.Setenv("GITSMART_VERBOSE", "true")

		cmd := &cobra.Command{Use: "test"}
		flags := &GlobalFlags{}
		AddGlobalFlags(cmd, flags)
		require.NoError(t, cmd.ParseFlags(nil))

		require.NoError(t, BindGlobalFlags(viper.New(), cmd, flags))
		assert.Equal(t, "json", flags.Output)
		assert.True(t, flags.Verbose)
	})

	t.Run("explicit flag beats environment", func(t *testing.T) {
		t.Setenv("GITSMART_OUTPUT", "json")

		cmd := &cobra.Command{Use: "test"}
		flags := &GlobalFlags{}
		AddGlobalFlags(cmd, flags)
		require.NoError(t, cmd.ParseFlags([]string{"-o", "yaml"}))

		require.NoError(t, BindGlobalFlags(viper.New(), cmd, flags))
		assert.Equal(t, "yaml", flags.Output)
	})
}

func TestCommitFlags_Overrides(t *testing.T) {
	flags := &CommitFlags{Style: "simple", Remote: "upstream", Agent: "none", Timeout: time.Second, LogFile: "x.log"}
	o := flags.overrides()

	assert.Equal(t, "simple", o.Commit.Style)
	assert.Equal(t, "upstream", o.Git.RemoteName)
	assert.Empty(t, o.Git.MainBranch)
	assert.Equal(t, "none", o.AI.Agent)
	assert.Equal(t, time.Second, o.AI.ClassifierTimeout)
	assert.Equal(t, "x.log", o.Log.File)
}

func TestCommitFlags_ApplyBoolFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "unset flags keep configuration",
			args: nil,
			check: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.Git.AutoPush)
				assert.False(t, cfg.Git.AutoMerge)
				assert.False(t, cfg.Commit.NoVerify)
			},
		},
		{
			name: "no-push disables push",
			args: []string{"--no-push"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.False(t, cfg.Git.AutoPush)
			},
		},
		{
			name: "merge rollback and no-verify",
			args: []string{"--merge", "--rollback", "--no-verify"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.Git.AutoMerge)
				assert.True(t, cfg.Git.RollbackOnFailure)
				assert.True(t, cfg.Commit.NoVerify)
			},
		},
		{
			name: "explicit false overrides configuration",
			args: []string{"--auto-push=false"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.False(t, cfg.Git.AutoPush)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			flags := &CommitFlags{}
			AddCommitFlags(cmd, flags)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg := config.DefaultConfig()
			flags.applyBoolFlags(cmd, cfg)
			tt.check(t, cfg)
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.ErrRunFailed, ExitError},
		{"exit code 2 wrapper", errors.NewExitCode2Error(errors.ErrEmptyValue), ExitInvalidInput},
		{"invalid output format", fmt.Errorf("bad: %w", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"invalid config", fmt.Errorf("load: %w", errors.ErrConfigInvalidCommit), ExitInvalidInput},
		{"unknown agent", errors.ErrAgentNotFound, ExitInvalidInput},
		{"interrupted", fmt.Errorf("%w: %w", errors.ErrOperationCanceled, context.Canceled), ExitInterrupted},
		{"declined prompt", errors.ErrOperationCanceled, ExitError},
		{"cobra unknown flag", fmt.Errorf("unknown flag: --bogus"), ExitInvalidInput}, //nolint:err113 // simulates cobra error text
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestIsInvalidInputError(t *testing.T) {
	assert.True(t, isInvalidInputError("unknown shorthand flag: 'z' in -z"))
	assert.True(t, isInvalidInputError("if any flags in the group [auto-push no-push] are set none of the others can be"))
	assert.True(t, isInvalidInputError(`unknown command "foo" for "gitsmart"`))
	assert.False(t, isInvalidInputError("commit run failed"))
}
