// Package cli provides the command-line interface for gitsmart.
package cli

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
	// ExitInterrupted indicates the run was stopped by SIGINT or SIGTERM.
	ExitInterrupted = 130
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text, json, yaml, markdown).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Path is the repository to operate on.
	Path string
}

// CommitFlags holds the flags of the smart commit run.
type CommitFlags struct {
	DryRun      bool
	Yes         bool
	Style       string
	AutoPush    bool
	NoPush      bool
	Merge       bool
	MainBranch  string
	Remote      string
	Rollback    bool
	NoVerify    bool
	Model       string
	Agent       string
	Timeout     time.Duration
	LogFile     string
	MetricsFile string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", string(tui.FormatText), "output format (text|json|yaml|markdown)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&flags.Path, "path", "C", ".", "repository to operate on")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// AddCommitFlags adds the smart commit flags to the root command.
func AddCommitFlags(cmd *cobra.Command, flags *CommitFlags) {
	f := cmd.Flags()
	f.BoolVarP(&flags.DryRun, "dry-run", "n", false, "show the commit plan without changing the repository")
	f.BoolVarP(&flags.Yes, "yes", "y", false, "skip the confirmation prompt")
	f.StringVar(&flags.Style, "style", "", "commit message style (conventional|simple)")
	f.BoolVar(&flags.AutoPush, "auto-push", false, "push the branch after committing")
	f.BoolVar(&flags.NoPush, "no-push", false, "do not push after committing")
	f.BoolVar(&flags.Merge, "merge", false, "merge the branch into the main branch after committing")
	f.StringVar(&flags.MainBranch, "main-branch", "", "branch to merge into with --merge")
	f.StringVar(&flags.Remote, "remote", "", "remote to push to")
	f.BoolVar(&flags.Rollback, "rollback", false, "undo applied commits when a later command fails")
	f.BoolVar(&flags.NoVerify, "no-verify", false, "skip pre-commit and commit-msg hooks")
	f.StringVar(&flags.Model, "model", "", "model used for grouping and drafting")
	f.StringVar(&flags.Agent, "agent", "", "AI agent (claude|gemini|codex|ollama|none)")
	f.DurationVar(&flags.Timeout, "timeout", 0, "timeout for each classifier or drafting call")
	f.StringVar(&flags.LogFile, "log-file", "", "append run events to this file")
	f.StringVar(&flags.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	cmd.MarkFlagsMutuallyExclusive("auto-push", "no-push")
}

// BindGlobalFlags binds global flags to Viper so they can also be set with
// GITSMART_ environment variables (GITSMART_OUTPUT, GITSMART_VERBOSE, ...),
// then reads the resolved values back into flags.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command, flags *GlobalFlags) error {
	// Root().PersistentFlags() finds the flags even from a subcommand.
	rootFlags := cmd.Root().PersistentFlags()

	var result *multierror.Error
	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	flags.Output = v.GetString("output")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet")
	if flags.Verbose && flags.Quiet {
		flags.Quiet = false
	}
	return nil
}

// overrides converts the commit flags that take a value into a config overlay
// for config.LoadWithOverrides.
func (f *CommitFlags) overrides() *config.Config {
	o := &config.Config{}
	o.Commit.Style = f.Style
	o.Git.MainBranch = f.MainBranch
	o.Git.RemoteName = f.Remote
	o.AI.Agent = f.Agent
	o.AI.Model = f.Model
	o.AI.ClassifierTimeout = f.Timeout
	o.Log.File = f.LogFile
	return o
}

// applyBoolFlags sets the boolean settings whose flags were given explicitly.
// An unset flag leaves the configured value alone.
func (f *CommitFlags) applyBoolFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("auto-push") {
		cfg.Git.AutoPush = f.AutoPush
	}
	if changed("no-push") && f.NoPush {
		cfg.Git.AutoPush = false
	}
	if changed("merge") {
		cfg.Git.AutoMerge = f.Merge
	}
	if changed("rollback") {
		cfg.Git.RollbackOnFailure = f.Rollback
	}
	if changed("no-verify") {
		cfg.Commit.NoVerify = f.NoVerify
	}
}

// ExitCodeForError returns the appropriate exit code for the given error.
// Returns ExitSuccess (0) for nil errors, ExitInvalidInput (2) for user input
// errors (invalid flags, bad arguments, bad configuration), ExitInterrupted
// for a signal-canceled run, and ExitError (1) for all other errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.IsExitCode2Error(err) {
		return ExitInvalidInput
	}

	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	for _, sentinel := range []error{
		errors.ErrInvalidOutputFormat,
		errors.ErrConfigInvalidCommit,
		errors.ErrConfigInvalidGit,
		errors.ErrConfigInvalidAI,
		errors.ErrAgentNotFound,
	} {
		if stderrors.Is(err, sentinel) {
			return ExitInvalidInput
		}
	}

	// Cobra flag parsing errors (mutually exclusive flags, unknown flags, etc.)
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// isInvalidInputError checks if an error message indicates invalid user input.
// This catches Cobra's built-in flag validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"accepts at most",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
