package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
// Access is protected by globalLoggerMu for thread safety.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed; before that it returns a zero-value logger that discards output.
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the gitsmart root command. Invoked without a
// subcommand it runs the smart commit.
func newRootCmd(flags *GlobalFlags, commitFlags *CommitFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "gitsmart",
		Short: "Split working tree changes into focused, well-described commits",
		Long: `gitsmart reads the changes in your working tree, groups related files into
logical units, drafts a commit message for each unit, and commits them one by one.

Grouping and drafting use an AI agent when one is configured; without it,
deterministic rules group files by area and describe them from their paths.
Every message passes a validation chain (length, format, blank line, wrapping)
before anything is committed.

Examples:
  gitsmart --dry-run              # show the commit plan only
  gitsmart --yes --no-push        # commit without prompting, do not push
  gitsmart --merge --rollback     # commit, push, merge into main; undo on failure
  gitsmart -o json --dry-run      # machine-readable plan`,
		Version: formatVersion(info),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommit(cmd.Context(), cmd, flags, commitFlags)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd, flags); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if _, err := tui.ParseFormat(flags.Output); err != nil {
				return errors.NewExitCode2Error(fmt.Errorf("%w: must be one of %v", err, tui.Formats()))
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// We print our own error messages.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)
	AddCommitFlags(cmd, commitFlags)

	AddConfigCommand(cmd, flags)
	AddVersionCommand(cmd, info)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// A failed run prints an actionable error through the selected output format.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	commitFlags := &CommitFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, commitFlags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format, ferr := tui.ParseFormat(flags.Output)
		if ferr != nil {
			format = tui.FormatText
		}
		tui.NewOutput(cmd.ErrOrStderr(), format).Error(err)
	}
	CloseLogFile()
	return err
}
