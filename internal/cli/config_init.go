package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/tui"
)

// ConfigInitFlags holds flags specific to the config init command.
type ConfigInitFlags struct {
	// Project writes .gitsmart.yaml in the repository instead of the global file.
	Project bool
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd(flags *GlobalFlags) *cobra.Command {
	initFlags := &ConfigInitFlags{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Long: `Write the built-in defaults to a configuration file to start customizing.

By default the global file ~/.gitsmart/config.yaml is written. With --project
the file is .gitsmart.yaml in the repository root. An existing file is never
overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd.Context(), cmd.OutOrStdout(), flags, initFlags)
		},
	}
	cmd.Flags().BoolVar(&initFlags.Project, "project", false, "write the project config in the repository root")
	return cmd
}

// runConfigInit executes the config init command.
func runConfigInit(ctx context.Context, w io.Writer, flags *GlobalFlags, initFlags *ConfigInitFlags) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	format, err := tui.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	path, err := configInitPath(ctx, flags.Path, initFlags.Project)
	if err != nil {
		return err
	}

	if err := config.Save(path, config.DefaultConfig(), runClock.Now()); err != nil {
		return err
	}

	logger := GetLogger()
	logger.Debug().Str("path", path).Msg("configuration file written")
	tui.NewOutput(w, format).Success(fmt.Sprintf("Wrote default configuration to %s", path))
	return nil
}

func configInitPath(ctx context.Context, repoPath string, project bool) (string, error) {
	if !project {
		return config.GlobalConfigPath()
	}
	root, err := repositoryRoot(ctx, repoPath)
	if err != nil {
		return "", err
	}
	return config.ProjectConfigPath(root), nil
}
