// Package main provides the entry point for the gitsmart CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/gitsmart/internal/cli"
	"github.com/mrz1836/gitsmart/internal/signal"
)

// Set at build time via ldflags.
var (
	version = "dev"  //nolint:gochecknoglobals // Set by ldflags
	commit  = "none" //nolint:gochecknoglobals // Set by ldflags
	date    = ""     //nolint:gochecknoglobals // Set by ldflags
)

func main() {
	h := signal.NewHandler(context.Background(), signal.WithForceFunc(func() {
		cli.CloseLogFile()
		os.Exit(cli.ExitInterrupted)
	}))

	err := cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	h.Stop()
	os.Exit(cli.ExitCodeForError(err))
}
