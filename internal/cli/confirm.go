package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/smartcommit"
	"github.com/mrz1836/gitsmart/internal/tui"
)

// formRunner is an interface that matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// createConfirmForm builds the confirmation form.
// This variable can be overridden in tests to inject mock forms.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createConfirmForm = func(title, description string, value *bool) formRunner {
	return tui.NewConfirmForm(title, description, value)
}

// isInteractive reports whether stdin is a terminal.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirmPlan asks before the plan is applied. --yes skips the prompt; without
// it a non-interactive session is an error rather than a silent commit.
func confirmPlan(plan *smartcommit.Plan, opts smartcommit.RunOptions, yes bool) error {
	if yes {
		return nil
	}
	if !isInteractive() {
		return errors.ErrNonInteractiveMode
	}

	title := fmt.Sprintf("Create %d commit(s)?", len(plan.Commits))
	description := confirmDescription(plan, opts)

	var confirmed bool
	if err := createConfirmForm(title, description, &confirmed).Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return errors.ErrOperationCanceled
		}
		return fmt.Errorf("confirm prompt failed: %w", err)
	}
	if !confirmed {
		return errors.ErrOperationCanceled
	}
	return nil
}

func confirmDescription(plan *smartcommit.Plan, opts smartcommit.RunOptions) string {
	desc := fmt.Sprintf("%d file(s) will be committed.", plan.Changes)
	if n := len(plan.Failures); n > 0 {
		desc += fmt.Sprintf(" %d unit(s) failed validation and will be skipped.", n)
	}
	switch {
	case opts.Push && opts.Merge:
		desc += " The branch is then pushed and merged."
	case opts.Push:
		desc += " The branch is then pushed."
	case opts.Merge:
		desc += " The branch is then merged."
	}
	return desc
}
