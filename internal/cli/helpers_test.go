package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateHome points HOME and GITSMART_HOME at temp dirs so no user
// configuration or log file is touched.
func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(homeEnvVar, filepath.Join(home, ".gitsmart"))
	t.Setenv("NO_COLOR", "1")
}

// setupRepo creates a git repository with one commit on main.
func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q", "-b", "main"},
		{"config", "user.email", "test@gitsmart.local"},
		{"config", "user.name", "gitsmart Test"},
		{"config", "commit.gpgsign", "false"},
	} {
		gitRun(t, dir, args...)
	}
	writeFile(t, dir, "README.md", "# demo\n")
	gitRun(t, dir, "add", "-A")
	gitRun(t, dir, "commit", "-q", "-m", "initial commit")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func commitCount(t *testing.T, dir string) string {
	t.Helper()
	return gitRun(t, dir, "rev-list", "--count", "HEAD")
}

// runRoot executes the root command with args and returns its stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, &CommitFlags{}, BuildInfo{Version: "1.2.3"})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	t.Cleanup(CloseLogFile)
	return out.String(), err
}

// stubPrompt replaces the interactive prompt for the duration of a test.
func stubPrompt(t *testing.T, interactive bool, answer bool, runErr error) *int {
	t.Helper()
	calls := 0
	oldForm, oldInteractive := createConfirmForm, isInteractive
	isInteractive = func() bool { return interactive }
	createConfirmForm = func(_, _ string, value *bool) formRunner {
		return formFunc(func() error {
			calls++
			*value = answer
			return runErr
		})
	}
	t.Cleanup(func() {
		createConfirmForm, isInteractive = oldForm, oldInteractive
	})
	return &calls
}

type formFunc func() error

func (f formFunc) Run() error { return f() }
