package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/errors"
)

func TestConfigShow_JSONSources(t *testing.T) {
	isolateHome(t)
	dir := setupRepo(t)
	writeFile(t, dir, ".gitsmart.yaml", "commit:\n  style: simple\n")
	t.Setenv("GITSMART_GIT_REMOTE_NAME", "upstream")

	out, err := runRoot(t, "--path", dir, "-o", "json", "config", "show")
	require.NoError(t, err)

	var annotated AnnotatedConfig
	require.NoError(t, json.Unmarshal([]byte(out), &annotated))

	assert.Equal(t, "simple", annotated["commit"]["style"].Value)
	assert.Equal(t, SourceProject, annotated["commit"]["style"].Source)
	assert.Equal(t, "upstream", annotated["git"]["remote_name"].Value)
	assert.Equal(t, SourceEnv, annotated["git"]["remote_name"].Source)
	assert.Equal(t, SourceDefault, annotated["ai"]["agent"].Source)
	assert.Len(t, annotated, len(configSections))
}

func TestConfigShow_Text(t *testing.T) {
	isolateHome(t)
	dir := setupRepo(t)

	out, err := runRoot(t, "--path", dir, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "Effective gitsmart configuration")
	assert.Contains(t, out, "commit:")
	assert.Contains(t, out, "remote_name: origin")
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "(not found)")
}

func TestConfigShow_OutsideRepository(t *testing.T) {
	isolateHome(t)

	out, err := runRoot(t, "--path", t.TempDir(), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "(not in a repository)")
}

func TestDetermineSource(t *testing.T) {
	global := configValues{"git.main_branch": "trunk", "commit.style": "simple"}
	project := configValues{"commit.style": "detailed"}

	assert.Equal(t, SourceGlobal, determineSource("git.main_branch", global, project))
	assert.Equal(t, SourceProject, determineSource("commit.style", global, project))
	assert.Equal(t, SourceDefault, determineSource("ai.model", global, project))

	t.Setenv("GITSMART_COMMIT_STYLE", "simple")
	assert.Equal(t, SourceEnv, determineSource("commit.style", global, project))
}

func TestLoadConfigFile(t *testing.T) {
	assert.Nil(t, loadConfigFile(""))
	assert.Nil(t, loadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("git:\n  auto_push: false\nai:\n  agent: none\n"), 0o600))

	values := loadConfigFile(path)
	assert.Equal(t, false, values["git.auto_push"])
	assert.Equal(t, "none", values["ai.agent"])
}

func TestFormatConfigValue(t *testing.T) {
	assert.Equal(t, `""`, formatConfigValue(""))
	assert.Equal(t, "72", formatConfigValue(72))
	assert.Equal(t, "true", formatConfigValue(true))
}

func TestConfigInit(t *testing.T) {
	t.Run("global", func(t *testing.T) {
		isolateHome(t)

		out, err := runRoot(t, "config", "init")
		require.NoError(t, err)

		path, err := config.GlobalConfigPath()
		require.NoError(t, err)
		assert.FileExists(t, path)
		assert.Contains(t, out, path)

		_, err = runRoot(t, "config", "init")
		require.ErrorIs(t, err, errors.ErrConfigExists)
	})

	t.Run("project", func(t *testing.T) {
		isolateHome(t)
		dir := setupRepo(t)

		_, err := runRoot(t, "--path", dir, "config", "init", "--project")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, ".gitsmart.yaml")) //nolint:gosec // test file
		require.NoError(t, err)
		assert.Contains(t, string(data), "# gitsmart configuration")
		assert.Contains(t, string(data), "style:")
	})

	t.Run("project outside repository", func(t *testing.T) {
		isolateHome(t)

		_, err := runRoot(t, "--path", t.TempDir(), "config", "init", "--project")
		require.ErrorIs(t, err, errors.ErrNotGitRepo)
	})
}
