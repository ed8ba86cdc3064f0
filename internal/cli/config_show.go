package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/logging"
	"github.com/mrz1836/gitsmart/internal/tui"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create gitsmart configuration",
	}
	configCmd.AddCommand(newConfigShowCmd(flags), newConfigInitCmd(flags))
	rootCmd.AddCommand(configCmd)
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective gitsmart configuration with source annotations.

Each value is annotated with where it comes from:
  - default: Built-in default value
  - global: From ~/.gitsmart/config.yaml
  - project: From .gitsmart.yaml in the repository root
  - env: From a GITSMART_* environment variable

Examples:
  gitsmart config show             # styled listing with sources
  gitsmart config show -o json     # machine-readable listing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from global config.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from project config.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource represents a configuration value with its source.
type ConfigValueWithSource struct {
	Value  any          `json:"value" yaml:"value"`
	Source ConfigSource `json:"source" yaml:"source"`
}

// AnnotatedConfig maps section and key to an annotated value.
type AnnotatedConfig map[string]map[string]ConfigValueWithSource

// configSections lists the sections in display order.
//
//nolint:gochecknoglobals // Constant-like lookup table
var configSections = []string{"commit", "git", "ai", "log"}

// configEntry is one setting of the resolved configuration.
type configEntry struct {
	section string
	key     string
	value   any
}

// configEntries flattens cfg in display order. Keys match the YAML tags.
func configEntries(cfg *config.Config) []configEntry {
	return []configEntry{
		{"commit", "style", cfg.Commit.Style},
		{"commit", "subject_max_length", cfg.Commit.SubjectMaxLength},
		{"commit", "body_line_width", cfg.Commit.BodyLineWidth},
		{"commit", "subject_policy", cfg.Commit.SubjectPolicy},
		{"commit", "body_policy", cfg.Commit.BodyPolicy},
		{"commit", "degeneracy_threshold", cfg.Commit.DegeneracyThreshold},
		{"commit", "draft_concurrency", cfg.Commit.DraftConcurrency},
		{"commit", "no_verify", cfg.Commit.NoVerify},
		{"git", "main_branch", cfg.Git.MainBranch},
		{"git", "remote_name", cfg.Git.RemoteName},
		{"git", "auto_push", cfg.Git.AutoPush},
		{"git", "auto_merge", cfg.Git.AutoMerge},
		{"git", "rollback_on_failure", cfg.Git.RollbackOnFailure},
		{"git", "timeout", cfg.Git.Timeout.String()},
		{"ai", "agent", cfg.AI.Agent},
		{"ai", "model", cfg.AI.Model},
		{"ai", "fallback", strings.Join(cfg.AI.Fallback, ",")},
		{"ai", "ollama_url", cfg.AI.OllamaURL},
		{"ai", "classifier_timeout", cfg.AI.ClassifierTimeout.String()},
		{"log", "file", cfg.Log.File},
		{"log", "always", cfg.Log.Always},
		{"log", "dir", cfg.Log.Dir},
	}
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	format, err := tui.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	// Outside a repository only global config and environment apply.
	root, err := repositoryRoot(ctx, flags.Path)
	if err != nil {
		root = ""
	}

	cfg, err := config.Load(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	globalPath, _ := config.GlobalConfigPath()
	projectPath := ""
	if root != "" {
		projectPath = config.ProjectConfigPath(root)
	}
	annotated := buildAnnotatedConfig(cfg, loadConfigFile(globalPath), loadConfigFile(projectPath))

	switch format {
	case tui.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(annotated)
	case tui.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(annotated); err != nil {
			return err
		}
		return encoder.Close()
	case tui.FormatText, tui.FormatMarkdown:
	}
	return writeAnnotatedText(w, annotated, globalPath, projectPath)
}

// buildAnnotatedConfig annotates every resolved value with its source.
func buildAnnotatedConfig(cfg *config.Config, globalCfg, projectCfg configValues) AnnotatedConfig {
	annotated := make(AnnotatedConfig, len(configSections))
	for _, section := range configSections {
		annotated[section] = make(map[string]ConfigValueWithSource)
	}
	for _, e := range configEntries(cfg) {
		key := e.section + "." + e.key
		value := e.value
		if s, ok := value.(string); ok {
			value = logging.SafeValue(e.key, s)
		}
		annotated[e.section][e.key] = ConfigValueWithSource{
			Value:  value,
			Source: determineSource(key, globalCfg, projectCfg),
		}
	}
	return annotated
}

// configValues holds the dotted keys set by one config file.
type configValues map[string]any

// loadConfigFile reads a YAML config file into dotted keys.
// A missing or unreadable file yields nil.
func loadConfigFile(path string) configValues {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // Config file path
	if err != nil {
		return nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}

	result := make(configValues)
	flattenConfig("", raw, result)
	return result
}

func flattenConfig(prefix string, in map[string]any, out configValues) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenConfig(key, nested, out)
			continue
		}
		out[key] = v
	}
}

// determineSource reports where the value for a dotted key came from,
// checking in precedence order: env, project, global.
func determineSource(key string, globalCfg, projectCfg configValues) ConfigSource {
	envKey := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(envKey); ok {
		return SourceEnv
	}
	if _, ok := projectCfg[key]; ok {
		return SourceProject
	}
	if _, ok := globalCfg[key]; ok {
		return SourceGlobal
	}
	return SourceDefault
}

// configShowStyles contains styling for the config show command output.
type configShowStyles struct {
	header  lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	dim     lipgloss.Style
	sources map[ConfigSource]lipgloss.Style
}

func newConfigShowStyles() *configShowStyles {
	return &configShowStyles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(tui.ColorPrimary),
		section: lipgloss.NewStyle().Bold(true),
		key:     lipgloss.NewStyle().Foreground(tui.ColorPrimary),
		dim:     tui.StyleDim,
		sources: map[ConfigSource]lipgloss.Style{
			SourceEnv:     lipgloss.NewStyle().Foreground(tui.ColorError),
			SourceProject: lipgloss.NewStyle().Foreground(tui.ColorWarning),
			SourceGlobal:  lipgloss.NewStyle().Foreground(tui.ColorSuccess),
			SourceDefault: tui.StyleDim,
		},
	}
}

func writeAnnotatedText(w io.Writer, annotated AnnotatedConfig, globalPath, projectPath string) error {
	tui.CheckNoColor()
	styles := newConfigShowStyles()

	var sb strings.Builder
	sb.WriteString(styles.header.Render("Effective gitsmart configuration") + "\n")
	sb.WriteString(styles.dim.Render("Sources: ") +
		styles.sources[SourceEnv].Render("env") + " > " +
		styles.sources[SourceProject].Render("project") + " > " +
		styles.sources[SourceGlobal].Render("global") + " > " +
		styles.sources[SourceDefault].Render("default") + "\n\n")

	entries := configEntries(config.DefaultConfig())
	for _, section := range configSections {
		sb.WriteString(styles.section.Render(section+":") + "\n")
		for _, e := range entries {
			if e.section != section {
				continue
			}
			vs := annotated[section][e.key]
			fmt.Fprintf(&sb, "  %s: %v  %s\n",
				styles.key.Render(e.key),
				formatConfigValue(vs.Value),
				styles.sources[vs.Source].Render("("+string(vs.Source)+")"))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(styles.dim.Render("Configuration files:") + "\n")
	sb.WriteString(describeConfigFile("Global", globalPath, styles))
	sb.WriteString(describeConfigFile("Project", projectPath, styles))

	_, err := io.WriteString(w, sb.String())
	return err
}

func describeConfigFile(label, path string, styles *configShowStyles) string {
	prefix := styles.dim.Render("  " + label + ": ")
	switch {
	case path == "":
		return prefix + styles.dim.Render("(not in a repository)") + "\n"
	case fileExists(path):
		return prefix + path + "\n"
	default:
		return prefix + styles.dim.Render(path+" (not found)") + "\n"
	}
}

func formatConfigValue(v any) string {
	if s, ok := v.(string); ok && s == "" {
		return `""`
	}
	return fmt.Sprint(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
