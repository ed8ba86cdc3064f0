package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/gitsmart/internal/ai"
	"github.com/mrz1836/gitsmart/internal/analyze"
	"github.com/mrz1836/gitsmart/internal/clock"
	"github.com/mrz1836/gitsmart/internal/command"
	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
	"github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/flock"
	"github.com/mrz1836/gitsmart/internal/git"
	"github.com/mrz1836/gitsmart/internal/message"
	"github.com/mrz1836/gitsmart/internal/observe"
	"github.com/mrz1836/gitsmart/internal/smartcommit"
	"github.com/mrz1836/gitsmart/internal/tui"
	"github.com/mrz1836/gitsmart/internal/validate"
)

// newAIRunner builds the model runner from configuration.
// This variable can be overridden in tests to inject a stub runner.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var newAIRunner = ai.New

// runClock stamps per-run log file names.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var runClock clock.Clock = clock.RealClock{}

// stderrIsTerminal reports whether progress can be animated on stderr.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var stderrIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// runCommit is the root command: plan the working tree changes, show the
// plan, confirm, and apply it.
func runCommit(ctx context.Context, cmd *cobra.Command, gflags *GlobalFlags, cflags *CommitFlags) error {
	logger := GetLogger()

	format, err := tui.ParseFormat(gflags.Output)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}
	out := tui.NewOutput(cmd.OutOrStdout(), format)
	renderer := tui.NewRenderer(cmd.OutOrStdout(), format)

	root, err := repositoryRoot(ctx, gflags.Path)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithOverrides(logger.WithContext(ctx), root, cflags.overrides())
	if err != nil {
		return err
	}
	cflags.applyBoolFlags(cmd, cfg)

	repo, err := git.NewRunner(ctx, root, git.WithCommandTimeout(cfg.Git.Timeout))
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()

	obs, err := newRunObservers(cfg, cflags.MetricsFile, runID, logger)
	if err != nil {
		return err
	}
	defer obs.close(logger)

	pipeline, err := buildPipeline(cfg, repo, root, obs.registry, runID, logger)
	if err != nil {
		return err
	}

	animate := !format.Structured() && !gflags.Quiet && stderrIsTerminal()
	spin := tui.NewSpinner(ctx, cmd.ErrOrStderr(), "Analyzing changes...", animate)
	plan, err := pipeline.Plan(ctx)
	spin.Stop()
	if err != nil {
		return err
	}

	if plan.Empty() {
		if format.Structured() {
			return renderer.Plan(plan)
		}
		out.Info("Nothing to commit, working tree clean.")
		return nil
	}

	if cflags.DryRun || !format.Structured() {
		if err = renderer.Plan(plan); err != nil {
			return fmt.Errorf("failed to render plan: %w", err)
		}
	}
	if cflags.DryRun {
		logger.Debug().Msg("dry run, repository left untouched")
		return nil
	}

	lock, err := acquireRunLock(ctx, repo)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil {
			logger.Warn().Err(relErr).Msg("failed to release run lock")
		}
	}()

	opts := smartcommit.RunOptions{Push: cfg.Git.AutoPush, Merge: cfg.Git.AutoMerge}
	if len(plan.Commits) > 0 {
		if err = confirmPlan(plan, opts, cflags.Yes); err != nil {
			return err
		}
	}

	spin = tui.NewSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Creating %d commit(s)...", len(plan.Commits)), animate)
	result, runErr := pipeline.Execute(ctx, plan, opts)
	spin.Stop()
	if err = renderer.Report(result, runErr); err != nil {
		logger.Warn().Err(err).Msg("failed to render report")
	}
	if err = obs.writeMetrics(); err != nil {
		logger.Warn().Err(err).Msg("failed to write metrics file")
	}

	if runErr != nil && result != nil && result.Report != nil && result.Report.Canceled {
		return fmt.Errorf("%w: %w", errors.ErrOperationCanceled, context.Canceled)
	}
	return runErr
}

// acquireRunLock locks the repository's git directory for the rest of the run.
func acquireRunLock(ctx context.Context, repo *git.CLIRunner) (*flock.Lock, error) {
	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		return nil, err
	}
	return flock.Acquire(filepath.Join(gitDir, constants.RunLockName))
}

// repositoryRoot resolves path to the top level of its repository.
func repositoryRoot(ctx context.Context, path string) (string, error) {
	runner, err := git.NewRunner(ctx, path)
	if err != nil {
		return "", err
	}
	return runner.TopLevel(ctx)
}

// buildPipeline wires collector, analyzer, generator and executor from cfg.
func buildPipeline(cfg *config.Config, repo *git.CLIRunner, root string, registry *observe.Registry, runID string, logger zerolog.Logger) (*smartcommit.Pipeline, error) {
	runner, err := newAIRunner(&cfg.AI, logger)
	if err != nil {
		return nil, err
	}

	var classifier analyze.Classifier
	if runner != nil {
		classifier = analyze.NewAIClassifier(runner,
			analyze.WithClassifierModel(cfg.AI.Model),
			analyze.WithClassifierTimeout(cfg.AI.ClassifierTimeout),
			analyze.WithClassifierWorkDir(root),
			analyze.WithClassifierThreshold(cfg.Commit.DegeneracyThreshold),
			analyze.WithClassifierLogger(logger),
		)
	}
	analyzer := analyze.NewAnalyzer(classifier,
		analyze.WithThreshold(cfg.Commit.DegeneracyThreshold),
		analyze.WithAnalyzerLogger(logger),
	)

	style := domain.Style(cfg.Commit.Style)
	strategy := message.NewStrategy(style, runner,
		message.WithStrategyModel(cfg.AI.Model),
		message.WithStrategyTimeout(cfg.AI.ClassifierTimeout),
		message.WithStrategyWorkDir(root),
		message.WithStrategyLogger(logger),
	)
	chain := validate.NewChain(validate.Options{
		Style:            style,
		SubjectMaxLength: cfg.Commit.SubjectMaxLength,
		BodyLineWidth:    cfg.Commit.BodyLineWidth,
		SubjectPolicy:    cfg.Commit.SubjectPolicy,
		BodyPolicy:       cfg.Commit.BodyPolicy,
	})
	generator := message.NewGenerator(strategy, chain,
		message.WithConcurrency(cfg.Commit.DraftConcurrency),
		message.WithDiffReader(repo),
		message.WithGeneratorLogger(logger),
	)

	executor := command.NewExecutor(repo,
		command.WithRemote(cfg.Git.RemoteName),
		command.WithMainBranch(cfg.Git.MainBranch),
		command.WithRollback(cfg.Git.RollbackOnFailure),
		command.WithCommitOptions(git.CommitOptions{NoVerify: cfg.Commit.NoVerify}),
		command.WithObservers(registry),
		command.WithExecutorLogger(logger),
	)

	collector := git.NewCollector(repo, root, git.WithCollectorLogger(logger))
	return smartcommit.New(collector, analyzer, generator,
		smartcommit.WithExecutor(executor),
		smartcommit.WithRunID(runID),
		smartcommit.WithLogger(logger),
	), nil
}

// runObservers holds the observers registered for one run.
type runObservers struct {
	registry    *observe.Registry
	file        *observe.FileObserver
	metrics     *observe.MetricsObserver
	metricsPath string
}

// newRunObservers registers the log observer, plus a file observer when
// log.file or log.always is set and a metrics observer when metricsPath is.
func newRunObservers(cfg *config.Config, metricsPath, runID string, logger zerolog.Logger) (*runObservers, error) {
	obs := &runObservers{
		registry: observe.NewRegistry(
			observe.WithRunID(runID),
			observe.WithClock(runClock),
			observe.WithRegistryLogger(logger),
		),
		metricsPath: metricsPath,
	}
	obs.registry.Register("log", observe.NewLogObserver(logger))

	logPath, err := runLogPath(cfg)
	if err != nil {
		return nil, err
	}
	if logPath != "" {
		file, ferr := observe.NewFileObserver(logPath)
		if ferr != nil {
			return nil, ferr
		}
		obs.file = file
		obs.registry.Register("file", file)
		logger.Debug().Str("path", logPath).Msg("writing run events to log file")
	}

	if metricsPath != "" {
		obs.metrics = observe.NewMetricsObserver()
		obs.registry.Register("metrics", obs.metrics)
	}
	return obs, nil
}

// runLogPath returns the explicit log file, a timestamped file under the log
// directory when log.always is set, or "" for no file.
func runLogPath(cfg *config.Config) (string, error) {
	if cfg.Log.File != "" {
		return cfg.Log.File, nil
	}
	if !cfg.Log.Always {
		return "", nil
	}
	dir, err := config.LogDir(cfg)
	if err != nil {
		return "", err
	}
	return observe.TimestampedPath(dir, runClock.Now()), nil
}

func (o *runObservers) writeMetrics() error {
	if o.metrics == nil {
		return nil
	}
	return o.metrics.WriteFile(o.metricsPath)
}

func (o *runObservers) close(logger zerolog.Logger) {
	if o.file == nil {
		return
	}
	if err := o.file.Close(); err != nil {
		logger.Warn().Err(err).Str("path", o.file.Path()).Msg("failed to close run log")
	}
}

