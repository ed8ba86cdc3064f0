package constants

// Log file names and patterns.
const (
	// CLILogFileName is the name of the rotating CLI log file.
	// This file is located in ~/.gitsmart/logs/gitsmart.log
	CLILogFileName = "gitsmart.log"

	// RunLogPrefix prefixes timestamped per-run log files written when log.always is set.
	RunLogPrefix = "gitsmart-"

	// RunLogTimeFormat is the timestamp layout used in per-run log file names.
	RunLogTimeFormat = "20060102-150405"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the gitsmart home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the project-specific configuration file.
	// This file is located in the repository root directory.
	ProjectConfigName = ".gitsmart.yaml"
)

// RunLockName is the lock file created in the git directory while a run
// modifies the repository.
const RunLockName = "gitsmart.lock"

// EnvPrefix is the prefix for environment variable overrides (GITSMART_COMMIT_STYLE, ...).
const EnvPrefix = "GITSMART"

// Log rotation settings for gitsmart log files.
const (
	// LogMaxSizeMB is the size at which a log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated files are kept.
	LogMaxAgeDays = 28

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)
