package observe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/logging"
)

// FileObserver appends events as JSON lines to a rotating log file.
// Sensitive values are redacted before they reach disk.
type FileObserver struct {
	path   string
	closer io.Closer
	logger zerolog.Logger
}

// NewFileObserver opens path for appending, creating parent directories.
func NewFileObserver(path string) (*FileObserver, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path: %w", errEmptyPath)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return &FileObserver{
		path:   path,
		closer: lj,
		logger: zerolog.New(logging.NewFilteringWriter(lj)),
	}, nil
}

// TimestampedPath returns dir/gitsmart-<timestamp>.log.
func TimestampedPath(dir string, at time.Time) string {
	return filepath.Join(dir, constants.RunLogPrefix+at.Format(constants.RunLogTimeFormat)+".log")
}

// Path returns the log file path.
func (o *FileObserver) Path() string {
	return o.path
}

// OnEvent writes e as one JSON line.
func (o *FileObserver) OnEvent(e Event) error {
	ev := o.logger.Log().
		Time("ts", e.At).
		Str("run_id", e.RunID).
		Str("event", e.Type.String()).
		Str("kind", e.Kind).
		Str("target", e.Target)
	if len(e.Files) > 0 {
		ev = ev.Strs("files", e.Files)
	}
	if e.CommitID != "" {
		ev = ev.Str("commit", e.CommitID)
	}
	if e.Err != nil {
		ev = ev.Str("error", e.Err.Error())
	}
	ev.Send()
	return nil
}

// Close closes the log file.
func (o *FileObserver) Close() error {
	return o.closer.Close()
}

var _ Observer = (*FileObserver)(nil)
