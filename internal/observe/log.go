package observe

import "github.com/rs/zerolog"

// LogObserver writes events to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// OnEvent logs e at a level matching its type.
func (o *LogObserver) OnEvent(e Event) error {
	var ev *zerolog.Event
	switch e.Type {
	case CommandFailed:
		ev = o.logger.Warn().Err(e.Err)
	case CommandUndone:
		if e.Err != nil {
			ev = o.logger.Warn().Err(e.Err)
		} else {
			ev = o.logger.Info()
		}
	case CommitCreated, CommandSucceeded:
		ev = o.logger.Info()
	default:
		ev = o.logger.Debug()
	}

	ev = ev.Str("run_id", e.RunID).Str("kind", e.Kind).Str("target", e.Target)
	if e.CommitID != "" {
		ev = ev.Str("commit", shortID(e.CommitID))
	}
	if len(e.Files) > 0 {
		ev = ev.Int("files", len(e.Files))
	}
	ev.Msg(e.Type.String())
	return nil
}

func shortID(id string) string {
	const n = 12
	if len(id) > n {
		return id[:n]
	}
	return id
}

var _ Observer = (*LogObserver)(nil)
