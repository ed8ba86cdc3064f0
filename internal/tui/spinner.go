package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/term"
)

// spinnerFrames are the animation frames for the spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"} //nolint:gochecknoglobals // Package-level constant for spinner animation

// SpinnerInterval is the update interval for spinner animation.
const SpinnerInterval = 100 * time.Millisecond

// ElapsedTimeThreshold is the duration after which elapsed time is shown.
// Classifier and drafting calls can run for tens of seconds.
const ElapsedTimeThreshold = 10 * time.Second

// Spinner reports progress of a long step.
type Spinner interface {
	// Update changes the message.
	Update(msg string)
	// Stop ends the animation and clears the line.
	Stop()
}

// NewSpinner starts a spinner on w when animate is set and returns a no-op
// spinner otherwise. Callers pass animate only for text output on a terminal.
func NewSpinner(ctx context.Context, w io.Writer, msg string, animate bool) Spinner {
	if !animate {
		return NoopSpinner{}
	}
	s := NewTerminalSpinner(w)
	s.Start(ctx, msg)
	return s
}

// TerminalSpinner animates a single status line.
type TerminalSpinner struct {
	w       io.Writer
	styles  *OutputStyles
	width   func() int
	mu      sync.Mutex
	message string
	started time.Time
	done    chan struct{}
	running bool
}

// NewTerminalSpinner creates a spinner writing to w.
func NewTerminalSpinner(w io.Writer) *TerminalSpinner {
	return &TerminalSpinner{
		w:      w,
		styles: NewOutputStyles(),
		width:  terminalWidth,
	}
}

// Start begins the animation. Calling Start on a running spinner only
// replaces the message.
func (s *TerminalSpinner) Start(ctx context.Context, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = msg
	if s.running {
		return
	}
	s.started = time.Now()
	s.running = true
	s.done = make(chan struct{})

	done := s.done
	go s.animate(ctx, done)
}

// Update changes the message without restarting the elapsed timer.
func (s *TerminalSpinner) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

// Stop ends the animation and clears the spinner line. It is safe to call
// more than once.
func (s *TerminalSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	_, _ = fmt.Fprint(s.w, "\r\033[K")
}

func (s *TerminalSpinner) animate(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(SpinnerInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			s.Stop()
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.running {
				s.mu.Unlock()
				return
			}
			_, _ = fmt.Fprintf(s.w, "\r\033[K%s %s", s.styles.Info.Render(spinnerFrames[frame%len(spinnerFrames)]), s.line())
			s.mu.Unlock()
			frame++
		}
	}
}

// line is the message with elapsed time, cut to the terminal width.
// Caller holds s.mu.
func (s *TerminalSpinner) line() string {
	msg := s.message
	if elapsed := time.Since(s.started); elapsed > ElapsedTimeThreshold {
		msg = fmt.Sprintf("%s %s", msg, formatElapsedTime(elapsed))
	}
	// frame, space, and one column of margin
	return truncateToWidth(msg, s.width()-3)
}

// NoopSpinner is used for structured output and non-terminal writers.
type NoopSpinner struct{}

// Update is a no-op.
func (NoopSpinner) Update(string) {}

// Stop is a no-op.
func (NoopSpinner) Stop() {}

func formatElapsedTime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%ds)", int(d.Seconds()))
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}

// terminalWidth returns the stderr width, or 80 when it is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd())) //nolint:gosec // G115: file descriptors fit in int
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// truncateToWidth cuts s to maxWidth runes, ending in "..." when shortened.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxWidth-3]) + "..."
}

var (
	_ Spinner = (*TerminalSpinner)(nil)
	_ Spinner = NoopSpinner{}
)
