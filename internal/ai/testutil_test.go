package ai

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/mrz1836/gitsmart/internal/domain"
)

// EnsureNoRealAPIKeys unsets provider keys for the duration of the test so
// nothing in this package can reach a real model.
func EnsureNoRealAPIKeys(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

// MockExecutor returns canned subprocess output without running the CLI.
type MockExecutor struct {
	mu          sync.Mutex
	StdoutData  []byte
	StderrData  []byte
	Err         error
	Calls       int
	CapturedCmd *exec.Cmd
}

func (m *MockExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.CapturedCmd = cmd
	return m.StdoutData, m.StderrData, m.Err
}

// blockingExecutor waits for the context to end.
type blockingExecutor struct{}

func (blockingExecutor) Execute(ctx context.Context, _ *exec.Cmd) ([]byte, []byte, error) {
	<-ctx.Done()
	return nil, nil, ctx.Err()
}

// instantSleep disables retry backoff for the duration of the test.
func instantSleep(t *testing.T) {
	t.Helper()
	orig := timeSleep
	timeSleep = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	t.Cleanup(func() { timeSleep = orig })
}

// stubRunner is a Runner returning fixed values.
type stubRunner struct {
	mu     sync.Mutex
	result string
	err    error
	calls  int
}

func (s *stubRunner) Run(_ context.Context, _ *domain.AIRequest) (*domain.AIResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AIResult{Success: true, Output: s.result}, nil
}
