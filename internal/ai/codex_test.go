package ai

// This suite uses MockExecutor to simulate Codex CLI subprocess execution.

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/config"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

const codexSuccessStream = `{"type":"thread.started","thread_id":"t-9"}
{"type":"turn.started"}
{"type":"item.completed","item":{"id":"item_0","type":"reasoning","text":"thinking"}}
{"type":"item.completed","item":{"id":"item_1","type":"agent_message","text":"chore(config): bump lint rules"}}
{"type":"turn.completed","usage":{"input_tokens":10,"output_tokens":5}}
`

func TestCodexRunner_Run_Success(t *testing.T) {
	EnsureNoRealAPIKeys(t)

	mockExec := &MockExecutor{StdoutData: []byte(codexSuccessStream)}
	runner := NewCodexRunner(&config.AIConfig{Model: "codex"}, mockExec)

	result, err := runner.Run(context.Background(), NewAIRequest("describe the change"))
	require.NoError(t, err)
	assert.Equal(t, "chore(config): bump lint rules", result.Output)
	assert.Equal(t, "t-9", result.SessionID)

	args := mockExec.CapturedCmd.Args
	assert.Equal(t, "codex", args[0])
	assert.Equal(t, "exec", args[1])
	assert.Contains(t, args, "--json")
	assert.Contains(t, args, "read-only")
	assert.Contains(t, args, "gpt-5-codex")
	assert.Equal(t, "-", args[len(args)-1])

	stdin, err := io.ReadAll(mockExec.CapturedCmd.Stdin)
	require.NoError(t, err)
	assert.Equal(t, "describe the change", string(stdin))
}

func TestParseCodexEvents(t *testing.T) {
	t.Run("last agent message wins and noise is skipped", func(t *testing.T) {
		data := "warning: config not found\n" +
			`{"type":"item.completed","item":{"type":"agent_message","text":"first"}}` + "\n" +
			`{"type":"item.completed","item":{"type":"agent_message","text":"second"}}` + "\n"
		result, err := parseCodexEvents([]byte(data))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "second", result.Output)
	})

	t.Run("turn failure", func(t *testing.T) {
		result, err := parseCodexEvents([]byte(`{"type":"turn.failed","error":{"message":"rate limited"}}`))
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "rate limited", result.Error)
	})

	t.Run("stream error", func(t *testing.T) {
		result, err := parseCodexEvents([]byte(`{"type":"error","message":"stream disconnected"}`))
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "stream disconnected", result.Error)
	})

	t.Run("no json lines", func(t *testing.T) {
		_, err := parseCodexEvents([]byte("plain text\n"))
		require.ErrorIs(t, err, gserrors.ErrCodexInvocation)
		assert.False(t, isRetryable(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseCodexEvents([]byte("  \n"))
		require.ErrorIs(t, err, gserrors.ErrAIEmptyResponse)
	})
}

func TestCodexRunner_ErrorHandling(t *testing.T) {
	EnsureNoRealAPIKeys(t)
	instantSleep(t)

	t.Run("failure event with exit status", func(t *testing.T) {
		exec := &MockExecutor{Err: errTestExitStatus1, StdoutData: []byte(`{"type":"turn.failed","error":{"message":"model not available"}}`)}
		_, err := NewCodexRunner(nil, exec).Run(context.Background(), NewAIRequest("x"))
		require.ErrorIs(t, err, gserrors.ErrCodexInvocation)
		assert.Contains(t, err.Error(), "model not available (exit: exit status 1)")
	})

	t.Run("cli not found", func(t *testing.T) {
		exec := &MockExecutor{Err: errTestExecNotFound}
		_, err := NewCodexRunner(nil, exec).Run(context.Background(), NewAIRequest("x"))
		require.ErrorIs(t, err, gserrors.ErrCodexInvocation)
		assert.Contains(t, err.Error(), "@openai/codex")
		assert.Equal(t, 1, exec.Calls)
	})

	t.Run("no agent message", func(t *testing.T) {
		exec := &MockExecutor{StdoutData: []byte(`{"type":"thread.started","thread_id":"t"}`)}
		_, err := NewCodexRunner(nil, exec).Run(context.Background(), NewAIRequest("x"))
		require.ErrorIs(t, err, gserrors.ErrAIEmptyResponse)
	})
}
