package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/config"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

func ollamaServer(t *testing.T, handler http.HandlerFunc) *config.AIConfig {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &config.AIConfig{OllamaURL: srv.URL + "/"}
}

func TestOllamaRunner_Run_Success(t *testing.T) {
	var got ollamaRequest
	cfg := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"qwen2.5-coder","response":"test(api): cover users handler","done":true,"total_duration":2500000000}`))
	})
	cfg.Model = "qwen2.5-coder"

	result, err := NewOllamaRunner(cfg, nil).Run(context.Background(),
		NewAIRequest("describe the change", WithSystemPrompt("one line")))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "test(api): cover users handler", result.Output)
	assert.Equal(t, 2500, result.DurationMs)

	assert.Equal(t, "qwen2.5-coder", got.Model)
	assert.Equal(t, "describe the change", got.Prompt)
	assert.Equal(t, "one line", got.System)
	assert.False(t, got.Stream)
}

func TestOllamaRunner_DefaultModelAndURL(t *testing.T) {
	r := NewOllamaRunner(nil, nil)
	assert.Equal(t, "http://localhost:11434", r.baseURL)
	assert.Equal(t, http.DefaultClient, r.client)

	var model string
	cfg := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		model = req.Model
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	})
	_, err := NewOllamaRunner(cfg, nil).Run(context.Background(), NewAIRequest("x"))
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", model)
}

func TestOllamaRunner_Errors(t *testing.T) {
	instantSleep(t)

	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   []error
		wantMsg   string
		wantCalls int32
	}{
		{
			name:      "missing model is final",
			status:    http.StatusNotFound,
			body:      `{"error":"model \"llama9\" not found, try pulling it first"}`,
			wantErr:   []error{gserrors.ErrOllamaRequest},
			wantMsg:   "status 404",
			wantCalls: 1,
		},
		{
			name:      "server error is retried",
			status:    http.StatusInternalServerError,
			body:      "boom",
			wantErr:   []error{gserrors.ErrOllamaRequest},
			wantMsg:   "boom",
			wantCalls: 2,
		},
		{
			name:      "malformed body",
			status:    http.StatusOK,
			body:      "<html>",
			wantErr:   []error{gserrors.ErrOllamaRequest},
			wantMsg:   "failed to parse json",
			wantCalls: 1,
		},
		{
			name:      "empty answer",
			status:    http.StatusOK,
			body:      `{"response":" ","done":true}`,
			wantErr:   []error{gserrors.ErrOllamaRequest, gserrors.ErrAIEmptyResponse},
			wantCalls: 2,
		},
		{
			name:      "error field",
			status:    http.StatusOK,
			body:      `{"error":"context length exceeded"}`,
			wantErr:   []error{gserrors.ErrOllamaRequest},
			wantMsg:   "context length exceeded",
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			cfg := ollamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := NewOllamaRunner(cfg, nil).Run(context.Background(), NewAIRequest("x"))
			require.Error(t, err)
			assert.Nil(t, result)
			for _, want := range tt.wantErr {
				require.ErrorIs(t, err, want)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestOllamaRunner_Timeout(t *testing.T) {
	release := make(chan struct{})
	cfg := ollamaServer(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	_, err := NewOllamaRunner(cfg, nil).Run(context.Background(), NewAIRequest("x", WithTimeout(30*time.Millisecond)))
	require.ErrorIs(t, err, gserrors.ErrClassifierTimeout)
}

func TestOllamaRunner_ContextCancellation(t *testing.T) {
	var calls atomic.Int32
	cfg := ollamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOllamaRunner(cfg, nil).Run(ctx, NewAIRequest("x"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}
