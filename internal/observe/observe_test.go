package observe

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/clock"
)

var errTestObserver = errors.New("observer broke")

func TestRegistry_OrderAndIsolation(t *testing.T) {
	var logBuf bytes.Buffer
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(
		WithRegistryLogger(zerolog.New(&logBuf)),
		WithRunID("run-1"),
		WithClock(clock.Fixed(at)),
	)

	var calls []string
	r.Register("first", ObserverFunc(func(Event) error {
		calls = append(calls, "first")
		return errTestObserver
	}))
	r.Register("panics", ObserverFunc(func(Event) error {
		calls = append(calls, "panics")
		panic("boom")
	}))
	var got Event
	r.Register("last", ObserverFunc(func(e Event) error {
		calls = append(calls, "last")
		got = e
		return nil
	}))

	assert.NotPanics(t, func() {
		r.Notify(Event{Type: CommandStarted, Kind: "commit", Target: "web"})
	})

	assert.Equal(t, []string{"first", "panics", "last"}, calls)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, at, got.At)
	assert.Contains(t, logBuf.String(), "observer broke")
	assert.Contains(t, logBuf.String(), "observer panicked")
	assert.Contains(t, logBuf.String(), `"observer":"panics"`)
}

func TestRegistry_RegisterReplaceAndUnregister(t *testing.T) {
	r := NewRegistry()
	noop := ObserverFunc(func(Event) error { return nil })

	r.Register("a", noop)
	r.Register("b", noop)
	r.Register("a", noop)
	r.Register("nil", nil)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	r.Unregister("a")
	assert.Equal(t, []string{"b"}, r.Names())
	r.Unregister("missing")
	assert.Equal(t, []string{"b"}, r.Names())
}

func TestRegistry_NilIgnoresEvents(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() { r.Notify(Event{Type: CommandStarted}) })
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(zerolog.New(&buf).Level(zerolog.DebugLevel))

	require.NoError(t, o.OnEvent(Event{Type: CommitCreated, Kind: "commit", Target: "api", CommitID: "0123456789abcdef0123", RunID: "r"}))
	require.NoError(t, o.OnEvent(Event{Type: CommandFailed, Kind: "push", Target: "origin/main", Err: errTestObserver}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "commit_created", first["message"])
	assert.Equal(t, "0123456789ab", first["commit"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "warn", second["level"])
	assert.Equal(t, "observer broke", second["error"])
}

func TestFileObserver(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 9, 4, 5, 0, time.UTC)
	path := TimestampedPath(filepath.Join(dir, "logs"), at)
	assert.Equal(t, "gitsmart-20260301-090405.log", filepath.Base(path))

	o, err := NewFileObserver(path)
	require.NoError(t, err)
	assert.Equal(t, path, o.Path())

	require.NoError(t, o.OnEvent(Event{Type: CommitCreated, Kind: "commit", Target: "docs", Files: []string{"README.md"}, CommitID: "abc", At: at}))
	require.NoError(t, o.OnEvent(Event{Type: CommandFailed, Kind: "push", Err: errors.New("token=sk-ant-REDACTED rejected")}))
	require.NoError(t, o.Close())

	data, err := os.ReadFile(path) //nolint:gosec // test reads its own temp file
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"event":"commit_created"`)
	assert.Contains(t, text, `"files":["README.md"]`)
	assert.NotContains(t, text, "sk-ant-api03")
	assert.Contains(t, text, "[REDACTED]")
}

func TestNewFileObserver_EmptyPath(t *testing.T) {
	_, err := NewFileObserver("")
	require.Error(t, err)
}

func TestMetricsObserver(t *testing.T) {
	o := NewMetricsObserver()
	events := []Event{
		{Type: CommandStarted, Kind: "commit"},
		{Type: CommitCreated, Kind: "commit"},
		{Type: CommandSucceeded, Kind: "commit"},
		{Type: CommandSucceeded, Kind: "commit"},
		{Type: CommandFailed, Kind: "push"},
		{Type: CommandUndone, Kind: "commit"},
		{Type: CommandUndone, Kind: "commit", Err: errTestObserver},
	}
	for _, e := range events {
		require.NoError(t, o.OnEvent(e))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(o.commands.WithLabelValues("commit", outcomeSucceeded)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(o.commands.WithLabelValues("push", outcomeFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(o.commands.WithLabelValues("commit", outcomeUndone)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(o.commits), 0)

	text, err := o.Text()
	require.NoError(t, err)
	assert.Contains(t, text, `gitsmart_commands_total{kind="commit",outcome="succeeded"} 2`)
	assert.Contains(t, text, "gitsmart_commits_created_total 1")

	path := filepath.Join(t.TempDir(), "out", "metrics.prom")
	require.NoError(t, o.WriteFile(path))
	data, err := os.ReadFile(path) //nolint:gosec // test reads its own temp file
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestMetricsObserver_IndependentRegistries(t *testing.T) {
	a := NewMetricsObserver()
	b := NewMetricsObserver()
	require.NoError(t, a.OnEvent(Event{Type: CommitCreated}))
	assert.InDelta(t, 0, testutil.ToFloat64(b.commits), 0)
	assert.NotSame(t, a.Registry(), b.Registry())
}
