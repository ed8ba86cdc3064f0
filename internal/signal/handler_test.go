package signal

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_FirstSignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())
	assert.False(t, h.WasInterrupted())

	h.handleSignal()

	require.ErrorIs(t, h.Context().Err(), context.Canceled)
	assert.True(t, h.WasInterrupted())

	select {
	case <-h.Forced():
		t.Fatal("forced channel should stay open after one signal")
	default:
	}
}

func TestHandler_SecondSignalForces(t *testing.T) {
	var calls atomic.Int32
	h := NewHandler(context.Background(), WithForceFunc(func() { calls.Add(1) }))
	defer h.Stop()

	h.handleSignal()
	h.handleSignal()

	select {
	case <-h.Forced():
	default:
		t.Fatal("forced channel should be closed after a second signal")
	}
	assert.Equal(t, int32(1), calls.Load())

	// Further signals are ignored.
	h.handleSignal()
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandler_ListenReceivesRepeatedSignals(t *testing.T) {
	forced := make(chan struct{})
	h := NewHandler(context.Background(), WithForceFunc(func() { close(forced) }))
	defer h.Stop()

	h.sigChan <- syscall.SIGINT
	h.sigChan <- syscall.SIGINT

	select {
	case <-forced:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal was not handled")
	}
	require.ErrorIs(t, h.Context().Err(), context.Canceled)
}

func TestHandler_ParentCanceled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	require.Error(t, h.Context().Err())
	assert.False(t, h.WasInterrupted())
}

func TestHandler_Stop(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	h.Stop()

	require.Error(t, h.Context().Err())
	assert.False(t, h.WasInterrupted())
}
