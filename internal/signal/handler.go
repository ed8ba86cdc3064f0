// Package signal turns SIGINT and SIGTERM into cooperative cancellation for a
// gitsmart run.
//
// The first signal cancels the run context: the executor finishes the commit
// unit it is working on, stops, and rolls back when configured. A second
// signal means the user does not want to wait; the handler closes Forced and
// invokes the force callback, which by default does nothing.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler owns the run context and reacts to interrupt signals.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the run context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	forced      chan struct{}
	done        chan struct{}
	onForce     func()

	mu       sync.Mutex
	count    int
	stopOnce sync.Once
	sigChan  chan os.Signal
}

// Option configures a Handler.
type Option func(*Handler)

// WithForceFunc sets the callback run when a second signal arrives.
func WithForceFunc(fn func()) Option {
	return func(h *Handler) {
		h.onForce = fn
	}
}

// NewHandler creates a handler listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx, signal.WithForceFunc(func() { os.Exit(130) }))
//	defer h.Stop()
//	ctx = h.Context()
func NewHandler(parent context.Context, opts ...Option) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		forced:      make(chan struct{}),
		done:        make(chan struct{}),
		onForce:     func() {},
		// Buffered so signal.Notify never drops a signal while we are busy.
		sigChan: make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(h)
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the run context. It is canceled by the first signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed when the first signal is received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Forced is closed when a second signal is received.
func (h *Handler) Forced() <-chan struct{} {
	return h.forced
}

// WasInterrupted reports whether at least one signal was received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop stops listening and cancels the context. Safe to call repeatedly.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// handleSignal records a received signal.
func (h *Handler) handleSignal() {
	h.mu.Lock()
	h.count++
	n := h.count
	h.mu.Unlock()

	switch n {
	case 1:
		h.cancel()
		close(h.interrupted)
	case 2:
		close(h.forced)
		h.onForce()
	}
}

// listen keeps receiving after the first signal so a second one can force
// the exit; it returns when Stop is called.
func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
