package observe

import "errors"

var (
	// ErrObserverPanic reports an observer that panicked while handling an event.
	ErrObserverPanic = errors.New("observer panicked")

	errEmptyPath = errors.New("path cannot be empty")
)
