// Package testutil provides testing utilities for gitsmart.
//
// This package contains mock errors and an in-memory repository used across
// test files. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockGitFailed indicates a mock git command failed (used in tests).
	ErrMockGitFailed = errors.New("git command failed")

	// ErrMockRunnerFailed indicates a mock AI runner failed (used in tests).
	ErrMockRunnerFailed = errors.New("runner failed")

	// ErrMockObserver indicates a mock observer rejected an event (used in tests).
	ErrMockObserver = errors.New("observer failed")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")

	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("network error")
)
