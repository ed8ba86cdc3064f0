package testutil

import (
	"errors"
	"testing"
)

// errMockWrapped is a static error for testing that non-wrapped errors don't match sentinels.
var errMockWrapped = errors.New("wrapped: network error")

func TestMockErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrMockGitFailed", ErrMockGitFailed, "git command failed"},
		{"ErrMockRunnerFailed", ErrMockRunnerFailed, "runner failed"},
		{"ErrMockObserver", ErrMockObserver, "observer failed"},
		{"ErrMockNotFound", ErrMockNotFound, "not found"},
		{"ErrMockNetwork", ErrMockNetwork, "network error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.want)
			}
		})
	}
}

func TestMockErrors_AreDistinct(t *testing.T) {
	all := []error{ErrMockGitFailed, ErrMockRunnerFailed, ErrMockObserver, ErrMockNotFound, ErrMockNetwork}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
	if errors.Is(errMockWrapped, ErrMockNetwork) {
		t.Error("unwrapped error should not match sentinel")
	}
}
