package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCheckError_Unwrap(t *testing.T) {
	err := NewCheckError(ErrCodeNavigationTimeout, "page never became ready", context.DeadlineExceeded)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("CheckError should unwrap to the original error")
	}
	want := "NAVIGATION_TIMEOUT: page never became ready: context deadline exceeded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", NewCheckError(ErrCodeElementNotFound, "#missing", nil))

	if got := CodeOf(wrapped); got != ErrCodeElementNotFound {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, ErrCodeElementNotFound)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"pass", nil, 0},
		{"assertion", NewCheckError(ErrCodeAssertionFailure, "off by 4px", nil), 1},
		{"navigation timeout", NewCheckError(ErrCodeNavigationTimeout, "closed port", nil), 1},
		{"element not found", NewCheckError(ErrCodeElementNotFound, ".btn", nil), 1},
		{"cleanup only", NewCheckError(ErrCodeCleanupFailure, "browser close", nil), 0},
		{"untyped", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
