package models

import (
	"errors"
	"fmt"
)

// Error codes reported by checks and the static server.
const (
	ErrCodeNavigationTimeout = "NAVIGATION_TIMEOUT"
	ErrCodeElementNotFound   = "ELEMENT_NOT_FOUND"
	ErrCodeAssertionFailure  = "ASSERTION_FAILURE"
	ErrCodeCleanupFailure    = "RESOURCE_CLEANUP_FAILURE"
	ErrCodeBrowserLaunch     = "BROWSER_LAUNCH_FAILED"
	ErrCodeActionFailed      = "ACTION_FAILED"
	ErrCodeEvalFailed        = "EVAL_FAILED"
	ErrCodeScreenshotFailed  = "SCREENSHOT_FAILED"
	ErrCodeInvalidCheck      = "INVALID_CHECK"
	ErrCodeRateLimited       = "RATE_LIMITED"
)

// ErrorDetail is the structured error in JSON reports and server responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type CheckError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// NewCheckError creates a new CheckError.
func NewCheckError(code, message string, err error) *CheckError {
	return &CheckError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to a report-facing ErrorDetail.
func (e *CheckError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the code of the first CheckError in err's chain, or "" if none.
func CodeOf(err error) string {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// ExitCode maps the error of a check run to a process exit status.
// A failed cleanup never changes the reported outcome.
func ExitCode(err error) int {
	if err == nil || CodeOf(err) == ErrCodeCleanupFailure {
		return 0
	}
	return 1
}
