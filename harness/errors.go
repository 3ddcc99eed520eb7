package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lendwise/landing/models"
)

// missingMarker prefixes the exception thrown by __pagecheck.require.
const missingMarker = "ELEMENT_NOT_FOUND:"

// categorizeError wraps raw errors from the ready phase into typed
// CheckErrors. Every way of not reaching the ready signal, including a
// refused connection, is a navigation timeout from the caller's view.
func categorizeError(err error, msg string) *models.CheckError {
	var ce *models.CheckError
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCheckError(models.ErrCodeNavigationTimeout, msg+" (deadline exceeded)", err)
	case errors.Is(err, context.Canceled):
		return models.NewCheckError(models.ErrCodeNavigationTimeout, "run canceled", err)
	default:
		return models.NewCheckError(models.ErrCodeNavigationTimeout, msg, err)
	}
}

// classifyEvalError turns an in-page exception into ELEMENT_NOT_FOUND when it
// came from __pagecheck.require, EVAL_FAILED otherwise.
func classifyEvalError(err error) *models.CheckError {
	msg := err.Error()
	if i := strings.Index(msg, missingMarker); i >= 0 {
		sel := msg[i+len(missingMarker):]
		if j := strings.IndexAny(sel, "\n"); j >= 0 {
			sel = sel[:j]
		}
		sel = strings.TrimSpace(sel)
		return models.NewCheckError(models.ErrCodeElementNotFound, fmt.Sprintf("%q not found", sel), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewCheckError(models.ErrCodeEvalFailed, "evaluation timed out", err)
	}
	return models.NewCheckError(models.ErrCodeEvalFailed, "in-page evaluation failed", err)
}

// assertionError types a predicate failure.
func assertionError(err error) *models.CheckError {
	var ce *models.CheckError
	if errors.As(err, &ce) {
		return ce
	}
	return models.NewCheckError(models.ErrCodeAssertionFailure, err.Error(), nil)
}
