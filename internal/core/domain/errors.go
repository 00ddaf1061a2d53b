package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoPrimaryFile      = errors.New("primary file required")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrTransport          = errors.New("transport failure")
	ErrApplication        = errors.New("classification rejected")
	ErrRateLimited        = errors.New("rate limited")
	ErrPreviewNotFound    = errors.New("preview not found")
	ErrFileNotTracked     = errors.New("file not tracked")
	ErrSessionClosed      = errors.New("session closed")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
