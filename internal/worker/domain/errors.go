package domain

import "errors"

var (
	// ErrMaxAttemptsExceeded is returned when every send attempt for a message failed
	ErrMaxAttemptsExceeded = errors.New("max send attempts exceeded")

	// ErrPermanentFailure marks a send the relay rejected for good
	ErrPermanentFailure = errors.New("permanent delivery failure")
)

// RetryableError wraps failures that should put the message back on the queue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
