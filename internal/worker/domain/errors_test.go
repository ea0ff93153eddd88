package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryableError(t *testing.T) {
	err := fmt.Errorf("send: %w", NewRetryableError(context.Canceled))

	var retryable *RetryableError
	assert.True(t, errors.As(err, &retryable))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "send: retryable error: context canceled", err.Error())

	assert.False(t, errors.As(ErrMaxAttemptsExceeded, &retryable))
}
