package chat

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrEmptyMessage is returned for a turn without message text.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrConcurrentUpdate is returned when an append still conflicts after one reload.
	ErrConcurrentUpdate = errors.New("conversation was modified concurrently, please retry")
)

// RateLimitError rejects a turn before any side effect.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Seconds returns the wait time in whole seconds, rounded up.
func (e *RateLimitError) Seconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Too many requests. Please try again after %d seconds.", e.Seconds())
}

// GatewayError is an upstream model failure on a non-streaming turn.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
