// Package ratelimit admits or rejects chat turns per user using a sliding window.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 10
)

// Decision is the outcome of an admission check.
// RetryAfter is zero when Allowed and otherwise lies in (0, window], rounded up to whole seconds.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter admits requests for a user identifier.
type Limiter interface {
	Admit(ctx context.Context, userID string) (Decision, error)
}

func rejectAfter(remaining, window time.Duration) Decision {
	secs := (remaining + time.Second - 1) / time.Second
	retry := secs * time.Second
	if retry <= 0 {
		retry = time.Second
	}
	if retry > window {
		retry = window
	}
	return Decision{Allowed: false, RetryAfter: retry}
}
