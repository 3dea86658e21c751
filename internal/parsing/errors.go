package parsing

import (
	"fmt"
	"strconv"
	"time"
)

// RateLimitError indicates a parsing provider returned HTTP 429. It is a
// recoverable provider error: the orchestrator records the attempt and
// advances the fallback chain.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// BudgetExceededError explains why the cost guard rejected a provider attempt.
// It never aborts the orchestration on its own; the provider is skipped and
// the chain continues with whatever still fits the remaining budget.
type BudgetExceededError struct {
	Provider string
	Scope    string // "document" or "daily"
	Proposed float64
	Spent    float64
	Limit    float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s skipped: %s budget exceeded (spent %.4f + proposed %.4f > limit %.4f)",
		e.Provider, e.Scope, e.Spent, e.Proposed, e.Limit)
}
