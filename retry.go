package qlock

import (
	"time"
)

// RetryPolicy defines retry behavior
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay after every failed attempt, up to Max when Max is set.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := eb.Initial
	for range max(attempt-1, 0) {
		delay *= 2
		if eb.Max > 0 && delay >= eb.Max {
			return eb.Max
		}
	}
	return delay
}

/*
WithRetry lets a job run up to attempts times. Jobs run exactly once unless
this option is given.
*/
func WithRetry(attempts int, strategy RetryStrategy) JobOption {
	return func(j *Job) {
		j.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
		}
	}
}

// WithRetryFilter stops retrying as soon as filter rejects an error.
func WithRetryFilter(filter func(error) bool) JobOption {
	return func(j *Job) {
		if j.RetryPolicy != nil {
			j.RetryPolicy.Filter = filter
		}
	}
}

func (rp *RetryPolicy) attempts() int {
	if rp == nil || rp.MaxAttempts < 1 {
		return 1
	}
	return rp.MaxAttempts
}

func (rp *RetryPolicy) delay(attempt int) time.Duration {
	if rp == nil || rp.Strategy == nil {
		return 0
	}
	return rp.Strategy.NextDelay(attempt)
}
