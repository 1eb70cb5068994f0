package qlock

import (
	"context"
	"time"
)

// JobFunc is the unit of work a Q runs. ctx is cancelled when the pool closes.
type JobFunc func(ctx context.Context) (any, error)

// Job represents work to be done
type Job struct {
	ID            string
	Fn            JobFunc
	RetryPolicy   *RetryPolicy
	CircuitID     string
	CircuitConfig *CircuitBreakerConfig
	TTL           time.Duration
	Attempt       int
	LastError     error
	StartTime     time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// CircuitBreakerConfig configures the breaker shared by all jobs with the same CircuitID.
type CircuitBreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

// WithTTL bounds how long the job's result is retained after completion.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}

/*
WithCircuitBreaker routes the job through the breaker named id. After
maxFailures consecutive failures, jobs on that breaker fail fast until
resetTimeout has passed, then a single trial job is let through.
*/
func WithCircuitBreaker(id string, maxFailures int, resetTimeout time.Duration) JobOption {
	return func(j *Job) {
		j.CircuitID = id
		j.CircuitConfig = &CircuitBreakerConfig{
			MaxFailures:  maxFailures,
			ResetTimeout: resetTimeout,
			HalfOpenMax:  1,
		}
	}
}
