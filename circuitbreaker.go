package qlock

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// CircuitState is the operating mode of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // jobs flow normally
	CircuitOpen                         // jobs fail fast
	CircuitHalfOpen                     // a limited number of trial jobs may run
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

/*
CircuitBreaker stops a failing backend from being hammered. After
maxFailures consecutive failures it opens and rejects work; once
resetTimeout has passed it lets up to halfOpenMax trial jobs through, closing
again when they succeed and reopening on the first failure.
*/
type CircuitBreaker struct {
	mu               sync.Mutex
	maxFailures      int
	resetTimeout     time.Duration
	halfOpenMax      int
	failureCount     int
	state            CircuitState
	openTime         time.Time
	halfOpenTrials   int
	halfOpenAttempts int
	metrics          *Metrics
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  max(maxFailures, 1),
		resetTimeout: resetTimeout,
		halfOpenMax:  max(halfOpenMax, 1),
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Observe implements Regulator. Trips from then on are counted in metrics.
func (cb *CircuitBreaker) Observe(metrics *Metrics) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.metrics = metrics
}

/*
Limit implements Regulator: true while work would be rejected. Unlike Allow
it never admits a trial job, so the pool can check a breaker at scheduling time
and leave the trial job to the worker that runs the job.
*/
func (cb *CircuitBreaker) Limit() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		return time.Since(cb.openTime) <= cb.resetTimeout
	case CircuitHalfOpen:
		return cb.halfOpenTrials >= cb.halfOpenMax
	}
	return false
}

// Renormalize implements Regulator by moving an expired open breaker to half-open.
func (cb *CircuitBreaker) Renormalize() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && time.Since(cb.openTime) > cb.resetTimeout {
		cb.halfOpen()
	}
}

func (cb *CircuitBreaker) halfOpen() {
	cb.state = CircuitHalfOpen
	cb.halfOpenTrials = 0
	cb.halfOpenAttempts = 0
	errnie.Info("CircuitBreaker - half-open after %v", cb.resetTimeout)
}

func (cb *CircuitBreaker) trip() {
	cb.state = CircuitOpen
	cb.openTime = time.Now()
	errnie.Info("CircuitBreaker - opened after %d failures", cb.failureCount)
	if cb.metrics != nil {
		cb.metrics.recordBreakerTrip()
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	switch cb.state {
	case CircuitHalfOpen:
		cb.trip()
	case CircuitClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.trip()
		}
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.state = CircuitClosed
			cb.failureCount = 0
			cb.halfOpenTrials = 0
			cb.halfOpenAttempts = 0
			errnie.Info("CircuitBreaker - closed")
		}
	case CircuitClosed:
		cb.failureCount = 0
	}
}

// Allow reports whether a job may run now. While half-open every true answer uses up one trial job.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) <= cb.resetTimeout {
			return false
		}
		cb.halfOpen()
		fallthrough
	case CircuitHalfOpen:
		if cb.halfOpenTrials >= cb.halfOpenMax {
			return false
		}
		cb.halfOpenTrials++
		return true
	}
	return false
}
