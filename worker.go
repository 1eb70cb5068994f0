package qlock

import (
	"context"
	"fmt"
	"time"

	"github.com/theapemachine/errnie"
)

// Worker processes jobs
type Worker struct {
	pool *Q
	jobs chan Job
}

/*
run offers the worker to the pool, takes the job it is handed, stores the
outcome and repeats until ctx is cancelled.
*/
func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			result, err := w.processJob(ctx, job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) (any, error) {
	breaker := w.pool.getCircuitBreaker(job)
	if breaker != nil && !breaker.Allow() {
		w.pool.metrics.recordJobExecution(job.StartTime, false)
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, job.CircuitID)
	}

	result, err := w.executeWithRetries(ctx, job, breaker)
	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

/*
executeWithRetries runs the job once, or up to its RetryPolicy's attempts.
A job without a policy returns its error untouched.
*/
func (w *Worker) executeWithRetries(ctx context.Context, job Job, breaker *CircuitBreaker) (any, error) {
	attempts := job.RetryPolicy.attempts()

	for job.Attempt = 0; job.Attempt < attempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := job.RetryPolicy.delay(job.Attempt)
			errnie.Info("Job %s retrying attempt %d after %v", job.ID, job.Attempt+1, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := job.Fn(ctx)
		if err == nil {
			if breaker != nil {
				breaker.RecordSuccess()
			}
			return result, nil
		}

		job.LastError = err
		if breaker != nil {
			breaker.RecordFailure()
		}
		if job.RetryPolicy != nil && job.RetryPolicy.Filter != nil && !job.RetryPolicy.Filter(err) {
			return nil, err
		}
	}

	if attempts == 1 {
		return nil, job.LastError
	}
	return nil, fmt.Errorf("all %d attempts failed for job %s: %w", attempts, job.ID, job.LastError)
}
