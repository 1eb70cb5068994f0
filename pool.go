package qlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

var (
	// ErrCircuitOpen is returned for jobs rejected by an open circuit breaker.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrNoWorkers is returned when no worker picks a job up within the scheduling timeout.
	ErrNoWorkers = errors.New("no available workers")
	// ErrBackPressure is returned for jobs turned away while the pool is overloaded.
	ErrBackPressure = errors.New("pool under back pressure")
)

const (
	defaultSchedulingTimeout = 5 * time.Second
	defaultResultTTL         = 10 * time.Minute
	metricsInterval          = 500 * time.Millisecond
	resultSweep              = time.Minute
)

/*
Q is a fixed-size worker pool. Jobs are queued with Schedule, dispatched to
whichever worker is free, and their results are delivered through the
channel Schedule returns.
*/
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *Space
	metrics    *Metrics
	breakers   map[string]*CircuitBreaker
	breakersMu sync.Mutex
	config     *Config
	limiter    *RateLimiter
	pressure   *BackPressureRegulator
	closeOnce  sync.Once
}

// QOption configures a pool at construction.
type QOption func(*Q)

// WithRateLimit paces dispatch to one job per interval after an initial burst.
func WithRateLimit(burst int, interval time.Duration) QOption {
	return func(q *Q) {
		q.limiter = NewRateLimiter(burst, interval)
	}
}

// WithBackPressure rejects new jobs while the queue or job latency runs too high.
func WithBackPressure(maxQueueSize int, targetLatency time.Duration) QOption {
	return func(q *Q) {
		q.pressure = NewBackPressureRegulator(maxQueueSize, targetLatency)
	}
}

// WithPoolMetrics makes the pool report into m instead of a private Metrics.
func WithPoolMetrics(m *Metrics) QOption {
	return func(q *Q) {
		q.metrics = m
	}
}

/*
NewQ starts workers goroutines that live until Close is called or ctx is
cancelled. config supplies the scheduling timeout and, when set, the dispatch
rate and back pressure limits; nil means defaults. Options override config.
*/
func NewQ(ctx context.Context, workers int, config *Config, opts ...QOption) *Q {
	workers = max(workers, 1)
	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:      ctx,
		cancel:   cancel,
		breakers: make(map[string]*CircuitBreaker),
		jobs:     make(chan Job, workers*10),
		workers:  make(chan chan Job, workers),
		space:    newSpace(resultSweep),
		metrics:  NewMetrics(),
		config:   config,
	}
	if config != nil && config.JobsPerSecond > 0 {
		q.limiter = NewRateLimiter(config.JobsPerSecond, time.Second/time.Duration(config.JobsPerSecond))
	}
	if config != nil && config.MaxQueue > 0 {
		q.pressure = NewBackPressureRegulator(config.MaxQueue, q.getSchedulingTimeout())
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.limiter != nil {
		q.limiter.Observe(q.metrics)
	}

	for range workers {
		q.startWorker()
	}

	q.wg.Add(2)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()
	go func() {
		defer q.wg.Done()
		q.collectMetrics()
	}()

	errnie.Info("NewQ - started %d workers", workers)
	return q
}

// Metrics returns the live metrics of the pool.
func (q *Q) Metrics() *Metrics {
	return q.metrics
}

func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if !q.throttle() {
				q.space.Store(job.ID, nil, q.ctx.Err(), job.TTL)
				return
			}
			select {
			case <-q.ctx.Done():
				q.space.Store(job.ID, nil, q.ctx.Err(), job.TTL)
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					q.space.Store(job.ID, nil, q.ctx.Err(), job.TTL)
					return
				}
			case <-time.After(q.getSchedulingTimeout()):
				errnie.Info("Job %s - no worker within %v", job.ID, q.getSchedulingTimeout())
				q.metrics.recordSchedulingFailure()
				q.space.Store(job.ID, nil, ErrNoWorkers, job.TTL)
			}
		}
	}
}

// throttle blocks until the rate limiter hands out a token. It is false once the pool closes.
func (q *Q) throttle() bool {
	if q.limiter == nil {
		return true
	}
	for q.limiter.Limit() {
		select {
		case <-q.ctx.Done():
			return false
		case <-time.After(q.limiter.Interval()):
		}
	}
	return true
}

// collectMetrics samples queue depth and lets every regulator renormalize.
func (q *Q) collectMetrics() {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = len(q.jobs)
			q.metrics.ActiveWorkers = q.metrics.WorkerCount - len(q.workers)
			q.metrics.mu.Unlock()

			for _, r := range q.regulators() {
				r.Observe(q.metrics)
				r.Renormalize()
			}
		}
	}
}

func (q *Q) regulators() []Regulator {
	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()

	out := make([]Regulator, 0, len(q.breakers)+2)
	for _, b := range q.breakers {
		out = append(out, b)
	}
	if q.limiter != nil {
		out = append(out, q.limiter)
	}
	if q.pressure != nil {
		out = append(out, q.pressure)
	}
	return out
}

/*
Schedule queues fn under id and returns the channel its Result arrives on.
Jobs run once unless WithRetry is given. Results are kept for the configured
result TTL unless WithTTL says otherwise. A job whose circuit breaker is open,
or that cannot be queued within the scheduling timeout, resolves immediately
with an error.
*/
func (q *Q) Schedule(id string, fn JobFunc, opts ...JobOption) chan Result {
	job := Job{
		ID:        id,
		Fn:        fn,
		StartTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&job)
	}
	if job.TTL == 0 {
		job.TTL = q.getResultTTL()
	}

	if err := q.ctx.Err(); err != nil {
		return resolved(fmt.Errorf("pool closed: %w", err))
	}
	if breaker := q.getCircuitBreaker(job); breaker != nil && breaker.Limit() {
		return resolved(fmt.Errorf("%w: %s", ErrCircuitOpen, job.CircuitID))
	}
	if q.pressure != nil && q.pressure.Limit() {
		q.metrics.recordSchedulingFailure()
		return resolved(fmt.Errorf("%w: pressure %.2f", ErrBackPressure, q.pressure.Pressure()))
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.getSchedulingTimeout())
	defer cancel()

	select {
	case q.jobs <- job:
		return q.space.Await(id)
	case <-ctx.Done():
		q.metrics.recordSchedulingFailure()
		return resolved(fmt.Errorf("job scheduling timeout: %w", ctx.Err()))
	}
}

func resolved(err error) chan Result {
	ch := make(chan Result, 1)
	ch <- Result{Error: err, CreatedAt: time.Now()}
	close(ch)
	return ch
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Job),
	}

	q.metrics.mu.Lock()
	q.metrics.WorkerCount++
	q.metrics.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run(q.ctx)
	}()
}

// drain resolves jobs that were queued but never dispatched.
func (q *Q) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.space.Store(job.ID, nil, q.ctx.Err(), job.TTL)
		default:
			return
		}
	}
}

func (q *Q) getCircuitBreaker(job Job) *CircuitBreaker {
	if job.CircuitID == "" || job.CircuitConfig == nil {
		return nil
	}

	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()

	breaker, exists := q.breakers[job.CircuitID]
	if !exists {
		breaker = NewCircuitBreaker(
			job.CircuitConfig.MaxFailures,
			job.CircuitConfig.ResetTimeout,
			job.CircuitConfig.HalfOpenMax,
		)
		breaker.Observe(q.metrics)
		q.breakers[job.CircuitID] = breaker
	}
	return breaker
}

// getResultTTL is the retention for jobs scheduled without WithTTL.
func (q *Q) getResultTTL() time.Duration {
	if q.config != nil && q.config.ResultTTL > 0 {
		return q.config.ResultTTL
	}
	return defaultResultTTL
}

func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config != nil && q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return defaultSchedulingTimeout
}

// Close stops the workers and waits for them. Running jobs see their context cancelled.
func (q *Q) Close() {
	if q == nil {
		return
	}
	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()
		q.drain()
		q.space.Close()
		errnie.Info("Q closed")
	})
}
