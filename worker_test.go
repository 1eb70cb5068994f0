package qlock

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestWorker() (*Worker, *Q) {
	pool := &Q{
		workers:  make(chan chan Job, 1),
		space:    newSpace(time.Hour),
		metrics:  NewMetrics(),
		breakers: make(map[string]*CircuitBreaker),
	}
	return &Worker{pool: pool, jobs: make(chan Job, 1)}, pool
}

func TestWorker(t *testing.T) {
	Convey("Given a worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		worker, pool := newTestWorker()

		Reset(func() {
			cancel()
			pool.space.Close()
		})

		Convey("It should process a job successfully", func() {
			worker.jobs <- Job{
				ID:        "job_success",
				Fn:        func(context.Context) (any, error) { return "result", nil },
				StartTime: time.Now(),
			}
			go worker.run(ctx)

			select {
			case <-time.After(testTimeout):
				t.Fatal("timed out waiting for job")
			case r := <-pool.space.Await("job_success"):
				So(r.Error, ShouldBeNil)
				So(r.Value, ShouldEqual, "result")
			}
			So(pool.metrics.JobCount, ShouldEqual, int64(1))
		})

		Convey("It should run a failing job exactly once without a retry policy", func() {
			calls := 0
			boom := errors.New("backend down")
			_, err := worker.executeWithRetries(ctx, Job{
				ID: "job_once",
				Fn: func(context.Context) (any, error) {
					calls++
					return nil, boom
				},
			}, nil)

			So(calls, ShouldEqual, 1)
			So(err, ShouldEqual, boom)
		})

		Convey("It should retry when asked to", func() {
			calls := 0
			job := Job{
				ID: "job_retry",
				Fn: func(context.Context) (any, error) {
					calls++
					if calls < 3 {
						return nil, errors.New("flaky")
					}
					return calls, nil
				},
			}
			WithRetry(3, &ExponentialBackoff{Initial: time.Millisecond})(&job)

			result, err := worker.executeWithRetries(ctx, job, nil)
			So(err, ShouldBeNil)
			So(result, ShouldEqual, 3)
		})

		Convey("It should stop retrying when the filter rejects the error", func() {
			calls := 0
			fatal := errors.New("fatal")
			job := Job{
				ID: "job_filtered",
				Fn: func(context.Context) (any, error) {
					calls++
					return nil, fatal
				},
			}
			WithRetry(5, &ExponentialBackoff{Initial: time.Millisecond})(&job)
			WithRetryFilter(func(err error) bool { return !errors.Is(err, fatal) })(&job)

			_, err := worker.executeWithRetries(ctx, job, nil)
			So(calls, ShouldEqual, 1)
			So(err, ShouldEqual, fatal)
		})

		Convey("It should reject jobs on an open breaker", func() {
			job := Job{
				ID:        "job_breaker",
				Fn:        func(context.Context) (any, error) { return nil, errors.New("down") },
				StartTime: time.Now(),
			}
			WithCircuitBreaker("backend", 1, time.Hour)(&job)

			_, err := worker.processJob(ctx, job)
			So(err, ShouldNotBeNil)

			_, err = worker.processJob(ctx, job)
			So(errors.Is(err, ErrCircuitOpen), ShouldBeTrue)
		})
	})
}

func TestExponentialBackoff(t *testing.T) {
	Convey("Given a capped exponential backoff", t, func() {
		backoff := &ExponentialBackoff{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond}

		So(backoff.NextDelay(1), ShouldEqual, 10*time.Millisecond)
		So(backoff.NextDelay(2), ShouldEqual, 20*time.Millisecond)
		So(backoff.NextDelay(3), ShouldEqual, 40*time.Millisecond)
		So(backoff.NextDelay(4), ShouldEqual, 50*time.Millisecond)
		So(backoff.NextDelay(40), ShouldEqual, 50*time.Millisecond)
	})
}
