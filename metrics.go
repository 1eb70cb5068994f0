package qlock

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// latencyWindow is how many recent job durations feed the percentiles.
const latencyWindow = 1000

/*
Metrics tracks watermarking and comparison activity. The exported fields are
a point-in-time view for callers and tests; the same events are also counted
in a private Prometheus registry that WriteTextfile exports.
*/
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	ActiveWorkers      int
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64
	Locks              int64
	GatesPerturbed     int64
	BreakerTrips       int64
	ThrottledDispatch  int64
	TotalJobTime       time.Duration
	AverageJobLatency  time.Duration
	P95JobLatency      time.Duration
	P99JobLatency      time.Duration
	JobSuccessRate     float64

	latencies []time.Duration

	registry  *prometheus.Registry
	locks     prometheus.Counter
	perturbed prometheus.Counter
	trips     prometheus.Counter
	throttled prometheus.Counter
	jobs      *prometheus.CounterVec
	duration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		latencies: make([]time.Duration, 0, latencyWindow),
		registry:  prometheus.NewRegistry(),
		locks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qlock_locks_total",
			Help: "Circuits watermarked.",
		}),
		perturbed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qlock_gates_perturbed_total",
			Help: "Rotation gates whose angle was shifted.",
		}),
		trips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qlock_breaker_trips_total",
			Help: "Times a circuit breaker opened.",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qlock_throttled_dispatch_total",
			Help: "Dispatch attempts held back by the rate limiter.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qlock_jobs_total",
			Help: "Pool jobs by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qlock_job_duration_seconds",
			Help:    "Time from scheduling to completion of pool jobs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	m.registry.MustRegister(m.locks, m.perturbed, m.trips, m.throttled, m.jobs, m.duration)
	return m
}

// Registry exposes the Prometheus registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordLock(perturbed int) {
	m.mu.Lock()
	m.Locks++
	m.GatesPerturbed += int64(perturbed)
	m.mu.Unlock()

	m.locks.Inc()
	m.perturbed.Add(float64(perturbed))
}

func (m *Metrics) recordBreakerTrip() {
	m.mu.Lock()
	m.BreakerTrips++
	m.mu.Unlock()

	m.trips.Inc()
}

func (m *Metrics) recordThrottle() {
	m.mu.Lock()
	m.ThrottledDispatch++
	m.mu.Unlock()

	m.throttled.Inc()
}

func (m *Metrics) recordSchedulingFailure() {
	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()

	m.jobs.WithLabelValues("unscheduled").Inc()
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)
	m.updateLatencyPercentiles(duration)

	status := "success"
	if !success {
		status = "failure"
	}
	m.jobs.WithLabelValues(status).Inc()
	m.duration.Observe(duration.Seconds())
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > latencyWindow {
		m.latencies = m.latencies[1:]
	}

	sorted := append([]time.Duration(nil), m.latencies...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	m.P95JobLatency = sorted[min(int(float64(len(sorted))*0.95), len(sorted)-1)]
	m.P99JobLatency = sorted[min(int(float64(len(sorted))*0.99), len(sorted)-1)]
}

func (m *Metrics) ExportMetrics() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"jobs":                m.JobCount,
		"failed_jobs":         m.FailedJobs,
		"scheduling_failures": m.SchedulingFailures,
		"locks":               m.Locks,
		"gates_perturbed":     m.GatesPerturbed,
		"breaker_trips":       m.BreakerTrips,
		"throttled_dispatch":  m.ThrottledDispatch,
		"success_rate":        m.JobSuccessRate,
		"avg_latency":         m.AverageJobLatency.Milliseconds(),
		"p95_latency":         m.P95JobLatency.Milliseconds(),
		"p99_latency":         m.P99JobLatency.Milliseconds(),
	}
}

// WriteTextfile writes the Prometheus metrics to path in the textfile-collector format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
