package qlock

import (
	"sync"
	"time"
)

// pressureLimit is the pressure at which new jobs are turned away.
const pressureLimit = 0.8

/*
BackPressureRegulator turns jobs away at Schedule time when the pool is
falling behind. Pressure mixes queue depth against maxQueueSize with average
job latency against targetLatency, and decays once both recover.
*/
type BackPressureRegulator struct {
	mu            sync.RWMutex
	maxQueueSize  int
	targetLatency time.Duration
	pressure      float64
	metrics       *Metrics
}

func NewBackPressureRegulator(maxQueueSize int, targetLatency time.Duration) *BackPressureRegulator {
	return &BackPressureRegulator{
		maxQueueSize:  max(maxQueueSize, 1),
		targetLatency: targetLatency,
	}
}

func (bp *BackPressureRegulator) Observe(metrics *Metrics) {
	metrics.mu.RLock()
	queue := metrics.JobQueueSize
	latency := metrics.AverageJobLatency
	metrics.mu.RUnlock()

	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.metrics = metrics
	pressure := 0.6 * float64(queue) / float64(bp.maxQueueSize)
	if bp.targetLatency > 0 && latency > 0 {
		pressure += 0.4 * float64(latency) / float64(bp.targetLatency)
	}
	bp.pressure = min(1, max(0, pressure))
}

func (bp *BackPressureRegulator) Limit() bool {
	bp.mu.RLock()
	defer bp.mu.RUnlock()
	return bp.pressure >= pressureLimit
}

// Renormalize lowers the pressure by a tenth while the queue is at most half full.
func (bp *BackPressureRegulator) Renormalize() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.metrics == nil {
		return
	}
	bp.metrics.mu.RLock()
	calm := bp.metrics.JobQueueSize <= bp.maxQueueSize/2
	bp.metrics.mu.RUnlock()

	if calm {
		bp.pressure = max(0, bp.pressure-0.1)
	}
}

func (bp *BackPressureRegulator) Pressure() float64 {
	bp.mu.RLock()
	defer bp.mu.RUnlock()
	return bp.pressure
}
