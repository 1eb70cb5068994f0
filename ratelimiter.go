package qlock

import (
	"sync"
	"time"
)

/*
RateLimiter is a token bucket Regulator. The pool takes one token per
dispatched job; when the bucket is empty dispatch waits for the next refill,
which keeps a batch of simulator runs from saturating the machine while still
allowing a burst of up to maxTokens jobs.
*/
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	metrics    *Metrics
}

/*
NewRateLimiter returns a full bucket of maxTokens that regains one token
every refillRate.
*/
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Observe makes the limiter count every refused token in metrics.
func (rl *RateLimiter) Observe(metrics *Metrics) {
	rl.mu.Lock()
	rl.metrics = metrics
	rl.mu.Unlock()
}

// Limit takes a token when one is available and reports true when none is.
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}
	if rl.metrics != nil {
		rl.metrics.recordThrottle()
	}
	return true
}

func (rl *RateLimiter) Renormalize() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill(time.Now())
}

// Interval is the time between two refills.
func (rl *RateLimiter) Interval() time.Duration {
	return rl.refillRate
}

// refill credits one token per whole refillRate elapsed. Callers hold mu.
func (rl *RateLimiter) refill(now time.Time) {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}
	n := int(now.Sub(rl.lastRefill) / rl.refillRate)
	if n <= 0 {
		return
	}
	rl.tokens = min(rl.maxTokens, rl.tokens+n)
	rl.lastRefill = rl.lastRefill.Add(time.Duration(n) * rl.refillRate)
}
