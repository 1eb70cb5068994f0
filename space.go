package qlock

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// Result is the outcome of a job, delivered once through Await.
type Result struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
Space holds job results until they expire and hands them to whoever awaits
them, whether the result arrives before or after the Await call.
*/
type Space struct {
	mu      sync.Mutex
	values  map[string]Result
	waiting map[string][]chan Result
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func newSpace(sweep time.Duration) *Space {
	s := &Space{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cleanup(sweep)
	}()

	return s
}

// Store records a result and wakes every waiter for id.
func (s *Space) Store(id string, value any, err error, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Result{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	s.values[id] = r

	for _, ch := range s.waiting[id] {
		ch <- r
		close(ch)
	}
	delete(s.waiting, id)
}

// Await returns a channel that receives the result for id exactly once.
func (s *Space) Await(id string) chan Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Result, 1)
	if r, ok := s.values[id]; ok {
		ch <- r
		close(ch)
		return ch
	}
	s.waiting[id] = append(s.waiting[id], ch)
	return ch
}

func (s *Space) cleanup(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.expire(time.Now())
		}
	}
}

func (s *Space) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.values {
		if r.TTL > 0 && now.Sub(r.CreatedAt) > r.TTL {
			delete(s.values, id)
		}
	}
}

// Close stops the expiry sweep. Stored results stay readable.
func (s *Space) Close() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		errnie.Info("Space closed - %d results retained", s.len())
	})
}

func (s *Space) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
