package cancel

import (
	"context"
	"sync"
)

// Signal is a one-shot stop event that any number of goroutines can wait on.
// Waiters that subscribe after the signal fired are released immediately.
type Signal struct {
	mu      sync.Mutex
	fired   bool
	nextID  uint64
	waiters map[uint64]chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an unfired signal.
func New() *Signal {
	ctx, cancel := context.WithCancel(context.Background())
	return &Signal{
		waiters: make(map[uint64]chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Fire releases every current and future waiter. Only the first call has an effect.
func (s *Signal) Fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return
	}
	s.fired = true
	// flag and drain must stay in the same critical section as Wait's check
	for id, ch := range s.waiters {
		close(ch)
		delete(s.waiters, id)
	}
	s.cancel()
}

// Wait registers a new waiter and returns a channel that is closed once the signal fires.
func (s *Signal) Wait() <-chan struct{} {
	ch := make(chan struct{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		close(ch)
		return ch
	}
	s.waiters[s.nextID] = ch
	s.nextID++
	return ch
}

// Fired reports whether Fire has been called.
func (s *Signal) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Context returns a context that is cancelled when the signal fires.
func (s *Signal) Context() context.Context {
	return s.ctx
}

// pending is the number of waiters not yet released.
func (s *Signal) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
