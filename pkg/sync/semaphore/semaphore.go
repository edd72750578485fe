package semaphore

import (
	"context"
	"math"
	"sync"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
)

// Unbounded as a Capacity lets the count grow without a practical ceiling.
const Unbounded = math.MaxInt

// Config holds configuration options for creating a Semaphore.
type Config struct {
	// Initial is the number of units available at construction. It is also
	// the level Close drains back to.
	Initial int

	// Capacity is the ceiling for the count. Signal is a no-op at capacity.
	// Zero means Capacity equals Initial, or 1 when Initial is also zero.
	Capacity int
}

// Semaphore is a counting semaphore whose count stays within [0, capacity].
//
// Close marks the semaphore as closing, fails every blocked waiter and then
// blocks until all units borrowed from the initial count are returned.
type Semaphore struct {
	mu       sync.Mutex
	initial  int
	capacity int
	count    int
	closing  bool
	waiters  []*waiter
	drained  chan struct{}
}

// waiter represents a goroutine blocked in Wait.
type waiter struct {
	ready chan struct{} // closed once the waiter is granted a unit or failed
	err   error         // set before ready is closed
}

// New creates a semaphore with n units available.
//
// A negative n is clamped to 0. A semaphore created with 0 units is in
// signal-only mode: nothing is pre-available and at most one pending Signal
// is remembered.
func New(n int) *Semaphore {
	if n < 0 {
		n = 0
	}
	capacity := n
	if capacity == 0 {
		capacity = 1
	}
	return &Semaphore{
		initial:  n,
		capacity: capacity,
		count:    n,
	}
}

// NewWithConfig creates a semaphore with an explicit capacity.
func NewWithConfig(config Config) (*Semaphore, error) {
	if config.Initial < 0 {
		return nil, cferrors.NewValidationError("semaphore", "initial", config.Initial, "cannot be negative").
			WithHint("use 0 for a semaphore that starts empty")
	}

	capacity := config.Capacity
	if capacity == 0 {
		capacity = max(config.Initial, 1)
	}
	if capacity < config.Initial {
		return nil, cferrors.NewValidationError("semaphore", "capacity", config.Capacity, "must be at least the initial count").
			WithHint("use semaphore.Unbounded for a count without a ceiling")
	}

	return &Semaphore{
		initial:  config.Initial,
		capacity: capacity,
		count:    config.Initial,
	}, nil
}

// Wait blocks until a unit is available and takes it.
//
// It returns ctx.Err() if the context ends first and ErrClosed once Close has
// begun; in both cases nothing is taken. Waiters are served in arrival order.
func (s *Semaphore) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return cferrors.ErrClosed
	}

	// Fast path: a unit is available and nobody is queued ahead of us
	if s.count > 0 && len(s.waiters) == 0 {
		s.count--
		s.mu.Unlock()
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	select {
	case <-w.ready:
		return w.err
	case <-ctx.Done():
		s.mu.Lock()
		removed := s.removeWaiter(w)
		s.mu.Unlock()
		if removed {
			return ctx.Err()
		}
		// Granted (or failed) concurrently with the cancellation; the
		// decision already made stands so no unit is lost.
		<-w.ready
		return w.err
	}
}

// TryWait takes a unit if one is available right now.
// It never blocks and always fails once Close has begun.
func (s *Semaphore) TryWait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing || s.count == 0 || len(s.waiters) > 0 {
		return false
	}
	s.count--
	return true
}

// Signal releases one unit. The oldest blocked waiter receives it directly;
// otherwise the count grows unless it is already at capacity.
func (s *Semaphore) Signal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.waiters) > 0 {
		w := s.waiters[0]
		s.waiters[0] = nil
		s.waiters = s.waiters[1:]
		close(w.ready)
		return
	}

	if s.count < s.capacity {
		s.count++
	}
	s.checkDrained()
}

// Close is CloseContext without a deadline.
func (s *Semaphore) Close() {
	_ = s.CloseContext(context.Background())
}

// CloseContext begins closing and blocks until every unit taken from the
// initial count has been returned, or ctx ends. Blocked waiters fail with
// ErrClosed. Calling it again waits on the same drain.
func (s *Semaphore) CloseContext(ctx context.Context) error {
	s.mu.Lock()
	if !s.closing {
		s.closing = true
		s.drained = make(chan struct{})
		for _, w := range s.waiters {
			w.err = cferrors.ErrClosed
			close(w.ready)
		}
		s.waiters = nil
		s.checkDrained()
	}
	drained := s.drained
	s.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Count returns the number of units currently available.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Capacity returns the ceiling for the count.
func (s *Semaphore) Capacity() int {
	return s.capacity
}

// Initial returns the count the semaphore was created with.
func (s *Semaphore) Initial() int {
	return s.initial
}

// Waiting returns the number of goroutines blocked in Wait.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// Closing reports whether Close has begun.
func (s *Semaphore) Closing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// checkDrained closes the drain channel once the count is back at its
// initial level. Must be called with s.mu held.
func (s *Semaphore) checkDrained() {
	if !s.closing || s.count < s.initial {
		return
	}
	select {
	case <-s.drained:
	default:
		close(s.drained)
	}
}

// removeWaiter removes w from the queue, reporting whether it was still
// queued. Must be called with s.mu held.
func (s *Semaphore) removeWaiter(w *waiter) bool {
	for i, queued := range s.waiters {
		if queued == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return true
		}
	}
	return false
}
