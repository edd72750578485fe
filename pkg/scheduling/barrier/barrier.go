// Package barrier provides a reusable rendezvous point for a changing set of
// participants.
//
// Participants Join when they start and Leave when they stop. Any goroutine
// may Engage the barrier; from then on each participant that calls Arrive
// parks until every active participant has arrived. The participant that
// completes the set releases everyone, clears the engagement and resets the
// parked count, after which the barrier can be engaged again.
//
// A participant that leaves while the barrier is engaged no longer counts
// towards the set, so shutdown never waits on workers that have exited.
package barrier

import (
	"sync"
	"sync/atomic"
)

// Barrier is a rendezvous barrier. The zero value is not usable; call New.
type Barrier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	active   int
	parked   int
	gen      uint64
	released chan struct{}

	// engaged mirrors the engagement under mu for lock-free polling.
	engaged atomic.Bool
}

// New creates a Barrier with no participants.
func New() *Barrier {
	b := &Barrier{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Join registers a participant.
func (b *Barrier) Join() {
	b.mu.Lock()
	b.active++
	b.mu.Unlock()
}

// Leave deregisters a participant, releasing the barrier if everyone still
// active has already arrived.
func (b *Barrier) Leave() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active > 0 {
		b.active--
	}
	if b.engaged.Load() && b.parked >= b.active {
		b.release()
	}
}

// Engage arms the barrier and returns a channel that is closed when the
// current rendezvous completes. Engaging an already engaged barrier returns
// the channel of the pending rendezvous.
func (b *Barrier) Engage() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.engaged.Load() {
		return b.released
	}

	released := make(chan struct{})
	b.released = released
	b.engaged.Store(true)
	if b.active == 0 {
		b.release()
	}
	return released
}

// Engaged reports whether a rendezvous is pending.
func (b *Barrier) Engaged() bool {
	return b.engaged.Load()
}

// Arrive parks the calling participant until every active participant has
// arrived. It returns immediately if the barrier is not engaged.
func (b *Barrier) Arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.engaged.Load() {
		return
	}

	b.parked++
	if b.parked >= b.active {
		b.release()
		return
	}

	gen := b.gen
	for gen == b.gen {
		b.cond.Wait()
	}
}

// Active returns the number of registered participants.
func (b *Barrier) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Parked returns the number of participants waiting at the barrier.
func (b *Barrier) Parked() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parked
}

// release opens the barrier for the current generation.
// Must be called with b.mu held and the barrier engaged.
func (b *Barrier) release() {
	b.engaged.Store(false)
	b.parked = 0
	b.gen++
	close(b.released)
	b.cond.Broadcast()
}
