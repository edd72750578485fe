package taskqueue

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
	"github.com/vnykmshr/chronoflow/pkg/sync/semaphore"
)

// Outcome describes what PopDue did with the earliest task.
type Outcome int

const (
	// Empty means the queue held no task.
	Empty Outcome = iota
	// Dispatched means the returned task is due and now owned by the caller.
	Dispatched
	// Deferred means the earliest task is not due yet and was put back.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Dispatched:
		return "dispatched"
	case Deferred:
		return "deferred"
	default:
		return "empty"
	}
}

// Queue is an earliest-deadline-first queue of Tasks guarded by a mutex and
// paired with a semaphore that holds one unit per queued task.
type Queue struct {
	mu     sync.Mutex
	tasks  *priorityqueue.Queue
	ready  *semaphore.Semaphore
	closed bool
}

// New creates an empty Queue.
func New() *Queue {
	ready, err := semaphore.NewWithConfig(semaphore.Config{Capacity: semaphore.Unbounded})
	if err != nil {
		// Static config; cannot fail
		panic(err)
	}
	return &Queue{
		tasks: priorityqueue.NewWith(byDeadline),
		ready: ready,
	}
}

// Push inserts t and signals one readiness unit.
func (q *Queue) Push(t Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return cferrors.NewOperationError("taskqueue", "Push", cferrors.ErrClosed)
	}
	q.tasks.Enqueue(t)
	q.mu.Unlock()

	q.ready.Signal()
	return nil
}

// Acquire blocks until a readiness unit is available and takes it.
func (q *Queue) Acquire(ctx context.Context) error {
	return q.ready.Wait(ctx)
}

// TryAcquire takes a readiness unit if one is available.
func (q *Queue) TryAcquire() bool {
	return q.ready.TryWait()
}

// PopDue removes the earliest task. A due task is returned to the caller,
// who must run it after PopDue returns; the lock is not held while it runs.
// A task that is not due yet goes back into the queue together with its
// readiness unit.
func (q *Queue) PopDue(now time.Time) (Task, Outcome) {
	q.mu.Lock()
	v, ok := q.tasks.Dequeue()
	if !ok {
		q.mu.Unlock()
		return Task{}, Empty
	}

	t := v.(Task)
	if t.Due(now) {
		q.mu.Unlock()
		return t, Dispatched
	}

	q.tasks.Enqueue(t)
	q.mu.Unlock()

	q.ready.Signal()
	return t, Deferred
}

// Next returns the execution time of the earliest queued task.
func (q *Queue) Next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	v, ok := q.tasks.Peek()
	if !ok {
		return time.Time{}, false
	}
	return v.(Task).At(), true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Size()
}

// Close refuses further pushes and returns every task still queued, earliest
// first. The caller decides how to discard them. Close is idempotent; later
// calls return nil.
func (q *Queue) Close() []Task {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true

	pending := make([]Task, 0, q.tasks.Size())
	for {
		v, ok := q.tasks.Dequeue()
		if !ok {
			break
		}
		pending = append(pending, v.(Task))
	}
	q.mu.Unlock()

	// Units for discarded tasks are simply abandoned; the readiness
	// semaphore starts at zero so its drain completes immediately.
	q.ready.Close()
	return pending
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
