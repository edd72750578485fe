// Package taskqueue implements the shared, earliest-deadline-first task queue
// that worker pools dispatch from.
//
// A Queue keeps exactly one readiness unit per queued task in a counting
// semaphore. Producers Push a task and signal once; consumers Acquire a unit,
// then PopDue. A task that is not due yet is pushed back and its unit
// returned, so some consumer will look at it again later.
//
//	q := taskqueue.New()
//	_ = q.Push(taskqueue.NewTask(time.Now(), work, nil))
//
//	if err := q.Acquire(ctx); err == nil {
//		if t, outcome := q.PopDue(time.Now()); outcome == taskqueue.Dispatched {
//			_ = t.Run()
//		}
//	}
//
// The queue lock only covers queue manipulation. Dispatched tasks run on the
// caller's goroutine after the lock has been released, so several consumers
// execute tasks concurrently.
package taskqueue
