/*
Package chronoflow runs deferred, time-ordered units of work on a fixed set of
workers and returns their results asynchronously.

Packages:
  - pkg/scheduling/workerpool: the worker pool and submission API (Submit,
    SubmitValue, SubmitFunc, SubmitWithRetry, Future)
  - pkg/scheduling/taskqueue: earliest-deadline-first task queue
  - pkg/scheduling/barrier: rendezvous barrier for the pool's workers
  - pkg/scheduling/scheduler: interval and cron schedules on a pool
  - pkg/sync/semaphore: counting semaphore with drain-on-close
  - pkg/metrics: Prometheus instrumentation

Example usage:

	import "github.com/vnykmshr/chronoflow/pkg/scheduling/workerpool"

	pool := workerpool.New() // one worker per CPU, minus one
	defer pool.Close()

	later, _ := workerpool.SubmitValue(pool, workerpool.After(50*time.Millisecond), func() int {
		return 2
	})
	now, _ := workerpool.SubmitValue(pool, workerpool.ASAP(), func() int {
		return 1
	})

	a, _ := now.Get(ctx)   // runs first
	b, _ := later.Get(ctx) // runs no earlier than 50ms after submission

The chronoflow command in cmd/chronoflow runs a matrix workload on a pool.
*/
package chronoflow
