/*
Package workerpool runs deferred, time-ordered tasks on a fixed set of workers
and delivers their results asynchronously.

Every task carries the instant it becomes due. Workers share one queue ordered
earliest deadline first: a worker pops the earliest task, runs it if it is due,
and otherwise puts it back and waits until it might be. Submission never
blocks on execution; the caller gets a Future for the result.

Basic usage:

	pool := workerpool.New()
	defer pool.Close()

	sum, err := workerpool.Submit(pool, workerpool.ASAP(), func() (float64, error) {
		return compute(row), nil
	})
	if err != nil {
		return err
	}

	total, err := sum.Get(ctx)

Time Specifications:

	workerpool.ASAP()                 // due immediately
	workerpool.After(50*time.Millisecond)
	workerpool.At(deadline)           // time.Now()-based or wall-clock time.Time
	workerpool.AtClock(clock, t)      // t read on another Clock

Deadlines are converted onto the pool's clock at submission, so the queue
only ever compares instants of one clock.

Submission Variants:

	workerpool.Submit(pool, when, func() (T, error))   // *Future[T]
	workerpool.SubmitValue(pool, when, func() T)       // *Future[T]
	workerpool.SubmitFunc(pool, when, func() error)    // *Future[struct{}]
	pool.SubmitFireAndForget(when, func())             // no handle
	workerpool.SubmitWithRetry(pool, when, policy, fn) // retried through the pool

Submitting to a pool that has been shut down returns errors.ErrClosed. A task
that panics does not kill its worker; its Future fails with a *PanicError.

Workers:

The default worker count is one less than the number of CPUs, and at least
one. Idle workers block for at most Config.PollInterval between checks of the
rendezvous barrier. Rendezvous parks every worker at the barrier once, after
the task in hand.

Shutdown:

Shutdown stops accepting work, lets each worker finish its current task and
returns a channel closed when all workers have exited. Tasks still queued are
discarded and their Futures fail with errors.ErrClosed. Close is the blocking
form.

Configuration:

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		Name:         "matrix",
		WorkerCount:  4,
		PollInterval: 5 * time.Millisecond,
		Logger:       logger.Named("workerpool"),
		Metrics:      metrics.Config{Enabled: true},
		PanicHandler: func(recovered interface{}) {
			log.Printf("task panicked: %v", recovered)
		},
	})
*/
package workerpool
