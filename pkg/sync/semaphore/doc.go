/*
Package semaphore provides a counting semaphore with bounded capacity and a
draining Close.

The count of a Semaphore never leaves [0, capacity]. Signal beyond capacity is a
no-op rather than an error, so surplus releases cannot corrupt accounting.

Basic usage:

	sem := semaphore.New(3)

	if err := sem.Wait(ctx); err != nil {
		return err // ctx ended or sem is closing
	}
	defer sem.Signal()

Non-blocking acquire:

	if sem.TryWait() {
		defer sem.Signal()
		// ...
	}

Signal-only mode. A semaphore created with zero (or negative) units starts
empty and remembers at most one pending Signal, which makes it a wakeup flag
between goroutines. Its capacity is therefore 1, not 0: a zero-capacity
semaphore could never be signalled, so New(0) deliberately rounds the
capacity up while keeping the initial count at 0. Use NewWithConfig for any
other capacity:

	wake := semaphore.New(0)
	go func() { wake.Signal() }()
	_ = wake.Wait(ctx)

Counting without a ceiling, as used by the scheduler queue to count pending
tasks:

	ready, _ := semaphore.NewWithConfig(semaphore.Config{Capacity: semaphore.Unbounded})

Closing:

Close stops new acquisitions (Wait returns errors.ErrClosed, TryWait returns
false), fails goroutines blocked in Wait, and then blocks until the count is
back at its initial value. Every unit handed out from the initial count must
therefore be returned with Signal before Close can finish; CloseContext bounds
that wait.
*/
package semaphore
