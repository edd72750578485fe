package workerpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	cfcontext "github.com/vnykmshr/chronoflow/pkg/common/context"
	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/taskqueue"
)

// run is the main loop for a worker.
func (w *worker) run() {
	p := w.pool
	defer p.workerWg.Done()
	defer p.barrier.Leave()

	if p.config.OnWorkerStart != nil {
		p.config.OnWorkerStart(w.id)
	}
	p.recordActiveWorkers()

	for p.accepting.Load() {
		if w.awaitReady() && p.accepting.Load() {
			w.dispatch()
		}

		if p.barrier.Engaged() {
			p.barrier.Arrive()
		}
	}

	if p.config.OnWorkerStop != nil {
		p.config.OnWorkerStop(w.id)
	}
}

// awaitReady blocks until a readiness unit is taken, PollInterval passes, or
// the pool shuts down. Timing out lets the loop re-check the barrier; shutdown
// cancels the wait directly, so no matching Signal is needed to stop.
func (w *worker) awaitReady() bool {
	p := w.pool
	ctx, cancel := cfcontext.WithTimeoutOrCancel(p.ctx, p.config.PollInterval)
	defer cancel()

	return p.queue.Acquire(ctx) == nil
}

// dispatch pops the earliest task and runs it if due.
func (w *worker) dispatch() {
	p := w.pool

	// Taken before popping so a submission racing with the pop still wakes us.
	kick := p.submissions()

	now := p.clock.Now()
	task, outcome := p.queue.PopDue(now)
	switch outcome {
	case taskqueue.Dispatched:
		w.execute(task)
	case taskqueue.Deferred:
		p.totalDeferred.Add(1)
		if p.metrics != nil {
			p.metrics.TasksDeferred.WithLabelValues(p.config.Name).Inc()
		}
		// The task and its unit are back in the queue. Sleep until it is due,
		// something new is submitted, or the poll interval passes, instead of
		// popping it again immediately.
		wait := min(task.At().Sub(now), p.config.PollInterval)
		_ = cfcontext.Sleep(p.ctx, wait, kick)
	case taskqueue.Empty:
		// Units and tasks are pushed in lockstep; an empty pop only happens
		// while the queue is being closed.
	}
}

// execute runs a due task outside the queue lock.
func (w *worker) execute(task taskqueue.Task) {
	p := w.pool
	start := p.clock.Now()
	lateness := start.Sub(task.At())

	if p.config.OnTaskStart != nil {
		p.config.OnTaskStart(w.id, task.At())
	}

	err := runTask(task)

	result := Result{
		ScheduledAt: task.At(),
		Lateness:    lateness,
		Duration:    p.clock.Now().Sub(start),
		Error:       err,
		WorkerID:    w.id,
	}

	p.totalCompleted.Add(1)
	if err != nil {
		p.totalFailed.Add(1)
		w.reportFailure(err)
	}
	p.recordExecution(result)

	if p.config.OnTaskComplete != nil {
		p.config.OnTaskComplete(w.id, result)
	}
}

// runTask runs the task, converting a panic that escaped the task's own
// handling into a *PanicError.
func runTask(task taskqueue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return task.Run()
}

func (w *worker) reportFailure(err error) {
	p := w.pool

	var perr *PanicError
	if errors.As(err, &perr) {
		p.log.Errorw("task panicked",
			"worker", w.id,
			"panic", fmt.Sprint(perr.Value),
			"stack", string(perr.Stack))
		if p.config.PanicHandler != nil {
			p.config.PanicHandler(perr.Value)
		}
		return
	}

	p.log.Debugw("task failed", "worker", w.id, "error", err)
}

// submissions returns the channel closed by the next submission.
func (p *Pool) submissions() <-chan struct{} {
	p.kickMu.Lock()
	defer p.kickMu.Unlock()
	return p.kick
}

// notifySubmission wakes workers waiting on a deferred task.
func (p *Pool) notifySubmission() {
	p.kickMu.Lock()
	close(p.kick)
	p.kick = make(chan struct{})
	p.kickMu.Unlock()
}

// Rendezvous blocks until every active worker has reached the pool barrier
// once. Workers finish the task in hand first; idle workers arrive within
// PollInterval.
//
// Do not call Rendezvous from a task running on the same pool: that worker
// cannot arrive while the task is in hand, so the call blocks until ctx ends.
func (p *Pool) Rendezvous(ctx context.Context) error {
	if !p.accepting.Load() {
		return cferrors.ErrClosed
	}

	released := p.barrier.Engage()
	select {
	case <-released:
		if p.metrics != nil {
			p.metrics.Rendezvous.WithLabelValues(p.config.Name).Inc()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the pool without blocking. No new tasks are accepted,
// workers exit after the task in hand, and every task still queued is
// discarded: its result handle fails with ErrClosed. The returned channel is
// closed once all workers have exited.
func (p *Pool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.accepting.Store(false)
		p.barrier.Engage()
		p.cancel()

		// Discard before joining the workers: a running task may be blocked
		// on the future of a queued one.
		pending := p.queue.Close()
		for _, task := range pending {
			task.Discard(cferrors.ErrClosed)
		}
		p.totalDiscarded.Add(int64(len(pending)))
		p.recordDiscarded(len(pending))

		go func() {
			p.workerWg.Wait()
			p.recordActiveWorkers()

			p.log.Debugw("worker pool stopped", "discarded", len(pending))
			close(p.done)
		}()
	})

	return p.done
}

// ShutdownWithTimeout shuts down the pool, waiting at most timeout for the
// workers to exit. When the wait is cut short the shutdown still completes
// in the background.
func (p *Pool) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-p.Shutdown():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}

// Close shuts the pool down and waits for every worker to exit.
func (p *Pool) Close() error {
	<-p.Shutdown()
	return nil
}

// Name returns the pool's name.
func (p *Pool) Name() string {
	return p.config.Name
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.config.WorkerCount
}

// ActiveWorkers returns the number of workers inside the dispatch loop.
func (p *Pool) ActiveWorkers() int {
	return p.barrier.Active()
}

// QueueSize returns the number of tasks waiting in the queue, due or not.
func (p *Pool) QueueSize() int {
	return p.queue.Len()
}

// Accepting reports whether the pool still accepts submissions.
func (p *Pool) Accepting() bool {
	return p.accepting.Load()
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *Pool) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

// TotalCompleted returns the total number of tasks executed by the pool.
func (p *Pool) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// TotalFailed returns the number of executed tasks that returned an error or panicked.
func (p *Pool) TotalFailed() int64 {
	return p.totalFailed.Load()
}

// TotalDeferred returns how often a not yet due task was put back in the queue.
func (p *Pool) TotalDeferred() int64 {
	return p.totalDeferred.Load()
}

// TotalDiscarded returns the number of queued tasks dropped at shutdown.
func (p *Pool) TotalDiscarded() int64 {
	return p.totalDiscarded.Load()
}
