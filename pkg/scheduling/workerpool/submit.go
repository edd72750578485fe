package workerpool

import (
	"fmt"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/taskqueue"
)

// Submit schedules fn to run at when and returns a handle to its result.
// Arguments are passed by capturing them in fn.
func Submit[T any](p *Pool, when When, fn func() (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, cferrors.NewValidationError("workerpool", "fn", nil, "cannot be nil").
			WithHint("provide the function to run")
	}

	f := newFuture[T]()
	run := func() error {
		value, err := call(fn)
		f.complete(value, err)
		return err
	}
	discard := func(err error) {
		var zero T
		f.complete(zero, err)
	}

	if err := p.schedule(when, run, discard); err != nil {
		return nil, err
	}
	return f, nil
}

// SubmitValue is Submit for functions that cannot fail.
func SubmitValue[T any](p *Pool, when When, fn func() T) (*Future[T], error) {
	if fn == nil {
		return Submit[T](p, when, nil)
	}
	return Submit(p, when, func() (T, error) {
		return fn(), nil
	})
}

// SubmitFunc is Submit for functions without a result value. The handle
// completes with only an error.
func SubmitFunc(p *Pool, when When, fn func() error) (*Future[struct{}], error) {
	if fn == nil {
		return Submit[struct{}](p, when, nil)
	}
	return Submit(p, when, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// SubmitFireAndForget schedules fn without a result handle. A panic in fn is
// recovered, logged and passed to Config.PanicHandler.
func (p *Pool) SubmitFireAndForget(when When, fn func()) error {
	if fn == nil {
		return cferrors.NewValidationError("workerpool", "fn", nil, "cannot be nil").
			WithHint("provide the function to run")
	}

	run := func() error {
		_, err := call(func() (struct{}, error) {
			fn()
			return struct{}{}, nil
		})
		return err
	}
	return p.schedule(when, run, nil)
}

// schedule pushes one task and wakes one worker.
func (p *Pool) schedule(when When, run func() error, discard func(error)) error {
	if !p.accepting.Load() {
		return fmt.Errorf("cannot submit task: worker pool has been shut down: %w", cferrors.ErrClosed)
	}

	at := when.resolve(p.clock.Now())
	if err := p.queue.Push(taskqueue.NewTask(at, run, discard)); err != nil {
		return fmt.Errorf("cannot submit task: %w", err)
	}

	p.totalSubmitted.Add(1)
	p.recordScheduled()
	p.notifySubmission()
	return nil
}
