package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
)

// Future is the result handle of a submitted task. It is completed exactly
// once, by the worker that runs the task or by shutdown if the task never runs.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// complete stores the outcome. Only the first call has any effect.
func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the task has produced its result or ctx ends.
// The error is the task's own error, a *PanicError, ErrClosed if the pool
// shut down before the task ran, or ctx.Err().
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the task completes and returns its error.
func (f *Future[T]) Wait(ctx context.Context) error {
	_, err := f.Get(ctx)
	return err
}

// TryGet returns the result without blocking. ok is false while the task is
// still pending.
func (f *Future[T]) TryGet() (value T, ok bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

// PanicError reports a panic recovered from a task.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func newPanicError(recovered interface{}) *PanicError {
	return &PanicError{Value: recovered, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap allows errors.Is(err, errors.ErrTaskPanicked).
func (e *PanicError) Unwrap() error {
	return cferrors.ErrTaskPanicked
}

// call runs fn and converts a panic into a *PanicError.
func call[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, newPanicError(r)
		}
	}()
	return fn()
}
