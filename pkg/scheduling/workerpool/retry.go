package workerpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v5"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
)

// RetryPolicy controls SubmitWithRetry.
type RetryPolicy struct {
	// MaxAttempts caps the number of executions, the first one included.
	// Zero means DefaultMaxAttempts. Use a negative value for no cap; the
	// BackOff then decides when to stop. backoff.ExponentialBackOff never
	// returns backoff.Stop, so with it an uncapped policy retries a
	// retryable error until the pool shuts down.
	MaxAttempts int

	// BackOff yields the delay before each retry. A backoff.Stop delay ends
	// retrying. Defaults to backoff.NewExponentialBackOff(). A BackOff is
	// stateful, so use a fresh one per submission.
	BackOff backoff.BackOff

	// Retryable reports whether a failed attempt may be retried.
	// Defaults to errors.IsRetryable.
	Retryable func(error) bool
}

// DefaultMaxAttempts is the attempt cap used when RetryPolicy.MaxAttempts is zero.
const DefaultMaxAttempts = 3

// DefaultRetryPolicy returns an exponential backoff policy with three attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BackOff:     backoff.NewExponentialBackOff(),
		Retryable:   cferrors.IsRetryable,
	}
}

func (rp RetryPolicy) withDefaults() RetryPolicy {
	if rp.MaxAttempts == 0 {
		rp.MaxAttempts = DefaultMaxAttempts
	}
	if rp.BackOff == nil {
		rp.BackOff = backoff.NewExponentialBackOff()
	}
	if rp.Retryable == nil {
		rp.Retryable = cferrors.IsRetryable
	}
	return rp
}

// SubmitWithRetry schedules fn like Submit. When an attempt fails with a
// retryable error, the next attempt is submitted to the same pool after the
// policy's backoff delay; no worker sleeps in between. Returning an error
// wrapped with backoff.Permanent stops retrying. The handle completes once,
// with the first success or the last failure.
func SubmitWithRetry[T any](p *Pool, when When, policy RetryPolicy, fn func() (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, cferrors.NewValidationError("workerpool", "fn", nil, "cannot be nil").
			WithHint("provide the function to run")
	}
	r := &retrier[T]{
		pool:   p,
		policy: policy.withDefaults(),
		fn:     fn,
		future: newFuture[T](),
	}
	r.policy.BackOff.Reset()

	if err := p.schedule(when, r.attempt, r.fail); err != nil {
		return nil, err
	}
	return r.future, nil
}

type retrier[T any] struct {
	pool   *Pool
	policy RetryPolicy
	fn     func() (T, error)
	future *Future[T]

	mu       sync.Mutex
	attempts int
}

// attempt runs one execution on a worker and arms the next one if needed.
func (r *retrier[T]) attempt() error {
	value, err := call(r.fn)
	if err == nil {
		r.future.complete(value, nil)
		return nil
	}

	r.mu.Lock()
	r.attempts++
	attempts := r.attempts
	r.mu.Unlock()

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		r.fail(permanent.Unwrap())
		return err
	}

	var perr *PanicError
	exhausted := r.policy.MaxAttempts > 0 && attempts >= r.policy.MaxAttempts
	if exhausted || errors.As(err, &perr) || !r.policy.Retryable(err) {
		r.fail(err)
		return err
	}

	delay := r.policy.BackOff.NextBackOff()
	if delay == backoff.Stop {
		r.fail(err)
		return err
	}

	if serr := r.pool.schedule(After(delay), r.attempt, r.fail); serr != nil {
		r.fail(fmt.Errorf("retry after attempt %d: %w", attempts, serr))
		return err
	}

	r.pool.recordRetry()
	r.pool.log.Debugw("task retry scheduled",
		"attempt", attempts,
		"delay", delay,
		"error", err)
	return err
}

func (r *retrier[T]) fail(err error) {
	var zero T
	r.future.complete(zero, err)
}
