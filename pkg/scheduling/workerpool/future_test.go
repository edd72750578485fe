package workerpool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vnykmshr/chronoflow/internal/testutil"
)

func TestFutureCompletesOnce(t *testing.T) {
	f := newFuture[int]()

	_, done, err := f.TryGet()
	testutil.AssertEqual(t, done, false)
	testutil.AssertNoError(t, err)

	f.complete(1, nil)
	f.complete(2, errors.New("late"))

	v, done, err := f.TryGet()
	testutil.AssertEqual(t, done, true)
	testutil.AssertEqual(t, v, 1)
	testutil.AssertNoError(t, err)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done channel not closed")
	}
}

func TestFutureGetHonoursContext(t *testing.T) {
	f := newFuture[string]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	v, err := f.Get(ctx)
	testutil.AssertEqual(t, v, "")
	testutil.AssertEqual(t, errors.Is(err, context.DeadlineExceeded), true)
}

func TestFutureWaitReturnsTaskError(t *testing.T) {
	f := newFuture[struct{}]()
	want := errors.New("failed")

	go f.complete(struct{}{}, want)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	testutil.AssertEqual(t, f.Wait(ctx), want)
}

func TestCallRecoversPanic(t *testing.T) {
	v, err := call(func() (int, error) {
		var m map[string]int
		m["x"] = 1
		return 1, nil
	})

	testutil.AssertEqual(t, v, 0)
	var perr *PanicError
	testutil.AssertEqual(t, errors.As(err, &perr), true)
	testutil.AssertEqual(t, perr.Error() != "", true)
}
