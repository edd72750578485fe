package benchmark

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/chronoflow/pkg/scheduling/taskqueue"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/workerpool"
	"github.com/vnykmshr/chronoflow/pkg/sync/semaphore"
)

func newPool(b *testing.B, workers int) *workerpool.Pool {
	b.Helper()
	pool, err := workerpool.NewWithConfig(workerpool.Config{WorkerCount: workers})
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	return pool
}

// BenchmarkWorkerPoolSubmit measures submit-to-result latency for ASAP tasks.
func BenchmarkWorkerPoolSubmit(b *testing.B) {
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(workerLabel(workers), func(b *testing.B) {
			pool := newPool(b, workers)
			defer pool.Close()
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				f, err := workerpool.SubmitValue(pool, workerpool.ASAP(), func() int { return i })
				if err != nil {
					b.Fatal(err)
				}
				if _, err := f.Get(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkWorkerPoolThroughput measures batches of fire-and-forget tasks.
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	const batch = 100

	for _, workers := range []int{2, 4, 8} {
		b.Run(workerLabel(workers), func(b *testing.B) {
			pool := newPool(b, workers)
			defer pool.Close()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var wg sync.WaitGroup
				wg.Add(batch)
				for j := 0; j < batch; j++ {
					if err := pool.SubmitFireAndForget(workerpool.ASAP(), wg.Done); err != nil {
						b.Fatal(err)
					}
				}
				wg.Wait()
			}
		})
	}
}

// BenchmarkWorkerPoolConcurrentSubmit measures submission from many goroutines.
func BenchmarkWorkerPoolConcurrentSubmit(b *testing.B) {
	pool := newPool(b, 4)
	defer pool.Close()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			f, err := workerpool.SubmitFunc(pool, workerpool.ASAP(), func() error { return nil })
			if err != nil {
				b.Fatal(err)
			}
			_ = f.Wait(ctx)
		}
	})
}

// BenchmarkQueuePushPop measures the earliest-deadline-first queue alone.
func BenchmarkQueuePushPop(b *testing.B) {
	for _, depth := range []int{10, 1000} {
		b.Run(fmt.Sprintf("depth%d", depth), func(b *testing.B) {
			q := taskqueue.New()
			now := time.Now()
			for i := 0; i < depth; i++ {
				_ = q.Push(taskqueue.NewTask(now.Add(time.Duration(i)*time.Millisecond), func() error { return nil }, nil))
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = q.Push(taskqueue.NewTask(now.Add(-time.Microsecond), func() error { return nil }, nil))
				q.TryAcquire()
				q.PopDue(now)
			}
		})
	}
}

// BenchmarkSemaphore measures an uncontended wait/signal pair.
func BenchmarkSemaphore(b *testing.B) {
	s := semaphore.New(1)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Wait(ctx)
		s.Signal()
	}
}

// workerLabel returns a label for worker count configuration.
func workerLabel(workers int) string {
	return fmt.Sprintf("%dworkers", workers)
}
