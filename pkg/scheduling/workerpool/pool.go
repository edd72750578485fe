package workerpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnykmshr/chronoflow/pkg/common/validation"
	"github.com/vnykmshr/chronoflow/pkg/metrics"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/barrier"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/taskqueue"
)

// DefaultPollInterval bounds how long an idle worker blocks before it
// re-checks the barrier.
const DefaultPollInterval = 10 * time.Millisecond

// Clock supplies the current time. A time.Time from Now is expected to carry
// a monotonic reading when the clock is the scheduler's own.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// systemClock reads time.Now, which includes the monotonic clock.
var systemClock = ClockFunc(time.Now)

// Config holds configuration options for creating a worker pool.
type Config struct {
	// Name labels logs and metrics. Defaults to "pool-" plus a random suffix.
	Name string

	// WorkerCount is the number of workers in the pool.
	// Zero derives it from the host: one less than the number of CPUs, and
	// never fewer than one.
	WorkerCount int

	// PollInterval is the longest an idle worker blocks waiting for work
	// before checking the barrier again. Zero means DefaultPollInterval.
	PollInterval time.Duration

	// Logger receives pool events. Defaults to zap.S().Named("workerpool").
	Logger *zap.SugaredLogger

	// Metrics configures Prometheus instrumentation. Disabled by default.
	Metrics metrics.Config

	// Clock is the pool's time source. Defaults to the system monotonic clock.
	Clock Clock

	// PanicHandler is called when a task panics. The panic is always
	// recovered and reported through the task's result handle.
	PanicHandler func(recovered interface{})

	// OnWorkerStart is called when a worker starts.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	OnWorkerStop func(workerID int)

	// OnTaskStart is called before a due task begins execution.
	OnTaskStart func(workerID int, scheduledAt time.Time)

	// OnTaskComplete is called after a task completes (success or failure).
	OnTaskComplete func(workerID int, result Result)
}

// Result describes one task execution.
type Result struct {
	// ScheduledAt is the time the task was due.
	ScheduledAt time.Time

	// Lateness is how long after ScheduledAt execution started.
	Lateness time.Duration

	// Duration is how long the task took to execute.
	Duration time.Duration

	// Error is any error the task returned, or a *PanicError.
	Error error

	// WorkerID identifies which worker executed the task.
	WorkerID int
}

// Pool is a fixed set of workers executing time-ordered tasks from a shared
// queue. Create one with New or NewWithConfig and stop it with Close.
type Pool struct {
	config  Config
	log     *zap.SugaredLogger
	clock   Clock
	metrics *metrics.Registry

	queue   *taskqueue.Queue
	barrier *barrier.Barrier
	workers []worker

	accepting atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	workerWg  sync.WaitGroup

	shutdownOnce sync.Once
	done         chan struct{}

	// kick is closed and replaced on every submission so workers sleeping on
	// a deferred task notice earlier work.
	kickMu sync.Mutex
	kick   chan struct{}

	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64
	totalFailed    atomic.Int64
	totalDeferred  atomic.Int64
	totalDiscarded atomic.Int64
}

// worker represents a single worker in the pool.
type worker struct {
	id   int
	pool *Pool
}

// WorkerCountFor returns the worker count used for a host reporting
// hardwareThreads logical CPUs: one less than that, but at least one.
func WorkerCountFor(hardwareThreads int) int {
	if hardwareThreads <= 1 {
		return 1
	}
	return hardwareThreads - 1
}

// DefaultWorkerCount returns WorkerCountFor(runtime.NumCPU()).
func DefaultWorkerCount() int {
	return WorkerCountFor(runtime.NumCPU())
}

// New creates a worker pool with the default configuration.
func New() *Pool {
	p, err := NewWithConfig(Config{})
	if err != nil {
		// The zero Config always validates
		panic(err)
	}
	return p
}

// NewWithConfig creates a worker pool and starts its workers.
func NewWithConfig(config Config) (*Pool, error) {
	if err := validation.ValidateNonNegative("workerpool", "worker_count", config.WorkerCount); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration("workerpool", "poll_interval", config.PollInterval); err != nil {
		return nil, err
	}

	if config.Name == "" {
		config.Name = "pool-" + uuid.NewString()[:8]
	}
	if config.WorkerCount == 0 {
		config.WorkerCount = DefaultWorkerCount()
	}
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Logger == nil {
		config.Logger = zap.S().Named("workerpool")
	}
	if config.Clock == nil {
		config.Clock = systemClock
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		config:  config,
		log:     config.Logger.With("pool", config.Name),
		clock:   config.Clock,
		metrics: config.Metrics.Build(),
		queue:   taskqueue.New(),
		barrier: barrier.New(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		kick:    make(chan struct{}),
	}
	p.accepting.Store(true)

	// Register every worker with the barrier before any goroutine runs so a
	// rendezvous requested right after construction includes all of them.
	p.workers = make([]worker, config.WorkerCount)
	for i := range p.workers {
		p.workers[i] = worker{id: i, pool: p}
		p.barrier.Join()
		p.workerWg.Add(1)
	}
	for i := range p.workers {
		go p.workers[i].run()
	}

	p.recordPoolSize()
	p.log.Debugw("worker pool started",
		"workers", config.WorkerCount,
		"poll_interval", config.PollInterval)

	return p, nil
}
