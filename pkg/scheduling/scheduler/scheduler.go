package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
	"github.com/vnykmshr/chronoflow/pkg/common/validation"
	"github.com/vnykmshr/chronoflow/pkg/metrics"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/workerpool"
)

// maxIDLength bounds entry identifiers.
const maxIDLength = 255

// Job is the work run on every occurrence of an entry. A returned error is
// logged and does not stop the entry.
type Job func() error

// Config holds scheduler configuration.
type Config struct {
	// Name labels logs and metrics. Defaults to the pool's name.
	Name string

	// Location is the time zone cron expressions are evaluated in.
	// Defaults to time.Local. A CRON_TZ= prefix in an expression overrides it.
	Location *time.Location

	// Clock is the time source occurrences are computed on.
	// Defaults to time.Now.
	Clock workerpool.Clock

	// Logger defaults to zap.S().Named("scheduler").
	Logger *zap.SugaredLogger

	// Metrics configures Prometheus instrumentation. Disabled by default.
	Metrics metrics.Config
}

// Entry describes a registered schedule.
type Entry struct {
	ID       string
	Spec     string        // cron expression, empty for interval entries
	Interval time.Duration // zero for cron entries
	Next     time.Time
	Runs     int64
	Created  time.Time
}

type entry struct {
	id       string
	spec     string
	interval time.Duration
	schedule cron.Schedule
	job      Job
	next     time.Time
	runs     int64
	created  time.Time
}

// Scheduler runs jobs repeatedly on a worker pool. Only the next occurrence
// of every entry is ever queued on the pool; running it queues the one after.
type Scheduler struct {
	pool     *workerpool.Pool
	config   Config
	log      *zap.SugaredLogger
	metrics  *metrics.Registry
	parser   cron.Parser
	location *time.Location
	clock    workerpool.Clock

	mu      sync.Mutex
	entries map[string]*entry
}

// intervalSchedule is a fixed delay cron.Schedule. Unlike cron.Every it keeps
// sub-second precision.
type intervalSchedule time.Duration

func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(s))
}

// New creates a scheduler that submits occurrences to pool. The pool is not
// owned: closing the scheduler leaves it running.
func New(pool *workerpool.Pool, config Config) (*Scheduler, error) {
	if pool == nil {
		return nil, cferrors.NewValidationError("scheduler", "pool", nil, "cannot be nil").
			WithHint("create one with workerpool.New")
	}

	if config.Name == "" {
		config.Name = pool.Name()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = workerpool.ClockFunc(time.Now)
	}
	if config.Logger == nil {
		config.Logger = zap.S().Named("scheduler")
	}

	return &Scheduler{
		pool:     pool,
		config:   config,
		log:      config.Logger.With("scheduler", config.Name),
		metrics:  config.Metrics.Build(),
		parser:   cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		location: config.Location,
		clock:    config.Clock,
		entries:  make(map[string]*entry),
	}, nil
}

// ScheduleRepeating runs job every interval, starting one interval from now.
// The next occurrence is measured from when the previous one started.
func (s *Scheduler) ScheduleRepeating(id string, interval time.Duration, job Job) error {
	if err := validation.ValidatePositiveDuration("scheduler", "interval", interval); err != nil {
		return err
	}
	return s.add(id, "", interval, intervalSchedule(interval), job)
}

// ScheduleCron runs job on the occurrences of a cron expression.
// Five fields (minute first), six fields (seconds first) and descriptors such
// as "@hourly" or "@every 90s" are accepted.
func (s *Scheduler) ScheduleCron(id string, expr string, job Job) error {
	if err := validation.ValidateNotEmpty("scheduler", "cron_expression", expr); err != nil {
		return err
	}
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return cferrors.NewValidationError("scheduler", "cron_expression", expr, err.Error()).
			WithHint(`use "min hour dom month dow", optionally preceded by seconds`)
	}
	return s.add(id, expr, 0, schedule, job)
}

func (s *Scheduler) add(id, spec string, interval time.Duration, schedule cron.Schedule, job Job) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if len(id) > maxIDLength {
		return cferrors.NewValidationError("scheduler", "id", id, fmt.Sprintf("longer than %d characters", maxIDLength))
	}
	if job == nil {
		return cferrors.NewValidationError("scheduler", "job", nil, "cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return fmt.Errorf("entry %q: %w", id, cferrors.ErrDuplicateID)
	}

	e := &entry{
		id:       id,
		spec:     spec,
		interval: interval,
		schedule: schedule,
		job:      job,
		created:  s.clock.Now(),
	}
	if err := s.arm(e, e.created); err != nil {
		return err
	}
	s.entries[id] = e
	s.recordEntries()

	s.log.Debugw("entry scheduled", "id", id, "spec", spec, "interval", interval, "next", e.next)
	return nil
}

// arm queues the first occurrence of e after the given instant.
// Callers hold s.mu.
func (s *Scheduler) arm(e *entry, after time.Time) error {
	if e.spec != "" {
		after = after.In(s.location)
	}
	next := e.schedule.Next(after)
	if next.IsZero() {
		return cferrors.NewValidationError("scheduler", "cron_expression", e.spec, "has no future occurrence")
	}
	e.next = next

	return s.pool.SubmitFireAndForget(workerpool.AtClock(s.clock, next), func() {
		s.fire(e)
	})
}

// fire runs one occurrence on a pool worker. Occurrences of cancelled or
// replaced entries are dropped.
func (s *Scheduler) fire(e *entry) {
	s.mu.Lock()
	if s.entries[e.id] != e {
		s.mu.Unlock()
		return
	}
	e.runs++
	if err := s.arm(e, s.clock.Now()); err != nil {
		delete(s.entries, e.id)
		s.recordEntries()
		s.log.Warnw("entry stopped", "id", e.id, "error", err)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ScheduleRuns.WithLabelValues(s.config.Name).Inc()
	}
	if err := e.job(); err != nil {
		s.log.Errorw("scheduled job failed", "id", e.id, "error", err)
	}
}

// Cancel removes an entry. Its queued occurrence becomes a no-op.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists {
		return false
	}
	delete(s.entries, id)
	s.recordEntries()
	return true
}

// CancelAll removes every entry.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.recordEntries()
}

// Close cancels every entry. The pool keeps running.
func (s *Scheduler) Close() error {
	s.CancelAll()
	return nil
}

// List returns the registered entries ordered by their next occurrence.
func (s *Scheduler) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e.snapshot())
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Next.Before(entries[j].Next)
	})
	return entries
}

// Next returns the time of the next occurrence of an entry.
func (s *Scheduler) Next(id string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return time.Time{}, fmt.Errorf("entry %q: %w", id, cferrors.ErrNotFound)
	}
	return e.next, nil
}

// Len returns the number of registered entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (e *entry) snapshot() Entry {
	return Entry{
		ID:       e.id,
		Spec:     e.spec,
		Interval: e.interval,
		Next:     e.next,
		Runs:     e.runs,
		Created:  e.created,
	}
}

func (s *Scheduler) recordEntries() {
	if s.metrics == nil {
		return
	}
	s.metrics.ScheduleEntries.WithLabelValues(s.config.Name).Set(float64(len(s.entries)))
}
