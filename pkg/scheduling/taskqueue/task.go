package taskqueue

import (
	"time"
)

// Task pairs a unit of work with the time it should run at.
// Tasks are values; nothing mutates them after construction.
type Task struct {
	at      time.Time
	run     func() error
	discard func(error)
}

// NewTask creates a Task due at at. discard, if not nil, is called instead
// of run when the task is dropped without executing.
func NewTask(at time.Time, run func() error, discard func(error)) Task {
	return Task{
		at:      at,
		run:     run,
		discard: discard,
	}
}

// At returns the scheduled execution time.
func (t Task) At() time.Time {
	return t.at
}

// Due reports whether the task may run at now.
func (t Task) Due(now time.Time) bool {
	return !t.at.After(now)
}

// Before reports whether t has dispatch priority over other.
// Equal times are unordered.
func (t Task) Before(other Task) bool {
	return t.at.Before(other.at)
}

// Run executes the task's work.
func (t Task) Run() error {
	if t.run == nil {
		return nil
	}
	return t.run()
}

// Discard notifies the task that it will never run.
func (t Task) Discard(err error) {
	if t.discard != nil {
		t.discard(err)
	}
}

// byDeadline orders tasks earliest first for the priority queue.
func byDeadline(a, b interface{}) int {
	ta := a.(Task)
	tb := b.(Task)
	switch {
	case ta.Before(tb):
		return -1
	case tb.Before(ta):
		return 1
	default:
		return 0
	}
}
