package workerpool

import (
	"time"
)

// asapEpsilon backdates ASAP tasks so they are already due on first dispatch.
const asapEpsilon = time.Microsecond

type whenKind int

const (
	whenASAP whenKind = iota
	whenAfter
	whenAt
	whenAtClock
)

// When specifies the time a task should run. The zero When means ASAP.
type When struct {
	kind  whenKind
	delay time.Duration
	at    time.Time
	clock Clock
}

// ASAP schedules a task to run as soon as a worker is free.
func ASAP() When {
	return When{kind: whenASAP}
}

// After schedules a task d after submission, measured on the pool's clock.
// A negative d is treated like ASAP with an earlier deadline.
func After(d time.Duration) When {
	return When{kind: whenAfter, delay: d}
}

// At schedules a task for the instant t.
//
// t may come from time.Now (monotonic) or be a wall-clock time such as one
// built with time.Date. Either way it is converted through its offset from
// the pool's current time, so wall-clock adjustments made after submission do
// not move the task.
func At(t time.Time) When {
	return When{kind: whenAt, at: t}
}

// AtClock schedules a task for the instant t as read on clock c, which need
// not share an epoch or rate origin with the pool's clock. The deadline is
// the pool's now plus (t - c.Now()) at submission.
func AtClock(c Clock, t time.Time) When {
	return When{kind: whenAtClock, at: t, clock: c}
}

// resolve converts w to a deadline on the pool clock relative to now.
func (w When) resolve(now time.Time) time.Time {
	switch w.kind {
	case whenAfter:
		return now.Add(w.delay)
	case whenAt:
		return now.Add(w.at.Sub(now))
	case whenAtClock:
		if w.clock == nil {
			return now.Add(w.at.Sub(now))
		}
		return now.Add(w.at.Sub(w.clock.Now()))
	default:
		return now.Add(-asapEpsilon)
	}
}

func (w When) String() string {
	switch w.kind {
	case whenAfter:
		return "after " + w.delay.String()
	case whenAt, whenAtClock:
		return "at " + w.at.Format(time.RFC3339Nano)
	default:
		return "asap"
	}
}
