// Package clock abstracts wall-clock reads and one-shot scheduling so
// time-dependent code can be tested with a manually advanced clock.
package clock

import "time"

// Clock provides the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Scheduler schedules a single callback to run after a delay.
type Scheduler interface {
	ScheduleIn(d time.Duration, fn func()) Handle
}

// Handle refers to a scheduled callback. Cancel reports whether the
// callback was stopped before it ran.
type Handle interface {
	Cancel() bool
}

// System implements Clock and Scheduler on the time package.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) ScheduleIn(d time.Duration, fn func()) Handle {
	return systemHandle{timer: time.AfterFunc(d, fn)}
}

type systemHandle struct {
	timer *time.Timer
}

func (h systemHandle) Cancel() bool {
	return h.timer.Stop()
}
