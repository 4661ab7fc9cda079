// Package sched provides the real-time pieces a running program needs: a
// fixed-rate Interval loop, and a mutex-guarded Machine whose Tick polls the
// keyboard, counts the timers down and executes one instruction. Callers run
// each Interval on its own goroutine; input polling has no goroutine of its
// own and happens inside Tick.
package sched

import (
	"time"

	"github.com/sirupsen/logrus"
)

// State is returned by an Interval's task to say whether the loop should
// keep going or stop.
type State int

const (
	Continue State = iota
	Done
)

// Interval calls a task at a fixed period, tracking how much it oversleeps
// each cycle and folding that back into the next sleep so jitter doesn't
// accumulate. Grounded on the source's spawn_interval: Go's timer wakeups
// are not sub-millisecond accurate, so rather than trust time.Sleep(period)
// on every tick, Interval measures actual elapsed sleep and carries the
// difference forward.
type Interval struct {
	Name       string
	Period     time.Duration
	MaxQuantum time.Duration
	Logger     *logrus.Logger
}

// NewInterval builds an Interval. Logger may be nil to disable trace output.
func NewInterval(name string, period, maxQuantum time.Duration, logger *logrus.Logger) *Interval {
	return &Interval{Name: name, Period: period, MaxQuantum: maxQuantum, Logger: logger}
}

// Run calls task repeatedly until it returns Done or an error, sleeping
// between calls for Period minus the task's own duration minus however much
// the previous sleep overshot.
func (iv *Interval) Run(task func() (State, error)) error {
	var oversleep, control time.Duration

	for {
		taskStart := time.Now()
		state, err := task()
		if err != nil {
			return err
		}
		if state == Done {
			return nil
		}
		taskDuration := time.Since(taskStart)

		sleepDuration := iv.Period - taskDuration - oversleep
		control += taskDuration

		if sleepDuration <= 0 && control < iv.MaxQuantum {
			oversleep = 0
		} else {
			if sleepDuration <= 0 {
				sleepDuration = time.Millisecond
			}

			now := time.Now()
			time.Sleep(sleepDuration)
			oversleep = time.Since(now) - sleepDuration
			if oversleep < 0 {
				oversleep = 0
			}
			control = 0
		}

		if iv.Logger != nil {
			iv.Logger.Tracef(
				"name: %s, task: %s, sleep: %s, oversleep: %s",
				iv.Name, taskDuration, sleepDuration, oversleep,
			)
		}
	}
}
