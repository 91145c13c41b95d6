package game

import (
	"time"
)

// Clock schedules callbacks. Callbacks run on a goroutine owned by the clock,
// never on the engine's event loop.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer has
	// already fired or been stopped.
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is backed by time.AfterFunc
var RealClock Clock = realClock{}

// task is a cancellable scheduled callback, either one-shot or repeating.
// Its methods are only called from the engine's event loop.
type task struct {
	timer     Timer
	cancelled bool
}

func (t *task) cancel() {
	if t == nil || t.cancelled {
		return
	}
	t.cancelled = true
	t.timer.Stop()
}

func (t *task) active() bool {
	return t != nil && !t.cancelled
}
