package game

import (
	"sync"
	"time"
)

// manualClock fires timers only when advanced, on the advancing goroutine
type manualClock struct {
	lock   sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (clock *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	clock.lock.Lock()
	defer clock.lock.Unlock()

	timer := &manualTimer{clock: clock, at: clock.now + d, f: f}
	clock.timers = append(clock.timers, timer)
	return timer
}

func (timer *manualTimer) Stop() bool {
	timer.clock.lock.Lock()
	defer timer.clock.lock.Unlock()

	wasPending := !timer.stopped && !timer.fired
	timer.stopped = true
	return wasPending
}

// Advance moves time forward by d, running every timer that falls due in
// order. Callbacks may schedule further timers, which also run if due.
func (clock *manualClock) Advance(d time.Duration) {
	clock.lock.Lock()
	target := clock.now + d
	clock.lock.Unlock()

	for {
		clock.lock.Lock()
		var next *manualTimer
		for _, timer := range clock.timers {
			if timer.stopped || timer.fired || timer.at > target {
				continue
			}
			if next == nil || timer.at < next.at {
				next = timer
			}
		}
		if next == nil {
			clock.now = target
			clock.lock.Unlock()
			return
		}
		clock.now = next.at
		next.fired = true
		clock.lock.Unlock()

		next.f()
	}
}

// pending counts timers that have neither fired nor been stopped
func (clock *manualClock) pending() int {
	clock.lock.Lock()
	defer clock.lock.Unlock()

	count := 0
	for _, timer := range clock.timers {
		if !timer.stopped && !timer.fired {
			count++
		}
	}
	return count
}
