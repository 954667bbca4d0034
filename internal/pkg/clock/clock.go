package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock is the time source of the game engine.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Fake is a manually advanced clock. Callbacks run synchronously inside Advance.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *Fake
	fireAt  time.Time
	f       func()
	stopped bool
	fired   bool
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (that *Fake) Now() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.now
}

func (that *Fake) AfterFunc(d time.Duration, f func()) Timer {
	that.mu.Lock()
	defer that.mu.Unlock()

	timer := &fakeTimer{clock: that, fireAt: that.now.Add(d), f: f}
	that.timers = append(that.timers, timer)

	return timer
}

// Advance moves the clock forward and runs every due timer in deadline order.
func (that *Fake) Advance(d time.Duration) {
	that.mu.Lock()
	that.now = that.now.Add(d)

	var due []*fakeTimer
	pending := that.timers[:0]
	for _, timer := range that.timers {
		switch {
		case timer.stopped:
		case !timer.fireAt.After(that.now):
			timer.fired = true
			due = append(due, timer)
		default:
			pending = append(pending, timer)
		}
	}
	that.timers = pending
	that.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].fireAt.Before(due[j].fireAt)
	})

	for _, timer := range due {
		timer.f()
	}
}

// Pending returns the number of timers that are neither stopped nor fired.
func (that *Fake) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	count := 0
	for _, timer := range that.timers {
		if !timer.stopped {
			count++
		}
	}

	return count
}

func (that *fakeTimer) Stop() bool {
	that.clock.mu.Lock()
	defer that.clock.mu.Unlock()

	if that.stopped || that.fired {
		return false
	}

	that.stopped = true

	return true
}
