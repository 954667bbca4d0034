package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Fires due timers once", func(t *testing.T) {
		// Given: a timer one minute ahead
		clock := NewFake(start)
		calls := 0
		clock.AfterFunc(time.Minute, func() { calls++ })

		// When: time moves past the deadline twice
		clock.Advance(30 * time.Second)
		assert.Equal(t, 0, calls)
		clock.Advance(30 * time.Second)
		clock.Advance(time.Hour)

		// Then: the callback ran exactly once
		assert.Equal(t, 1, calls)
		assert.Equal(t, start.Add(time.Minute+time.Hour), clock.Now())
		assert.Equal(t, 0, clock.Pending())
	})

	t.Run("Does not fire stopped timers", func(t *testing.T) {
		clock := NewFake(start)
		calls := 0
		timer := clock.AfterFunc(time.Second, func() { calls++ })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		clock.Advance(time.Minute)

		assert.Equal(t, 0, calls)
	})

	t.Run("Runs timers in deadline order", func(t *testing.T) {
		clock := NewFake(start)
		var order []int
		clock.AfterFunc(2*time.Second, func() { order = append(order, 2) })
		clock.AfterFunc(time.Second, func() { order = append(order, 1) })

		clock.Advance(time.Minute)

		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("Stop after firing reports false", func(t *testing.T) {
		clock := NewFake(start)
		timer := clock.AfterFunc(time.Second, func() {})

		clock.Advance(time.Second)

		assert.False(t, timer.Stop())
	})
}
