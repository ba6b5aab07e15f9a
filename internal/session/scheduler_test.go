package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDeliversInOrder(t *testing.T) {
	fired := make(chan TimerFired, 4)
	s := NewScheduler(func(ev TimerFired) { fired <- ev }, zerolog.Nop())
	defer s.Stop()

	s.Schedule(Schedule{Generation: 1, Step: StepIdle, Delay: 30 * time.Millisecond})
	s.Schedule(Schedule{Generation: 1, Step: StepComplete, Delay: 5 * time.Millisecond})

	first := <-fired
	second := <-fired
	assert.Equal(t, TimerFired{Generation: 1, Step: StepComplete}, first)
	assert.Equal(t, TimerFired{Generation: 1, Step: StepIdle}, second)
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerCancelBefore(t *testing.T) {
	fired := make(chan TimerFired, 4)
	s := NewScheduler(func(ev TimerFired) { fired <- ev }, zerolog.Nop())
	defer s.Stop()

	s.Schedule(Schedule{Generation: 1, Step: StepComplete, Delay: time.Hour})
	s.Schedule(Schedule{Generation: 1, Step: StepIdle, Delay: time.Hour})
	s.Schedule(Schedule{Generation: 2, Step: StepIdle, Delay: 10 * time.Millisecond})
	require.Equal(t, 3, s.Pending())

	assert.Equal(t, 2, s.CancelBefore(2))
	assert.Equal(t, 1, s.Pending())

	select {
	case ev := <-fired:
		assert.Equal(t, uint64(2), ev.Generation)
	case <-time.After(time.Second):
		t.Fatal("generation 2 timer never fired")
	}
}

func TestSchedulerStop(t *testing.T) {
	fired := make(chan TimerFired, 1)
	s := NewScheduler(func(ev TimerFired) { fired <- ev }, zerolog.Nop())
	s.Schedule(Schedule{Generation: 1, Step: StepIdle, Delay: 10 * time.Millisecond})
	s.Stop()
	s.Schedule(Schedule{Generation: 2, Step: StepIdle, Delay: time.Millisecond})

	select {
	case ev := <-fired:
		t.Fatalf("unexpected delivery after stop: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Zero(t, s.Pending())
}
