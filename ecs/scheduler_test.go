package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/orrery/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type AdvanceSystem struct {
	Bodies ecs.Query[struct {
		*Orbit
	}]
	ExecuteCount int
}

func (s *AdvanceSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for body := range s.Bodies.Values() {
		body.Orbit.Angle += body.Orbit.Speed * frame.DeltaTime
	}
}

type ClockSystem struct {
	Clock ecs.Singleton[Clock]
}

func (s *ClockSystem) Execute(frame *ecs.UpdateFrame) {
	s.Clock.Get().Elapsed += frame.DeltaTime
}

type SpawnOnceSystem struct {
	spawned bool
}

func (s *SpawnOnceSystem) Execute(frame *ecs.UpdateFrame) {
	if s.spawned {
		return
	}
	s.spawned = true
	frame.Commands.Spawn(Orbit{Speed: 1})
}

type SleepSystem struct {
	d time.Duration
}

func (s *SleepSystem) Execute(frame *ecs.UpdateFrame) {
	time.Sleep(s.d)
}

func TestSchedulerOnce(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Clock](storage)
	storage.Spawn(Orbit{Speed: 2})

	advance := &AdvanceSystem{}
	clock := &ClockSystem{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(advance)
	scheduler.Register(clock)

	scheduler.Once(0.5)
	scheduler.Once(0.25)

	assert.Equal(t, 2, advance.ExecuteCount)
	assert.InDelta(t, 0.75, clock.Clock.Get().Elapsed, 1e-12)

	for body := range advance.Bodies.Values() {
		assert.InDelta(t, 1.5, body.Orbit.Angle, 1e-12)
	}
}

func TestSchedulerDeferredSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	advance := &AdvanceSystem{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&SpawnOnceSystem{})
	scheduler.Register(advance)

	scheduler.Once(1)
	assert.Zero(t, advance.Bodies.Len(), "spawn must not be visible until the frame is flushed")

	scheduler.Once(1)
	assert.Equal(t, 1, advance.Bodies.Len())
}

func TestSchedulerDeferOrdering(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var order []string
	scheduler.Register(systemFunc(func(frame *ecs.UpdateFrame) {
		order = append(order, "execute")
		frame.Commands.Defer(func() { order = append(order, "deferred") })
	}))

	scheduler.Once(0)
	scheduler.Once(0)
	assert.Equal(t, []string{"execute", "deferred", "execute", "deferred"}, order)
}

func TestSchedulerRun(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Clock](storage)

	clock := &ClockSystem{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(clock)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx, 5*time.Millisecond)

	assert.Greater(t, clock.Clock.Get().Elapsed, 0.0)
	assert.Greater(t, scheduler.GetStats().TotalExecutions, int64(0))
}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	stats := scheduler.GetStats()
	assert.Zero(t, stats.SystemCount)

	scheduler.Register(&SleepSystem{d: time.Millisecond})
	scheduler.Register(&SleepSystem{d: 2 * time.Millisecond})

	stats = scheduler.GetStats()
	require.Equal(t, 2, stats.SystemCount)
	assert.Zero(t, stats.Systems[0].MinDuration)

	for range 3 {
		scheduler.Once(0.016)
	}

	stats = scheduler.GetStats()
	assert.Equal(t, int64(6), stats.TotalExecutions)
	for _, st := range stats.Systems {
		assert.Equal(t, "SleepSystem", st.Name)
		assert.Equal(t, int64(3), st.ExecutionCount)
		assert.NotZero(t, st.LastDuration)
		assert.LessOrEqual(t, st.MinDuration, st.AvgDuration)
		assert.LessOrEqual(t, st.AvgDuration, st.MaxDuration)
	}
}

type systemFunc func(frame *ecs.UpdateFrame)

func (f systemFunc) Execute(frame *ecs.UpdateFrame) { f(frame) }
