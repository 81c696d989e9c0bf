package ecs_test

import (
	"testing"

	"github.com/plus3/orrery/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	b.ReportAllocs()
	for b.Loop() {
		storage.Spawn(Orbit{}, Spin{})
	}
}

func BenchmarkQueryExecuteIter(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	for range 1000 {
		storage.Spawn(Orbit{Speed: 0.001}, Spin{})
	}
	query := ecs.NewQuery[struct {
		*Orbit
		*Spin
	}](storage)

	b.ResetTimer()
	for b.Loop() {
		query.Execute()
		for item := range query.Values() {
			item.Orbit.Angle += item.Orbit.Speed
		}
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	for range 1000 {
		storage.Spawn(Orbit{Speed: 0.001})
	}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&AdvanceSystem{})

	b.ResetTimer()
	for b.Loop() {
		scheduler.Once(1.0 / 60.0)
	}
}
