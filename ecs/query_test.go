package ecs_test

import (
	"testing"

	"github.com/plus3/orrery/ecs"
	"github.com/stretchr/testify/assert"
)

func TestQuery(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Orbit{Radius: 10}, Spin{})
	storage.Spawn(Orbit{Radius: 14}, Spin{})
	storage.Spawn(Orbit{Radius: 18}, Spin{}, Label{Value: "Earth"})
	storage.Spawn(Orbit{Radius: 0})

	query := ecs.NewQuery[struct {
		*Orbit
		*Spin
	}](storage)

	t.Run("panics without execute", func(t *testing.T) {
		fresh := ecs.NewQuery[struct{ *Orbit }](storage)
		assert.Panics(t, func() {
			for range fresh.Iter() {
			}
		})
		assert.Panics(t, func() {
			for range fresh.Values() {
			}
		})
	})

	t.Run("execute builds cache", func(t *testing.T) {
		query.Execute()
		assert.Equal(t, 3, query.Len())

		ids := map[ecs.EntityId]bool{}
		for id := range query.Iter() {
			ids[id] = true
		}
		assert.Len(t, ids, 3)
	})

	t.Run("picks up new archetypes", func(t *testing.T) {
		storage.Spawn(Orbit{Radius: 46}, Spin{}, Tint(0x3366ff))
		query.Execute()
		assert.Equal(t, 4, query.Len())
	})

	t.Run("stable order across executions", func(t *testing.T) {
		query.Execute()
		var first []float64
		for item := range query.Values() {
			first = append(first, item.Orbit.Radius)
		}

		query.Execute()
		var second []float64
		for item := range query.Values() {
			second = append(second, item.Orbit.Radius)
		}
		assert.Equal(t, first, second)
	})
}
