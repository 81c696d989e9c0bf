package ecs_test

import (
	"testing"

	"github.com/plus3/orrery/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Orbit{Radius: 34}, Label{Value: "Saturn"}, Ringed{Inner: 2.7, Outer: 4.2})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Orbit
		*Label
	}](storage)

	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, id, item.EntityId)
	assert.Equal(t, 34.0, item.Orbit.Radius)
	assert.Equal(t, "Saturn", item.Label.Value)
}

func TestViewMissingRequired(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Orbit{})

	view := ecs.NewView[struct {
		*Orbit
		*Spin
	}](storage)

	assert.Nil(t, view.Get(id))
	assert.Nil(t, view.Get(ecs.NewEntityId(1234, 0)))
}

func TestViewOptional(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	plain := storage.Spawn(Orbit{Radius: 22}, Label{Value: "Mars"})
	ringed := storage.Spawn(Orbit{Radius: 34}, Label{Value: "Saturn"}, Ringed{Inner: 1})

	view := ecs.NewView[struct {
		*Orbit
		Ring *Ringed `ecs:"optional"`
	}](storage)

	item := view.Get(plain)
	require.NotNil(t, item)
	assert.Nil(t, item.Ring)

	item = view.Get(ringed)
	require.NotNil(t, item)
	require.NotNil(t, item.Ring)
	assert.Equal(t, 1.0, item.Ring.Inner)

	rings := 0
	total := 0
	for _, v := range view.Iter() {
		total++
		if v.Ring != nil {
			rings++
		}
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, rings)
}

func TestViewIterMutation(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := range 5 {
		storage.Spawn(Orbit{Radius: float64(i), Speed: 0.1})
	}

	view := ecs.NewView[struct{ *Orbit }](storage)
	for item := range view.Values() {
		item.Orbit.Angle += item.Orbit.Speed
	}

	for item := range view.Values() {
		assert.InDelta(t, 0.1, item.Orbit.Angle, 1e-12)
	}
}

func TestViewIterEarlyBreak(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for range 10 {
		storage.Spawn(Spin{})
	}

	count := 0
	for range ecs.NewView[struct{ *Spin }](storage).Iter() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestViewSkipsDeleted(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	a := storage.Spawn(Spin{Y: 1})
	storage.Spawn(Spin{Y: 2})
	storage.Delete(a)

	var seen []float64
	for item := range ecs.NewView[struct{ *Spin }](storage).Values() {
		seen = append(seen, item.Spin.Y)
	}
	assert.Equal(t, []float64{2}, seen)
}

func TestViewGetRef(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Label{Value: "Earth"})
	ref := storage.CreateEntityRef(id)

	view := ecs.NewView[struct{ *Label }](storage)
	require.NotNil(t, view.GetRef(ref))

	storage.Delete(id)
	assert.Nil(t, view.GetRef(ref))
}

func TestViewShapePanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ Orbit }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Ring *Ringed `ecs:"maybe"`
		}](storage)
	})
}
