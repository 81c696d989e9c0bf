package ecs_test

import "github.com/plus3/orrery/ecs"

type Orbit struct {
	Radius float64
	Angle  float64
	Speed  float64
}

type Spin struct {
	Y float64
}

type Label struct {
	Value string
}

type Tint uint32

type Ringed struct {
	Inner, Outer float64
}

type Clock struct {
	Elapsed float64
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Orbit](registry)
	ecs.RegisterComponent[Spin](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Tint](registry)
	ecs.RegisterComponent[Ringed](registry)
	ecs.RegisterComponent[float64](registry)
	ecs.RegisterComponent[string](registry)
	return registry
}
