// Package ui draws the Dear ImGui overlay: per-planet speed controls and
// frame statistics. Panels are entities carrying an ImguiItem; ImguiSystem
// queues their render functions to run after the frame's systems.
package ui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/sim"
)

// ImguiItem is a component holding a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks whether ImGui is consuming input, as a singleton.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem refreshes ImguiInputState and defers every ImguiItem.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	state := i.InputState.Get()
	io := imgui.CurrentIO()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for item := range i.Items.Values() {
		frame.Commands.Defer(item.Render)
	}
}

func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}

// Install attaches the overlay to world: the backend and input singletons,
// ImguiSystem, and one entity per panel. world must have been created with
// RegisterComponents in Options.Components.
func Install(world *sim.World, backend ImguiBackend) *Overlay {
	storage := world.Storage()
	ecs.NewSingleton(storage, backend)
	ecs.NewSingleton(storage, ImguiInputState{})

	speeds := NewSpeedPanel(world)
	stats := NewStatsPanel(world, statsHistory)
	storage.Spawn(ImguiItem{Render: speeds.Render})
	storage.Spawn(ImguiItem{Render: stats.Render})
	storage.Spawn(ImguiItem{Render: NewInspectorPanel(world).Render})

	world.AddSystem(&ImguiSystem{})

	return &Overlay{
		backend: ecs.NewSingleton[ImguiBackend](storage),
		input:   ecs.NewSingleton[ImguiInputState](storage),
	}
}
