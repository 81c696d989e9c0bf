package ui

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/orrery/ecs"
)

// ImguiBackend wraps the Ebiten Dear ImGui backend. It is stored as a
// singleton so systems can reach it.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the ImGui context and the game window.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}

// Overlay brackets each frame with ImGui's begin/end calls and draws the
// result over the scene.
type Overlay struct {
	backend *ecs.Singleton[ImguiBackend]
	input   *ecs.Singleton[ImguiInputState]
}

func (o *Overlay) BeginFrame() {
	o.backend.Get().BeginFrame()
}

func (o *Overlay) EndFrame() {
	o.backend.Get().EndFrame()
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Get().Draw(screen)
}

func (o *Overlay) Layout(width, height int) {
	o.backend.Get().Layout(width, height)
}

// CapturesKeyboard reports whether a text field has focus.
func (o *Overlay) CapturesKeyboard() bool {
	return o.input.Get().WantCaptureKeyboard
}

func (o *Overlay) CapturesMouse() bool {
	return o.input.Get().WantCaptureMouse
}
