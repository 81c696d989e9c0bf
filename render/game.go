package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/orrery/sim"
)

// orbitStep is how far the arrow keys swing the eye per frame, in radians.
const orbitStep = math.Pi / 180

// Overlay is drawn over the scene and may claim keyboard input.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(width, height int)
	CapturesKeyboard() bool
}

// Game drives the world from ebiten's update loop.
type Game struct {
	world   *sim.World
	clock   sim.Clock
	sink    *Sink
	overlay Overlay
}

// NewGame wires world to an ebiten window. sink must be the world's sink (or
// part of it); overlay may be nil.
func NewGame(world *sim.World, clock sim.Clock, sink *Sink, overlay Overlay) *Game {
	return &Game{world: world, clock: clock, sink: sink, overlay: overlay}
}

func (g *Game) Update() error {
	if g.overlay != nil {
		g.overlay.BeginFrame()
		defer g.overlay.EndFrame()
	}

	if g.overlay == nil || !g.overlay.CapturesKeyboard() {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			return ebiten.Termination
		}
		g.steer()
	}

	g.world.Step(g.clock)
	return nil
}

func (g *Game) steer() {
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		g.sink.Azimuth -= orbitStep
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		g.sink.Azimuth += orbitStep
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		g.sink.Elevation = min(maxElevation, g.sink.Elevation+orbitStep)
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		g.sink.Elevation = max(-maxElevation, g.sink.Elevation-orbitStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.sink.Azimuth, g.sink.Elevation = 0, 0
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.sink.Draw(screen)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

// Layout keeps the camera fitted to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.world.Resize(outsideWidth, outsideHeight)
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
