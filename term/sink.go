// Package term draws a top-down view of the orbital plane in a terminal.
package term

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/orrery/sim"
)

// Nominal cell size in pixels, used to apply the viewport rules to a
// terminal measured in cells.
const (
	cellWidth  = 8
	cellHeight = 16
)

const (
	sunGlyph    = '@'
	planetGlyph = 'o'
	starGlyph   = '.'
	guideGlyph  = '·'
	ringGlyph   = '-'

	// cells are about twice as tall as they are wide
	cellAspect = 0.5
	margin     = 4.0
)

// Sink keeps the latest frame and paints it on Draw.
type Sink struct {
	screen tcell.Screen
	bodies []sim.BodyFrame
	stars  sim.StarfieldFrame
	camera sim.CameraFrame

	selected string
}

func NewSink(screen tcell.Screen) *Sink {
	return &Sink{screen: screen}
}

func (s *Sink) UpdateBodies(bodies []sim.BodyFrame) {
	s.bodies = append(s.bodies[:0], bodies...)
}

func (s *Sink) UpdateStarfield(stars sim.StarfieldFrame) {
	s.stars = stars
}

func (s *Sink) UpdateCamera(camera sim.CameraFrame) {
	s.camera = camera
}

// Select highlights a body by name.
func (s *Sink) Select(name string) {
	s.selected = name
}

// layout maps the orbital plane onto the screen.
type layout struct {
	cx, cy float64
	scale  float64
	width  int
	height int
}

func (s *Sink) layout() layout {
	w, h := s.screen.Size()
	l := layout{cx: float64(w) / 2, cy: float64(h-1) / 2, width: w, height: h - 1}

	extent := margin
	for _, b := range s.bodies {
		extent = max(extent, b.Orbit+b.Radius+margin)
	}
	l.scale = min(float64(w)/2, float64(h-1)/cellAspect/2) / extent
	if s.camera.Distance > 0 {
		l.scale *= sim.DefaultDistance / s.camera.Distance
	}
	return l
}

// cell returns the screen cell of a world position, viewed from +Y.
func (l layout) cell(p sim.Vec3) (int, int, bool) {
	x := int(math.Round(l.cx + p.X*l.scale))
	y := int(math.Round(l.cy + p.Z*l.scale*cellAspect))
	return x, y, x >= 0 && y >= 0 && x < l.width && y < l.height
}

func style(c sim.Color) tcell.Style {
	return tcell.StyleDefault.Background(rgb(sim.Background)).Foreground(rgb(c))
}

func rgb(c sim.Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Draw paints the frame and shows it.
func (s *Sink) Draw() {
	s.screen.Fill(' ', tcell.StyleDefault.Background(rgb(sim.Background)))
	l := s.layout()

	s.drawStars(l)
	for _, b := range s.bodies {
		if b.Kind == sim.KindPlanet {
			s.drawGuide(l, b.Orbit)
		}
	}
	for _, b := range s.bodies {
		s.drawDecorations(l, b)
	}
	for _, b := range s.bodies {
		s.drawBody(l, b)
	}
	s.drawStatus(l)

	s.screen.Show()
}

func (s *Sink) drawStars(l layout) {
	// the backdrop spans the screen regardless of zoom
	starScale := float64(l.width) / sim.StarSpread
	tint := sim.Background.Blend(s.stars.Tint, s.stars.Opacity*0.6)
	st := style(tint)
	rot := sim.Vec3{X: s.stars.RotationX, Y: s.stars.RotationY}

	for _, star := range s.stars.Stars {
		p := star.RotateEuler(rot)
		x := int(l.cx + p.X*starScale)
		y := int(l.cy + p.Z*starScale*cellAspect)
		if x >= 0 && y >= 0 && x < l.width && y < l.height {
			s.screen.SetContent(x, y, starGlyph, nil, st)
		}
	}
}

func (s *Sink) drawGuide(l layout, radius float64) {
	st := style(sim.Background.Blend(sim.OrbitGuideTint, 0.5))
	steps := max(16, int(2*math.Pi*radius*l.scale))
	for i := range steps {
		a := float64(i) * 2 * math.Pi / float64(steps)
		if x, y, ok := l.cell(sim.OrbitPosition(radius, a)); ok {
			s.screen.SetContent(x, y, guideGlyph, nil, st)
		}
	}
}

// drawDecorations draws rings and the selection label. Glyphs are drawn
// afterwards so they stay visible.
func (s *Sink) drawDecorations(l layout, b sim.BodyFrame) {
	x, y, ok := l.cell(b.Position)
	if !ok {
		return
	}
	if b.Ring != nil {
		ring := style(b.Ring.Tint)
		if x > 0 {
			s.screen.SetContent(x-1, y, ringGlyph, nil, ring)
		}
		if x+1 < l.width {
			s.screen.SetContent(x+1, y, ringGlyph, nil, ring)
		}
	}
	if b.Name == s.selected {
		s.text(x+2, y, b.Name, style(0xffffff))
	}
}

func (s *Sink) drawBody(l layout, b sim.BodyFrame) {
	x, y, ok := l.cell(b.Position)
	if !ok {
		return
	}

	glyph := planetGlyph
	st := style(b.Tint)
	if b.Kind == sim.KindStar {
		glyph = sunGlyph
		st = style(b.Emissive).Bold(true)
	}
	if b.Name == s.selected {
		st = st.Reverse(true)
	}
	s.screen.SetContent(x, y, glyph, nil, st)
}

func (s *Sink) drawStatus(l layout) {
	line := fmt.Sprintf(" frame %d  %.1fs  %dx%d  distance %.0f", s.stars.Frame, s.stars.Elapsed, s.camera.Width, s.camera.Height, s.camera.Distance)
	for _, b := range s.bodies {
		if b.Name == s.selected {
			line = fmt.Sprintf(" %s speed %s  ↑↓ select  +/- speed  q quit |%s", b.Name, sim.FormatSpeed(b.Speed), line)
		}
	}
	s.text(0, l.height, line, tcell.StyleDefault.Reverse(true))
}

func (s *Sink) text(x, y int, str string, st tcell.Style) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, st)
		x++
	}
}
