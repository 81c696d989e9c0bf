// Package render draws the scene into an ebiten window.
package render

import (
	"cmp"
	"image"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/orrery/sim"
)

// Sink keeps the latest frame for Draw. It must be used from the ebiten
// game goroutine.
type Sink struct {
	bodies []sim.BodyFrame
	stars  sim.StarfieldFrame
	camera sim.CameraFrame

	// Azimuth and Elevation orbit the eye around the origin, in radians.
	Azimuth   float64
	Elevation float64

	// decoded images are uploaded once; keys are the pointers the loader
	// handed out
	textures map[image.Image]*ebiten.Image
	pixel    *ebiten.Image
	sprite   *ebiten.Image
	order    []int
}

func NewSink() *Sink {
	return &Sink{textures: make(map[image.Image]*ebiten.Image)}
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

func (s *Sink) Camera() sim.CameraFrame {
	return s.camera
}

func (s *Sink) Projector() Projector {
	return NewProjector(s.camera, s.Azimuth, s.Elevation)
}

// depthOrder returns body indices sorted far to near.
func depthOrder(p Projector, bodies []sim.BodyFrame, order []int) []int {
	order = order[:0]
	for i := range bodies {
		order = append(order, i)
	}
	eye := p.Eye()
	slices.SortStableFunc(order, func(a, b int) int {
		da := bodies[a].Position.Sub(eye).Len()
		db := bodies[b].Position.Sub(eye).Len()
		return cmp.Compare(db, da)
	})
	return order
}

func (s *Sink) texture(img image.Image) *ebiten.Image {
	if img == nil {
		return nil
	}
	if t, ok := s.textures[img]; ok {
		return t
	}
	t := ebiten.NewImageFromImage(img)
	s.textures[img] = t
	return t
}
