package sim

import (
	"cmp"
	"log"
	"slices"

	"github.com/plus3/orrery/assets"
	"github.com/plus3/orrery/ecs"
)

// ClockSystem publishes the frame's (delta, elapsed) sample. A sample queued
// by World.Tick wins; otherwise the scheduler's delta is accumulated.
type ClockSystem struct {
	Clock ecs.Singleton[FrameClock]
}

func (s *ClockSystem) Execute(frame *ecs.UpdateFrame) {
	c := s.Clock.Get()

	delta, elapsed := frame.DeltaTime, c.Elapsed+frame.DeltaTime
	if c.pending {
		delta, elapsed = c.nextDelta, c.nextElapsed
		c.pending = false
	}
	if !(delta >= 0) {
		delta = 0
	}
	if !(elapsed >= c.Elapsed) {
		elapsed = c.Elapsed
	}

	c.Delta = delta
	c.Elapsed = elapsed
	c.Frame++
}

// InputSystem applies commands queued from other goroutines.
type InputSystem struct {
	world *World
}

func (s *InputSystem) Execute(frame *ecs.UpdateFrame) {
	for {
		select {
		case cmd := <-s.world.inbox:
			cmd.Apply(s.world)
		default:
			return
		}
	}
}

// textureTag routes a finished load back to its entity.
type textureTag struct {
	ref  *ecs.EntityRef
	glow bool
}

// TextureSystem drains finished loads. A failed load leaves the tint in
// place and is not retried.
type TextureSystem struct {
	loader TextureLoader
}

func (s *TextureSystem) Execute(frame *ecs.UpdateFrame) {
	if s.loader == nil {
		return
	}
	results := s.loader.Results()
	for {
		select {
		case r, ok := <-results:
			if !ok {
				s.loader = nil
				return
			}
			applyTexture(frame.Storage, r)
		default:
			return
		}
	}
}

func applyTexture(storage *ecs.Storage, r assets.Result) {
	tag, ok := r.Tag.(textureTag)
	if !ok {
		return
	}
	id, ok := storage.ResolveEntityRef(tag.ref)
	if !ok {
		return
	}

	var state *TextureState
	if tag.glow {
		if glow := ecs.ReadComponent[Glow](storage, id); glow != nil {
			state = &glow.Sprite
		}
	} else if app := ecs.ReadComponent[Appearance](storage, id); app != nil {
		state = &app.Texture
	}
	if state == nil {
		return
	}

	if r.Err != nil {
		log.Printf("texture %s: %v, using fallback", r.Source, r.Err)
		state.Status = TextureFallback
		state.Image = nil
		return
	}
	state.Status = TextureReady
	state.Image = r.Image
}

// OrbitSystem advances every orbiting body along its circle.
type OrbitSystem struct {
	Clock  ecs.Singleton[FrameClock]
	Bodies ecs.Query[struct {
		*Orbit
		*Transform
	}]
}

func (s *OrbitSystem) Execute(frame *ecs.UpdateFrame) {
	delta := s.Clock.Get().Delta
	for body := range s.Bodies.Values() {
		body.Orbit.Angle += body.Orbit.Speed * delta * 60
		body.Transform.Position = OrbitPosition(body.Orbit.Radius, body.Orbit.Angle)
	}
}

// SpinSystem turns every planet about its own axis by a fixed amount per
// frame, independent of frame time.
type SpinSystem struct {
	Bodies ecs.Query[struct {
		*Orbit
		*Transform
	}]
}

func (s *SpinSystem) Execute(frame *ecs.UpdateFrame) {
	for body := range s.Bodies.Values() {
		body.Transform.Rotation.Y += PlanetSpin
	}
}

// StarfieldSystem rotates and twinkles the backdrop.
type StarfieldSystem struct {
	Clock     ecs.Singleton[FrameClock]
	Starfield ecs.Singleton[Starfield]
}

func (s *StarfieldSystem) Execute(frame *ecs.UpdateFrame) {
	stars := s.Starfield.Get()
	stars.RotationY += StarSpinY
	stars.RotationX += StarSpinX
	stars.Opacity = StarOpacityAt(s.Clock.Get().Elapsed)
}

// PresentSystem hands the frame to the sink.
type PresentSystem struct {
	Clock     ecs.Singleton[FrameClock]
	Camera    ecs.Singleton[Camera]
	Starfield ecs.Singleton[Starfield]
	Bodies    ecs.Query[struct {
		*Body
		*Transform
		*Appearance
		Orbit *Orbit `ecs:"optional"`
		Glow  *Glow  `ecs:"optional"`
		Ring  *Ring  `ecs:"optional"`
	}]

	sink   Sink
	frames []BodyFrame
	glows  []GlowFrame
}

func (s *PresentSystem) Execute(frame *ecs.UpdateFrame) {
	clock := s.Clock.Get()
	s.sink.UpdateCamera(s.Camera.Get().Frame())

	stars := s.Starfield.Get()
	s.sink.UpdateStarfield(StarfieldFrame{
		Stars:     stars.Stars,
		RotationX: stars.RotationX,
		RotationY: stars.RotationY,
		Opacity:   stars.Opacity,
		Size:      stars.Size,
		Tint:      stars.Tint,
		Frame:     clock.Frame,
		Elapsed:   clock.Elapsed,
	})

	s.frames = s.frames[:0]
	if cap(s.glows) < s.Bodies.Len() {
		s.glows = make([]GlowFrame, s.Bodies.Len())
	}
	s.glows = s.glows[:s.Bodies.Len()]

	i := 0
	for body := range s.Bodies.Values() {
		bf := BodyFrame{
			Name:              body.Body.Name,
			Order:             body.Body.Order,
			Kind:              body.Body.Kind,
			Radius:            body.Body.Radius,
			Position:          body.Transform.Position,
			Rotation:          body.Transform.Rotation,
			Tint:              body.Appearance.Tint,
			Emissive:          body.Appearance.Emissive,
			EmissiveIntensity: body.Appearance.EmissiveIntensity,
			TextureStatus:     body.Appearance.Texture.Status,
			Texture:           body.Appearance.Texture.Image,
			Ring:              body.Ring,
		}
		if body.Orbit != nil {
			bf.Orbit = body.Orbit.Radius
			bf.Angle = body.Orbit.Angle
			bf.Speed = body.Orbit.Speed
		}
		if body.Glow != nil {
			s.glows[i] = GlowFrame{Scale: body.Glow.Scale, Tint: body.Glow.Tint, Sprite: body.Glow.Sprite.Image}
			bf.Glow = &s.glows[i]
		}
		s.frames = append(s.frames, bf)
		i++
	}

	// planets with and without rings live in different archetypes
	slices.SortStableFunc(s.frames, func(a, b BodyFrame) int {
		return cmp.Compare(a.Order, b.Order)
	})

	s.sink.UpdateBodies(s.frames)
}
