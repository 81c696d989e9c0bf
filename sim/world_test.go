package sim

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorldSpawnsBodies(t *testing.T) {
	w, sink := newTestWorld(t, Options{Seed: 1, Stars: StarCount})

	assert.Equal(t, []string{"Mercury", "Venus", "Earth", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune"}, w.Planets())
	assert.Equal(t, append([]string{"Sun"}, w.Planets()...), w.Bodies())

	for _, name := range w.Planets() {
		b := body(t, w, name)
		assert.GreaterOrEqual(t, b.Angle, 0.0, name)
		assert.Less(t, b.Angle, 1.0, name)
		assert.Equal(t, KindPlanet, b.Kind)
		require.NotNil(t, b.Glow, name)
		assert.Equal(t, b.Radius*GlowScale, b.Glow.Scale)
		assert.Equal(t, name == "Saturn", b.Ring != nil, name)
	}

	sun := body(t, w, "Sun")
	assert.Equal(t, KindStar, sun.Kind)
	assert.Nil(t, sun.Glow)
	assert.Equal(t, SunEmissive, sun.Emissive)
	assert.Equal(t, SunIntensity, sun.EmissiveIntensity)

	saturn := body(t, w, "Saturn")
	assert.InDelta(t, 2.7, saturn.Ring.Inner, 1e-12)
	assert.InDelta(t, 4.2, saturn.Ring.Outer, 1e-12)
	assert.Equal(t, -math.Pi/2.5, saturn.Ring.Tilt)

	stars := w.Starfield()
	require.Len(t, stars.Stars, StarCount)
	for _, s := range stars.Stars {
		for _, c := range []float64{s.X, s.Y, s.Z} {
			assert.GreaterOrEqual(t, c, -150.0)
			assert.Less(t, c, 150.0)
		}
	}
	assert.Equal(t, StarSize, stars.Size)

	assert.Empty(t, sink.bodies, "nothing is emitted before the first tick")
}

func TestNewWorldRejectsInvalidTable(t *testing.T) {
	ds := DefaultDescriptors()
	ds.Planets[0].Radius = -2
	_, err := NewWorld(Options{Descriptors: ds})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestSeedIsDeterministic(t *testing.T) {
	a, _ := newTestWorld(t, Options{Seed: 42, Stars: 10})
	b, _ := newTestWorld(t, Options{Seed: 42, Stars: 10})
	c, _ := newTestWorld(t, Options{Seed: 43, Stars: 10})

	assert.Equal(t, body(t, a, "Earth").Angle, body(t, b, "Earth").Angle)
	assert.Equal(t, a.Starfield().Stars, b.Starfield().Stars)
	assert.NotEqual(t, body(t, a, "Earth").Angle, body(t, c, "Earth").Angle)
}

func TestTickAdvancesOrbits(t *testing.T) {
	w, _ := newTestWorld(t, Options{Seed: 7})

	before := map[string]BodyFrame{}
	for _, name := range w.Planets() {
		before[name] = body(t, w, name)
	}

	const delta = 0.5
	w.Tick(delta, delta)

	for _, name := range w.Planets() {
		prev, now := before[name], body(t, w, name)
		assert.Equal(t, prev.Angle+prev.Speed*delta*60, now.Angle, name)
		assert.Equal(t, 0.0, now.Position.Y, name)
		assert.InDelta(t, now.Orbit, now.Position.Len(), 1e-9, name)
		assert.InDelta(t, now.Orbit*math.Cos(now.Angle), now.Position.X, 1e-12, name)
		assert.InDelta(t, now.Orbit*math.Sin(now.Angle), now.Position.Z, 1e-12, name)
		assert.InDelta(t, prev.Rotation.Y+PlanetSpin, now.Rotation.Y, 1e-15, name)
	}

	assert.Equal(t, Vec3{}, body(t, w, "Sun").Position)
	assert.Equal(t, Vec3{}, body(t, w, "Sun").Rotation)
}

func TestTickAtMaxSpeed(t *testing.T) {
	w, _ := newTestWorld(t, Options{})
	require.True(t, w.SetSpeed("Earth", 0.02))

	before := body(t, w, "Earth").Angle
	w.Tick(1, 1)
	assert.InDelta(t, 1.2, body(t, w, "Earth").Angle-before, 1e-12)
}

func TestFasterPlanetsAdvanceFurther(t *testing.T) {
	w, _ := newTestWorld(t, Options{})

	mercury, mars := body(t, w, "Mercury").Angle, body(t, w, "Mars").Angle
	w.Tick(1.0/60, 1.0/60)

	dMercury := body(t, w, "Mercury").Angle - mercury
	dMars := body(t, w, "Mars").Angle - mars
	assert.InDelta(t, 0.006, dMercury, 1e-12)
	assert.InDelta(t, 0.003, dMars, 1e-12)
	assert.Greater(t, dMercury, dMars)
}

func TestZeroDeltaHoldsOrbitButSpins(t *testing.T) {
	w, _ := newTestWorld(t, Options{})
	before := body(t, w, "Venus")

	w.Tick(0, 0)

	after := body(t, w, "Venus")
	assert.Equal(t, before.Angle, after.Angle)
	assert.InDelta(t, PlanetSpin, after.Rotation.Y, 1e-15)
}

func TestTickClampsBadSamples(t *testing.T) {
	w, _ := newTestWorld(t, Options{})
	w.Tick(0.1, 2)
	angle := body(t, w, "Mars").Angle

	w.Tick(-1, 3)
	assert.Equal(t, angle, body(t, w, "Mars").Angle)
	assert.Equal(t, 0.0, w.Clock().Delta)

	w.Tick(math.NaN(), 1)
	assert.Equal(t, angle, body(t, w, "Mars").Angle)
	assert.Equal(t, 3.0, w.Clock().Elapsed, "elapsed never goes backwards")
	assert.Equal(t, uint64(3), w.Clock().Frame)
}

func TestStarfieldAnimation(t *testing.T) {
	w, sink := newTestWorld(t, Options{Stars: 5})

	const frames = 240
	for i := 1; i <= frames; i++ {
		elapsed := float64(i) * 0.05
		w.Tick(0.05, elapsed)

		opacity := sink.starfield[len(sink.starfield)-1].Opacity
		assert.GreaterOrEqual(t, opacity, 0.6-1e-12)
		assert.LessOrEqual(t, opacity, 1.0+1e-12)
		assert.InDelta(t, 0.8+math.Sin(2*elapsed)*0.2, opacity, 1e-12)
	}

	stars := w.Starfield()
	assert.InDelta(t, frames*StarSpinY, stars.RotationY, 1e-9)
	assert.InDelta(t, frames*StarSpinX, stars.RotationX, 1e-9)
}

func TestTickEmitsFrameInOrder(t *testing.T) {
	w, sink := newTestWorld(t, Options{})
	w.Tick(0.016, 0.016)

	require.Len(t, sink.bodies, 1)
	require.Len(t, sink.starfield, 1)
	require.NotEmpty(t, sink.cameras)

	frame := sink.lastBodies()
	require.Len(t, frame, 9)
	names := make([]string, len(frame))
	for i, b := range frame {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"Sun", "Mercury", "Venus", "Earth", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune"}, names)
	assert.NotNil(t, frame[6].Ring)
	assert.Equal(t, uint64(1), sink.starfield[0].Frame)
}

func TestResize(t *testing.T) {
	w, sink := newTestWorld(t, Options{})

	w.Resize(599, 800)
	cam := w.Camera()
	assert.Equal(t, 70.0, cam.Distance)
	assert.InDelta(t, 599.0/800.0, cam.Aspect, 1e-15)

	w.Resize(600, 800)
	assert.Equal(t, 50.0, w.Camera().Distance)
	assert.InDelta(t, 0.75, w.Camera().Aspect, 1e-15)

	n := len(sink.cameras)
	w.Resize(600, 800)
	assert.Len(t, sink.cameras, n, "repeating a size is a no-op")
	assert.Equal(t, sink.cameras[n-1], w.Camera())

	w.Resize(400, 0)
	w.Resize(-1, 300)
	assert.Equal(t, 600, w.Camera().Width)
	assert.InDelta(t, 0.75, w.Camera().Aspect, 1e-15)
}

func TestSetSpeed(t *testing.T) {
	w, _ := newTestWorld(t, Options{})

	assert.True(t, w.SetSpeedText("Mars", "0.01234"))
	v, ok := w.Speed("Mars")
	require.True(t, ok)
	assert.Equal(t, 0.0123, v)

	for _, raw := range []string{"fast", "", "0.5", "-0.01", "NaN"} {
		assert.False(t, w.SetSpeedText("Mars", raw), raw)
		v, _ := w.Speed("Mars")
		assert.Equal(t, 0.0123, v, raw)
	}

	assert.False(t, w.SetSpeed("Pluto", 0.01))
	assert.False(t, w.SetSpeed("Sun", 0.01))
	_, ok = w.Speed("Sun")
	assert.False(t, ok)

	assert.True(t, w.SetSpeed("Mars", MinSpeed))
	assert.True(t, w.SetSpeed("Mars", MaxSpeed))
	v, _ = w.Speed("Mars")
	assert.Equal(t, MaxSpeed, v)
}

func TestEnqueueAppliesOnNextTick(t *testing.T) {
	w, _ := newTestWorld(t, Options{})

	require.True(t, w.Enqueue(SpeedCommand{Body: "Jupiter", Value: "0.015"}))
	require.True(t, w.Enqueue(ResizeCommand{Width: 320, Height: 480}))

	v, _ := w.Speed("Jupiter")
	assert.Equal(t, 0.0023, v, "queued commands wait for the frame")

	w.Tick(0, 0)
	v, _ = w.Speed("Jupiter")
	assert.Equal(t, 0.015, v)
	assert.Equal(t, 70.0, w.Camera().Distance)
}

func TestEnqueueFull(t *testing.T) {
	w, _ := newTestWorld(t, Options{})
	for range inboxSize {
		require.True(t, w.Enqueue(ResizeCommand{Width: 10, Height: 10}))
	}
	assert.False(t, w.Enqueue(ResizeCommand{Width: 10, Height: 10}))
}

func TestTextureResults(t *testing.T) {
	loader := newFakeLoader()
	w, _ := newTestWorld(t, Options{Loader: loader, GlowSource: "glow.png"})

	assert.Len(t, loader.requests, 9+8)
	assert.Equal(t, "sun.jpg", loader.requests[0].source)
	assert.Equal(t, TexturePending, body(t, w, "Earth").TextureStatus)

	earth := image.NewRGBA(image.Rect(0, 0, 4, 2))
	require.Equal(t, 1, loader.complete("earth.jpg", earth, nil))
	require.Equal(t, 1, loader.complete("mars.jpg", nil, errors.New("404")))
	require.Equal(t, 8, loader.complete("glow.png", image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))

	w.Tick(0, 0)

	e := body(t, w, "Earth")
	assert.Equal(t, TextureReady, e.TextureStatus)
	assert.Same(t, earth, e.Texture)
	assert.NotNil(t, e.Glow.Sprite)

	m := body(t, w, "Mars")
	assert.Equal(t, TextureFallback, m.TextureStatus)
	assert.Nil(t, m.Texture)
	assert.Equal(t, Color(0xff3300), m.Tint)

	assert.Equal(t, TexturePending, body(t, w, "Venus").TextureStatus)
}

func TestSchedulerDrivenFrames(t *testing.T) {
	w, sink := newTestWorld(t, Options{})
	before := body(t, w, "Neptune").Angle

	w.Scheduler().Once(0.25)
	w.Scheduler().Once(0.25)

	assert.Equal(t, 0.5, w.Clock().Elapsed)
	assert.InDelta(t, before+2*0.0015*0.25*60, body(t, w, "Neptune").Angle, 1e-12)
	assert.Len(t, sink.bodies, 2)
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	w, _ := newTestWorld(t, Options{Sink: MultiSink{a, b}})
	w.Tick(0.1, 0.1)

	assert.Equal(t, a.bodies, b.bodies)
	assert.Len(t, a.bodies, 1)
	assert.Len(t, b.starfield, 1)
}
