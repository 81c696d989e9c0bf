package sim

import (
	"image"
	"math"

	"github.com/plus3/orrery/ecs"
)

// Body identifies a celestial body. Order is its position in the descriptor
// table and fixes the order bodies are handed to sinks.
type Body struct {
	Name   string
	Kind   Kind
	Radius float64
	Order  int
}

// Orbit is a circular path in the XZ plane. Angle is never normalized.
type Orbit struct {
	Radius float64
	Angle  float64
	Speed  float64
}

type Transform struct {
	Position Vec3
	Rotation Vec3
}

// TextureStatus tracks an asynchronous image load.
type TextureStatus int

const (
	TexturePending TextureStatus = iota
	TextureReady
	TextureFallback
)

func (s TextureStatus) String() string {
	switch s {
	case TexturePending:
		return "pending"
	case TextureReady:
		return "ready"
	case TextureFallback:
		return "fallback"
	}
	return "unknown"
}

func (s TextureStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TextureState holds a decoded image once its load has finished. Sinks draw
// the tint while Image is nil.
type TextureState struct {
	Source string
	Status TextureStatus
	Image  image.Image
}

type Appearance struct {
	Tint              Color
	Emissive          Color
	EmissiveIntensity float64
	Texture           TextureState
}

// Glow is an additive camera-facing sprite centred on the body.
type Glow struct {
	Scale  float64
	Tint   Color
	Sprite TextureState
}

// Ring is a flat annulus around the body, tilted about its local X axis.
type Ring struct {
	Inner   float64 `json:"inner"`
	Outer   float64 `json:"outer"`
	Tilt    float64 `json:"tilt"`
	Tint    Color   `json:"tint"`
	Opacity float64 `json:"opacity"`
}

const (
	GlowScale = 5.0

	RingInnerPad       = 0.5
	RingOuterPad       = 2.0
	RingTint     Color = 0xffe0aa
	RingOpacity        = 0.5

	OrbitGuideWidth         = 0.05
	OrbitGuideTint    Color = 0x8888aa
	OrbitGuideOpacity       = 0.2

	Background     Color = 0x020c1b
	AmbientLight   Color = 0xffffff
	AmbientLevel         = 0.5
	DirectionLight Color = 0x88ccff
	DirectionLevel       = 1.0

	PlanetSpin = 0.01
)

// LightDirection points from the origin toward the directional light.
var LightDirection = Vec3{X: 10, Y: 20, Z: 15}.Normalize()

// RingTilt is the ring's rotation about the planet's X axis.
var RingTilt = -math.Pi / 2.5

func newRing(radius float64) Ring {
	return Ring{
		Inner:   radius + RingInnerPad,
		Outer:   radius + RingOuterPad,
		Tilt:    RingTilt,
		Tint:    RingTint,
		Opacity: RingOpacity,
	}
}

// Starfield is the rotating point-cloud backdrop.
type Starfield struct {
	Stars     []Vec3
	RotationX float64
	RotationY float64
	Opacity   float64
	Size      float64
	Tint      Color
}

const (
	StarCount   = 1000
	StarSpread  = 300.0
	StarSize    = 1.5
	StarTint    = Color(0xffffff)
	StarSpinY   = 0.0008
	StarSpinX   = 0.0004
	StarOpacity = 0.8
	StarTwinkle = 0.2
)

// StarOpacityAt is the starfield's opacity at elapsed seconds t.
func StarOpacityAt(t float64) float64 {
	return StarOpacity + math.Sin(t*2)*StarTwinkle
}

type Camera struct {
	Width    int
	Height   int
	Aspect   float64
	Distance float64
	FOV      float64
	Near     float64
	Far      float64
}

// FrameClock is the sample shared by every system in one frame.
type FrameClock struct {
	Delta   float64
	Elapsed float64
	Frame   uint64

	pending     bool
	nextDelta   float64
	nextElapsed float64
}

// RegisterComponents adds every sim component to r.
func RegisterComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Body](r)
	ecs.RegisterComponent[Orbit](r)
	ecs.RegisterComponent[Transform](r)
	ecs.RegisterComponent[Appearance](r)
	ecs.RegisterComponent[Glow](r)
	ecs.RegisterComponent[Ring](r)
}
