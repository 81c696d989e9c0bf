package sim

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/plus3/orrery/assets"
	"github.com/plus3/orrery/ecs"
)

// TextureLoader loads images off the simulation thread and reports back on
// Results. *assets.Loader implements it.
type TextureLoader interface {
	Request(source string, tag any)
	Results() <-chan assets.Result
}

// Command is a change requested from outside the simulation thread. It is
// applied at the start of the next frame.
type Command interface {
	Apply(w *World)
}

// SpeedCommand sets a planet's speed from user text.
type SpeedCommand struct {
	Body  string
	Value string
}

func (c SpeedCommand) Apply(w *World) {
	w.SetSpeedText(c.Body, c.Value)
}

type ResizeCommand struct {
	Width  int
	Height int
}

func (c ResizeCommand) Apply(w *World) {
	w.Resize(c.Width, c.Height)
}

const inboxSize = 64

type Options struct {
	Descriptors Descriptors
	Seed        uint64
	Stars       int
	Width       int
	Height      int
	Sink        Sink
	Loader      TextureLoader
	// GlowSource is requested once per body; an empty source leaves glows
	// untextured.
	GlowSource string
	// Components registers extra component types, for systems added later
	// with AddSystem.
	Components []func(*ecs.ComponentRegistry)
}

// DefaultGlowSource is the shared glow sprite.
const DefaultGlowSource = "https://raw.githubusercontent.com/mrdoob/three.js/dev/examples/textures/sprites/glow.png"

// World is the whole simulation: the entity store, the systems that advance
// it, and the queue that feeds it input from other goroutines. All methods
// except Enqueue must be called from the simulation thread.
type World struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	inbox     chan Command

	clock  *ecs.Singleton[FrameClock]
	camera *ecs.Singleton[Camera]
	sink   Sink

	bodies  map[string]ecs.EntityId
	planets []string
	names   []string
}

func NewWorld(opts Options) (*World, error) {
	if err := opts.Descriptors.Validate(); err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	if opts.Stars < 0 {
		opts.Stars = 0
	}
	if opts.Sink == nil {
		opts.Sink = nopSink{}
	}

	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)
	for _, register := range opts.Components {
		register(registry)
	}

	storage := ecs.NewStorage(registry)
	w := &World{
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		inbox:     make(chan Command, inboxSize),
		sink:      opts.Sink,
		bodies:    make(map[string]ecs.EntityId),
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	w.clock = ecs.NewSingleton(storage, FrameClock{})
	w.camera = ecs.NewSingleton(storage, newCamera(opts.Width, opts.Height))
	ecs.NewSingleton(storage, newStarfield(rng, opts.Stars))

	w.spawnSun(opts.Descriptors.Sun, opts.Loader)
	for i, d := range opts.Descriptors.Planets {
		w.spawnPlanet(i+1, d, rng, opts.Loader, opts.GlowSource)
	}

	w.scheduler.Register(&ClockSystem{})
	w.scheduler.Register(&InputSystem{world: w})
	w.scheduler.Register(&TextureSystem{loader: opts.Loader})
	w.scheduler.Register(&OrbitSystem{})
	w.scheduler.Register(&SpinSystem{})
	w.scheduler.Register(&StarfieldSystem{})
	w.scheduler.Register(&PresentSystem{sink: opts.Sink})

	return w, nil
}

func newStarfield(rng *rand.Rand, n int) Starfield {
	stars := make([]Vec3, n)
	for i := range stars {
		stars[i] = Vec3{
			X: (rng.Float64() - 0.5) * StarSpread,
			Y: (rng.Float64() - 0.5) * StarSpread,
			Z: (rng.Float64() - 0.5) * StarSpread,
		}
	}
	return Starfield{
		Stars:   stars,
		Opacity: StarOpacityAt(0),
		Size:    StarSize,
		Tint:    StarTint,
	}
}

func (w *World) spawnSun(d Descriptor, loader TextureLoader) {
	source := d.TextureSource()
	id := w.storage.Spawn(
		Body{Name: d.Name, Kind: KindStar, Radius: d.Radius},
		Transform{},
		Appearance{
			Tint:              d.Color,
			Emissive:          SunEmissive,
			EmissiveIntensity: SunIntensity,
			Texture:           TextureState{Source: source},
		},
	)
	w.bodies[d.Name] = id
	w.names = append(w.names, d.Name)
	w.request(loader, id, source, false)
}

func (w *World) spawnPlanet(order int, d Descriptor, rng *rand.Rand, loader TextureLoader, glowSource string) {
	angle := rng.Float64()
	source := d.TextureSource()

	components := []any{
		Body{Name: d.Name, Kind: KindPlanet, Radius: d.Radius, Order: order},
		Orbit{Radius: d.Orbit, Angle: angle, Speed: d.Speed},
		Transform{Position: OrbitPosition(d.Orbit, angle)},
		Appearance{
			Tint:              d.Color,
			Emissive:          d.Color,
			EmissiveIntensity: PlanetEmissive,
			Texture:           TextureState{Source: source},
		},
		Glow{Scale: d.Radius * GlowScale, Tint: d.Color, Sprite: TextureState{Source: glowSource}},
	}
	if d.Ring {
		components = append(components, newRing(d.Radius))
	}

	id := w.storage.Spawn(components...)
	w.bodies[d.Name] = id
	w.planets = append(w.planets, d.Name)
	w.names = append(w.names, d.Name)

	w.request(loader, id, source, false)
	if glowSource != "" {
		w.request(loader, id, glowSource, true)
	}
}

func (w *World) request(loader TextureLoader, id ecs.EntityId, source string, glow bool) {
	if loader == nil {
		return
	}
	loader.Request(source, textureTag{ref: w.storage.CreateEntityRef(id), glow: glow})
}

// Tick advances the world by one frame using the given clock sample.
func (w *World) Tick(delta, elapsed float64) {
	c := w.clock.Get()
	c.pending = true
	c.nextDelta = delta
	c.nextElapsed = elapsed
	w.scheduler.Once(delta)
}

// Step samples clock once and ticks.
func (w *World) Step(clock Clock) {
	w.Tick(clock.Sample())
}

// Enqueue queues cmd for the next frame. It is safe to call from any
// goroutine and reports false if the queue is full.
func (w *World) Enqueue(cmd Command) bool {
	select {
	case w.inbox <- cmd:
		return true
	default:
		log.Printf("world: input queue full, dropping %T", cmd)
		return false
	}
}

// SetSpeed replaces a planet's speed. Values outside [MinSpeed, MaxSpeed]
// and unknown names are ignored.
func (w *World) SetSpeed(name string, v float64) bool {
	v, err := CheckSpeed(v)
	if err != nil {
		return false
	}
	orbit := w.orbit(name)
	if orbit == nil {
		return false
	}
	orbit.Speed = v
	return true
}

// SetSpeedText is SetSpeed for user-typed text. Unparseable text is ignored.
func (w *World) SetSpeedText(name, raw string) bool {
	v, err := ParseSpeed(raw)
	if err != nil {
		return false
	}
	return w.SetSpeed(name, v)
}

// Speed returns a planet's current speed.
func (w *World) Speed(name string) (float64, bool) {
	orbit := w.orbit(name)
	if orbit == nil {
		return 0, false
	}
	return orbit.Speed, true
}

func (w *World) orbit(name string) *Orbit {
	id, ok := w.bodies[name]
	if !ok {
		return nil
	}
	return ecs.ReadComponent[Orbit](w.storage, id)
}

// Resize refits the camera to a viewport and pushes the change to the sink.
// Repeating the same size is a no-op.
func (w *World) Resize(width, height int) {
	cam := w.camera.Get()
	if cam.Fit(width, height) {
		w.sink.UpdateCamera(cam.Frame())
	}
}

func (w *World) Camera() CameraFrame {
	return w.camera.Get().Frame()
}

// Body returns the current state of the named body.
func (w *World) Body(name string) (BodyFrame, bool) {
	id, ok := w.bodies[name]
	if !ok {
		return BodyFrame{}, false
	}
	body := ecs.ReadComponent[Body](w.storage, id)
	tr := ecs.ReadComponent[Transform](w.storage, id)
	app := ecs.ReadComponent[Appearance](w.storage, id)

	bf := BodyFrame{
		Name:              body.Name,
		Order:             body.Order,
		Kind:              body.Kind,
		Radius:            body.Radius,
		Position:          tr.Position,
		Rotation:          tr.Rotation,
		Tint:              app.Tint,
		Emissive:          app.Emissive,
		EmissiveIntensity: app.EmissiveIntensity,
		TextureStatus:     app.Texture.Status,
		Texture:           app.Texture.Image,
	}
	if orbit := ecs.ReadComponent[Orbit](w.storage, id); orbit != nil {
		bf.Orbit, bf.Angle, bf.Speed = orbit.Radius, orbit.Angle, orbit.Speed
	}
	if glow := ecs.ReadComponent[Glow](w.storage, id); glow != nil {
		bf.Glow = &GlowFrame{Scale: glow.Scale, Tint: glow.Tint, Sprite: glow.Sprite.Image}
	}
	if ring := ecs.ReadComponent[Ring](w.storage, id); ring != nil {
		r := *ring
		bf.Ring = &r
	}
	return bf, true
}

// Planets lists planet names in table order.
func (w *World) Planets() []string {
	return w.planets
}

// Bodies lists every body, sun first.
func (w *World) Bodies() []string {
	return w.names
}

// Entity returns the entity id of a body.
func (w *World) Entity(name string) (ecs.EntityId, bool) {
	id, ok := w.bodies[name]
	return id, ok
}

func (w *World) Starfield() Starfield {
	var stars *Starfield
	w.storage.ReadSingleton(&stars)
	return *stars
}

func (w *World) Clock() FrameClock {
	return *w.clock.Get()
}

func (w *World) Storage() *ecs.Storage {
	return w.storage
}

func (w *World) Scheduler() *ecs.Scheduler {
	return w.scheduler
}

// AddSystem appends a system after the built-in ones.
func (w *World) AddSystem(s ecs.System) {
	w.scheduler.Register(s)
}
