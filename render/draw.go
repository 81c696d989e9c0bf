package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/orrery/sim"
)

const (
	sphereRings    = 8
	sphereSegments = 24
	ringSegments   = 64
	guideSegments  = 128
	spriteSize     = 64
)

// Draw renders the latest frame. Nothing is drawn before the first camera
// update.
func (s *Sink) Draw(screen *ebiten.Image) {
	screen.Fill(sim.Background.RGBA(1))
	if s.camera.Width == 0 || s.camera.Height == 0 {
		return
	}
	s.ensureImages()

	p := s.Projector()
	s.drawStars(screen, p)
	for _, b := range s.bodies {
		if b.Kind == sim.KindPlanet {
			drawGuide(screen, p, b.Orbit)
		}
	}

	s.order = depthOrder(p, s.bodies, s.order)
	for _, i := range s.order {
		b := &s.bodies[i]
		s.drawSphere(screen, p, b)
		if b.Ring != nil {
			s.drawRing(screen, p, b)
		}
		if b.Glow != nil {
			s.drawGlow(screen, p, b)
		}
	}
}

func (s *Sink) ensureImages() {
	if s.pixel == nil {
		white := ebiten.NewImage(3, 3)
		white.Fill(color.White)
		s.pixel = white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	if s.sprite == nil {
		s.sprite = ebiten.NewImageFromImage(radialSprite(spriteSize))
	}
}

// radialSprite is a soft white dot that fades to transparent at the edge.
func radialSprite(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := range size {
		for x := range size {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / c
			a := max(0, 1-d)
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a * a * 255)})
		}
	}
	return img
}

func (s *Sink) drawStars(screen *ebiten.Image, p Projector) {
	rot := sim.Vec3{X: s.stars.RotationX, Y: s.stars.RotationY}
	w := float64(s.sprite.Bounds().Dx())
	for _, star := range s.stars.Stars {
		pt, ok := p.Project(star.RotateEuler(rot))
		if !ok {
			continue
		}
		size := max(1, p.Size(s.stars.Size, pt.Depth))

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(size/w, size/w)
		op.GeoM.Translate(pt.X-size/2, pt.Y-size/2)
		op.ColorScale.ScaleWithColor(s.stars.Tint.RGBA(1))
		op.ColorScale.ScaleAlpha(float32(s.stars.Opacity))
		screen.DrawImage(s.sprite, op)
	}
}

func drawGuide(screen *ebiten.Image, p Projector, radius float64) {
	clr := sim.OrbitGuideTint.RGBA(sim.OrbitGuideOpacity)
	prev, prevOK := p.Project(sim.OrbitPosition(radius, 0))
	for i := 1; i <= guideSegments; i++ {
		pt, ok := p.Project(sim.OrbitPosition(radius, float64(i)*2*math.Pi/guideSegments))
		if ok && prevOK {
			vector.StrokeLine(screen, float32(prev.X), float32(prev.Y), float32(pt.X), float32(pt.Y), 1, clr, true)
		}
		prev, prevOK = pt, ok
	}
}

// drawSphere draws a lit disc. With a texture, the disc is mapped as the
// visible hemisphere of an equirectangular image, turned by the body's spin.
func (s *Sink) drawSphere(screen *ebiten.Image, p Projector, b *sim.BodyFrame) {
	centre, ok := p.Project(b.Position)
	if !ok {
		return
	}
	r := p.Size(b.Radius, centre.Depth)
	if r < 0.5 {
		return
	}

	src := s.texture(b.Texture)
	textured := src != nil
	albedo := b.Tint
	if textured {
		albedo = 0xffffff
	} else {
		src = s.pixel
	}
	tw, th := float64(src.Bounds().Dx()), float64(src.Bounds().Dy())
	ox, oy := float64(src.Bounds().Min.X), float64(src.Bounds().Min.Y)
	light := p.ToView(sim.LightDirection)

	vertices := make([]ebiten.Vertex, 0, (sphereRings+1)*(sphereSegments+1))
	for ring := 0; ring <= sphereRings; ring++ {
		rr := float64(ring) / sphereRings
		for seg := 0; seg <= sphereSegments; seg++ {
			a := float64(seg) * 2 * math.Pi / sphereSegments
			dx, dy := rr*math.Cos(a), rr*math.Sin(a)
			n := sim.Vec3{X: dx, Y: dy, Z: math.Sqrt(max(0, 1-dx*dx-dy*dy))}

			lat := math.Asin(dy)
			lon := 0.0
			if cl := math.Cos(lat); cl > 1e-6 {
				lon = math.Asin(max(-1, min(1, dx/cl)))
			}
			u, v := 0.5, 0.5
			if textured {
				u = (lon+b.Rotation.Y)/(2*math.Pi) + 0.5
				v = 0.5 - lat/math.Pi
			}

			c := shade(albedo, b, n, light)
			vertices = append(vertices, ebiten.Vertex{
				DstX:   float32(centre.X + dx*r),
				DstY:   float32(centre.Y - dy*r),
				SrcX:   float32(ox + u*tw),
				SrcY:   float32(oy + v*th),
				ColorR: c[0],
				ColorG: c[1],
				ColorB: c[2],
				ColorA: 1,
			})
		}
	}

	indices := make([]uint16, 0, sphereRings*sphereSegments*6)
	stride := sphereSegments + 1
	for ring := 0; ring < sphereRings; ring++ {
		for seg := 0; seg < sphereSegments; seg++ {
			a := uint16(ring*stride + seg)
			b := a + uint16(stride)
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	if textured {
		op.Address = ebiten.AddressRepeat
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawTriangles(vertices, indices, src, op)
}

// shade applies ambient, directional and emissive light to albedo at view
// normal n.
func shade(albedo sim.Color, b *sim.BodyFrame, n, light sim.Vec3) [3]float32 {
	diffuse := max(0, n.Dot(light)) * sim.DirectionLevel
	base := albedo.Colorful()
	amb := sim.AmbientLight.Colorful()
	dir := sim.DirectionLight.Colorful()
	emi := b.Emissive.Colorful()
	// emissive is damped so textures still read through
	ei := b.EmissiveIntensity * 0.25

	return [3]float32{
		float32(min(1, base.R*(amb.R*sim.AmbientLevel+dir.R*diffuse)+emi.R*ei)),
		float32(min(1, base.G*(amb.G*sim.AmbientLevel+dir.G*diffuse)+emi.G*ei)),
		float32(min(1, base.B*(amb.B*sim.AmbientLevel+dir.B*diffuse)+emi.B*ei)),
	}
}

func (s *Sink) drawRing(screen *ebiten.Image, p Projector, b *sim.BodyFrame) {
	ring := b.Ring
	clr := ring.Tint.Colorful()

	vertices := make([]ebiten.Vertex, 0, (ringSegments+1)*2)
	for seg := 0; seg <= ringSegments; seg++ {
		a := float64(seg) * 2 * math.Pi / ringSegments
		for _, radius := range [2]float64{ring.Inner, ring.Outer} {
			local := sim.Vec3{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
			world := local.RotateX(ring.Tilt).RotateY(b.Rotation.Y).Add(b.Position)
			pt, _ := p.Project(world)
			vertices = append(vertices, ebiten.Vertex{
				DstX:   float32(pt.X),
				DstY:   float32(pt.Y),
				SrcX:   1.5,
				SrcY:   1.5,
				ColorR: float32(clr.R * ring.Opacity),
				ColorG: float32(clr.G * ring.Opacity),
				ColorB: float32(clr.B * ring.Opacity),
				ColorA: float32(ring.Opacity),
			})
		}
	}

	indices := make([]uint16, 0, ringSegments*6)
	for seg := 0; seg < ringSegments; seg++ {
		i := uint16(seg * 2)
		indices = append(indices, i, i+1, i+2, i+1, i+3, i+2)
	}

	screen.DrawTriangles(vertices, indices, s.pixel, &ebiten.DrawTrianglesOptions{
		AntiAlias:      true,
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
	})
}

func (s *Sink) drawGlow(screen *ebiten.Image, p Projector, b *sim.BodyFrame) {
	centre, ok := p.Project(b.Position)
	if !ok {
		return
	}
	sprite := s.texture(b.Glow.Sprite)
	if sprite == nil {
		sprite = s.sprite
	}
	size := p.Size(b.Glow.Scale, centre.Depth)
	w, h := float64(sprite.Bounds().Dx()), float64(sprite.Bounds().Dy())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size/w, size/h)
	op.GeoM.Translate(centre.X-size/2, centre.Y-size/2)
	op.ColorScale.ScaleWithColor(b.Glow.Tint.RGBA(1))
	op.Blend = ebiten.BlendLighter
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}
