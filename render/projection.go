package render

import (
	"math"

	"github.com/plus3/orrery/sim"
)

// maxElevation keeps the eye off the poles, where the up vector degenerates.
const maxElevation = math.Pi/2 - 0.01

// Point is a projected position in pixels. Depth is the distance along the
// view axis.
type Point struct {
	X, Y  float64
	Depth float64
}

// Projector is a perspective camera orbiting the origin at the camera
// distance, looking at the origin with Y up. Azimuth and elevation 0 puts
// the eye on +Z.
type Projector struct {
	eye     sim.Vec3
	right   sim.Vec3
	up      sim.Vec3
	forward sim.Vec3

	focal  float64
	cx, cy float64
	near   float64
	far    float64
}

func NewProjector(cam sim.CameraFrame, azimuth, elevation float64) Projector {
	elevation = max(-maxElevation, min(maxElevation, elevation))

	se, ce := math.Sincos(elevation)
	sa, ca := math.Sincos(azimuth)
	eye := sim.Vec3{X: cam.Distance * ce * sa, Y: cam.Distance * se, Z: cam.Distance * ce * ca}

	forward := eye.Scale(-1).Normalize()
	right := forward.Cross(sim.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	return Projector{
		eye:     eye,
		right:   right,
		up:      up,
		forward: forward,
		focal:   cam.FocalLength(),
		cx:      float64(cam.Width) / 2,
		cy:      float64(cam.Height) / 2,
		near:    cam.Near,
		far:     cam.Far,
	}
}

// Project maps a world position to the screen. It reports false for points
// outside the near and far planes.
func (p Projector) Project(v sim.Vec3) (Point, bool) {
	d := v.Sub(p.eye)
	z := d.Dot(p.forward)
	if z < p.near || z > p.far {
		return Point{}, false
	}
	return Point{
		X:     p.cx + d.Dot(p.right)*p.focal/z,
		Y:     p.cy - d.Dot(p.up)*p.focal/z,
		Depth: z,
	}, true
}

// Size is the on-screen extent in pixels of a world length at depth.
func (p Projector) Size(length, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return length * p.focal / depth
}

// ToView expresses a world direction in view space: X right, Y up, Z toward
// the eye.
func (p Projector) ToView(dir sim.Vec3) sim.Vec3 {
	return sim.Vec3{X: dir.Dot(p.right), Y: dir.Dot(p.up), Z: -dir.Dot(p.forward)}
}

func (p Projector) Eye() sim.Vec3 {
	return p.eye
}
