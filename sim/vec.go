package sim

import "math"

// Vec3 is a point or direction in world space. Y is up; orbits lie in the
// XZ plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// RotateX rotates v by a radians about the X axis (right-handed).
func (v Vec3) RotateX(a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{v.X, v.Y*c - v.Z*s, v.Y*s + v.Z*c}
}

// RotateY rotates v by a radians about the Y axis (right-handed).
func (v Vec3) RotateY(a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
}

// RotateEuler applies r as an XYZ Euler rotation: Z first, then Y, then X.
func (v Vec3) RotateEuler(r Vec3) Vec3 {
	s, c := math.Sincos(r.Z)
	v = Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
	return v.RotateY(r.Y).RotateX(r.X)
}

// OrbitPosition is the planar position of a body at angle on a circle of
// radius orbit.
func OrbitPosition(orbit, angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{X: orbit * c, Y: 0, Z: orbit * s}
}
