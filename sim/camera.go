package sim

import "math"

const (
	// NarrowViewport is the width below which the camera backs off.
	NarrowViewport  = 600
	NarrowDistance  = 70.0
	DefaultDistance = 50.0

	CameraFOV  = 75.0
	CameraNear = 0.1
	CameraFar  = 1000.0
)

// CameraDistance applies the narrow-viewport rule.
func CameraDistance(width int) float64 {
	if width < NarrowViewport {
		return NarrowDistance
	}
	return DefaultDistance
}

// Fit recomputes aspect and distance for a viewport. Non-positive sizes are
// ignored. It reports whether anything changed.
func (c *Camera) Fit(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	aspect := float64(width) / float64(height)
	distance := CameraDistance(width)
	if c.Width == width && c.Height == height && c.Aspect == aspect && c.Distance == distance {
		return false
	}
	c.Width, c.Height = width, height
	c.Aspect = aspect
	c.Distance = distance
	return true
}

// Frame is the view of c handed to sinks.
func (c *Camera) Frame() CameraFrame {
	return CameraFrame{
		Width:    c.Width,
		Height:   c.Height,
		Aspect:   c.Aspect,
		Distance: c.Distance,
		FOV:      c.FOV,
		Near:     c.Near,
		Far:      c.Far,
	}
}

// FocalLength is the distance in pixels from the eye to a projection plane
// that is Height pixels tall.
func (f CameraFrame) FocalLength() float64 {
	return float64(f.Height) / 2 / math.Tan(f.FOV*math.Pi/360)
}

func newCamera(width, height int) Camera {
	c := Camera{FOV: CameraFOV, Near: CameraNear, Far: CameraFar}
	if !c.Fit(width, height) {
		c.Distance = DefaultDistance
		c.Aspect = 1
	}
	return c
}
