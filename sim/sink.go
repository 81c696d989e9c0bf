package sim

import "image"

// BodyFrame is the per-frame state of one body as seen by a sink.
type BodyFrame struct {
	Name              string        `json:"name"`
	Order             int           `json:"order"`
	Kind              Kind          `json:"kind"`
	Radius            float64       `json:"radius"`
	Orbit             float64       `json:"orbit"`
	Angle             float64       `json:"angle"`
	Speed             float64       `json:"speed"`
	Position          Vec3          `json:"position"`
	Rotation          Vec3          `json:"rotation"`
	Tint              Color         `json:"tint"`
	Emissive          Color         `json:"emissive"`
	EmissiveIntensity float64       `json:"emissiveIntensity"`
	TextureStatus     TextureStatus `json:"texture"`
	Texture           image.Image   `json:"-"`
	Glow              *GlowFrame    `json:"glow,omitempty"`
	Ring              *Ring         `json:"ring,omitempty"`
}

type GlowFrame struct {
	Scale  float64     `json:"scale"`
	Tint   Color       `json:"tint"`
	Sprite image.Image `json:"-"`
}

type StarfieldFrame struct {
	Stars     []Vec3  `json:"-"`
	RotationX float64 `json:"rotationX"`
	RotationY float64 `json:"rotationY"`
	Opacity   float64 `json:"opacity"`
	Size      float64 `json:"size"`
	Tint      Color   `json:"tint"`
	Frame     uint64  `json:"frame"`
	Elapsed   float64 `json:"elapsed"`
}

type CameraFrame struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Aspect   float64 `json:"aspect"`
	Distance float64 `json:"distance"`
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// Sink receives the scene once per frame: camera, then starfield, then
// bodies. UpdateBodies closes the frame. Slices passed to a sink are reused
// on the next frame; copy them to keep them.
type Sink interface {
	UpdateBodies(bodies []BodyFrame)
	UpdateStarfield(stars StarfieldFrame)
	UpdateCamera(camera CameraFrame)
}

// MultiSink forwards every update to each sink in order.
type MultiSink []Sink

func (m MultiSink) UpdateBodies(bodies []BodyFrame) {
	for _, s := range m {
		s.UpdateBodies(bodies)
	}
}

func (m MultiSink) UpdateStarfield(stars StarfieldFrame) {
	for _, s := range m {
		s.UpdateStarfield(stars)
	}
}

func (m MultiSink) UpdateCamera(camera CameraFrame) {
	for _, s := range m {
		s.UpdateCamera(camera)
	}
}

type nopSink struct{}

func (nopSink) UpdateBodies([]BodyFrame)       {}
func (nopSink) UpdateStarfield(StarfieldFrame) {}
func (nopSink) UpdateCamera(CameraFrame)       {}
