package sim

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDescriptor is wrapped by every validation failure.
var ErrInvalidDescriptor = errors.New("invalid body descriptor")

// Kind distinguishes the central star from orbiting planets.
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
)

func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Descriptor is one row of the startup body table.
type Descriptor struct {
	Name    string  `yaml:"name"`
	Radius  float64 `yaml:"radius"`
	Orbit   float64 `yaml:"orbit"`
	Speed   float64 `yaml:"speed"`
	Color   Color   `yaml:"color"`
	Ring    bool    `yaml:"ring,omitempty"`
	Texture string  `yaml:"texture,omitempty"`
}

// TextureSource is the asset the loader is asked for. An explicit Texture wins
// over the lowercased-name convention.
func (d Descriptor) TextureSource() string {
	if d.Texture != "" {
		return d.Texture
	}
	return strings.ToLower(d.Name) + ".jpg"
}

// Descriptors is the sun plus its planets, in display order.
type Descriptors struct {
	Sun     Descriptor   `yaml:"sun"`
	Planets []Descriptor `yaml:"planets"`
}

const (
	SunRadius            = 6.0
	SunEmissive    Color = 0xffaa00
	SunIntensity         = 2.0
	PlanetEmissive       = 0.9
)

// DefaultDescriptors returns the built-in solar system.
func DefaultDescriptors() Descriptors {
	return Descriptors{
		Sun: Descriptor{Name: "Sun", Radius: SunRadius, Color: SunEmissive},
		Planets: []Descriptor{
			{Name: "Mercury", Radius: 0.8, Orbit: 10, Speed: 0.006, Color: 0xaaaaaa},
			{Name: "Venus", Radius: 1.2, Orbit: 14, Speed: 0.004, Color: 0xffcc99},
			{Name: "Earth", Radius: 1.3, Orbit: 18, Speed: 0.0035, Color: 0x3399ff},
			{Name: "Mars", Radius: 1.1, Orbit: 22, Speed: 0.003, Color: 0xff3300},
			{Name: "Jupiter", Radius: 2.5, Orbit: 28, Speed: 0.0023, Color: 0xff9966},
			{Name: "Saturn", Radius: 2.2, Orbit: 34, Speed: 0.002, Color: 0xffcc66, Ring: true},
			{Name: "Uranus", Radius: 1.8, Orbit: 40, Speed: 0.0018, Color: 0x66ccff},
			{Name: "Neptune", Radius: 1.7, Orbit: 46, Speed: 0.0015, Color: 0x3366ff},
		},
	}
}

// Validate checks names are present and unique and that every size is in range.
func (ds Descriptors) Validate() error {
	if err := validateBody(ds.Sun); err != nil {
		return fmt.Errorf("sun: %w", err)
	}
	if ds.Sun.Orbit != 0 || ds.Sun.Speed != 0 {
		return fmt.Errorf("sun %q: must not orbit: %w", ds.Sun.Name, ErrInvalidDescriptor)
	}
	if len(ds.Planets) == 0 {
		return fmt.Errorf("no planets: %w", ErrInvalidDescriptor)
	}

	seen := map[string]bool{strings.ToLower(ds.Sun.Name): true}
	for i, p := range ds.Planets {
		if err := validateBody(p); err != nil {
			return fmt.Errorf("planet %d: %w", i, err)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("planet %q: duplicate name: %w", p.Name, ErrInvalidDescriptor)
		}
		seen[key] = true

		if !(p.Orbit > 0) || math.IsInf(p.Orbit, 0) {
			return fmt.Errorf("planet %q: orbit %v must be positive: %w", p.Name, p.Orbit, ErrInvalidDescriptor)
		}
		if p.Speed < MinSpeed || p.Speed > MaxSpeed {
			return fmt.Errorf("planet %q: speed %v outside [%v, %v]: %w", p.Name, p.Speed, MinSpeed, MaxSpeed, ErrInvalidDescriptor)
		}
	}
	return nil
}

func validateBody(d Descriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidDescriptor)
	}
	if !(d.Radius > 0) || math.IsInf(d.Radius, 0) {
		return fmt.Errorf("%q: radius %v must be positive: %w", d.Name, d.Radius, ErrInvalidDescriptor)
	}
	return nil
}

// LoadDescriptors decodes a YAML body table and validates it. A table without
// a sun entry keeps the built-in sun.
func LoadDescriptors(r io.Reader) (Descriptors, error) {
	ds := Descriptors{Sun: DefaultDescriptors().Sun}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return Descriptors{}, fmt.Errorf("decode descriptors: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Descriptors{}, err
	}
	return ds, nil
}

// WriteDescriptors encodes ds as YAML in the format LoadDescriptors reads.
func WriteDescriptors(w io.Writer, ds Descriptors) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode descriptors: %w", err)
	}
	return enc.Close()
}
