package sim

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Color is a packed 0xRRGGBB tint.
type Color uint32

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) Colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// RGBA returns c as a non-premultiplied color with the given opacity.
func (c Color) RGBA(opacity float64) color.NRGBA {
	r, g, b := c.RGB()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(opacity)*255 + 0.5)}
}

// Blend mixes c toward o by t in linear RGB.
func (c Color) Blend(o Color, t float64) Color {
	return FromColorful(c.Colorful().BlendLinearRgb(o.Colorful(), clamp01(t)))
}

// Scale multiplies every channel by f, saturating at white.
func (c Color) Scale(f float64) Color {
	cf := c.Colorful()
	return FromColorful(colorful.Color{R: cf.R * f, G: cf.G * f, B: cf.B * f})
}

// Add sums two colors channel-wise, saturating at white.
func (c Color) Add(o Color) Color {
	a, b := c.Colorful(), o.Colorful()
	return FromColorful(colorful.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B})
}

func (c Color) String() string {
	return c.Colorful().Hex()
}

func FromColorful(cf colorful.Color) Color {
	r, g, b := cf.Clamped().RGB255()
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ParseColor accepts "#rrggbb", "0xrrggbb" or a decimal integer.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		cf, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("parse color %q: %w", s, err)
		}
		return FromColorful(cf), nil
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil || v > 0xFFFFFF {
			return 0, fmt.Errorf("parse color %q: out of range or not hex", s)
		}
		return Color(v), nil
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil || v > 0xFFFFFF {
			return 0, fmt.Errorf("parse color %q: out of range or not a number", s)
		}
		return Color(v), nil
	}
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseColor(node.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
