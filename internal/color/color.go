// Package color provides the RGB colour type used by surfaces and palettes.
package color

import (
	"fmt"
	stdcolor "image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque 8-bit RGB colour.
type Color struct {
	R, G, B uint8
}

// Common colours.
var (
	Black   = Color{0, 0, 0}
	White   = Color{255, 255, 255}
	Magenta = Color{255, 0, 255}
)

// RGB creates a colour from components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Parse parses "#rrggbb" or "#rgb". The leading "#" is optional.
func Parse(s string) (Color, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// FromColor converts any image/color value, dropping alpha.
func FromColor(c stdcolor.Color) Color {
	n := stdcolor.NRGBAModel.Convert(c).(stdcolor.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// Add returns the component-wise sum, saturating at 255.
func (c Color) Add(o Color) Color {
	return Color{R: addSat(c.R, o.R), G: addSat(c.G, o.G), B: addSat(c.B, o.B)}
}

// Sub returns the component-wise difference, saturating at 0.
func (c Color) Sub(o Color) Color {
	return Color{R: subSat(c.R, o.R), G: subSat(c.G, o.G), B: subSat(c.B, o.B)}
}

// Blend mixes c toward o in Lab space; t is clamped to [0, 1].
func (c Color) Blend(o Color, t float64) Color {
	t = min(max(t, 0), 1)
	mixed := c.colorful().BlendLab(o.colorful(), t).Clamped()
	r, g, b := mixed.RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// RGBA implements image/color.Color. The colour is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return stdcolor.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Hex returns "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns "(r: R, g: G, b: B)".
func (c Color) String() string {
	return fmt.Sprintf("(r: %d, g: %d, b: %d)", c.R, c.G, c.B)
}

// MarshalText encodes the colour as "#rrggbb".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex colour.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func addSat(a, b uint8) uint8 {
	if s := uint16(a) + uint16(b); s <= 0xff {
		return uint8(s)
	}
	return 0xff
}

func subSat(a, b uint8) uint8 {
	if a < b {
		return 0
	}
	return a - b
}
