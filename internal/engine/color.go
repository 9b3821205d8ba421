package engine

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Color is a two-case variant: either a symbolic colour name ("gold",
// "deepskyblue") or an explicit RGB triple. Effect recipes may hand the
// engine either case, so every render step resolves through Apply rather
// than assuming one representation.
type Color struct {
	name    string
	r, g, b uint8
	rgb     bool
}

// DefaultColor is the colour a freshly reset particle carries.
var DefaultColor = Named("white")

// Named returns the symbolic-name case of the colour variant.
// Names follow the SVG 1.1 colour keyword set.
func Named(name string) Color {
	return Color{name: name}
}

// RGB returns the component-triple case of the colour variant.
func RGB(r, g, b uint8) Color {
	return Color{r: r, g: g, b: b, rgb: true}
}

// IsRGB reports whether the colour is the component-triple case.
func (c Color) IsRGB() bool {
	return c.rgb
}

// Name returns the symbolic name, or "" for the RGB case.
func (c Color) Name() string {
	if c.rgb {
		return ""
	}
	return c.name
}

// Apply collapses the variant into a drawable colour with the given
// opacity (0-1, clamped). Unknown name tokens fall back to white rather
// than failing: a bad palette entry is a cosmetic bug, not a crash.
func (c Color) Apply(opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	a := uint8(opacity * 255)
	if c.rgb {
		return color.RGBA{R: c.r, G: c.g, B: c.b, A: a}
	}
	if named, ok := colornames.Map[c.name]; ok {
		return color.RGBA{R: named.R, G: named.G, B: named.B, A: a}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: a}
}

// Mix linearly interpolates between the resolved forms of two colours.
// t=0 returns a, t=1 returns b.
func Mix(a, b Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	ca := a.Apply(1)
	cb := b.Apply(1)
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return RGB(lerp(ca.R, cb.R), lerp(ca.G, cb.G), lerp(ca.B, cb.B))
}
