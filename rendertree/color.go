package rendertree

import (
	"image/color"

	"github.com/chewxy/math32"
)

// ColorRGBA is a non-premultiplied color with float32 components in [0, 1].
type ColorRGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = ColorRGBA{}
	Black       = ColorRGBA{A: 1}
	White       = ColorRGBA{R: 1, G: 1, B: 1, A: 1}
)

// RGBA returns a color from its components.
func RGBA(r, g, b, a float32) ColorRGBA {
	return ColorRGBA{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard library color.
func FromColor(c color.Color) ColorRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ColorRGBA{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c ColorRGBA) WithAlpha(a float32) ColorRGBA {
	c.A *= a
	return c
}

// Premultiplied returns the color with its RGB scaled by alpha, as 8-bit
// values ready for an RGBA8 buffer.
func (c ColorRGBA) Premultiplied() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: to8(clamp01(c.R) * a),
		G: to8(clamp01(c.G) * a),
		B: to8(clamp01(c.B) * a),
		A: to8(a),
	}
}

// NRGBA returns the straight-alpha 8-bit color.
func (c ColorRGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(clamp01(c.R)), G: to8(clamp01(c.G)), B: to8(clamp01(c.B)), A: to8(clamp01(c.A))}
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

func to8(v float32) uint8 {
	return uint8(math32.Floor(v*255 + 0.5))
}
