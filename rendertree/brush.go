package rendertree

import "github.com/gogpu/renderpipe/geom"

// Brush describes how the interior of a rect is painted.
// Implementations: *SolidColorBrush, *LinearGradientBrush, *RadialGradientBrush.
type Brush interface {
	brush()
}

// SolidColorBrush paints a single color.
type SolidColorBrush struct {
	Color ColorRGBA
}

func (*SolidColorBrush) brush() {}

// ColorStop is a gradient stop at Position in [0, 1].
type ColorStop struct {
	Position float32
	Color    ColorRGBA
}

// LinearGradientBrush interpolates stops along the segment Start→End.
type LinearGradientBrush struct {
	Start, End geom.Point
	Stops      []ColorStop
}

func (*LinearGradientBrush) brush() {}

// RadialGradientBrush interpolates stops from Center outward to the
// ellipse with radii RadiusX/RadiusY.
type RadialGradientBrush struct {
	Center           geom.Point
	RadiusX, RadiusY float32
	Stops            []ColorStop
}

func (*RadialGradientBrush) brush() {}

// ColorAt evaluates a stop list at t, clamping outside [first, last].
func ColorAt(stops []ColorStop, t float32) ColorRGBA {
	if len(stops) == 0 {
		return Transparent
	}
	if t <= stops[0].Position {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		s0, s1 := stops[i-1], stops[i]
		if t <= s1.Position {
			span := s1.Position - s0.Position
			if span <= 0 {
				return s1.Color
			}
			f := (t - s0.Position) / span
			return ColorRGBA{
				R: s0.Color.R + (s1.Color.R-s0.Color.R)*f,
				G: s0.Color.G + (s1.Color.G-s0.Color.G)*f,
				B: s0.Color.B + (s1.Color.B-s0.Color.B)*f,
				A: s0.Color.A + (s1.Color.A-s0.Color.A)*f,
			}
		}
	}
	return stops[len(stops)-1].Color
}
