package animations

import (
	"time"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// Progress returns the fraction of duration elapsed at t, clamped to [0, 1].
func Progress(t, start, duration time.Duration) float32 {
	if duration <= 0 {
		if t >= start {
			return 1
		}
		return 0
	}
	f := float32(t-start) / float32(duration)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// LerpPoint interpolates between a and b.
func LerpPoint(a, b geom.Point, f float32) geom.Point {
	return geom.Pt(a.X+(b.X-a.X)*f, a.Y+(b.Y-a.Y)*f)
}

// LerpColor interpolates between a and b component-wise.
func LerpColor(a, b rendertree.ColorRGBA, f float32) rendertree.ColorRGBA {
	return rendertree.ColorRGBA{
		R: a.R + (b.R-a.R)*f,
		G: a.G + (b.G-a.G)*f,
		B: a.B + (b.B-a.B)*f,
		A: a.A + (b.A-a.A)*f,
	}
}

// MoveRect animates the origin of a rect node from its position to to over
// duration, starting at start.
func MoveRect(m *Map, node *rendertree.RectNode, to geom.Point, start, duration time.Duration) {
	from := node.Rect().Origin()
	AddTyped(m, node, func(n *rendertree.RectNode, t time.Duration) *rendertree.RectNode {
		p := LerpPoint(from, to, Progress(t, start, duration))
		r := n.Rect()
		return n.WithRect(r.Offset(p.X-r.MinX, p.Y-r.MinY))
	})
}

// FadeColor animates the solid color of a rect node from its color to to.
// Nodes without a solid brush are left unchanged.
func FadeColor(m *Map, node *rendertree.RectNode, to rendertree.ColorRGBA, start, duration time.Duration) {
	AddTyped(m, node, func(n *rendertree.RectNode, t time.Duration) *rendertree.RectNode {
		solid, ok := n.Brush().(*rendertree.SolidColorBrush)
		if !ok {
			return n
		}
		c := LerpColor(solid.Color, to, Progress(t, start, duration))
		return n.WithBrush(&rendertree.SolidColorBrush{Color: c})
	})
}
