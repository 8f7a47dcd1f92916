// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

func drawRect(dst *image.RGBA, n *rendertree.RectNode, m geom.Matrix3) {
	outer := n.Rect()
	radii := n.RoundedCorners()
	border := n.Border()
	content := n.ContentRect()
	inner := innerRadii(radii, border)
	aa := 1 / pixelScale(m)
	hasBorder := border != nil && content != outer
	brush := n.Brush()

	paint(dst, m, outer, func(p geom.Point) premul {
		cov := roundedCoverage(p, outer, radii, aa)
		if cov <= 0 {
			return premul{}
		}
		if hasBorder {
			innerCov := roundedCoverage(p, content, inner, aa)
			c := premultiply(borderSide(border, content, p).Color).scale(1 - innerCov)
			if brush != nil && innerCov > 0 {
				c = c.add(brushColor(brush, p).scale(innerCov))
			}
			return c.scale(cov)
		}
		if brush == nil {
			return premul{}
		}
		return brushColor(brush, p).scale(cov)
	})
}

// brushColor evaluates brush at p.
func brushColor(brush rendertree.Brush, p geom.Point) premul {
	switch b := brush.(type) {
	case *rendertree.SolidColorBrush:
		return premultiply(b.Color)
	case *rendertree.LinearGradientBrush:
		dx, dy := b.End.X-b.Start.X, b.End.Y-b.Start.Y
		l2 := dx*dx + dy*dy
		var t float32
		if l2 > 0 {
			t = ((p.X-b.Start.X)*dx + (p.Y-b.Start.Y)*dy) / l2
		}
		return premultiply(rendertree.ColorAt(b.Stops, t))
	case *rendertree.RadialGradientBrush:
		var t float32
		if b.RadiusX > 0 && b.RadiusY > 0 {
			nx, ny := (p.X-b.Center.X)/b.RadiusX, (p.Y-b.Center.Y)/b.RadiusY
			t = math32.Sqrt(nx*nx + ny*ny)
		}
		return premultiply(rendertree.ColorAt(b.Stops, t))
	default:
		return premul{}
	}
}

// borderSide returns the border side p lies on, given the content rect.
func borderSide(b *rendertree.Border, content geom.Rect, p geom.Point) rendertree.BorderSide {
	switch {
	case p.X < content.MinX:
		return b.Left
	case p.X >= content.MaxX:
		return b.Right
	case p.Y < content.MinY:
		return b.Top
	default:
		return b.Bottom
	}
}

// innerRadii shrinks the corner radii by the adjacent border widths.
func innerRadii(r *rendertree.RoundedCorners, b *rendertree.Border) *rendertree.RoundedCorners {
	if r == nil || b == nil {
		return r
	}
	shrink := func(c rendertree.RoundedCorner, h, v float32) rendertree.RoundedCorner {
		return rendertree.RoundedCorner{
			Horizontal: max(c.Horizontal-h, 0),
			Vertical:   max(c.Vertical-v, 0),
		}
	}
	return &rendertree.RoundedCorners{
		TopLeft:     shrink(r.TopLeft, b.Left.Width, b.Top.Width),
		TopRight:    shrink(r.TopRight, b.Right.Width, b.Top.Width),
		BottomRight: shrink(r.BottomRight, b.Right.Width, b.Bottom.Width),
		BottomLeft:  shrink(r.BottomLeft, b.Left.Width, b.Bottom.Width),
	}
}

// roundedCoverage returns how much of a pixel of size aa around p lies
// inside r with corners radii. Edges are sharp; corners are antialiased.
func roundedCoverage(p geom.Point, r geom.Rect, radii *rendertree.RoundedCorners, aa float32) float32 {
	if !r.Contains(p) {
		return 0
	}
	if radii.IsSquare() {
		return 1
	}
	var c rendertree.RoundedCorner
	var cx, cy float32
	switch {
	case p.X < r.MinX+radii.TopLeft.Horizontal && p.Y < r.MinY+radii.TopLeft.Vertical:
		c = radii.TopLeft
		cx, cy = r.MinX+c.Horizontal, r.MinY+c.Vertical
	case p.X > r.MaxX-radii.TopRight.Horizontal && p.Y < r.MinY+radii.TopRight.Vertical:
		c = radii.TopRight
		cx, cy = r.MaxX-c.Horizontal, r.MinY+c.Vertical
	case p.X > r.MaxX-radii.BottomRight.Horizontal && p.Y > r.MaxY-radii.BottomRight.Vertical:
		c = radii.BottomRight
		cx, cy = r.MaxX-c.Horizontal, r.MaxY-c.Vertical
	case p.X < r.MinX+radii.BottomLeft.Horizontal && p.Y > r.MaxY-radii.BottomLeft.Vertical:
		c = radii.BottomLeft
		cx, cy = r.MinX+c.Horizontal, r.MaxY-c.Vertical
	default:
		return 1
	}
	if c.IsSquare() {
		return 1
	}
	nx, ny := (p.X-cx)/c.Horizontal, (p.Y-cy)/c.Vertical
	dist := (math32.Sqrt(nx*nx+ny*ny) - 1) * min(c.Horizontal, c.Vertical)
	return clamp01(0.5 - dist/aa)
}
