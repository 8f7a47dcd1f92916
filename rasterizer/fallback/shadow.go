// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"image"
	"math"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// drawShadow draws the shadow of n. The blurred shadow of a rect is the
// product of two one-dimensional gaussian integrals, so it is evaluated in
// closed form per pixel.
func drawShadow(dst *image.RGBA, n *rendertree.RectShadowNode, m geom.Matrix3) {
	shadow := n.Shadow()
	sr := n.ShadowRect()
	c := premultiply(shadow.Color)
	box := n.Rect()

	if n.Inset() {
		paint(dst, m, box, func(p geom.Point) premul {
			return c.scale(1 - boxCoverage(p, sr, shadow.BlurSigma))
		})
		return
	}
	paint(dst, m, n.Bounds(), func(p geom.Point) premul {
		if box.Contains(p) {
			return premul{}
		}
		return c.scale(boxCoverage(p, sr, shadow.BlurSigma))
	})
}

// boxCoverage returns the value at p of rect r convolved with a gaussian
// of standard deviation sigma.
func boxCoverage(p geom.Point, r geom.Rect, sigma float32) float32 {
	if r.IsEmpty() {
		return 0
	}
	if sigma <= 0 {
		if r.Contains(p) {
			return 1
		}
		return 0
	}
	k := 1 / (float64(sigma) * math.Sqrt2)
	gx := 0.5 * (math.Erf((float64(p.X)-float64(r.MinX))*k) - math.Erf((float64(p.X)-float64(r.MaxX))*k))
	gy := 0.5 * (math.Erf((float64(p.Y)-float64(r.MinY))*k) - math.Erf((float64(p.Y)-float64(r.MaxY))*k))
	return clamp01(float32(gx * gy))
}
