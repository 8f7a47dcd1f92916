// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// PolyColor fills a rect with a solid color.
type PolyColor struct {
	drawBase
	color fragment
}

// NewPolyColor creates a solid fill of rect. The color's alpha is
// multiplied by the state's opacity.
func NewPolyColor(state DrawState, rect geom.Rect, c rendertree.ColorRGBA) *PolyColor {
	return &PolyColor{
		drawBase: newDrawBase(state, rect),
		color:    premultiply(c, state.Opacity),
	}
}

// Color returns the premultiplied fill color.
func (d *PolyColor) Color() [4]float32 { return d.color }

// ExecutePreVertexBuffer implements DrawObject.
func (d *PolyColor) ExecutePreVertexBuffer(*GraphicsState) error { return nil }

// ExecuteUpdateVertexBuffer implements DrawObject.
func (d *PolyColor) ExecuteUpdateVertexBuffer(gs *GraphicsState) error {
	d.updateVertices(gs)
	return nil
}

// ExecuteRasterize implements DrawObject.
func (d *PolyColor) ExecuteRasterize(gs *GraphicsState) error {
	if err := gs.UseProgram(DrawPolyColor); err != nil {
		return err
	}
	c := d.color
	d.rasterize(gs, func(_, _ float32) fragment { return c })
	return nil
}

// Release implements DrawObject.
func (d *PolyColor) Release() {}

func premultiply(c rendertree.ColorRGBA, opacity float32) fragment {
	a := clamp01(c.A * opacity)
	return fragment{clamp01(c.R) * a, clamp01(c.G) * a, clamp01(c.B) * a, a}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
