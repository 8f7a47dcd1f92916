// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
)

// RectTexture draws an opaque textured rect.
type RectTexture struct {
	drawBase
	texture           *backend.Texture
	texcoordTransform geom.Matrix3
}

// NewRectTexture draws texture over rect. texcoordTransform maps the rect's
// unit coordinates to texture coordinates.
func NewRectTexture(state DrawState, rect geom.Rect, texture *backend.Texture, texcoordTransform geom.Matrix3) *RectTexture {
	return &RectTexture{
		drawBase:          newDrawBase(state, rect),
		texture:           texture,
		texcoordTransform: texcoordTransform,
	}
}

// Texture returns the sampled texture.
func (d *RectTexture) Texture() *backend.Texture { return d.texture }

// TexcoordTransform returns the texture coordinate transform.
func (d *RectTexture) TexcoordTransform() geom.Matrix3 { return d.texcoordTransform }

// ExecutePreVertexBuffer implements DrawObject.
func (d *RectTexture) ExecutePreVertexBuffer(*GraphicsState) error { return nil }

// ExecuteUpdateVertexBuffer implements DrawObject.
func (d *RectTexture) ExecuteUpdateVertexBuffer(gs *GraphicsState) error {
	d.updateVertices(gs)
	return nil
}

// ExecuteRasterize implements DrawObject.
func (d *RectTexture) ExecuteRasterize(gs *GraphicsState) error {
	if err := gs.UseProgram(DrawRectTexture); err != nil {
		return err
	}
	pix := d.texture.Pixels()
	if pix == nil {
		return nil
	}
	tc := d.texcoordTransform
	d.rasterize(gs, func(u, v float32) fragment {
		p := tc.MapPoint(geom.Pt(u, v))
		return sampleBilinear(pix, p.X, p.Y)
	})
	return nil
}

// Release implements DrawObject. The texture belongs to its image.
func (d *RectTexture) Release() {}

// sampleBilinear samples a premultiplied texture at normalized coordinates
// with clamp-to-edge addressing.
func sampleBilinear(img *image.RGBA, u, v float32) fragment {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	x := u*float32(w) - 0.5
	y := v*float32(h) - 0.5
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	c00 := texel(img, ix, iy, w, h)
	c10 := texel(img, ix+1, iy, w, h)
	c01 := texel(img, ix, iy+1, w, h)
	c11 := texel(img, ix+1, iy+1, w, h)

	var out fragment
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*fx
		bottom := c01[i] + (c11[i]-c01[i])*fx
		out[i] = top + (bottom-top)*fy
	}
	return out
}

func texel(img *image.RGBA, x, y, w, h int) fragment {
	x = min(max(x, 0), w-1)
	y = min(max(y, 0), h-1)
	i := y*img.Stride + x*4
	p := img.Pix[i : i+4 : i+4]
	return fragment{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}
