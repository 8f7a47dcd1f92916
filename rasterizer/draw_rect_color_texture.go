// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// GenerateTextureFunc produces the texture of a RectColorTexture during the
// offscreen phase. release is called once the frame no longer needs the
// texture.
type GenerateTextureFunc func(gs *GraphicsState) (tex *backend.Texture, texcoordTransform geom.Matrix3, release func(), err error)

// RectColorTexture draws a textured rect modulated by a color. Texels are
// treated as premultiplied.
type RectColorTexture struct {
	drawBase
	color             fragment
	texture           *backend.Texture
	texcoordTransform geom.Matrix3
	generate          GenerateTextureFunc
	release           func()
}

// NewRectColorTexture draws texture over rect multiplied by c.
func NewRectColorTexture(state DrawState, rect geom.Rect, c rendertree.ColorRGBA, texture *backend.Texture, texcoordTransform geom.Matrix3) *RectColorTexture {
	return &RectColorTexture{
		drawBase:          newDrawBase(state, rect),
		color:             premultiply(c, 1),
		texture:           texture,
		texcoordTransform: texcoordTransform,
	}
}

// NewGeneratedRectColorTexture draws a texture produced by generate during
// the offscreen phase.
func NewGeneratedRectColorTexture(state DrawState, rect geom.Rect, c rendertree.ColorRGBA, blend BlendType, generate GenerateTextureFunc) *RectColorTexture {
	d := &RectColorTexture{
		drawBase:          newDrawBase(state, rect),
		color:             premultiply(c, 1),
		texcoordTransform: geom.Identity(),
		generate:          generate,
	}
	d.blend = blend
	return d
}

// Color returns the premultiplied modulation color.
func (d *RectColorTexture) Color() [4]float32 { return d.color }

// Texture returns the sampled texture, or nil before generation.
func (d *RectColorTexture) Texture() *backend.Texture { return d.texture }

// TexcoordTransform returns the texture coordinate transform.
func (d *RectColorTexture) TexcoordTransform() geom.Matrix3 { return d.texcoordTransform }

// ExecutePreVertexBuffer generates the texture if needed.
func (d *RectColorTexture) ExecutePreVertexBuffer(gs *GraphicsState) error {
	if d.generate == nil || d.texture != nil {
		return nil
	}
	tex, tc, release, err := d.generate(gs)
	d.generate = nil
	if err != nil {
		return err
	}
	d.texture, d.texcoordTransform, d.release = tex, tc, release
	return nil
}

// ExecuteUpdateVertexBuffer implements DrawObject.
func (d *RectColorTexture) ExecuteUpdateVertexBuffer(gs *GraphicsState) error {
	if d.texture == nil {
		return nil
	}
	d.updateVertices(gs)
	return nil
}

// ExecuteRasterize implements DrawObject.
func (d *RectColorTexture) ExecuteRasterize(gs *GraphicsState) error {
	if d.texture == nil {
		return nil
	}
	if err := gs.UseProgram(DrawRectColorTexture); err != nil {
		return err
	}
	pix := d.texture.Pixels()
	if pix == nil {
		return nil
	}
	tc, c := d.texcoordTransform, d.color
	d.rasterize(gs, func(u, v float32) fragment {
		p := tc.MapPoint(geom.Pt(u, v))
		t := sampleBilinear(pix, p.X, p.Y)
		return fragment{t[0] * c[0], t[1] * c[1], t[2] * c[2], t[3] * c[3]}
	})
	return nil
}

// Release implements DrawObject.
func (d *RectColorTexture) Release() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}
