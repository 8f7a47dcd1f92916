// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rendertree"
)

// drawPerspective draws a 3D-transformed subtree that reaches behind the
// viewer. The source is drawn flat into a layer; every target pixel is then
// mapped back through the inverse projection and dropped when it lands at
// w <= 0.
func (r *Renderer) drawPerspective(dst backend.RenderTarget, n *rendertree.MatrixTransform3DNode, m geom.Matrix3) error {
	inv, ok := m.Multiply(n.Transform().Project2D()).Inverse()
	local := n.Source().Bounds()
	box := local.RoundOut()
	if !ok || box.IsEmpty() {
		return nil
	}
	size := box.Size()
	if limit := r.gc.MaxTextureSize(); size.Width > limit || size.Height > limit {
		return rasterizer.NewUnimplementedError(n.Kind(), "perspective source larger than a texture")
	}
	layer, err := r.renderLayer(size, n.Source(), geom.Translate(float32(-box.MinX), float32(-box.MinY)))
	if err != nil {
		return err
	}
	defer r.layers.Put(size, layer)

	src := layer.ColorBuffer()
	out := dst.ColorBuffer()
	b := out.Bounds()
	ox, oy := float32(box.MinX), float32(box.MinY)
	fw, fh := float32(size.Width), float32(size.Height)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := out.Pix[(y-b.Min.Y)*out.Stride:]
		py := float32(y) + 0.5
		for x := b.Min.X; x < b.Max.X; x++ {
			px := float32(x) + 0.5
			// w of the inverse is 1/w of the forward projection.
			w := inv.G*px + inv.H*py + inv.I
			if w <= 0 {
				continue
			}
			sx := (inv.A*px + inv.B*py + inv.C) / w
			sy := (inv.D*px + inv.E*py + inv.F) / w
			if sx < local.MinX || sx >= local.MaxX || sy < local.MinY || sy >= local.MaxY {
				continue
			}
			c := sampleBilinear(src, (sx-ox)/fw, (sy-oy)/fh)
			if c[3] <= 0 {
				continue
			}
			i := (x - b.Min.X) * 4
			over(row[i:i+4:i+4], c)
		}
	}
	return nil
}
