// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rendertree"
)

func drawImage(dst *image.RGBA, n *rendertree.ImageNode, m geom.Matrix3) error {
	var src *image.RGBA
	switch img := n.Source().(type) {
	case nil:
		return nil
	case *backend.MultiPlaneImage:
		if img == nil {
			return nil
		}
		src = planesToRGBA(img.Planes())
	case *backend.Image:
		if img == nil {
			return nil
		}
		tex, err := img.EnsureTexture()
		if err != nil {
			return err
		}
		src = tex.Pixels()
	default:
		return rasterizer.NewUnimplementedError(n.Kind(), fmt.Sprintf("image source %T", img))
	}
	if src == nil {
		return nil
	}

	dest := n.DestinationRect()
	sb := src.Bounds()
	if n.LocalTransform().IsIdentity() && m.G == 0 && m.H == 0 && m.I == 1 {
		// Source pixels to destination rect to target.
		s2d := m.Multiply(geom.Translate(dest.MinX, dest.MinY)).
			Multiply(geom.Scale(dest.Width()/float32(sb.Dx()), dest.Height()/float32(sb.Dy()))).
			Multiply(geom.Translate(float32(-sb.Min.X), float32(-sb.Min.Y)))
		aff := f64.Aff3{
			float64(s2d.A), float64(s2d.B), float64(s2d.C),
			float64(s2d.D), float64(s2d.E), float64(s2d.F),
		}
		xdraw.BiLinear.Transform(dst, aff, src, sb, xdraw.Over, nil)
		return nil
	}

	tc := rasterizer.TexcoordTransform(n.LocalTransform())
	w, h := dest.Width(), dest.Height()
	paint(dst, m, dest, func(p geom.Point) premul {
		uv := tc.MapPoint(geom.Pt((p.X-dest.MinX)/w, (p.Y-dest.MinY)/h))
		return sampleBilinear(src, uv.X, uv.Y)
	})
	return nil
}

// planesToRGBA converts a YCbCr frame to RGBA.
func planesToRGBA(planes *image.YCbCr) *image.RGBA {
	b := planes.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, planes, b.Min, draw.Src)
	return rgba
}
