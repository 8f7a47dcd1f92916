// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// premul is a premultiplied color with float channels in [0, 1].
type premul [4]float32

func premultiply(c rendertree.ColorRGBA) premul {
	a := clamp01(c.A)
	return premul{clamp01(c.R) * a, clamp01(c.G) * a, clamp01(c.B) * a, a}
}

func (c premul) scale(k float32) premul {
	return premul{c[0] * k, c[1] * k, c[2] * k, c[3] * k}
}

func (c premul) add(o premul) premul {
	return premul{c[0] + o[0], c[1] + o[1], c[2] + o[2], c[3] + o[3]}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// pixelScale returns the linear scale of m, the number of target pixels
// per local unit.
func pixelScale(m geom.Matrix3) float32 {
	s := math32.Sqrt(math32.Abs(m.A*m.E - m.B*m.D))
	if s == 0 || math32.IsNaN(s) {
		return 1
	}
	return s
}

// paint composites shade over dst for every pixel whose center maps into
// local through the inverse of m. shade receives the local point.
func paint(dst *image.RGBA, m geom.Matrix3, local geom.Rect, shade func(p geom.Point) premul) {
	inv, ok := m.Inverse()
	if !ok || local.IsEmpty() {
		return
	}
	b := dst.Bounds()
	box := m.MapRect(local).RoundOut().Intersect(geom.IntRect{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y})
	for y := box.MinY; y < box.MaxY; y++ {
		row := dst.Pix[(y-b.Min.Y)*dst.Stride:]
		for x := box.MinX; x < box.MaxX; x++ {
			p := inv.MapPoint(geom.Pt(float32(x)+0.5, float32(y)+0.5))
			if p.X < local.MinX || p.X >= local.MaxX || p.Y < local.MinY || p.Y >= local.MaxY {
				continue
			}
			c := shade(p)
			if c[3] <= 0 {
				continue
			}
			i := (x - b.Min.X) * 4
			over(row[i:i+4:i+4], c)
		}
	}
}

// over composites src over the premultiplied pixel dst.
func over(dst []uint8, src premul) {
	k := 1 - src[3]
	for i := range 4 {
		dst[i] = to8(src[i] + float32(dst[i])/255*k)
	}
}

// sampleBilinear samples img at normalized coordinates (u, v) with
// clamp-to-edge addressing.
func sampleBilinear(img *image.RGBA, u, v float32) premul {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return premul{}
	}
	x := u*float32(w) - 0.5
	y := v*float32(h) - 0.5
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	texel := func(tx, ty int) premul {
		tx = min(max(tx, 0), w-1)
		ty = min(max(ty, 0), h-1)
		i := ty*img.Stride + tx*4
		p := img.Pix[i : i+4 : i+4]
		return premul{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
	}
	c00, c10 := texel(ix, iy), texel(ix+1, iy)
	c01, c11 := texel(ix, iy+1), texel(ix+1, iy+1)
	var out premul
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*fx
		bottom := c01[i] + (c11[i]-c01[i])*fx
		out[i] = top + (bottom-top)*fy
	}
	return out
}

// sampleAlpha samples an alpha mask at pixel coordinates with bilinear
// filtering; outside the mask is transparent.
func sampleAlpha(mask *image.Alpha, x, y float32) float32 {
	x -= 0.5
	y -= 0.5
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	b := mask.Bounds()
	at := func(tx, ty int) float32 {
		if tx < b.Min.X || ty < b.Min.Y || tx >= b.Max.X || ty >= b.Max.Y {
			return 0
		}
		return float32(mask.Pix[(ty-b.Min.Y)*mask.Stride+(tx-b.Min.X)]) / 255
	}
	top := at(ix, iy) + (at(ix+1, iy)-at(ix, iy))*fx
	bottom := at(ix, iy+1) + (at(ix+1, iy+1)-at(ix, iy+1))*fx
	return top + (bottom-top)*fy
}
