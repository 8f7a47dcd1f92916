// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"image"
	"image/draw"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rendertree"
)

// maxDirectBlurSigma is the largest blur applied at full resolution.
// Larger blurs run on a downsampled copy.
const maxDirectBlurSigma = 8

// drawFilter draws the filter's source into a layer with a nested
// rasterizer, applies blur, viewport clip and opacity in that order, then
// composites the layer into dst.
func (r *Renderer) drawFilter(dst backend.RenderTarget, n *rendertree.FilterNode, m geom.Matrix3) error {
	f := n.Filters()
	if f.MapToMesh != nil {
		return rasterizer.NewUnimplementedError(n.Kind(), "map to mesh")
	}
	return r.withLayer(dst, n.Source(), m, func(layer *image.RGBA) {
		if f.Blur != nil && f.Blur.Sigma > 0 {
			blur(layer, f.Blur.Sigma*pixelScale(m))
		}
		if f.Viewport != nil {
			clipToViewport(layer, m, f.Viewport)
		}
		if f.Opacity != nil {
			fade(layer, f.Opacity.Opacity)
		}
	})
}

// withLayer draws source through m into a transparent layer the size of
// dst, lets effect modify it and composites it over dst.
func (r *Renderer) withLayer(dst backend.RenderTarget, source rendertree.Node, m geom.Matrix3, effect func(*image.RGBA)) error {
	size := dst.Size()
	layer, err := r.renderLayer(size, source, m)
	if err != nil {
		return err
	}
	defer r.layers.Put(size, layer)

	img := layer.ColorBuffer()
	if effect != nil {
		effect(img)
	}
	out := dst.ColorBuffer()
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return nil
}

// renderLayer draws source through m into a pooled transparent layer of
// size with a nested rasterizer. The caller returns the layer to the pool.
func (r *Renderer) renderLayer(size geom.Size, source rendertree.Node, m geom.Matrix3) (*backend.OffscreenTarget, error) {
	layer, ok := r.layers.Take(size)
	if !ok {
		var err error
		if layer, err = r.gc.CreateOffscreenRenderTarget(size); err != nil {
			return nil, err
		}
	}
	nested, err := r.acquireNested()
	if err != nil {
		r.layers.Put(size, layer)
		return nil, err
	}
	err = nested.Submit(rendertree.NewMatrixTransformNode(source, m), layer)
	r.releaseNested(nested)
	if err != nil {
		r.layers.Put(size, layer)
		return nil, err
	}
	return layer, nil
}

// clipToViewport clears everything outside the viewport, antialiasing
// rounded corners.
func clipToViewport(img *image.RGBA, m geom.Matrix3, vf *rendertree.ViewportFilter) {
	inv, ok := m.Inverse()
	if !ok {
		clear(img.Pix)
		return
	}
	aa := 1 / pixelScale(m)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			i := (x - b.Min.X) * 4
			px := row[i : i+4 : i+4]
			if px[3] == 0 {
				continue
			}
			p := inv.MapPoint(geom.Pt(float32(x)+0.5, float32(y)+0.5))
			cov := roundedCoverage(p, vf.Viewport, vf.RoundedCorners, aa)
			if cov >= 1 {
				continue
			}
			for c := range px {
				px[c] = to8(float32(px[c]) / 255 * cov)
			}
		}
	}
}

// fade multiplies every channel by opacity.
func fade(img *image.RGBA, opacity float32) {
	opacity = clamp01(opacity)
	if opacity == 1 {
		return
	}
	for i, v := range img.Pix {
		img.Pix[i] = to8(float32(v) / 255 * opacity)
	}
}

// blur approximates a gaussian blur of standard deviation sigma pixels
// with three box blurs. Large blurs run on a downsampled copy.
func blur(img *image.RGBA, sigma float32) {
	if sigma <= 0 {
		return
	}
	if sigma <= maxDirectBlurSigma {
		boxBlur3(img, sigma)
		return
	}
	factor := int(math32.Ceil(sigma / maxDirectBlurSigma))
	b := img.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, xdraw.Src, nil)
	boxBlur3(small, sigma/float32(factor))
	xdraw.BiLinear.Scale(img, b, small, small.Bounds(), xdraw.Src, nil)
}

// boxBlur3 runs three horizontal and vertical box blur passes whose
// combined variance matches sigma.
func boxBlur3(img *image.RGBA, sigma float32) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]uint8, len(img.Pix))
	for _, r := range boxRadii(sigma) {
		if r == 0 {
			continue
		}
		boxPass(tmp, img.Pix, h, w, img.Stride, 4, r)
		boxPass(img.Pix, tmp, w, h, 4, img.Stride, r)
	}
}

// boxRadii returns three box radii approximating a gaussian.
func boxRadii(sigma float32) [3]int {
	const n = 3
	ideal := math32.Sqrt(12*sigma*sigma/n + 1)
	wl := int(math32.Floor(ideal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	mIdeal := (12*sigma*sigma - n*float32(wl*wl) - 4*n*float32(wl) - 3*n) / (-4*float32(wl) - 4)
	mm := int(math32.Round(mIdeal))
	var radii [3]int
	for i := range radii {
		size := wu
		if i < mm {
			size = wl
		}
		radii[i] = max((size-1)/2, 0)
	}
	return radii
}

// boxPass blurs lines of src into dst. Each of the count lines starts
// lineStep bytes after the previous one and holds length pixels spaced
// step bytes apart. Pixels beyond the ends are transparent.
func boxPass(dst, src []uint8, count, length, lineStep, step, radius int) {
	norm := 1 / float32(2*radius+1)
	for line := range count {
		base := line * lineStep
		var sum [4]int
		for i := 0; i <= radius && i < length; i++ {
			o := base + i*step
			for c := range sum {
				sum[c] += int(src[o+c])
			}
		}
		for i := range length {
			o := base + i*step
			for c := range sum {
				dst[o+c] = uint8(float32(sum[c])*norm + 0.5)
			}
			if add := i + radius + 1; add < length {
				a := base + add*step
				for c := range sum {
					sum[c] += int(src[a+c])
				}
			}
			if sub := i - radius; sub >= 0 {
				s := base + sub*step
				for c := range sum {
					sum[c] -= int(src[s+c])
				}
			}
		}
	}
}
