// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"fmt"
	"image"
	"sync"

	"github.com/chewxy/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/internal/cache"
	"github.com/gogpu/renderpipe/rendertree"
)

var (
	regularOnce sync.Once
	regular     *opentype.Font
	regularErr  error
)

func regularFont() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = opentype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// faceKey is a font size in 1/64 pixel.
type faceKey fixed.Int26_6

func hashFaceKey(k faceKey) uint64 {
	return uint64(uint32(k)) * 0x9E3779B97F4A7C15
}

// faceCache holds opentype faces by pixel size.
type faceCache struct {
	faces *cache.Sharded[faceKey, font.Face]
}

func newFaceCache(capacity int) *faceCache {
	return &faceCache{faces: cache.NewSharded[faceKey, font.Face](capacity, hashFaceKey)}
}

func (fc *faceCache) face(size float32) (font.Face, error) {
	key := faceKey(fixed.Int26_6(size * 64))
	if f, ok := fc.faces.Get(key); ok {
		return f, nil
	}
	otf, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("fallback: parse font: %w", err)
	}
	f, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(key) / 64,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("fallback: font face: %w", err)
	}
	fc.faces.Set(key, f)
	return f, nil
}

// drawText renders the glyphs of n into an alpha mask at the transform's
// scale, then maps the mask through m.
func (r *Renderer) drawText(dst *image.RGBA, n *rendertree.TextNode, m geom.Matrix3) error {
	bounds := n.Bounds()
	if bounds.IsEmpty() || n.Text() == "" {
		return nil
	}
	scale := pixelScale(m)
	face, err := r.faces.face(n.FontSize() * scale)
	if err != nil {
		return err
	}

	const pad = 1
	w := int(math32.Ceil(bounds.Width()*scale)) + 2*pad
	h := int(math32.Ceil(bounds.Height()*scale)) + 2*pad
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	origin := n.Offset()
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(((origin.X-bounds.MinX)*scale + pad) * 64),
			Y: fixed.Int26_6(((origin.Y-bounds.MinY)*scale + pad) * 64),
		},
	}
	d.DrawString(n.Text())

	c := premultiply(n.Color())
	paint(dst, m, bounds, func(p geom.Point) premul {
		a := sampleAlpha(mask, (p.X-bounds.MinX)*scale+pad, (p.Y-bounds.MinY)*scale+pad)
		return c.scale(a)
	})
	return nil
}
