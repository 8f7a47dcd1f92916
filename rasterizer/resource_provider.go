// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"image"
	"image/draw"

	"github.com/gogpu/renderpipe/backend"
)

// ResourceProvider creates images that render trees drawn by its
// rasterizer may reference. Images upload their texture lazily on the
// rasterizer goroutine the first time they are drawn, so creating them is
// safe from any goroutine.
type ResourceProvider struct {
	gc *backend.GraphicsContext
}

// GraphicsContext returns the context images are created for.
func (p *ResourceProvider) GraphicsContext() *backend.GraphicsContext { return p.gc }

// CreateImage wraps decoded premultiplied RGBA pixels. The pixels must not
// be modified afterwards.
func (p *ResourceProvider) CreateImage(rgba *image.RGBA) (*backend.Image, error) {
	if rgba == nil {
		return nil, backend.ErrNilImage
	}
	if rgba.Rect.Empty() {
		return nil, backend.ErrInvalidSize
	}
	return backend.NewImage(p.gc, rgba), nil
}

// CreateImageFromImage converts any image to premultiplied RGBA and wraps
// it.
func (p *ResourceProvider) CreateImageFromImage(src image.Image) (*backend.Image, error) {
	if src == nil {
		return nil, backend.ErrNilImage
	}
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return p.CreateImage(rgba)
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, src, b.Min, draw.Src)
	return p.CreateImage(rgba)
}

// CreateMultiPlaneImage wraps YCbCr planes, as produced by video decoders.
func (p *ResourceProvider) CreateMultiPlaneImage(planes *image.YCbCr) (*backend.MultiPlaneImage, error) {
	if planes == nil {
		return nil, backend.ErrNilImage
	}
	if planes.Rect.Empty() {
		return nil, backend.ErrInvalidSize
	}
	return backend.NewMultiPlaneImage(planes), nil
}
