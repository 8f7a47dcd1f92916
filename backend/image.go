// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"image"

	"github.com/gogpu/renderpipe/geom"
)

// Image is a single-plane RGBA image whose texture is uploaded on first
// use. It implements rendertree.Image.
//
// Images may be created on any goroutine; EnsureTexture and Release must
// run on the goroutine owning the GraphicsContext.
type Image struct {
	gc     *GraphicsContext
	data   *image.RGBA
	size   geom.Size
	opaque bool
	tex    *Texture
}

// NewImage wraps data. The caller must not modify data afterwards.
func NewImage(gc *GraphicsContext, data *image.RGBA) *Image {
	b := data.Bounds()
	return &Image{
		gc:     gc,
		data:   data,
		size:   geom.Size{Width: b.Dx(), Height: b.Dy()},
		opaque: data.Opaque(),
	}
}

// Size returns the image dimensions in pixels.
func (i *Image) Size() geom.Size { return i.size }

// IsOpaque reports whether every pixel has alpha 1.
func (i *Image) IsOpaque() bool { return i.opaque }

// IsUploaded reports whether the texture has been created.
func (i *Image) IsUploaded() bool { return i.tex != nil }

// EnsureTexture uploads the image if needed and returns its texture.
func (i *Image) EnsureTexture() (*Texture, error) {
	if i.tex != nil {
		return i.tex, nil
	}
	tex, err := i.gc.CreateTexture(i.data)
	if err != nil {
		return nil, fmt.Errorf("backend: upload image: %w", err)
	}
	i.tex = tex
	return tex, nil
}

// Release destroys the uploaded texture, if any. A later EnsureTexture
// uploads the image again.
func (i *Image) Release() {
	if i.tex != nil {
		i.tex.Destroy()
		i.tex = nil
	}
}

// MultiPlaneImage is a planar YCbCr image, such as a decoded video frame.
// It implements rendertree.Image.
type MultiPlaneImage struct {
	planes *image.YCbCr
}

// NewMultiPlaneImage wraps planes. The caller must not modify planes
// afterwards.
func NewMultiPlaneImage(planes *image.YCbCr) *MultiPlaneImage {
	return &MultiPlaneImage{planes: planes}
}

// Size returns the luma plane dimensions.
func (m *MultiPlaneImage) Size() geom.Size {
	b := m.planes.Bounds()
	return geom.Size{Width: b.Dx(), Height: b.Dy()}
}

// IsOpaque always returns true; YCbCr carries no alpha.
func (m *MultiPlaneImage) IsOpaque() bool { return true }

// Planes returns the underlying planes.
func (m *MultiPlaneImage) Planes() *image.YCbCr { return m.planes }
