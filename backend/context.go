// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderpipe"
	"github.com/gogpu/renderpipe/geom"
)

// Errors returned by GraphicsContext operations.
var (
	// ErrInvalidSize is returned when a resource would have an empty size.
	ErrInvalidSize = errors.New("backend: invalid resource size")

	// ErrTooLarge is returned when a resource exceeds the maximum texture size.
	ErrTooLarge = errors.New("backend: resource exceeds maximum texture size")

	// ErrDestroyed is returned when a destroyed resource is used.
	ErrDestroyed = errors.New("backend: resource destroyed")

	// ErrNilImage is returned when texture data is missing.
	ErrNilImage = errors.New("backend: nil image data")

	// ErrUnsupportedFormat is returned for color formats the context cannot
	// allocate.
	ErrUnsupportedFormat = errors.New("backend: unsupported texture format")
)

// DefaultMaxTextureSize is the largest texture dimension allowed unless
// overridden with WithMaxTextureSize.
const DefaultMaxTextureSize = 8192

// ContextOption configures a GraphicsContext.
type ContextOption func(*GraphicsContext)

// WithMaxTextureSize sets the largest allowed texture dimension.
func WithMaxTextureSize(n int) ContextOption {
	return func(gc *GraphicsContext) {
		if n > 0 {
			gc.maxTextureSize = n
		}
	}
}

// GraphicsContext creates and tracks textures and render targets on a
// device.
type GraphicsContext struct {
	device         DeviceHandle
	halDevice      hal.Device
	maxTextureSize int

	liveTextures atomic.Int64
	liveHAL      atomic.Int64
	liveTargets  atomic.Int64
	uploads      atomic.Uint64
	readbacks    atomic.Uint64
}

// NewGraphicsContext creates a context on device. A nil device is replaced
// by NullDeviceHandle.
func NewGraphicsContext(device DeviceHandle, opts ...ContextOption) *GraphicsContext {
	if device == nil {
		device = NullDeviceHandle{}
	}
	gc := &GraphicsContext{
		device:         device,
		maxTextureSize: DefaultMaxTextureSize,
	}
	for _, opt := range opts {
		opt(gc)
	}
	return gc
}

// Device returns the host device.
func (gc *GraphicsContext) Device() DeviceHandle {
	return gc.device
}

// SurfaceFormat returns the color format of display targets: the device's
// preferred surface format when it is supported, RGBA8 otherwise.
func (gc *GraphicsContext) SurfaceFormat() gputypes.TextureFormat {
	if f := gc.device.SurfaceFormat(); isSupportedColorFormat(f) {
		return f
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// MaxTextureSize returns the largest allowed texture dimension.
func (gc *GraphicsContext) MaxTextureSize() int {
	return gc.maxTextureSize
}

// LiveTextures returns the number of textures created and not destroyed.
func (gc *GraphicsContext) LiveTextures() int {
	return int(gc.liveTextures.Load())
}

// LiveTargets returns the number of render targets created and not
// destroyed.
func (gc *GraphicsContext) LiveTargets() int {
	return int(gc.liveTargets.Load())
}

// Uploads returns the number of textures created from pixel data.
func (gc *GraphicsContext) Uploads() uint64 {
	return gc.uploads.Load()
}

// Readbacks returns the number of pixel readbacks performed.
func (gc *GraphicsContext) Readbacks() uint64 {
	return gc.readbacks.Load()
}

func (gc *GraphicsContext) checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	if w > gc.maxTextureSize || h > gc.maxTextureSize {
		return fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, w, h, gc.maxTextureSize)
	}
	return nil
}

// CreateTexture uploads data into a new texture that owns its pixels. The
// data is copied and may be reused by the caller.
func (gc *GraphicsContext) CreateTexture(data *image.RGBA) (*Texture, error) {
	if data == nil {
		return nil, ErrNilImage
	}
	b := data.Bounds()
	if err := gc.checkSize(b.Dx(), b.Dy()); err != nil {
		return nil, fmt.Errorf("backend: create texture: %w", err)
	}
	desc := DefaultTextureDescriptor(b.Dx(), b.Dy())
	desc.Label = "upload"
	halTex, err := gc.allocateHAL(desc)
	if err != nil {
		return nil, err
	}
	pix := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(pix, pix.Bounds(), data, b.Min, draw.Src)

	gc.uploads.Add(1)
	gc.liveTextures.Add(1)
	return &Texture{
		gc:     gc,
		desc:   desc,
		pixels: pix,
		opaque: pix.Opaque(),
		halTex: halTex,
	}, nil
}

// CreateTextureFromRenderTarget binds a texture to target's color store so
// that the target's contents can be sampled or read back. The texture
// borrows the store: destroying it releases the binding only.
func (gc *GraphicsContext) CreateTextureFromRenderTarget(target *OffscreenTarget) (*Texture, error) {
	if target == nil || target.destroyed {
		return nil, fmt.Errorf("backend: bind render target: %w", ErrDestroyed)
	}
	target.bindings++
	gc.liveTextures.Add(1)
	desc := DefaultTextureDescriptor(target.Width(), target.Height())
	desc.Format = target.Format()
	desc.Label = "offscreen-binding"
	return &Texture{
		gc:     gc,
		desc:   desc,
		pixels: target.color,
		source: target,
		halTex: target.halTex,
	}, nil
}

// CreateOffscreenRenderTarget allocates an RGBA8 render target of size with
// a depth buffer.
func (gc *GraphicsContext) CreateOffscreenRenderTarget(size geom.Size) (*OffscreenTarget, error) {
	if err := gc.checkSize(size.Width, size.Height); err != nil {
		return nil, fmt.Errorf("backend: create offscreen target: %w", err)
	}
	st, err := newTargetStore(gc, size, gputypes.TextureFormatRGBA8Unorm, "offscreen")
	if err != nil {
		return nil, err
	}
	return &OffscreenTarget{targetStore: st}, nil
}

// CreateDisplayTarget allocates the on-screen target in the context's
// surface format.
func (gc *GraphicsContext) CreateDisplayTarget(size geom.Size) (*DisplayTarget, error) {
	if err := gc.checkSize(size.Width, size.Height); err != nil {
		return nil, fmt.Errorf("backend: create display target: %w", err)
	}
	st, err := newTargetStore(gc, size, gc.SurfaceFormat(), "display")
	if err != nil {
		return nil, err
	}
	renderpipe.Logger().Debug("display target created",
		"width", size.Width, "height", size.Height, "format", st.format)
	return &DisplayTarget{targetStore: st}, nil
}

// CopyTexturePixelsRGBA reads back tex as tightly packed premultiplied
// RGBA8 rows, top row first.
func (gc *GraphicsContext) CopyTexturePixelsRGBA(tex *Texture) ([]byte, error) {
	if tex == nil || tex.destroyed {
		return nil, fmt.Errorf("backend: read back texture: %w", ErrDestroyed)
	}
	if tex.source != nil && tex.source.destroyed {
		return nil, fmt.Errorf("backend: read back texture: source target: %w", ErrDestroyed)
	}
	w, h := tex.Width(), tex.Height()
	out := make([]byte, w*h*4)
	src := tex.pixels
	for y := 0; y < h; y++ {
		copy(out[y*w*4:(y+1)*w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
	}
	gc.readbacks.Add(1)
	return out, nil
}
