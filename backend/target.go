// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderpipe/geom"
)

// ClearDepth is the depth buffer value after Clear. Draws are only visible
// at depths greater than it.
const ClearDepth float32 = 0

// RenderTarget is a destination for rasterized frames.
//
// Implementations are DisplayTarget and OffscreenTarget. The color store is
// always premultiplied RGBA8 in memory; Format reports the format the
// target presents in.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Size returns the target dimensions.
	Size() geom.Size

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// ColorBuffer returns the color attachment.
	ColorBuffer() *image.RGBA

	// DepthBuffer returns the depth attachment, one value per pixel in row
	// order.
	DepthBuffer() []float32

	// Clear fills the color attachment with c and resets the depth buffer to
	// ClearDepth.
	Clear(c color.RGBA)

	// Destroy releases the target. Calling Destroy twice is a no-op.
	Destroy()

	store() *targetStore
}

type targetStore struct {
	gc        *GraphicsContext
	format    gputypes.TextureFormat
	color     *image.RGBA
	depth     []float32
	destroyed bool
	bindings  int
	halTex    hal.Texture
}

func newTargetStore(gc *GraphicsContext, size geom.Size, format gputypes.TextureFormat, label string) (*targetStore, error) {
	halTex, err := gc.allocateHAL(TextureDescriptor{
		Label:  label,
		Width:  size.Width,
		Height: size.Height,
		Format: format,
		Usage:  TextureUsageRenderAttachment | TextureUsageTextureBinding | TextureUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}
	gc.liveTargets.Add(1)
	return &targetStore{
		gc:     gc,
		format: format,
		color:  image.NewRGBA(image.Rect(0, 0, size.Width, size.Height)),
		depth:  make([]float32, size.Width*size.Height),
		halTex: halTex,
	}, nil
}

func (s *targetStore) store() *targetStore { return s }

// Width returns the target width in pixels.
func (s *targetStore) Width() int { return s.color.Rect.Dx() }

// Height returns the target height in pixels.
func (s *targetStore) Height() int { return s.color.Rect.Dy() }

// Size returns the target dimensions.
func (s *targetStore) Size() geom.Size {
	return geom.Size{Width: s.Width(), Height: s.Height()}
}

// Format returns the pixel format of the target.
func (s *targetStore) Format() gputypes.TextureFormat { return s.format }

// ColorBuffer returns the color attachment.
func (s *targetStore) ColorBuffer() *image.RGBA { return s.color }

// DepthBuffer returns the depth attachment.
func (s *targetStore) DepthBuffer() []float32 { return s.depth }

// DeviceTexture returns the HAL color attachment, or nil when the context
// has no HAL device.
func (s *targetStore) DeviceTexture() hal.Texture { return s.halTex }

// IsDestroyed reports whether Destroy has been called.
func (s *targetStore) IsDestroyed() bool { return s.destroyed }

// Clear fills the color attachment with c and resets depth.
func (s *targetStore) Clear(c color.RGBA) {
	pix := s.color.Pix
	if len(pix) >= 4 {
		pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, c.A
		for filled := 4; filled < len(pix); filled *= 2 {
			copy(pix[filled:], pix[:filled])
		}
	}
	for i := range s.depth {
		s.depth[i] = ClearDepth
	}
}

// Destroy releases the target. Textures bound to the target keep the color
// store alive but can no longer be read back.
func (s *targetStore) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.depth = nil
	s.gc.releaseHAL(s.halTex)
	s.halTex = nil
	s.gc.liveTargets.Add(-1)
}

// OffscreenTarget is a render target that is never presented. Its contents
// are consumed by binding a texture to it.
type OffscreenTarget struct {
	*targetStore
}

// Bindings returns the number of live textures bound to the target.
func (t *OffscreenTarget) Bindings() int { return t.bindings }

// Ensure OffscreenTarget implements RenderTarget.
var _ RenderTarget = (*OffscreenTarget)(nil)

// DisplayTarget is the on-screen render target. Rendering goes to a back
// buffer; Present copies it to the front buffer in the display format.
type DisplayTarget struct {
	*targetStore

	front    []byte
	presents atomic.Uint64
	onFrame  func(frame *image.RGBA)
}

// Present makes the back buffer visible.
func (t *DisplayTarget) Present() {
	if t.destroyed {
		return
	}
	if t.front == nil {
		t.front = make([]byte, len(t.color.Pix))
	}
	copy(t.front, t.color.Pix)
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		swizzleRB(t.front)
	}
	t.presents.Add(1)
	if t.onFrame != nil {
		t.onFrame(t.color)
	}
}

// OnPresent registers fn to be called with the back buffer after every
// Present. fn runs on the presenting goroutine and must not retain frame.
func (t *DisplayTarget) OnPresent(fn func(frame *image.RGBA)) {
	t.onFrame = fn
}

// PresentCount returns the number of frames presented. It may be called
// from any goroutine.
func (t *DisplayTarget) PresentCount() uint64 { return t.presents.Load() }

// FrontBuffer returns the last presented frame in the display format, or
// nil if nothing was presented yet.
func (t *DisplayTarget) FrontBuffer() []byte { return t.front }

// Snapshot returns a copy of the last presented frame as RGBA.
func (t *DisplayTarget) Snapshot() *image.RGBA {
	if t.front == nil {
		return nil
	}
	img := image.NewRGBA(t.color.Rect)
	copy(img.Pix, t.front)
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		swizzleRB(img.Pix)
	}
	return img
}

// Ensure DisplayTarget implements RenderTarget.
var _ RenderTarget = (*DisplayTarget)(nil)

func swizzleRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
