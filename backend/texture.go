// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderpipe/geom"
)

// Texture is a sampled image resource.
//
// A Texture either owns its pixel store or borrows the color store of an
// OffscreenTarget. See CreateTexture and CreateTextureFromRenderTarget.
type Texture struct {
	gc        *GraphicsContext
	desc      TextureDescriptor
	pixels    *image.RGBA
	source    *OffscreenTarget
	opaque    bool
	destroyed bool

	// halTex is the device texture; borrowed from source when bound to a
	// render target.
	halTex hal.Texture
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.desc.Height }

// Size returns the texture dimensions.
func (t *Texture) Size() geom.Size {
	return geom.Size{Width: t.desc.Width, Height: t.desc.Height}
}

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Descriptor returns the allocation parameters.
func (t *Texture) Descriptor() TextureDescriptor { return t.desc }

// IsOwned reports whether the texture owns its pixel store.
func (t *Texture) IsOwned() bool { return t.source == nil }

// IsOpaque reports whether every texel had alpha 1 at upload. Textures bound
// to render targets are never considered opaque.
func (t *Texture) IsOpaque() bool { return t.opaque }

// IsDestroyed reports whether Destroy has been called.
func (t *Texture) IsDestroyed() bool { return t.destroyed }

// Pixels returns the premultiplied texel store for sampling, or nil once
// the texture is destroyed.
func (t *Texture) Pixels() *image.RGBA {
	if t.destroyed {
		return nil
	}
	return t.pixels
}

// DeviceTexture returns the HAL texture backing t, or nil when the context
// has no HAL device.
func (t *Texture) DeviceTexture() hal.Texture { return t.halTex }

// Destroy releases the texture. An owned store is freed; a borrowed store
// is unbound from its render target, which stays alive. Calling Destroy
// twice is a no-op.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.source != nil {
		t.source.bindings--
		t.source = nil
	} else {
		t.gc.releaseHAL(t.halTex)
	}
	t.halTex = nil
	t.pixels = nil
	t.gc.liveTextures.Add(-1)
}
