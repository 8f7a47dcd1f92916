// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderpipe/geom"
)

func newHALContext(t *testing.T) *GraphicsContext {
	t.Helper()
	device, release, err := OpenNoopDevice()
	if err != nil {
		t.Fatalf("OpenNoopDevice() error = %v", err)
	}
	t.Cleanup(release)
	return NewGraphicsContext(nil, WithHALDevice(device))
}

func TestHALTexturePairing(t *testing.T) {
	gc := newHALContext(t)
	if gc.HALDevice() == nil {
		t.Fatal("HALDevice() = nil")
	}

	tex, err := gc.CreateTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex.DeviceTexture() == nil {
		t.Error("uploaded texture has no device texture")
	}
	target, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("CreateOffscreenRenderTarget() error = %v", err)
	}
	if got := gc.LiveHALTextures(); got != 2 {
		t.Errorf("LiveHALTextures() = %d, want 2", got)
	}

	// A binding shares the target's device texture.
	bound, err := gc.CreateTextureFromRenderTarget(target)
	if err != nil {
		t.Fatalf("CreateTextureFromRenderTarget() error = %v", err)
	}
	if bound.DeviceTexture() == nil {
		t.Error("bound texture has no device texture")
	}
	if got := gc.LiveHALTextures(); got != 2 {
		t.Errorf("after binding LiveHALTextures() = %d, want 2", got)
	}
	bound.Destroy()
	if got := gc.LiveHALTextures(); got != 2 {
		t.Errorf("destroying a binding freed the target: LiveHALTextures() = %d", got)
	}

	target.Destroy()
	target.Destroy()
	if target.DeviceTexture() != nil {
		t.Error("destroyed target kept its device texture")
	}
	tex.Destroy()
	tex.Destroy()
	if got := gc.LiveHALTextures(); got != 0 {
		t.Errorf("LiveHALTextures() = %d after destroying everything, want 0", got)
	}
}

func TestHALDisplayTarget(t *testing.T) {
	gc := newHALContext(t)
	display, err := gc.CreateDisplayTarget(geom.Size{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("CreateDisplayTarget() error = %v", err)
	}
	if display.DeviceTexture() == nil {
		t.Error("display target has no device texture")
	}
	display.Destroy()
	if got := gc.LiveHALTextures(); got != 0 {
		t.Errorf("LiveHALTextures() = %d, want 0", got)
	}
}

func TestWithoutHALDevice(t *testing.T) {
	gc := NewGraphicsContext(nil)
	tex, err := gc.CreateTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Destroy()
	if tex.DeviceTexture() != nil || gc.LiveHALTextures() != 0 {
		t.Error("device texture allocated without a HAL device")
	}
}

func TestTextureUsageToGPU(t *testing.T) {
	tests := []struct {
		usage TextureUsage
		want  gputypes.TextureUsage
	}{
		{0, gputypes.TextureUsageNone},
		{TextureUsageCopySrc, gputypes.TextureUsageCopySrc},
		{TextureUsageCopyDst | TextureUsageTextureBinding,
			gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding},
		{TextureUsageRenderAttachment, gputypes.TextureUsageRenderAttachment},
	}
	for _, tt := range tests {
		if got := tt.usage.gpu(); got != tt.want {
			t.Errorf("%b.gpu() = %b, want %b", tt.usage, got, tt.want)
		}
	}
}
