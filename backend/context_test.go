// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderpipe/geom"
)

type bgraDevice struct{ NullDeviceHandle }

func (bgraDevice) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}

	// DeviceHandle is an alias, so any provider is accepted.
	var _ gpucontext.DeviceProvider = handle
}

func TestSurfaceFormat(t *testing.T) {
	tests := []struct {
		name   string
		device DeviceHandle
		want   gputypes.TextureFormat
	}{
		{"nil device", nil, gputypes.TextureFormatRGBA8Unorm},
		{"null device", NullDeviceHandle{}, gputypes.TextureFormatRGBA8Unorm},
		{"bgra device", bgraDevice{}, gputypes.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := NewGraphicsContext(tt.device)
			if got := gc.SurfaceFormat(); got != tt.want {
				t.Errorf("SurfaceFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextureUsageFlags(t *testing.T) {
	desc := DefaultTextureDescriptor(4, 4)
	if !desc.Usage.Has(TextureUsageTextureBinding | TextureUsageCopySrc) {
		t.Errorf("Usage = %b, missing binding or copy-src", desc.Usage)
	}
	if desc.Usage.Has(TextureUsageRenderAttachment) {
		t.Error("default texture should not be a render attachment")
	}
}

func TestCreateTextureOwnsCopy(t *testing.T) {
	gc := NewGraphicsContext(nil)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	tex, err := gc.CreateTexture(src)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	src.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})

	if got := tex.Pixels().RGBAAt(0, 0); got.R != 255 || got.G != 0 {
		t.Errorf("texel = %v, want red (upload must copy)", got)
	}
	if !tex.IsOwned() {
		t.Error("IsOwned() = false for uploaded texture")
	}
	if tex.IsOpaque() {
		t.Error("IsOpaque() = true for texture with transparent texels")
	}
	if gc.LiveTextures() != 1 || gc.Uploads() != 1 {
		t.Errorf("LiveTextures() = %d, Uploads() = %d, want 1, 1", gc.LiveTextures(), gc.Uploads())
	}

	tex.Destroy()
	tex.Destroy()
	if gc.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d after double Destroy, want 0", gc.LiveTextures())
	}
	if tex.Pixels() != nil {
		t.Error("Pixels() should be nil after Destroy")
	}
}

func TestCreateTextureErrors(t *testing.T) {
	gc := NewGraphicsContext(nil, WithMaxTextureSize(16))

	if _, err := gc.CreateTexture(nil); !errors.Is(err, ErrNilImage) {
		t.Errorf("CreateTexture(nil) error = %v, want ErrNilImage", err)
	}
	if _, err := gc.CreateTexture(image.NewRGBA(image.Rect(0, 0, 0, 4))); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("CreateTexture(empty) error = %v, want ErrInvalidSize", err)
	}
	if _, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: 32, Height: 1}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("CreateOffscreenRenderTarget(32x1) error = %v, want ErrTooLarge", err)
	}
	if gc.LiveTextures() != 0 || gc.LiveTargets() != 0 {
		t.Errorf("failed creations leaked: textures %d, targets %d", gc.LiveTextures(), gc.LiveTargets())
	}
}

func TestRenderTargetBinding(t *testing.T) {
	gc := NewGraphicsContext(nil)
	target, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: 3, Height: 2})
	if err != nil {
		t.Fatalf("CreateOffscreenRenderTarget() error = %v", err)
	}
	target.Clear(color.RGBA{B: 255, A: 255})

	tex, err := gc.CreateTextureFromRenderTarget(target)
	if err != nil {
		t.Fatalf("CreateTextureFromRenderTarget() error = %v", err)
	}
	if tex.IsOwned() {
		t.Error("IsOwned() = true for bound texture")
	}
	if target.Bindings() != 1 {
		t.Errorf("Bindings() = %d, want 1", target.Bindings())
	}

	pixels, err := gc.CopyTexturePixelsRGBA(tex)
	if err != nil {
		t.Fatalf("CopyTexturePixelsRGBA() error = %v", err)
	}
	if len(pixels) != 3*2*4 {
		t.Fatalf("len(pixels) = %d, want %d", len(pixels), 3*2*4)
	}
	for i := 0; i < len(pixels); i += 4 {
		if pixels[i+2] != 255 || pixels[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want opaque blue", i/4, pixels[i:i+4])
		}
	}

	// Destroying the texture releases only the binding.
	tex.Destroy()
	if target.Bindings() != 0 || target.IsDestroyed() {
		t.Errorf("after texture Destroy: Bindings() = %d, IsDestroyed() = %v", target.Bindings(), target.IsDestroyed())
	}
	if target.ColorBuffer().RGBAAt(0, 0).B != 255 {
		t.Error("target store cleared by texture Destroy")
	}
	if _, err := gc.CopyTexturePixelsRGBA(tex); !errors.Is(err, ErrDestroyed) {
		t.Errorf("readback of destroyed texture error = %v, want ErrDestroyed", err)
	}

	target.Destroy()
	target.Destroy()
	if gc.LiveTargets() != 0 {
		t.Errorf("LiveTargets() = %d, want 0", gc.LiveTargets())
	}
	if _, err := gc.CreateTextureFromRenderTarget(target); !errors.Is(err, ErrDestroyed) {
		t.Errorf("binding destroyed target error = %v, want ErrDestroyed", err)
	}
}

func TestDisplayTargetPresent(t *testing.T) {
	gc := NewGraphicsContext(bgraDevice{})
	display, err := gc.CreateDisplayTarget(geom.Size{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("CreateDisplayTarget() error = %v", err)
	}
	if display.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Fatalf("Format() = %v, want BGRA8Unorm", display.Format())
	}
	if display.Snapshot() != nil {
		t.Error("Snapshot() before Present should be nil")
	}

	var frames int
	display.OnPresent(func(*image.RGBA) { frames++ })
	display.Clear(color.RGBA{R: 255, A: 255})
	display.Present()

	front := display.FrontBuffer()
	if front[0] != 0 || front[2] != 255 {
		t.Errorf("front buffer pixel = %v, want BGRA red", front[:4])
	}
	if got := display.Snapshot().RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("Snapshot() pixel = %v, want red", got)
	}
	if display.PresentCount() != 1 || frames != 1 {
		t.Errorf("PresentCount() = %d, callbacks = %d, want 1, 1", display.PresentCount(), frames)
	}
}

func TestPresentCountFromAnotherGoroutine(t *testing.T) {
	gc := NewGraphicsContext(nil)
	display, err := gc.CreateDisplayTarget(geom.Size{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("CreateDisplayTarget() error = %v", err)
	}
	const n = 100
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range n {
			display.Present()
		}
	}()
	for last := uint64(0); ; {
		got := display.PresentCount()
		if got < last {
			t.Fatalf("PresentCount() went from %d to %d", last, got)
		}
		last = got
		if got == n {
			break
		}
	}
	<-done
}

func TestClearResetsDepth(t *testing.T) {
	gc := NewGraphicsContext(nil)
	target, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: 2, Height: 1})
	if err != nil {
		t.Fatal(err)
	}
	target.DepthBuffer()[1] = 0.5
	target.Clear(color.RGBA{})
	for i, d := range target.DepthBuffer() {
		if d != ClearDepth {
			t.Errorf("depth[%d] = %v, want %v", i, d, ClearDepth)
		}
	}
}

func TestImageLazyUpload(t *testing.T) {
	gc := NewGraphicsContext(nil)
	data := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for i := 3; i < len(data.Pix); i += 4 {
		data.Pix[i] = 255
	}
	img := NewImage(gc, data)

	if img.IsUploaded() || gc.Uploads() != 0 {
		t.Fatal("image uploaded before EnsureTexture")
	}
	if !img.IsOpaque() {
		t.Error("IsOpaque() = false for opaque data")
	}
	if got := img.Size(); got != (geom.Size{Width: 4, Height: 3}) {
		t.Errorf("Size() = %v, want 4x3", got)
	}

	tex1, err := img.EnsureTexture()
	if err != nil {
		t.Fatalf("EnsureTexture() error = %v", err)
	}
	tex2, _ := img.EnsureTexture()
	if tex1 != tex2 || gc.Uploads() != 1 {
		t.Errorf("EnsureTexture() uploaded %d times, want 1", gc.Uploads())
	}

	img.Release()
	if gc.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d after Release, want 0", gc.LiveTextures())
	}
}

func TestMultiPlaneImage(t *testing.T) {
	planes := image.NewYCbCr(image.Rect(0, 0, 8, 6), image.YCbCrSubsampleRatio420)
	m := NewMultiPlaneImage(planes)
	if got := m.Size(); got != (geom.Size{Width: 8, Height: 6}) {
		t.Errorf("Size() = %v, want 8x6", got)
	}
	if !m.IsOpaque() {
		t.Error("IsOpaque() = false")
	}
}
