// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrNoAdapter is returned when a HAL instance exposes no adapter.
var ErrNoAdapter = errors.New("backend: no HAL adapter")

// WithHALDevice makes the context allocate a HAL texture for every texture
// and render target it creates, and destroy it with the owning resource.
// The CPU store stays the source of truth for pixels.
func WithHALDevice(device hal.Device) ContextOption {
	return func(gc *GraphicsContext) {
		gc.halDevice = device
	}
}

// OpenNoopDevice opens the headless wgpu noop device. The returned func
// destroys the device and its instance.
func OpenNoopDevice() (hal.Device, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("backend: noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, ErrNoAdapter
	}
	opened, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("backend: open noop device: %w", err)
	}
	release := func() {
		opened.Device.Destroy()
		instance.Destroy()
	}
	return opened.Device, release, nil
}

// HALDevice returns the device set with WithHALDevice, or nil.
func (gc *GraphicsContext) HALDevice() hal.Device {
	return gc.halDevice
}

// LiveHALTextures returns the number of HAL textures allocated and not
// destroyed.
func (gc *GraphicsContext) LiveHALTextures() int {
	return int(gc.liveHAL.Load())
}

// allocateHAL creates the device texture paired with a resource described
// by desc. It returns nil without a HAL device.
func (gc *GraphicsContext) allocateHAL(desc TextureDescriptor) (hal.Texture, error) {
	if gc.halDevice == nil {
		return nil, nil
	}
	tex, err := gc.halDevice.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage.gpu(),
	})
	if err != nil {
		return nil, fmt.Errorf("backend: allocate device texture %q: %w", desc.Label, err)
	}
	gc.liveHAL.Add(1)
	return tex, nil
}

func (gc *GraphicsContext) releaseHAL(tex hal.Texture) {
	if tex == nil || gc.halDevice == nil {
		return
	}
	gc.halDevice.DestroyTexture(tex)
	gc.liveHAL.Add(-1)
}

// gpu converts usage flags to their WebGPU values.
func (u TextureUsage) gpu() gputypes.TextureUsage {
	var g gputypes.TextureUsage
	if u.Has(TextureUsageCopySrc) {
		g |= gputypes.TextureUsageCopySrc
	}
	if u.Has(TextureUsageCopyDst) {
		g |= gputypes.TextureUsageCopyDst
	}
	if u.Has(TextureUsageTextureBinding) {
		g |= gputypes.TextureUsageTextureBinding
	}
	if u.Has(TextureUsageRenderAttachment) {
		g |= gputypes.TextureUsageRenderAttachment
	}
	return g
}
