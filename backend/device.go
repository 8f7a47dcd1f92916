// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so that any host
// in the gpucontext ecosystem can hand its device to the pipeline.
type DeviceHandle = gpucontext.DeviceProvider

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be read back.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be uploaded to.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be sampled.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be rendered to.
	TextureUsageRenderAttachment
)

// Has reports whether all flags in f are set.
func (u TextureUsage) Has(f TextureUsage) bool {
	return u&f == f
}

// TextureDescriptor describes a texture or render target allocation.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	Width  int
	Height int

	// Format is the pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// DefaultTextureDescriptor returns a sampled RGBA8 texture descriptor.
func DefaultTextureDescriptor(width, height int) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  TextureUsageTextureBinding | TextureUsageCopyDst | TextureUsageCopySrc,
	}
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for headless rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

// isSupportedColorFormat reports whether targets can be created in f.
func isSupportedColorFormat(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatRGBA8Unorm || f == gputypes.TextureFormatBGRA8Unorm
}
