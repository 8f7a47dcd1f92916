// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend owns the graphics resources used by the rasterizer.
//
// The rasterizer RECEIVES a device from the host application through a
// DeviceHandle and never creates one itself. On top of it, a
// GraphicsContext creates and tracks textures and render targets. All
// resources are backed by CPU pixel stores in the layout the device would
// use, so the pipeline can run headless and be read back deterministically.
//
// # Ownership
//
// Every Texture has exactly one owner. A texture created from pixel data
// owns its store and frees it on Destroy. A texture created from an
// OffscreenTarget borrows the target's store; Destroy releases the binding
// and leaves the target intact. Destroying a resource twice is a no-op.
//
// # Thread Affinity
//
// A GraphicsContext and the resources it creates must only be used from the
// goroutine that owns the context, normally the pipeline's rasterizer loop.
// Resource accounting (LiveTextures, LiveTargets) may be read from anywhere.
package backend
