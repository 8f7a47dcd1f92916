// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fallback draws on the CPU the render tree nodes that the core
// rasterizer reports as unimplemented.
//
// A Renderer is plugged into a rasterizer with rasterizer.WithFallback. The
// rasterizer hands it one node at a time together with the transform from
// node space to an offscreen target; the Renderer draws the node into that
// target and the rasterizer composites the result in traversal order.
//
// Supported nodes:
//
//   - rects with rounded corners, borders or gradient brushes
//   - rect shadows, outset and inset, with gaussian blur
//   - text, drawn with the Go Regular font
//   - punch-through video, which leaves the target transparent
//   - filters with opacity, blur and rounded or transformed viewports; the
//     source subtree is drawn by a nested rasterizer first
//   - multi-plane (YCbCr) images
//
// Map-to-mesh filters are not supported and are reported as
// rasterizer.UnimplementedError.
package fallback
