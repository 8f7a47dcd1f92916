// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rasterizer converts render trees into draw objects and executes
// them against a render target.
//
// A frame goes through three steps:
//
//  1. A visitor walks the render tree, tracking the accumulated transform,
//     scissor rect, opacity and depth in a DrawState, culling nodes outside
//     the scissor and emitting draw objects into a DrawObjectManager.
//  2. Draws are classified at creation time. Opaque draws are bucketed by
//     DrawType; transparent draws keep traversal order and their world
//     bounds.
//  3. The manager executes all draws in three phases: offscreen setup,
//     vertex buffer update and rasterization. Opaque draws are rasterized
//     front to back with depth test and write; transparent draws follow in
//     traversal order with depth test and blending.
//
// Every draw receives the next depth quantum when it is added, so later
// draws always cover earlier ones regardless of execution order.
//
// Node kinds the core does not draw directly (text, shadows, rounded
// corners, gradients, complex filters, multi-plane images, punch-through
// video) are reported as UnimplementedError and, if a Fallback is
// configured, rendered by it into a pooled offscreen target that is
// composited like any other transparent draw.
//
// A Rasterizer and everything it creates must be used from a single
// goroutine, normally the pipeline's rasterizer loop.
package rasterizer
