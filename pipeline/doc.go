// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipeline schedules render tree submissions onto a dedicated
// rasterizer goroutine.
//
// Producers on any goroutine hand a [Submission] to [Pipeline.Submit]. The
// pipeline posts it to its rasterizer loop, where a [SubmissionQueue]
// bounds the backlog and smooths the submission timeline, and a repeating
// timer rasterizes the current submission into the display target as fast
// as the loop allows.
//
// The rasterizer goroutine is locked to its OS thread and is the only
// goroutine that touches the graphics context:
//
//	p := pipeline.New(pipeline.NewRasterizerFunc(), display, gc)
//	defer p.Close()
//
//	provider, err := p.ResourceProvider() // waits for the rasterizer
//	...
//	p.Submit(pipeline.Submission{RenderTree: tree, TimeOffset: t})
//
// A [Combiner] overlays a second tree, such as a debug console, on the
// main tree before it reaches the pipeline.
package pipeline
