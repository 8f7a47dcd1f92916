// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"image/color"

	"github.com/gogpu/renderpipe"
)

// DefaultTargetPoolSize is the number of idle offscreen targets kept for
// fallback draws.
const DefaultTargetPoolSize = 8

// Option configures a Rasterizer.
type Option func(*options)

type options struct {
	fallback        Fallback
	strict          bool
	workers         int
	onUnimplemented func(*UnimplementedError)
	compiler        ShaderCompiler
	clearColor      color.RGBA
	targetPoolSize  int
}

func defaultOptions() options {
	return options{
		workers:         1,
		onUnimplemented: logUnimplemented,
		targetPoolSize:  DefaultTargetPoolSize,
	}
}

// WithFallback routes unimplemented nodes to f.
func WithFallback(f Fallback) Option {
	return func(o *options) {
		o.fallback = f
	}
}

// WithStrict makes Submit return the unimplemented nodes of a frame as an
// error, after the frame has been drawn.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithWorkers sets the number of goroutines rasterizing large draws.
// 1 draws on the calling goroutine; 0 or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithUnimplementedHandler replaces the default handler, which logs every
// unimplemented node.
func WithUnimplementedHandler(fn func(*UnimplementedError)) Option {
	return func(o *options) {
		if fn != nil {
			o.onUnimplemented = fn
		}
	}
}

// WithShaderCompiler replaces naga as the WGSL compiler.
func WithShaderCompiler(c ShaderCompiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithClearColor sets the color a target is cleared to before each frame.
// The default is transparent.
func WithClearColor(c color.RGBA) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithTargetPoolSize sets how many idle offscreen targets are kept.
func WithTargetPoolSize(n int) Option {
	return func(o *options) {
		o.targetPoolSize = max(n, 0)
	}
}

func logUnimplemented(err *UnimplementedError) {
	if err.Handled {
		renderpipe.Logger().Debug("rasterizer: fallback draw",
			"kind", err.Kind.String(), "feature", err.Feature)
		return
	}
	renderpipe.Logger().Error("rasterizer: unimplemented render path",
		"kind", err.Kind.String(), "feature", err.Feature)
}
