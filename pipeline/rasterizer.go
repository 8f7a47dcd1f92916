// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rasterizer/fallback"
	"github.com/gogpu/renderpipe/rendertree"
)

// Rasterizer draws render trees into render targets. A Pipeline only calls
// it from its rasterizer goroutine.
type Rasterizer interface {
	// Submit draws tree into target.
	Submit(tree rendertree.Node, target backend.RenderTarget) error

	// ResourceProvider returns the factory for images the rasterizer can
	// draw.
	ResourceProvider() *rasterizer.ResourceProvider

	// Close releases the rasterizer's resources.
	Close()
}

// CreateRasterizerFunc builds the rasterizer on the rasterizer goroutine.
type CreateRasterizerFunc func(gc *backend.GraphicsContext) (Rasterizer, error)

// Ensure *rasterizer.Rasterizer implements Rasterizer.
var _ Rasterizer = (*rasterizer.Rasterizer)(nil)

// NewRasterizerFunc returns a factory for the core rasterizer with the CPU
// fallback attached for paths the core does not draw itself. opts are
// applied after the fallback, so WithFallback in opts replaces it.
func NewRasterizerFunc(opts ...rasterizer.Option) CreateRasterizerFunc {
	return func(gc *backend.GraphicsContext) (Rasterizer, error) {
		fb := fallback.New(gc, fallback.WithRasterizerOptions(opts...))
		r, err := rasterizer.New(gc, append([]rasterizer.Option{rasterizer.WithFallback(fb)}, opts...)...)
		if err != nil {
			fb.Close()
			return nil, err
		}
		return &withFallback{Rasterizer: r, fb: fb}, nil
	}
}

// withFallback closes the fallback together with the rasterizer.
type withFallback struct {
	*rasterizer.Rasterizer
	fb *fallback.Renderer
}

func (r *withFallback) Close() {
	r.Rasterizer.Close()
	r.fb.Close()
}
