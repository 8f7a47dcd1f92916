// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/gogpu/renderpipe"
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rendertree"
)

// DefaultFaceCacheSize is the number of font sizes cached per shard.
const DefaultFaceCacheSize = 16

// Option configures a Renderer.
type Option func(*options)

type options struct {
	nested        []rasterizer.Option
	faceCacheSize int
	layerPoolSize int
}

// WithRasterizerOptions configures the nested rasterizers that draw filter
// sources. Their fallback and worker count cannot be overridden.
func WithRasterizerOptions(opts ...rasterizer.Option) Option {
	return func(o *options) {
		o.nested = append(o.nested, opts...)
	}
}

// WithFaceCacheSize sets how many font sizes are cached per shard.
func WithFaceCacheSize(n int) Option {
	return func(o *options) {
		o.faceCacheSize = n
	}
}

// WithLayerPoolSize sets how many idle filter layers are kept.
func WithLayerPoolSize(n int) Option {
	return func(o *options) {
		o.layerPoolSize = n
	}
}

// Renderer is a CPU fallback for the core rasterizer.
//
// A Renderer is not safe for concurrent use; it runs on the goroutine of
// the rasterizer it is plugged into.
type Renderer struct {
	gc     *backend.GraphicsContext
	opts   options
	faces  *faceCache
	layers *rasterizer.TargetPool

	// idle holds nested rasterizers not currently drawing. Nested filters
	// each take their own, so a rasterizer is never re-entered.
	idle   []*rasterizer.Rasterizer
	nested []*rasterizer.Rasterizer
}

// Ensure Renderer implements rasterizer.Fallback.
var _ rasterizer.Fallback = (*Renderer)(nil)

// New creates a fallback renderer allocating layers from gc.
func New(gc *backend.GraphicsContext, opts ...Option) *Renderer {
	o := options{
		faceCacheSize: DefaultFaceCacheSize,
		layerPoolSize: rasterizer.DefaultTargetPoolSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		gc:     gc,
		opts:   o,
		faces:  newFaceCache(o.faceCacheSize),
		layers: rasterizer.NewTargetPool(o.layerPoolSize),
	}
}

// Rasterize implements rasterizer.Fallback.
func (r *Renderer) Rasterize(node rendertree.Node, transform geom.Matrix3, target backend.RenderTarget) error {
	dst := target.ColorBuffer()
	switch n := node.(type) {
	case nil:
		return nil
	case *rendertree.RectNode:
		drawRect(dst, n, transform)
	case *rendertree.RectShadowNode:
		drawShadow(dst, n, transform)
	case *rendertree.TextNode:
		return r.drawText(dst, n, transform)
	case *rendertree.PunchThroughVideoNode:
		// The target is already transparent; the rasterizer copies it
		// without blending.
	case *rendertree.ImageNode:
		return drawImage(dst, n, transform)
	case *rendertree.FilterNode:
		return r.drawFilter(target, n, transform)
	case *rendertree.MatrixTransform3DNode:
		if rasterizer.CrossesViewer(n) {
			return r.drawPerspective(target, n, transform)
		}
		return r.withLayer(target, node, transform, nil)
	default:
		return r.withLayer(target, node, transform, nil)
	}
	return nil
}

func (r *Renderer) acquireNested() (*rasterizer.Rasterizer, error) {
	if k := len(r.idle); k > 0 {
		nr := r.idle[k-1]
		r.idle = r.idle[:k-1]
		return nr, nil
	}
	// Layers always start transparent.
	opts := append(slices.Clip(r.opts.nested),
		rasterizer.WithClearColor(color.RGBA{}),
		rasterizer.WithFallback(r),
		rasterizer.WithWorkers(1),
		rasterizer.WithTargetPoolSize(2),
	)
	nr, err := rasterizer.New(r.gc, opts...)
	if err != nil {
		return nil, fmt.Errorf("fallback: nested rasterizer: %w", err)
	}
	r.nested = append(r.nested, nr)
	renderpipe.Logger().Debug("fallback: nested rasterizer created", "count", len(r.nested))
	return nr, nil
}

func (r *Renderer) releaseNested(nr *rasterizer.Rasterizer) {
	r.idle = append(r.idle, nr)
}

// Close releases nested rasterizers, pooled layers and cached faces.
func (r *Renderer) Close() {
	for _, nr := range r.nested {
		nr.Close()
	}
	r.nested, r.idle = nil, nil
	r.layers.Clear()
	r.faces.faces.Clear()
}
