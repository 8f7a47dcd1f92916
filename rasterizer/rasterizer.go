// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"time"

	"github.com/gogpu/renderpipe"
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/internal/parallel"
	"github.com/gogpu/renderpipe/rendertree"
)

// FrameStats describes the last frame a Rasterizer drew.
type FrameStats struct {
	Nodes            int
	Culled           int
	OpaqueDraws      int
	TransparentDraws int
	FallbackDraws    int
	Unimplemented    int
	ProgramSwitches  int
	Duration         time.Duration
}

// Rasterizer draws render trees into render targets.
//
// A Rasterizer is not safe for concurrent use. Create, use and close it on
// the goroutine that owns its GraphicsContext.
type Rasterizer struct {
	gc       *backend.GraphicsContext
	opts     options
	programs *ProgramTable
	manager  *DrawObjectManager
	targets  *TargetPool
	workers  *parallel.WorkerPool
	provider *ResourceProvider
	last     FrameStats
	closed   bool
}

// New creates a rasterizer drawing with gc.
func New(gc *backend.GraphicsContext, opts ...Option) (*Rasterizer, error) {
	if gc == nil {
		return nil, ErrNilContext
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &Rasterizer{
		gc:       gc,
		opts:     o,
		programs: NewProgramTable(o.compiler),
		manager:  NewDrawObjectManager(),
		targets:  NewTargetPool(o.targetPoolSize),
		provider: &ResourceProvider{gc: gc},
	}
	if o.workers != 1 {
		r.workers = parallel.NewWorkerPool(o.workers)
	}
	return r, nil
}

// ResourceProvider returns the provider creating images for this
// rasterizer.
func (r *Rasterizer) ResourceProvider() *ResourceProvider { return r.provider }

// GraphicsContext returns the context the rasterizer draws with.
func (r *Rasterizer) GraphicsContext() *backend.GraphicsContext { return r.gc }

// Programs returns the shader program table.
func (r *Rasterizer) Programs() *ProgramTable { return r.programs }

// LastFrameStats returns statistics of the last completed frame.
func (r *Rasterizer) LastFrameStats() FrameStats { return r.last }

// Submit draws tree into target. The target is cleared first; a
// *backend.DisplayTarget is presented afterwards.
//
// Unimplemented nodes do not fail the frame unless the rasterizer is
// strict, in which case the frame is still drawn and presented and the
// unimplemented nodes are returned joined into one error. Any other error
// is a graphics failure.
func (r *Rasterizer) Submit(tree rendertree.Node, target backend.RenderTarget) error {
	if r.closed {
		return ErrClosed
	}
	if target == nil {
		return ErrNilTarget
	}
	ctx := context.Background()
	defer trace.StartRegion(ctx, "rasterizer.Submit").End()
	start := time.Now()

	var unimplemented []error
	cfg := &VisitorConfig{
		GraphicsContext: r.gc,
		Fallback:        r.opts.fallback,
		Targets:         r.targets,
		OnUnimplemented: func(err *UnimplementedError) {
			r.opts.onUnimplemented(err)
			if r.opts.strict {
				unimplemented = append(unimplemented, err)
			}
		},
	}

	target.Clear(r.opts.clearColor)
	gs := NewGraphicsState(target, r.programs, r.workers)
	defer r.manager.Reset()

	visitor := NewRenderTreeNodeVisitor(r.manager, InitialDrawState(target.Size()), cfg)
	trace.WithRegion(ctx, "rasterizer.visit", func() {
		visitor.Visit(tree)
	})
	if err := visitor.Err(); err != nil {
		return err
	}

	var err error
	trace.WithRegion(ctx, "rasterizer.execute", func() {
		err = r.execute(gs)
	})
	if err != nil {
		return err
	}
	if display, ok := target.(*backend.DisplayTarget); ok {
		display.Present()
	}

	vs := visitor.Stats()
	r.last = FrameStats{
		Nodes:            vs.Nodes,
		Culled:           vs.Culled,
		OpaqueDraws:      r.manager.OpaqueCount(),
		TransparentDraws: r.manager.TransparentCount(),
		FallbackDraws:    vs.FallbackDraws,
		Unimplemented:    vs.Unimplemented,
		ProgramSwitches:  gs.ProgramSwitches(),
		Duration:         time.Since(start),
	}
	renderpipe.Logger().Debug("rasterizer: frame",
		"nodes", r.last.Nodes,
		"culled", r.last.Culled,
		"opaque", r.last.OpaqueDraws,
		"transparent", r.last.TransparentDraws,
		"fallback", r.last.FallbackDraws,
		"duration", r.last.Duration)

	return errors.Join(unimplemented...)
}

func (r *Rasterizer) execute(gs *GraphicsState) error {
	if err := r.manager.ExecutePreVertexBuffer(gs); err != nil {
		return err
	}
	if err := r.manager.ExecuteUpdateVertexBuffer(gs); err != nil {
		return fmt.Errorf("rasterizer: vertex phase: %w", err)
	}
	return r.manager.ExecuteRasterize(gs)
}

// Close releases the pooled offscreen targets and worker goroutines.
// Images created by the resource provider are owned by their creators.
// Close is idempotent.
func (r *Rasterizer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.manager.Reset()
	r.targets.Clear()
	if r.workers != nil {
		r.workers.Close()
	}
}
