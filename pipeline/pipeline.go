// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/renderpipe"
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/internal/taskloop"
	"github.com/gogpu/renderpipe/rasterizer"
)

// State is the lifecycle stage of a Pipeline.
type State int32

const (
	// StateConstructed is the state between New and the start of
	// rasterizer creation.
	StateConstructed State = iota
	// StateRasterizerInitializing means the rasterizer is being created.
	StateRasterizerInitializing
	// StateActive means the pipeline accepts and draws submissions.
	StateActive
	// StateShuttingDown means Close is tearing down the rasterizer.
	StateShuttingDown
	// StateDestroyed means the rasterizer goroutine has exited.
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "Constructed"
	case StateRasterizerInitializing:
		return "RasterizerInitializing"
	case StateActive:
		return "Active"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateDestroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// RasterizationCompleteFunc receives the result of RasterizeToRGBAPixels:
// tightly packed RGBA rows of a frame of the given size.
type RasterizationCompleteFunc func(pixels []byte, size geom.Size, err error)

// Stats are pipeline counters. They may be read from any goroutine.
type Stats struct {
	Submissions uint64
	Frames      uint64
	Snapshots   uint64
	Evicted     uint64
	QueueLen    int
	LastFrame   time.Duration
}

// Pipeline owns a rasterizer goroutine and draws the submissions it is
// given into a render target.
//
// All methods are safe for concurrent use. ResourceProvider and Clear
// block; every other call only posts work to the rasterizer goroutine.
type Pipeline struct {
	opts   options
	target backend.RenderTarget
	gc     *backend.GraphicsContext
	loop   *taskloop.Loop

	state atomic.Int32

	// ready is closed once rasterizer creation finished; provider and
	// createErr are written before.
	ready     chan struct{}
	provider  *rasterizer.ResourceProvider
	createErr error

	// Owned by the rasterizer goroutine; set by the first task.
	rast  *taskloop.Bound[Rasterizer]
	queue *taskloop.Bound[*SubmissionQueue]
	timer *taskloop.Bound[*taskloop.RepeatingTimer]

	submissions atomic.Uint64
	frames      atomic.Uint64
	snapshots   atomic.Uint64
	evicted     atomic.Uint64
	queueLen    atomic.Int64
	lastFrame   atomic.Int64

	closeOnce sync.Once
}

// New starts the rasterizer goroutine and asks it to create the rasterizer
// with create. New does not wait for the rasterizer; ResourceProvider
// does.
func New(create CreateRasterizerFunc, target backend.RenderTarget, gc *backend.GraphicsContext, opts ...Option) *Pipeline {
	defer trace.StartRegion(context.Background(), "pipeline.New").End()

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pipeline{
		opts:   o,
		target: target,
		gc:     gc,
		loop:   taskloop.New(o.loopName),
		ready:  make(chan struct{}),
	}
	p.state.Store(int32(StateConstructed))
	_ = p.loop.Post(func(tc *taskloop.Context) {
		p.initializeRasterizer(tc, create)
	})
	return p
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// ResourceProvider waits until the rasterizer exists and returns its
// resource provider.
func (p *Pipeline) ResourceProvider() (*rasterizer.ResourceProvider, error) {
	<-p.ready
	if p.createErr != nil {
		return nil, p.createErr
	}
	if p.State() >= StateShuttingDown {
		return nil, ErrClosed
	}
	return p.provider, nil
}

// Submit queues s for rasterization. Submissions are applied in the order
// Submit is called.
func (p *Pipeline) Submit(s Submission) error {
	defer trace.StartRegion(context.Background(), "pipeline.Submit").End()
	if s.RenderTree == nil {
		return ErrNilRenderTree
	}
	if p.State() >= StateShuttingDown {
		return ErrClosed
	}
	if err := p.loop.Post(func(tc *taskloop.Context) {
		p.setNewRenderTree(tc, s)
	}); err != nil {
		return ErrClosed
	}
	return nil
}

// Clear drops every queued submission and stops drawing. It returns once
// the rasterizer goroutine has done so; submissions posted before Clear
// are dropped too.
func (p *Pipeline) Clear() error {
	defer trace.StartRegion(context.Background(), "pipeline.Clear").End()
	if err := p.loop.PostAndWait(p.clearCurrentRenderTree); err != nil {
		return ErrClosed
	}
	return nil
}

// RasterizeToRGBAPixels draws s into an offscreen target the size of the
// display target and hands the pixels to complete. When called off the
// rasterizer goroutine the work is posted there and RasterizeToRGBAPixels
// returns immediately; complete then runs on the rasterizer goroutine.
func (p *Pipeline) RasterizeToRGBAPixels(s Submission, complete RasterizationCompleteFunc) error {
	defer trace.StartRegion(context.Background(), "pipeline.RasterizeToRGBAPixels").End()
	if s.RenderTree == nil {
		return ErrNilRenderTree
	}
	task := func(tc *taskloop.Context) {
		p.rasterizeToRGBAPixels(tc, s, complete)
	}
	var err error
	if p.loop.RunsTasksOnCurrentGoroutine() {
		err = p.loop.PostAndWait(task)
	} else {
		err = p.loop.Post(task)
	}
	if err != nil {
		return ErrClosed
	}
	return nil
}

// Close stops drawing, destroys the rasterizer on its goroutine and stops
// the goroutine. It waits for the teardown and is idempotent. Close must
// not be called from the rasterizer goroutine.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		defer trace.StartRegion(context.Background(), "pipeline.Close").End()
		p.state.Store(int32(StateShuttingDown))
		_ = p.loop.PostAndWait(p.shutdownRasterizer)
		p.loop.Stop()
		p.state.Store(int32(StateDestroyed))
		renderpipe.Logger().Info("pipeline: shut down",
			"frames", p.frames.Load(), "submissions", p.submissions.Load())
	})
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Submissions: p.submissions.Load(),
		Frames:      p.frames.Load(),
		Snapshots:   p.snapshots.Load(),
		Evicted:     p.evicted.Load(),
		QueueLen:    int(p.queueLen.Load()),
		LastFrame:   time.Duration(p.lastFrame.Load()),
	}
}

func (p *Pipeline) initializeRasterizer(tc *taskloop.Context, create CreateRasterizerFunc) {
	defer trace.StartRegion(context.Background(), "pipeline.initializeRasterizer").End()
	defer close(p.ready)

	p.state.CompareAndSwap(int32(StateConstructed), int32(StateRasterizerInitializing))
	p.queue = taskloop.NewBound(tc, NewSubmissionQueue(p.opts.maxQueueSize, p.opts.convergence, p.opts.now))
	p.timer = taskloop.NewBound[*taskloop.RepeatingTimer](tc, nil)
	p.rast = taskloop.NewBound[Rasterizer](tc, nil)

	if create == nil {
		p.createErr = ErrNoRasterizer
		p.opts.onFatal(p.createErr)
		return
	}
	r, err := create(p.gc)
	if err == nil && r == nil {
		err = ErrNoRasterizer
	}
	if err != nil {
		p.createErr = fmt.Errorf("pipeline: create rasterizer: %w", err)
		p.opts.onFatal(p.createErr)
		return
	}
	p.rast.Set(tc, r)
	p.provider = r.ResourceProvider()
	p.state.CompareAndSwap(int32(StateRasterizerInitializing), int32(StateActive))
	renderpipe.Logger().Info("pipeline: rasterizer ready", "loop", p.loop.Name())
}

func (p *Pipeline) setNewRenderTree(tc *taskloop.Context, s Submission) {
	defer trace.StartRegion(context.Background(), "pipeline.setNewRenderTree").End()
	// Submissions that raced Close are dropped.
	if p.State() >= StateShuttingDown {
		renderpipe.Logger().Debug("pipeline: submission dropped after close", "loop", p.loop.Name())
		return
	}

	q := p.queue.Get(tc)
	q.PushSubmission(s)
	p.submissions.Add(1)
	p.syncQueueStats(q)

	if p.timer.Get(tc) == nil {
		t := taskloop.NewRepeatingTimer(p.loop, p.opts.frameInterval, p.rasterizeCurrentTree)
		t.Reset(tc)
		p.timer.Set(tc, t)
	}
}

func (p *Pipeline) clearCurrentRenderTree(tc *taskloop.Context) {
	defer trace.StartRegion(context.Background(), "pipeline.clearCurrentRenderTree").End()
	p.stopTimer(tc)
	q := p.queue.Get(tc)
	q.Reset()
	p.syncQueueStats(q)
}

func (p *Pipeline) rasterizeCurrentTree(tc *taskloop.Context) {
	defer trace.StartRegion(context.Background(), "pipeline.rasterizeCurrentTree").End()
	if p.State() >= StateShuttingDown {
		p.stopTimer(tc)
		return
	}
	q := p.queue.Get(tc)
	if q.Len() == 0 {
		p.stopTimer(tc)
		return
	}
	if err := p.rasterizeSubmission(tc, q.GetCurrentSubmission(), p.target); err != nil {
		p.stopTimer(tc)
		p.opts.onFatal(err)
	}
}

func (p *Pipeline) rasterizeToRGBAPixels(tc *taskloop.Context, s Submission, complete RasterizationCompleteFunc) {
	defer trace.StartRegion(context.Background(), "pipeline.rasterizeToRGBAPixels").End()
	size := p.target.Size()
	pixels, err := p.snapshot(tc, s, size)
	if err == nil {
		p.snapshots.Add(1)
	}
	if complete != nil {
		complete(pixels, size, err)
	}
}

func (p *Pipeline) snapshot(tc *taskloop.Context, s Submission, size geom.Size) ([]byte, error) {
	target, err := p.gc.CreateOffscreenRenderTarget(size)
	if err != nil {
		return nil, err
	}
	defer target.Destroy()

	if err := p.rasterizeSubmission(tc, s, target); err != nil {
		return nil, err
	}
	tex, err := p.gc.CreateTextureFromRenderTarget(target)
	if err != nil {
		return nil, err
	}
	defer tex.Destroy()
	return p.gc.CopyTexturePixelsRGBA(tex)
}

// rasterizeSubmission animates and draws s into target. Unimplemented
// render paths are logged; any other error is returned.
func (p *Pipeline) rasterizeSubmission(tc *taskloop.Context, s Submission, target backend.RenderTarget) error {
	r := p.rast.Get(tc)
	if r == nil {
		return ErrNoRasterizer
	}
	start := time.Now()
	err := r.Submit(s.animatedTree(), target)
	if err != nil && !errors.Is(err, rasterizer.ErrNotImplemented) {
		return fmt.Errorf("pipeline: rasterize: %w", err)
	}
	if err != nil {
		renderpipe.Logger().Warn("pipeline: frame drawn with unimplemented paths", "err", err)
	}
	p.frames.Add(1)
	p.lastFrame.Store(int64(time.Since(start)))
	if s.OnRasterized != nil {
		s.OnRasterized()
	}
	return nil
}

func (p *Pipeline) shutdownRasterizer(tc *taskloop.Context) {
	defer trace.StartRegion(context.Background(), "pipeline.shutdownRasterizer").End()
	p.stopTimer(tc)
	q := p.queue.Get(tc)
	q.Reset()
	p.syncQueueStats(q)
	if r := p.rast.Take(tc); r != nil {
		r.Close()
	}
}

func (p *Pipeline) stopTimer(tc *taskloop.Context) {
	if t := p.timer.Take(tc); t != nil {
		t.Stop(tc)
	}
}

func (p *Pipeline) syncQueueStats(q *SubmissionQueue) {
	p.queueLen.Store(int64(q.Len()))
	p.evicted.Store(q.Evicted())
}
