// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"time"

	"github.com/gogpu/renderpipe"
)

const (
	// DefaultMaxQueueSize bounds the submission backlog. Four is enough to
	// smooth a jittery producer without holding many trees alive.
	DefaultMaxQueueSize = 4

	// DefaultConvergence is how long the render time takes to catch up
	// with a new submission.
	DefaultConvergence = 500 * time.Millisecond
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	maxQueueSize  int
	convergence   time.Duration
	now           func() time.Time
	frameInterval time.Duration
	onFatal       func(error)
	loopName      string
}

func defaultOptions() options {
	return options{
		maxQueueSize: DefaultMaxQueueSize,
		convergence:  DefaultConvergence,
		now:          time.Now,
		onFatal:      panicOnFatal,
		loopName:     "Rasterizer",
	}
}

// WithMaxQueueSize bounds the number of queued submissions.
func WithMaxQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxQueueSize = n
		}
	}
}

// WithConvergence sets the render time convergence window. Zero or less
// always renders the latest submission.
func WithConvergence(d time.Duration) Option {
	return func(o *options) {
		o.convergence = d
	}
}

// WithClock replaces time.Now for submission smoothing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFrameInterval paces rasterization to at most one frame per interval.
// The default of zero draws as fast as the rasterizer goroutine allows.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		o.frameInterval = max(d, 0)
	}
}

// WithFatalErrorHandler sets the function called on the rasterizer
// goroutine when creating the rasterizer or drawing a frame fails. The
// default logs the error and panics.
func WithFatalErrorHandler(fn func(error)) Option {
	return func(o *options) {
		if fn != nil {
			o.onFatal = fn
		}
	}
}

// WithLoopName names the rasterizer goroutine's loop.
func WithLoopName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.loopName = name
		}
	}
}

func panicOnFatal(err error) {
	renderpipe.Logger().Error("pipeline: fatal rasterizer error", "err", err)
	panic(err)
}
