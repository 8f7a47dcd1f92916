// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"math"
	"slices"
	"time"

	"github.com/gogpu/renderpipe"
)

// SubmissionQueue is a bounded history of submissions with a smoothed
// render time.
//
// The render time does not jump to each new submission. When a submission
// arrives it becomes the target, and the render time moves linearly from
// wherever it was towards the target, reaching it one convergence window
// later. GetCurrentSubmission returns the submission closest to the render
// time, so irregular submission cadence does not show up as judder.
//
// SubmissionQueue is not safe for concurrent use. The pipeline only
// touches it from its rasterizer goroutine.
type SubmissionQueue struct {
	maxSize int
	window  time.Duration
	now     func() time.Time

	subs []Submission

	// Smoothing state, valid once started.
	started bool
	anchor  time.Duration
	target  time.Duration
	since   time.Time

	evicted uint64
}

// NewSubmissionQueue returns an empty queue holding at most maxSize
// submissions whose render time converges over the given window. A nil
// now uses time.Now. maxSize is raised to 1 if smaller.
func NewSubmissionQueue(maxSize int, convergence time.Duration, now func() time.Time) *SubmissionQueue {
	if now == nil {
		now = time.Now
	}
	return &SubmissionQueue{
		maxSize: max(maxSize, 1),
		window:  convergence,
		now:     now,
		subs:    make([]Submission, 0, max(maxSize, 1)+1),
	}
}

// PushSubmission appends s, evicting the oldest submission when the queue
// is full. The first push after construction or Reset snaps the render
// time to s.TimeOffset.
func (q *SubmissionQueue) PushSubmission(s Submission) {
	now := q.now()
	if q.started {
		q.anchor = q.smoothedAt(now)
	} else {
		q.anchor = s.TimeOffset
		q.started = true
	}
	q.target = s.TimeOffset
	q.since = now

	q.subs = append(q.subs, s)
	if n := len(q.subs) - q.maxSize; n > 0 {
		q.subs = slices.Delete(q.subs, 0, n)
		q.evicted += uint64(n)
		renderpipe.Logger().Warn("pipeline: submission queue full, evicted oldest",
			"evicted", n, "max", q.maxSize)
	}
}

// GetCurrentSubmission returns the submission whose time offset is closest
// to the current render time. When two are equally close the later one
// wins. It panics if the queue is empty.
func (q *SubmissionQueue) GetCurrentSubmission() Submission {
	if len(q.subs) == 0 {
		panic("pipeline: GetCurrentSubmission called on an empty submission queue")
	}
	t := q.smoothedAt(q.now())
	best := len(q.subs) - 1
	bestDist := distance(q.subs[best].TimeOffset, t)
	for i := best - 1; i >= 0; i-- {
		if d := distance(q.subs[i].TimeOffset, t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return q.subs[best]
}

// CurrentTime returns the smoothed render time, or zero before the first
// push.
func (q *SubmissionQueue) CurrentTime() time.Duration {
	return q.smoothedAt(q.now())
}

// Reset drops every submission and forgets the render time.
func (q *SubmissionQueue) Reset() {
	clear(q.subs)
	q.subs = q.subs[:0]
	q.started = false
	q.anchor, q.target = 0, 0
	q.since = time.Time{}
}

// Len returns the number of queued submissions.
func (q *SubmissionQueue) Len() int { return len(q.subs) }

// MaxSize returns the queue bound.
func (q *SubmissionQueue) MaxSize() int { return q.maxSize }

// Evicted returns how many submissions were dropped to respect the bound.
func (q *SubmissionQueue) Evicted() uint64 { return q.evicted }

// smoothedAt evaluates the render time at now. Degenerate inputs resolve
// to the target, which selects the latest submission.
func (q *SubmissionQueue) smoothedAt(now time.Time) time.Duration {
	if !q.started {
		return 0
	}
	if q.window <= 0 {
		return q.target
	}
	elapsed := max(now.Sub(q.since), 0)
	f := float64(elapsed) / float64(q.window)
	if f >= 1 || math.IsNaN(f) {
		return q.target
	}
	return q.anchor + time.Duration(float64(q.target-q.anchor)*f)
}

func distance(a, b time.Duration) time.Duration {
	if a > b {
		return a - b
	}
	return b - a
}
