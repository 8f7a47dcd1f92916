// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"time"

	"github.com/gogpu/renderpipe/animations"
	"github.com/gogpu/renderpipe/rendertree"
)

// Submission is one render tree handed to the pipeline with the
// animations to evaluate on it. A Submission is a value; render trees and
// animation maps are immutable and may be shared by several submissions.
type Submission struct {
	// RenderTree is the scene to draw. It must not be nil.
	RenderTree rendertree.Node

	// Animations are evaluated at TimeOffset before drawing. May be nil.
	Animations *animations.Map

	// TimeOffset is the timeline position of the submission.
	TimeOffset time.Duration

	// OnRasterized, if set, is called on the rasterizer goroutine after
	// each frame drawn from this submission.
	OnRasterized func()
}

// NewSubmission returns a submission of tree at offset without animations.
func NewSubmission(tree rendertree.Node, offset time.Duration) Submission {
	return Submission{RenderTree: tree, TimeOffset: offset}
}

// animatedTree returns the render tree with its animations applied.
func (s Submission) animatedTree() rendertree.Node {
	return s.Animations.Apply(s.RenderTree, s.TimeOffset)
}
