// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import "github.com/gogpu/renderpipe/geom"

// DrawState is the traversal state captured by every draw object.
type DrawState struct {
	// Transform maps node-local coordinates to target pixels.
	Transform geom.Matrix3

	// Scissor is the clip rectangle in target pixels.
	Scissor geom.IntRect

	// Opacity multiplies the alpha of everything drawn.
	Opacity float32

	// Depth orders the draw. Greater values are closer to the viewer.
	Depth float32
}

// IsVisible reports whether bounds, in the state's local coordinates,
// intersect the scissor rect.
func (s *DrawState) IsVisible(bounds geom.Rect) bool {
	return !s.Transform.MapRect(bounds).Intersect(s.Scissor.ToRect()).IsEmpty()
}
