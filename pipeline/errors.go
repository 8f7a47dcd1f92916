// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import "errors"

var (
	// ErrClosed is returned by calls on a closed Pipeline.
	ErrClosed = errors.New("pipeline: closed")

	// ErrNilRenderTree is returned when a submission has no render tree.
	ErrNilRenderTree = errors.New("pipeline: submission without render tree")

	// ErrNoRasterizer is returned when the rasterizer could not be
	// created or has been destroyed.
	ErrNoRasterizer = errors.New("pipeline: no rasterizer")
)
