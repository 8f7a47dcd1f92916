// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"errors"
	"fmt"

	"github.com/gogpu/renderpipe/rendertree"
)

var (
	// ErrNotImplemented is wrapped by every UnimplementedError.
	ErrNotImplemented = errors.New("rasterizer: render path not implemented")

	// ErrClosed is returned when a closed Rasterizer is used.
	ErrClosed = errors.New("rasterizer: closed")

	// ErrNilTarget is returned when Submit is called without a target.
	ErrNilTarget = errors.New("rasterizer: nil render target")

	// ErrNilContext is returned by New without a graphics context.
	ErrNilContext = errors.New("rasterizer: nil graphics context")
)

// UnimplementedError reports a node the core rasterizer could not draw
// itself.
type UnimplementedError struct {
	// Kind is the kind of the node.
	Kind rendertree.NodeKind

	// Feature names what made the node unsupported, such as "blur" or
	// "rounded corners".
	Feature string

	// Handled reports whether a fallback rasterizer drew the node.
	Handled bool
}

// Error implements error.
func (e *UnimplementedError) Error() string {
	if e.Handled {
		return fmt.Sprintf("rasterizer: %s: %s not implemented (drawn by fallback)", e.Kind, e.Feature)
	}
	return fmt.Sprintf("rasterizer: %s: %s not implemented", e.Kind, e.Feature)
}

// Unwrap returns ErrNotImplemented.
func (e *UnimplementedError) Unwrap() error {
	return ErrNotImplemented
}

// NewUnimplementedError returns an error for an unsupported feature of a
// node kind.
func NewUnimplementedError(kind rendertree.NodeKind, feature string) *UnimplementedError {
	return &UnimplementedError{Kind: kind, Feature: feature}
}
