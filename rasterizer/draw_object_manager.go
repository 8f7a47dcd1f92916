// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderpipe/geom"
)

// TransparentDraw is a transparent draw object with its world-space bounds.
type TransparentDraw struct {
	Object DrawObject
	Type   DrawType
	Bounds geom.Rect
}

// DrawObjectManager collects the draw objects of one frame and executes
// them in three phases.
//
// Opaque draws are kept per draw type in ascending depth order and drawn
// closest first with depth writes, so hidden pixels are rejected early.
// Transparent draws are kept in insertion order and composited after every
// opaque draw. A draw's classification never changes once added.
type DrawObjectManager struct {
	opaque      [DrawTypeCount][]DrawObject
	transparent []TransparentDraw
}

// NewDrawObjectManager returns an empty manager.
func NewDrawObjectManager() *DrawObjectManager {
	return &DrawObjectManager{}
}

// AddOpaqueDraw appends obj to the opaque bucket of type t.
func (m *DrawObjectManager) AddOpaqueDraw(obj DrawObject, t DrawType) {
	if t >= DrawTypeCount {
		panic(fmt.Sprintf("rasterizer: AddOpaqueDraw with invalid %v", t))
	}
	m.opaque[t] = append(m.opaque[t], obj)
}

// AddTransparentDraw appends obj to the transparent list.
func (m *DrawObjectManager) AddTransparentDraw(obj DrawObject, t DrawType, bounds geom.Rect) {
	if t >= DrawTypeCount {
		panic(fmt.Sprintf("rasterizer: AddTransparentDraw with invalid %v", t))
	}
	m.transparent = append(m.transparent, TransparentDraw{Object: obj, Type: t, Bounds: bounds})
}

// OpaqueDraws returns the opaque draws of type t in insertion order.
func (m *DrawObjectManager) OpaqueDraws(t DrawType) []DrawObject {
	return m.opaque[t]
}

// TransparentDraws returns the transparent draws in insertion order.
func (m *DrawObjectManager) TransparentDraws() []TransparentDraw {
	return m.transparent
}

// OpaqueCount returns the number of opaque draws across all types.
func (m *DrawObjectManager) OpaqueCount() int {
	n := 0
	for _, b := range m.opaque {
		n += len(b)
	}
	return n
}

// TransparentCount returns the number of transparent draws.
func (m *DrawObjectManager) TransparentCount() int { return len(m.transparent) }

// Len returns the total number of draws.
func (m *DrawObjectManager) Len() int { return m.OpaqueCount() + m.TransparentCount() }

func (m *DrawObjectManager) each(fn func(DrawObject) error) error {
	for _, b := range m.opaque {
		for _, d := range b {
			if err := fn(d); err != nil {
				return err
			}
		}
	}
	for _, d := range m.transparent {
		if err := fn(d.Object); err != nil {
			return err
		}
	}
	return nil
}

// ExecutePreVertexBuffer runs the offscreen phase of every draw.
func (m *DrawObjectManager) ExecutePreVertexBuffer(gs *GraphicsState) error {
	return m.each(func(d DrawObject) error {
		if err := d.ExecutePreVertexBuffer(gs); err != nil {
			return fmt.Errorf("rasterizer: pre-vertex phase: %w", err)
		}
		return nil
	})
}

// ExecuteUpdateVertexBuffer fills the vertex buffer for every draw.
func (m *DrawObjectManager) ExecuteUpdateVertexBuffer(gs *GraphicsState) error {
	gs.ResetVertices()
	return m.each(func(d DrawObject) error {
		return d.ExecuteUpdateVertexBuffer(gs)
	})
}

// ExecuteRasterize draws everything into the graphics state's target.
func (m *DrawObjectManager) ExecuteRasterize(gs *GraphicsState) error {
	gs.EnableDepthTest(gputypes.CompareFunctionGreater)
	gs.EnableDepthWrite(true)
	gs.DisableBlend()
	for _, bucket := range m.opaque {
		// Buckets are in ascending depth; draw the closest first.
		for _, d := range slices.Backward(bucket) {
			if err := d.ExecuteRasterize(gs); err != nil {
				return fmt.Errorf("rasterizer: opaque pass: %w", err)
			}
		}
	}

	gs.EnableDepthWrite(false)
	for _, t := range m.transparent {
		if t.Object.base().blend == BlendNone {
			gs.DisableBlend()
		} else {
			gs.EnableBlend()
		}
		if err := t.Object.ExecuteRasterize(gs); err != nil {
			return fmt.Errorf("rasterizer: transparent pass: %w", err)
		}
	}
	gs.DisableBlend()
	gs.DisableDepthTest()
	return nil
}

// Reset releases every draw and empties the manager.
func (m *DrawObjectManager) Reset() {
	for i := range m.opaque {
		for _, d := range m.opaque[i] {
			d.Release()
		}
		clear(m.opaque[i])
		m.opaque[i] = m.opaque[i][:0]
	}
	for _, t := range m.transparent {
		t.Object.Release()
	}
	clear(m.transparent)
	m.transparent = m.transparent[:0]
}
