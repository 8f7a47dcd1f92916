// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"fmt"

	"github.com/gogpu/renderpipe/geom"
)

// DrawType selects the program used to rasterize a draw object. Opaque
// draws are bucketed by type to minimize program switches.
type DrawType uint8

const (
	DrawRectTexture DrawType = iota
	DrawRectColorTexture
	DrawPolyColor

	// DrawTypeCount is the number of draw types.
	DrawTypeCount
)

var drawTypeNames = [DrawTypeCount]string{
	DrawRectTexture:      "RectTexture",
	DrawRectColorTexture: "RectColorTexture",
	DrawPolyColor:        "PolyColor",
}

// String returns the draw type name.
func (t DrawType) String() string {
	if t < DrawTypeCount {
		return drawTypeNames[t]
	}
	return fmt.Sprintf("DrawType(%d)", uint8(t))
}

// BlendType selects how a transparent draw combines with the target.
type BlendType uint8

const (
	// BlendSrcAlpha composites premultiplied source over destination.
	BlendSrcAlpha BlendType = iota

	// BlendNone replaces the destination.
	BlendNone
)

// DrawObject is a GPU-ready draw command derived from one render tree node.
// Implementations are *RectTexture, *RectColorTexture and *PolyColor.
//
// The manager calls the Execute methods once per frame, in phase order,
// and Release when the frame is done.
type DrawObject interface {
	// State returns the traversal state captured at creation.
	State() DrawState

	// ExecutePreVertexBuffer prepares resources the draw needs, such as
	// offscreen content.
	ExecutePreVertexBuffer(gs *GraphicsState) error

	// ExecuteUpdateVertexBuffer writes the draw's vertices.
	ExecuteUpdateVertexBuffer(gs *GraphicsState) error

	// ExecuteRasterize draws into the target.
	ExecuteRasterize(gs *GraphicsState) error

	// Release frees per-frame resources. Release is idempotent.
	Release()

	base() *drawBase
}

// floatsPerVertex is x, y, u, v.
const floatsPerVertex = 4

// drawBase holds what every draw object shares: its state snapshot, its
// local rect and its slot in the vertex buffer.
type drawBase struct {
	state   DrawState
	rect    geom.Rect
	blend   BlendType
	inverse geom.Matrix3
	invOK   bool
	vertex  int
	bounds  geom.IntRect
}

func newDrawBase(state DrawState, rect geom.Rect) drawBase {
	return drawBase{state: state, rect: rect, vertex: -1}
}

func (d *drawBase) base() *drawBase { return d }

// State returns the traversal state captured at creation.
func (d *drawBase) State() DrawState { return d.state }

// Rect returns the drawn rectangle in local coordinates.
func (d *drawBase) Rect() geom.Rect { return d.rect }

// WorldRect returns the bounds of the drawn rectangle in target pixels.
func (d *drawBase) WorldRect() geom.Rect { return d.state.Transform.MapRect(d.rect) }

// Blend returns how the draw combines with the target when transparent.
func (d *drawBase) Blend() BlendType { return d.blend }

// updateVertices writes the four transformed corners with their texture
// coordinates and prepares the inverse mapping used by rasterization.
func (d *drawBase) updateVertices(gs *GraphicsState) {
	corners := d.state.Transform.MapQuad(d.rect)
	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	d.vertex = gs.AllocateVertices(4 * floatsPerVertex)
	v := gs.Vertices(d.vertex, 4*floatsPerVertex)
	bounds := geom.Rect{MinX: corners[0].X, MinY: corners[0].Y, MaxX: corners[0].X, MaxY: corners[0].Y}
	for i, c := range corners {
		v[i*floatsPerVertex+0] = c.X
		v[i*floatsPerVertex+1] = c.Y
		v[i*floatsPerVertex+2] = uv[i][0]
		v[i*floatsPerVertex+3] = uv[i][1]
		bounds.MinX, bounds.MaxX = min(bounds.MinX, c.X), max(bounds.MaxX, c.X)
		bounds.MinY, bounds.MaxY = min(bounds.MinY, c.Y), max(bounds.MaxY, c.Y)
	}
	d.bounds = bounds.RoundOut()
	d.inverse, d.invOK = d.state.Transform.Inverse()
}

// rasterize draws the base rect with shade if its vertices are valid.
func (d *drawBase) rasterize(gs *GraphicsState, shade shadeFunc) {
	if d.vertex < 0 || !d.invOK {
		return
	}
	gs.rasterizeQuad(quad{
		local:   d.rect,
		inverse: d.inverse,
		bounds:  d.bounds,
		scissor: d.state.Scissor,
		depth:   d.state.Depth,
	}, shade)
}
