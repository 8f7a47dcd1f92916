// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/internal/parallel"
)

// DepthQuantum is the depth distance between consecutive draws.
const DepthQuantum float32 = 1.0 / (1 << 16)

// minParallelRows is the smallest draw height split across workers.
const minParallelRows = 64

// GraphicsState is the fixed-function state of the target being drawn:
// scissor, depth test, blending, the bound program and the vertex buffer.
type GraphicsState struct {
	target  backend.RenderTarget
	color   *image.RGBA
	depth   []float32
	width   int
	scissor geom.IntRect

	depthTest    bool
	depthWrite   bool
	depthCompare gputypes.CompareFunction
	blend        *gputypes.BlendState
	premulBlend  gputypes.BlendState

	vertices []float32

	programs        *ProgramTable
	program         *Program
	programSwitches int

	workers *parallel.WorkerPool
}

// NewGraphicsState prepares to draw into target. workers may be nil.
func NewGraphicsState(target backend.RenderTarget, programs *ProgramTable, workers *parallel.WorkerPool) *GraphicsState {
	return &GraphicsState{
		target:       target,
		color:        target.ColorBuffer(),
		depth:        target.DepthBuffer(),
		width:        target.Width(),
		scissor:      geom.IntRectXYWH(0, 0, target.Width(), target.Height()),
		depthCompare: gputypes.CompareFunctionAlways,
		premulBlend:  gputypes.BlendStatePremultiplied(),
		programs:     programs,
		workers:      workers,
	}
}

// Target returns the render target.
func (gs *GraphicsState) Target() backend.RenderTarget { return gs.target }

// Scissor returns the target-wide scissor rect.
func (gs *GraphicsState) Scissor() geom.IntRect { return gs.scissor }

// NextClosestDepth returns the depth one quantum closer than depth.
func (gs *GraphicsState) NextClosestDepth(depth float32) float32 {
	return depth + DepthQuantum
}

// EnableDepthTest turns on depth testing with compare.
func (gs *GraphicsState) EnableDepthTest(compare gputypes.CompareFunction) {
	gs.depthTest = true
	gs.depthCompare = compare
}

// DisableDepthTest turns off depth testing.
func (gs *GraphicsState) DisableDepthTest() {
	gs.depthTest = false
	gs.depthCompare = gputypes.CompareFunctionAlways
}

// EnableDepthWrite controls whether passing fragments update depth.
func (gs *GraphicsState) EnableDepthWrite(enabled bool) {
	gs.depthWrite = enabled
}

// EnableBlend turns on premultiplied source-over blending.
func (gs *GraphicsState) EnableBlend() {
	gs.blend = &gs.premulBlend
}

// DisableBlend makes fragments replace the destination.
func (gs *GraphicsState) DisableBlend() {
	gs.blend = nil
}

// UseProgram binds the program for t, compiling it on first use.
func (gs *GraphicsState) UseProgram(t DrawType) error {
	if gs.program != nil && gs.program.Type == t {
		return nil
	}
	p, err := gs.programs.Get(t)
	if err != nil {
		return err
	}
	gs.program = p
	gs.programSwitches++
	return nil
}

// ProgramSwitches returns the number of program binds so far.
func (gs *GraphicsState) ProgramSwitches() int { return gs.programSwitches }

// AllocateVertices reserves n floats in the vertex buffer and returns the
// offset of the first one.
func (gs *GraphicsState) AllocateVertices(n int) int {
	off := len(gs.vertices)
	gs.vertices = append(gs.vertices, make([]float32, n)...)
	return off
}

// Vertices returns n floats of the vertex buffer starting at offset.
func (gs *GraphicsState) Vertices(offset, n int) []float32 {
	return gs.vertices[offset : offset+n]
}

// ResetVertices empties the vertex buffer, keeping its storage.
func (gs *GraphicsState) ResetVertices() {
	gs.vertices = gs.vertices[:0]
}

// fragment is a premultiplied color.
type fragment [4]float32

// shadeFunc returns the color at texture coordinates (u, v) in [0, 1]
// across the drawn rect.
type shadeFunc func(u, v float32) fragment

// quad is a rect in local space together with its mapping to the target.
type quad struct {
	local   geom.Rect
	inverse geom.Matrix3
	bounds  geom.IntRect
	scissor geom.IntRect
	depth   float32
}

// rasterizeQuad runs shade for every pixel whose center lies in q, then
// applies depth test, depth write and blending.
func (gs *GraphicsState) rasterizeQuad(q quad, shade shadeFunc) {
	area := q.bounds.Intersect(q.scissor).Intersect(gs.scissor)
	if area.IsEmpty() {
		return
	}
	w, h := q.local.Width(), q.local.Height()
	if w <= 0 || h <= 0 {
		return
	}

	rows := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := gs.color.Pix[y*gs.color.Stride:]
			for x := area.MinX; x < area.MaxX; x++ {
				p := q.inverse.MapPoint(geom.Pt(float32(x)+0.5, float32(y)+0.5))
				if p.X < q.local.MinX || p.X >= q.local.MaxX || p.Y < q.local.MinY || p.Y >= q.local.MaxY {
					continue
				}
				di := y*gs.width + x
				if gs.depthTest && !compareDepth(gs.depthCompare, q.depth, gs.depth[di]) {
					continue
				}
				src := shade((p.X-q.local.MinX)/w, (p.Y-q.local.MinY)/h)
				gs.writeFragment(row[x*4:x*4+4], src)
				if gs.depthWrite {
					gs.depth[di] = q.depth
				}
			}
		}
	}

	height := area.Height()
	if gs.workers == nil || gs.workers.Workers() == 1 || height < minParallelRows {
		rows(area.MinY, area.MaxY)
		return
	}
	band := max(minParallelRows/2, (height+gs.workers.Workers()-1)/gs.workers.Workers())
	gs.workers.ForEachBand(height, band, func(y0, y1 int) {
		rows(area.MinY+y0, area.MinY+y1)
	})
}

// clearRect sets every pixel of r to transparent without depth testing.
func (gs *GraphicsState) clearRect(r geom.IntRect) {
	r = r.Intersect(gs.scissor)
	for y := r.MinY; y < r.MaxY; y++ {
		row := gs.color.Pix[y*gs.color.Stride:]
		clear(row[r.MinX*4 : r.MaxX*4])
	}
}

func (gs *GraphicsState) writeFragment(dst []uint8, src fragment) {
	if gs.blend == nil {
		dst[0], dst[1], dst[2], dst[3] = to8(src[0]), to8(src[1]), to8(src[2]), to8(src[3])
		return
	}
	var d fragment
	for i := range d {
		d[i] = float32(dst[i]) / 255
	}
	sa, da := src[3], d[3]
	c, a := gs.blend.Color, gs.blend.Alpha
	for i := 0; i < 3; i++ {
		dst[i] = to8(src[i]*blendFactor(c.SrcFactor, sa, da) + d[i]*blendFactor(c.DstFactor, sa, da))
	}
	dst[3] = to8(sa*blendFactor(a.SrcFactor, sa, da) + da*blendFactor(a.DstFactor, sa, da))
}

func blendFactor(f gputypes.BlendFactor, srcAlpha, _ float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrcAlpha:
		return srcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - srcAlpha
	default:
		return 1
	}
}

func compareDepth(f gputypes.CompareFunction, frag, stored float32) bool {
	switch f {
	case gputypes.CompareFunctionGreater:
		return frag > stored
	case gputypes.CompareFunctionLess:
		return frag < stored
	case gputypes.CompareFunctionNotEqual:
		return frag != stored
	default:
		return true
	}
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
