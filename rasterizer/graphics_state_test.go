// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/internal/parallel"
)

func TestCompareDepth(t *testing.T) {
	tests := []struct {
		fn           gputypes.CompareFunction
		frag, stored float32
		want         bool
	}{
		{gputypes.CompareFunctionGreater, 2, 1, true},
		{gputypes.CompareFunctionGreater, 1, 1, false},
		{gputypes.CompareFunctionLess, 1, 2, true},
		{gputypes.CompareFunctionNotEqual, 1, 1, false},
		{gputypes.CompareFunctionAlways, 0, 1, true},
	}
	for _, tt := range tests {
		if got := compareDepth(tt.fn, tt.frag, tt.stored); got != tt.want {
			t.Errorf("compareDepth(%v, %v, %v) = %v, want %v", tt.fn, tt.frag, tt.stored, got, tt.want)
		}
	}
}

func TestTo8(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {2, 255},
	}
	for _, tt := range tests {
		if got := to8(tt.in); got != tt.want {
			t.Errorf("to8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDepthStateToggles(t *testing.T) {
	_, target := newTestTarget(t, 2, 2)
	gs := NewGraphicsState(target, NewProgramTable(stubCompile), nil)

	if got := gs.NextClosestDepth(0); got != DepthQuantum {
		t.Errorf("NextClosestDepth(0) = %v, want %v", got, DepthQuantum)
	}
	gs.EnableDepthTest(gputypes.CompareFunctionGreater)
	if !gs.depthTest || gs.depthCompare != gputypes.CompareFunctionGreater {
		t.Error("EnableDepthTest did not take effect")
	}
	gs.DisableDepthTest()
	if gs.depthTest {
		t.Error("DisableDepthTest did not take effect")
	}
	gs.EnableBlend()
	if gs.blend == nil {
		t.Error("EnableBlend did not take effect")
	}
	gs.DisableBlend()
	if gs.blend != nil {
		t.Error("DisableBlend did not take effect")
	}
}

func TestVertexBuffer(t *testing.T) {
	_, target := newTestTarget(t, 2, 2)
	gs := NewGraphicsState(target, NewProgramTable(stubCompile), nil)

	d := NewPolyColor(testState(DepthQuantum), geom.RectXYWH(1, 2, 3, 4), red)
	if err := d.ExecuteUpdateVertexBuffer(gs); err != nil {
		t.Fatal(err)
	}
	v := gs.Vertices(0, 16)
	want := []float32{
		1, 2, 0, 0,
		4, 2, 1, 0,
		4, 6, 1, 1,
		1, 6, 0, 1,
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("vertices = %v, want %v", v, want)
		}
	}
	gs.ResetVertices()
	if off := gs.AllocateVertices(4); off != 0 {
		t.Errorf("AllocateVertices after reset = %d, want 0", off)
	}
}

func TestParallelRasterizeMatchesSerial(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	draw := func(workers *parallel.WorkerPool) []uint8 {
		_, target := newTestTarget(t, 200, 200)
		gs := NewGraphicsState(target, NewProgramTable(stubCompile), workers)
		m := NewDrawObjectManager()
		state := testState(DepthQuantum)
		state.Scissor = geom.IntRectXYWH(0, 0, 200, 200)
		state.Transform = geom.Translate(100, 100).Multiply(geom.Rotate(0.3))
		m.AddOpaqueDraw(NewPolyColor(state, geom.RectXYWH(-80, -60, 160, 120), green), DrawPolyColor)
		runPhases(t, m, gs)
		return target.ColorBuffer().Pix
	}

	serial, banded := draw(nil), draw(pool)
	for i := range serial {
		if serial[i] != banded[i] {
			t.Fatalf("byte %d: serial %d, parallel %d", i, serial[i], banded[i])
		}
	}
}
