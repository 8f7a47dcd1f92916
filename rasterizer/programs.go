// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

//go:embed shaders/common.wgsl
var commonShaderSource string

//go:embed shaders/rect_texture.wgsl
var rectTextureShaderSource string

//go:embed shaders/rect_color_texture.wgsl
var rectColorTextureShaderSource string

//go:embed shaders/poly_color.wgsl
var polyColorShaderSource string

var fragmentSources = [DrawTypeCount]string{
	DrawRectTexture:      rectTextureShaderSource,
	DrawRectColorTexture: rectColorTextureShaderSource,
	DrawPolyColor:        polyColorShaderSource,
}

// ShaderCompiler turns WGSL source into SPIR-V.
type ShaderCompiler func(wgsl string) ([]byte, error)

// Program is the compiled shader program of one draw type.
type Program struct {
	Type   DrawType
	Source string
	SPIRV  []byte
}

// ProgramSource returns the full WGSL source of the program for t.
func ProgramSource(t DrawType) string {
	return commonShaderSource + "\n" + fragmentSources[t]
}

// ProgramTable compiles and caches one program per draw type. Lookup is by
// index; programs are compiled on first use.
type ProgramTable struct {
	mu       sync.Mutex
	compile  ShaderCompiler
	programs [DrawTypeCount]*Program
}

// NewProgramTable returns a table that compiles with compile, or with
// naga.Compile if compile is nil.
func NewProgramTable(compile ShaderCompiler) *ProgramTable {
	if compile == nil {
		compile = naga.Compile
	}
	return &ProgramTable{compile: compile}
}

// Get returns the program for t, compiling it if needed.
func (pt *ProgramTable) Get(t DrawType) (*Program, error) {
	if t >= DrawTypeCount {
		return nil, fmt.Errorf("rasterizer: no program for %v", t)
	}
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if p := pt.programs[t]; p != nil {
		return p, nil
	}
	src := ProgramSource(t)
	spirv, err := pt.compile(src)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: compile %v program: %w", t, err)
	}
	p := &Program{Type: t, Source: src, SPIRV: spirv}
	pt.programs[t] = p
	return p, nil
}

// Compiled returns the number of programs compiled so far.
func (pt *ProgramTable) Compiled() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	n := 0
	for _, p := range pt.programs {
		if p != nil {
			n++
		}
	}
	return n
}
