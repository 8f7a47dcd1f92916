// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rasterizer

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/internal/cache"
	"github.com/gogpu/renderpipe/rendertree"
)

// Fallback draws render tree nodes the core rasterizer cannot draw itself.
//
// Rasterize draws node into target, which is cleared to transparent, with
// transform mapping node-local coordinates to target pixels. It returns an
// error wrapping ErrNotImplemented if it cannot draw the node either.
type Fallback interface {
	Rasterize(node rendertree.Node, transform geom.Matrix3, target backend.RenderTarget) error
}

// FallbackFunc adapts a function to the Fallback interface.
type FallbackFunc func(node rendertree.Node, transform geom.Matrix3, target backend.RenderTarget) error

// Rasterize calls f.
func (f FallbackFunc) Rasterize(node rendertree.Node, transform geom.Matrix3, target backend.RenderTarget) error {
	return f(node, transform, target)
}

// TargetPool recycles offscreen targets by size.
type TargetPool = cache.Pool[geom.Size, *backend.OffscreenTarget]

// NewTargetPool returns a pool holding at most capacity idle targets.
// Evicted targets are destroyed.
func NewTargetPool(capacity int) *TargetPool {
	return cache.NewPool(capacity, func(_ geom.Size, t *backend.OffscreenTarget) {
		t.Destroy()
	})
}

// VisitorConfig holds the collaborators of a RenderTreeNodeVisitor. All
// fields are optional.
type VisitorConfig struct {
	// GraphicsContext creates textures for images and fallback draws.
	GraphicsContext *backend.GraphicsContext

	// Fallback draws unimplemented nodes. Without it they are skipped.
	Fallback Fallback

	// Targets recycles the offscreen targets of fallback draws.
	Targets *TargetPool

	// OnUnimplemented is called for every unimplemented node.
	OnUnimplemented func(*UnimplementedError)
}

// VisitStats counts what a traversal did.
type VisitStats struct {
	Nodes         int
	Culled        int
	FallbackDraws int
	Unimplemented int
}

// RenderTreeNodeVisitor walks a render tree and emits draw objects into a
// DrawObjectManager.
//
// The visitor tracks the accumulated transform, scissor rect, opacity and
// depth. Every emitted draw gets the next depth quantum, so depths are
// strictly increasing in emission order. Nodes whose transformed bounds miss
// the scissor rect are culled together with their subtree.
type RenderTreeNodeVisitor struct {
	state   DrawState
	manager *DrawObjectManager
	cfg     VisitorConfig
	stats   VisitStats
	err     error
}

var _ rendertree.Visitor = (*RenderTreeNodeVisitor)(nil)

// NewRenderTreeNodeVisitor starts a traversal with the given initial state.
// cfg may be nil.
func NewRenderTreeNodeVisitor(manager *DrawObjectManager, initial DrawState, cfg *VisitorConfig) *RenderTreeNodeVisitor {
	v := &RenderTreeNodeVisitor{state: initial, manager: manager}
	if cfg != nil {
		v.cfg = *cfg
	}
	return v
}

// InitialDrawState returns the state at the root of a frame drawn into a
// target of the given size.
func InitialDrawState(size geom.Size) DrawState {
	return DrawState{
		Transform: geom.Identity(),
		Scissor:   geom.IntRectXYWH(0, 0, size.Width, size.Height),
		Opacity:   1,
	}
}

// Visit traverses the tree rooted at n.
func (v *RenderTreeNodeVisitor) Visit(n rendertree.Node) {
	rendertree.Dispatch(n, v)
}

// State returns the current traversal state.
func (v *RenderTreeNodeVisitor) State() DrawState { return v.state }

// Stats returns the traversal counters.
func (v *RenderTreeNodeVisitor) Stats() VisitStats { return v.stats }

// Err returns the first graphics error met during traversal. Traversal
// continues after an error so the rest of the frame is still drawn.
func (v *RenderTreeNodeVisitor) Err() error { return v.err }

// VisitComposition implements rendertree.Visitor.
func (v *RenderTreeNodeVisitor) VisitComposition(n *rendertree.CompositionNode) {
	if !v.enter(n) {
		return
	}
	saved := v.state.Transform
	off := n.Offset()
	if off != (geom.Point{}) {
		v.state.Transform = saved.Multiply(geom.Translate(off.X, off.Y))
	}
	for _, c := range n.Children() {
		rendertree.Dispatch(c, v)
	}
	v.state.Transform = saved
}

// VisitMatrixTransform implements rendertree.Visitor.
func (v *RenderTreeNodeVisitor) VisitMatrixTransform(n *rendertree.MatrixTransformNode) {
	if !v.enter(n) {
		return
	}
	saved := v.state.Transform
	v.state.Transform = saved.Multiply(n.Transform())
	rendertree.Dispatch(n.Source(), v)
	v.state.Transform = saved
}

// VisitMatrixTransform3D implements rendertree.Visitor. The transform is
// projected onto the z = 0 plane. Sources that cross the w = 0 plane need
// perspective clipping, which only the fallback does.
func (v *RenderTreeNodeVisitor) VisitMatrixTransform3D(n *rendertree.MatrixTransform3DNode) {
	if !v.enter(n) {
		return
	}
	if CrossesViewer(n) {
		v.unimplemented(n, "perspective clipping")
		return
	}
	saved := v.state.Transform
	v.state.Transform = saved.Multiply(n.Transform().Project2D())
	rendertree.Dispatch(n.Source(), v)
	v.state.Transform = saved
}

// CrossesViewer reports whether part of n's source projects to w <= 0,
// behind the viewer.
func CrossesViewer(n *rendertree.MatrixTransform3DNode) bool {
	m := n.Transform().Project2D()
	if m.G == 0 && m.H == 0 && m.I > 0 {
		return false
	}
	for _, w := range m.QuadW(n.Source().Bounds()) {
		if w <= 0 {
			return true
		}
	}
	return false
}

// VisitFilter implements rendertree.Visitor. A rectangular viewport under a
// scale and translate transform collapses into the scissor rect; every
// other filter is unimplemented.
func (v *RenderTreeNodeVisitor) VisitFilter(n *rendertree.FilterNode) {
	if !v.enter(n) {
		return
	}
	f := n.Filters()
	if f == (rendertree.Filters{}) {
		rendertree.Dispatch(n.Source(), v)
		return
	}
	if f.IsPlainViewport() && v.state.Transform.IsScaleTranslate() {
		saved := v.state.Scissor
		clip := v.state.Transform.MapRect(f.Viewport.Viewport).Round()
		v.state.Scissor = saved.Intersect(clip)
		if !v.state.Scissor.IsEmpty() {
			rendertree.Dispatch(n.Source(), v)
		}
		v.state.Scissor = saved
		return
	}
	v.unimplemented(n, filterFeatures(f, v.state.Transform))
}

func filterFeatures(f rendertree.Filters, transform geom.Matrix3) string {
	var features []string
	if f.Viewport != nil {
		switch {
		case f.Viewport.HasRoundedCorners():
			features = append(features, "rounded viewport")
		case !transform.IsScaleTranslate():
			features = append(features, "transformed viewport")
		}
	}
	if f.Opacity != nil {
		features = append(features, "opacity")
	}
	if f.Blur != nil {
		features = append(features, "blur")
	}
	if f.MapToMesh != nil {
		features = append(features, "map to mesh")
	}
	return strings.Join(features, "+")
}

// VisitImage implements rendertree.Visitor.
func (v *RenderTreeNodeVisitor) VisitImage(n *rendertree.ImageNode) {
	if !imageBound(n.Source()) {
		v.stats.Nodes++
		return
	}
	if !v.enter(n) {
		return
	}
	img, ok := n.Source().(*backend.Image)
	if !ok {
		if _, planar := n.Source().(*backend.MultiPlaneImage); planar {
			v.unimplemented(n, "multi-plane image")
		} else {
			v.unimplemented(n, fmt.Sprintf("image source %T", n.Source()))
		}
		return
	}
	tex, err := img.EnsureTexture()
	if err != nil {
		v.fail(fmt.Errorf("rasterizer: upload image: %w", err))
		return
	}

	texcoord := TexcoordTransform(n.LocalTransform())
	dest := n.DestinationRect()
	if img.IsOpaque() && v.state.Opacity == 1 {
		d := NewRectTexture(v.nextState(), dest, tex, texcoord)
		v.manager.AddOpaqueDraw(d, DrawRectTexture)
		return
	}
	state := v.nextState()
	d := NewRectColorTexture(state, dest, rendertree.RGBA(1, 1, 1, state.Opacity), tex, texcoord)
	v.manager.AddTransparentDraw(d, DrawRectColorTexture, d.WorldRect())
}

// imageBound reports whether src holds an image. A typed nil pointer is an
// image that has not been decoded yet.
func imageBound(src rendertree.Image) bool {
	switch img := src.(type) {
	case nil:
		return false
	case *backend.Image:
		return img != nil
	case *backend.MultiPlaneImage:
		return img != nil
	default:
		return true
	}
}

// TexcoordTransform returns the mapping from the unit destination rect to
// texture coordinates for an image placed by local. Scale and translate
// transforms are inverted in closed form, so an axis with zero scale maps
// to texture coordinate 0 instead of making the whole transform singular.
func TexcoordTransform(local geom.Matrix3) geom.Matrix3 {
	if local.IsScaleTranslate() {
		tc := geom.Matrix3{I: 1}
		if local.A != 0 {
			tc.A = 1 / local.A
		}
		if local.E != 0 {
			tc.E = 1 / local.E
		}
		tc.C = -tc.A * local.C
		tc.F = -tc.E * local.F
		return tc
	}
	inv, ok := local.Inverse()
	if !ok {
		return geom.Matrix3{I: 1}
	}
	return inv
}

// VisitRect implements rendertree.Visitor. Solid fills without rounded
// corners or borders become PolyColor draws.
func (v *RenderTreeNodeVisitor) VisitRect(n *rendertree.RectNode) {
	if !v.enter(n) {
		return
	}
	if feature := rectFeature(n); feature != "" {
		v.unimplemented(n, feature)
		return
	}
	solid, ok := n.Brush().(*rendertree.SolidColorBrush)
	if !ok {
		return
	}
	state := v.nextState()
	d := NewPolyColor(state, n.Rect(), solid.Color)
	if solid.Color.A*state.Opacity == 1 {
		v.manager.AddOpaqueDraw(d, DrawPolyColor)
	} else {
		v.manager.AddTransparentDraw(d, DrawPolyColor, d.WorldRect())
	}
}

func rectFeature(n *rendertree.RectNode) string {
	if !n.RoundedCorners().IsSquare() {
		return "rounded corners"
	}
	if b := n.Border(); b != nil && (b.Left.Width > 0 || b.Top.Width > 0 || b.Right.Width > 0 || b.Bottom.Width > 0) {
		return "border"
	}
	switch n.Brush().(type) {
	case nil, *rendertree.SolidColorBrush:
		return ""
	case *rendertree.LinearGradientBrush:
		return "linear gradient"
	case *rendertree.RadialGradientBrush:
		return "radial gradient"
	default:
		return fmt.Sprintf("brush %T", n.Brush())
	}
}

// VisitRectShadow implements rendertree.Visitor.
func (v *RenderTreeNodeVisitor) VisitRectShadow(n *rendertree.RectShadowNode) {
	if v.enter(n) {
		v.unimplemented(n, "shadow")
	}
}

// VisitText implements rendertree.Visitor.
func (v *RenderTreeNodeVisitor) VisitText(n *rendertree.TextNode) {
	if v.enter(n) {
		v.unimplemented(n, "text")
	}
}

// VisitPunchThroughVideo implements rendertree.Visitor.
func (v *RenderTreeNodeVisitor) VisitPunchThroughVideo(n *rendertree.PunchThroughVideoNode) {
	if v.enter(n) {
		v.unimplemented(n, "punch-through video")
	}
}

// enter counts n and reports whether it is visible.
func (v *RenderTreeNodeVisitor) enter(n rendertree.Node) bool {
	v.stats.Nodes++
	if !v.state.IsVisible(n.Bounds()) {
		v.stats.Culled++
		return false
	}
	return true
}

// nextState advances the depth by one quantum and returns the state for
// the draw being added.
func (v *RenderTreeNodeVisitor) nextState() DrawState {
	v.state.Depth += DepthQuantum
	return v.state
}

func (v *RenderTreeNodeVisitor) fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

func (v *RenderTreeNodeVisitor) report(err *UnimplementedError) {
	v.stats.Unimplemented++
	if v.cfg.OnUnimplemented != nil {
		v.cfg.OnUnimplemented(err)
	}
}

// unimplemented reports n and hands it to the fallback if there is one.
func (v *RenderTreeNodeVisitor) unimplemented(n rendertree.Node, feature string) {
	err := NewUnimplementedError(n.Kind(), feature)
	if v.cfg.Fallback != nil && v.cfg.GraphicsContext != nil {
		v.addFallbackDraw(n)
		err.Handled = true
	}
	v.report(err)
}

// addFallbackDraw emits a transparent draw whose texture the fallback
// renders during the offscreen phase. The texture covers the node's world
// bounds clipped to the scissor rect.
func (v *RenderTreeNodeVisitor) addFallbackDraw(n rendertree.Node) {
	box := v.state.Scissor
	if n3, ok := n.(*rendertree.MatrixTransform3DNode); !ok || !CrossesViewer(n3) {
		box = v.state.Transform.MapRect(n.Bounds()).RoundOut().Intersect(box)
	}
	if box.IsEmpty() {
		return
	}
	state := v.nextState()
	transform := geom.Translate(float32(-box.MinX), float32(-box.MinY)).Multiply(state.Transform)
	blend := BlendSrcAlpha
	if n.Kind() == rendertree.KindPunchThroughVideo {
		blend = BlendNone
	}
	drawState := DrawState{
		Transform: geom.Identity(),
		Scissor:   state.Scissor,
		Opacity:   state.Opacity,
		Depth:     state.Depth,
	}
	rect := box.ToRect()
	d := NewGeneratedRectColorTexture(drawState, rect, rendertree.RGBA(1, 1, 1, state.Opacity), blend,
		v.fallbackTexture(n, transform, box.Size()))
	v.manager.AddTransparentDraw(d, DrawRectColorTexture, rect)
	v.stats.FallbackDraws++
}

func (v *RenderTreeNodeVisitor) fallbackTexture(n rendertree.Node, transform geom.Matrix3, size geom.Size) GenerateTextureFunc {
	gc, fb, pool, report := v.cfg.GraphicsContext, v.cfg.Fallback, v.cfg.Targets, v.report
	return func(*GraphicsState) (*backend.Texture, geom.Matrix3, func(), error) {
		var target *backend.OffscreenTarget
		if pool != nil {
			target, _ = pool.Take(size)
		}
		if target == nil {
			var err error
			if target, err = gc.CreateOffscreenRenderTarget(size); err != nil {
				return nil, geom.Matrix3{}, nil, fmt.Errorf("fallback target for %s: %w", n.Kind(), err)
			}
		}
		recycle := func() {
			if pool != nil {
				pool.Put(size, target)
			} else {
				target.Destroy()
			}
		}

		target.Clear(color.RGBA{})
		if err := fb.Rasterize(n, transform, target); err != nil {
			recycle()
			var ue *UnimplementedError
			if errors.As(err, &ue) {
				report(ue)
				return nil, geom.Matrix3{}, nil, nil
			}
			if errors.Is(err, ErrNotImplemented) {
				report(NewUnimplementedError(n.Kind(), err.Error()))
				return nil, geom.Matrix3{}, nil, nil
			}
			return nil, geom.Matrix3{}, nil, fmt.Errorf("fallback %s: %w", n.Kind(), err)
		}
		tex, err := gc.CreateTextureFromRenderTarget(target)
		if err != nil {
			recycle()
			return nil, geom.Matrix3{}, nil, err
		}
		return tex, geom.Identity(), func() {
			tex.Destroy()
			recycle()
		}, nil
	}
}
