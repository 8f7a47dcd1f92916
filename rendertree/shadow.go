package rendertree

import "github.com/gogpu/renderpipe/geom"

// Shadow describes a drop shadow.
type Shadow struct {
	Offset    geom.Point
	BlurSigma float32
	Color     ColorRGBA
}

// BlurExtent is how far the blur spreads past the shadow rect.
func (s Shadow) BlurExtent() float32 {
	if s.BlurSigma <= 0 {
		return 0
	}
	return 3 * s.BlurSigma
}

// RectShadowNode draws the shadow cast by a rectangle.
type RectShadowNode struct {
	rect   geom.Rect
	shadow Shadow
	spread float32
	inset  bool
	bounds geom.Rect
}

// NewRectShadowNode creates an outset shadow of rect.
func NewRectShadowNode(rect geom.Rect, shadow Shadow, spread float32) *RectShadowNode {
	n := &RectShadowNode{rect: rect, shadow: shadow, spread: spread}
	n.bounds = n.ShadowRect().Outset(shadow.BlurExtent()).Union(rect)
	return n
}

// NewInsetRectShadowNode creates a shadow drawn inside rect.
func NewInsetRectShadowNode(rect geom.Rect, shadow Shadow, spread float32) *RectShadowNode {
	return &RectShadowNode{rect: rect, shadow: shadow, spread: spread, inset: true, bounds: rect}
}

// Rect returns the rect casting the shadow.
func (n *RectShadowNode) Rect() geom.Rect { return n.rect }

// Shadow returns the shadow parameters.
func (n *RectShadowNode) Shadow() Shadow { return n.shadow }

// Spread returns the spread distance.
func (n *RectShadowNode) Spread() float32 { return n.spread }

// Inset reports whether the shadow is drawn inside the rect.
func (n *RectShadowNode) Inset() bool { return n.inset }

// ShadowRect returns the solid part of the shadow before blurring.
func (n *RectShadowNode) ShadowRect() geom.Rect {
	r := n.rect.Offset(n.shadow.Offset.X, n.shadow.Offset.Y)
	if n.inset {
		return r.Outset(-n.spread)
	}
	return r.Outset(n.spread)
}

// Kind implements Node.
func (n *RectShadowNode) Kind() NodeKind { return KindRectShadow }

// Bounds implements Node.
func (n *RectShadowNode) Bounds() geom.Rect { return n.bounds }

func (*RectShadowNode) sealed() {}
