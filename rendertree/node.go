// Package rendertree defines the immutable scene graph handed to the render
// pipeline.
//
// A render tree is built once by a producer and never mutated afterwards, so
// the same subtree may be shared between any number of queued and in-flight
// submissions. Nodes form a closed set: Node is sealed and every concrete
// kind is listed in NodeKind, so a type switch over the kinds is exhaustive.
package rendertree

import (
	"fmt"

	"github.com/gogpu/renderpipe/geom"
)

// NodeKind identifies the concrete type of a Node.
type NodeKind uint8

const (
	KindComposition NodeKind = iota
	KindMatrixTransform
	KindMatrixTransform3D
	KindFilter
	KindImage
	KindRect
	KindRectShadow
	KindText
	KindPunchThroughVideo

	// KindCount is the number of node kinds.
	KindCount
)

var kindNames = [KindCount]string{
	KindComposition:       "Composition",
	KindMatrixTransform:   "MatrixTransform",
	KindMatrixTransform3D: "MatrixTransform3D",
	KindFilter:            "Filter",
	KindImage:             "Image",
	KindRect:              "Rect",
	KindRectShadow:        "RectShadow",
	KindText:              "Text",
	KindPunchThroughVideo: "PunchThroughVideo",
}

// String returns the kind name.
func (k NodeKind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a scene-graph node. Implementations are immutable.
type Node interface {
	// Kind returns the concrete kind of the node.
	Kind() NodeKind

	// Bounds returns the node's bounds in its local coordinate space,
	// including all descendants.
	Bounds() geom.Rect

	sealed()
}

// Visitor receives one call per node kind from Dispatch.
type Visitor interface {
	VisitComposition(n *CompositionNode)
	VisitMatrixTransform(n *MatrixTransformNode)
	VisitMatrixTransform3D(n *MatrixTransform3DNode)
	VisitFilter(n *FilterNode)
	VisitImage(n *ImageNode)
	VisitRect(n *RectNode)
	VisitRectShadow(n *RectShadowNode)
	VisitText(n *TextNode)
	VisitPunchThroughVideo(n *PunchThroughVideoNode)
}

// Dispatch calls the Visitor method matching the concrete type of n.
// A nil node is ignored.
func Dispatch(n Node, v Visitor) {
	switch n := n.(type) {
	case nil:
	case *CompositionNode:
		v.VisitComposition(n)
	case *MatrixTransformNode:
		v.VisitMatrixTransform(n)
	case *MatrixTransform3DNode:
		v.VisitMatrixTransform3D(n)
	case *FilterNode:
		v.VisitFilter(n)
	case *ImageNode:
		v.VisitImage(n)
	case *RectNode:
		v.VisitRect(n)
	case *RectShadowNode:
		v.VisitRectShadow(n)
	case *TextNode:
		v.VisitText(n)
	case *PunchThroughVideoNode:
		v.VisitPunchThroughVideo(n)
	default:
		panic(fmt.Sprintf("rendertree: unknown node type %T", n))
	}
}

// Children returns the direct children of n in document order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *CompositionNode:
		return n.children
	case *MatrixTransformNode:
		return []Node{n.source}
	case *MatrixTransform3DNode:
		return []Node{n.source}
	case *FilterNode:
		return []Node{n.source}
	default:
		return nil
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range Children(n) {
		total += Count(c)
	}
	return total
}
