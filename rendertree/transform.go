package rendertree

import "github.com/gogpu/renderpipe/geom"

// MatrixTransformNode applies a 2D transform to its source.
type MatrixTransformNode struct {
	source    Node
	transform geom.Matrix3
	bounds    geom.Rect
}

// NewMatrixTransformNode wraps source with transform.
func NewMatrixTransformNode(source Node, transform geom.Matrix3) *MatrixTransformNode {
	return &MatrixTransformNode{
		source:    source,
		transform: transform,
		bounds:    transform.MapRect(source.Bounds()),
	}
}

// Source returns the transformed subtree.
func (n *MatrixTransformNode) Source() Node { return n.source }

// Transform returns the transform applied to the source.
func (n *MatrixTransformNode) Transform() geom.Matrix3 { return n.transform }

// Kind implements Node.
func (n *MatrixTransformNode) Kind() NodeKind { return KindMatrixTransform }

// Bounds implements Node.
func (n *MatrixTransformNode) Bounds() geom.Rect { return n.bounds }

func (*MatrixTransformNode) sealed() {}

// WithSource returns a copy of n transforming a different source.
func (n *MatrixTransformNode) WithSource(source Node) *MatrixTransformNode {
	return NewMatrixTransformNode(source, n.transform)
}

// MatrixTransform3DNode applies a 4x4 transform to its source.
type MatrixTransform3DNode struct {
	source    Node
	transform geom.Matrix4
	bounds    geom.Rect
}

// NewMatrixTransform3DNode wraps source with a 3D transform.
func NewMatrixTransform3DNode(source Node, transform geom.Matrix4) *MatrixTransform3DNode {
	return &MatrixTransform3DNode{
		source:    source,
		transform: transform,
		bounds:    projectedBounds(transform.Project2D(), source.Bounds()),
	}
}

// projectedBounds maps r through m. A rect reaching behind the viewer has
// no meaningful projection and is treated as unbounded.
func projectedBounds(m geom.Matrix3, r geom.Rect) geom.Rect {
	for _, w := range m.QuadW(r) {
		if w <= 0 {
			return geom.UnboundedRect()
		}
	}
	return m.MapRect(r)
}

// Source returns the transformed subtree.
func (n *MatrixTransform3DNode) Source() Node { return n.source }

// Transform returns the 4x4 transform.
func (n *MatrixTransform3DNode) Transform() geom.Matrix4 { return n.transform }

// Kind implements Node.
func (n *MatrixTransform3DNode) Kind() NodeKind { return KindMatrixTransform3D }

// Bounds implements Node. The bounds are those of the projected source,
// or unbounded when the source reaches behind the viewer.
func (n *MatrixTransform3DNode) Bounds() geom.Rect { return n.bounds }

func (*MatrixTransform3DNode) sealed() {}

// WithSource returns a copy of n transforming a different source.
func (n *MatrixTransform3DNode) WithSource(source Node) *MatrixTransform3DNode {
	return NewMatrixTransform3DNode(source, n.transform)
}
