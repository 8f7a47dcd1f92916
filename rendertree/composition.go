package rendertree

import "github.com/gogpu/renderpipe/geom"

// CompositionNode groups children under a common offset. Children are drawn
// in order, later children on top of earlier ones.
type CompositionNode struct {
	offset   geom.Point
	children []Node
	bounds   geom.Rect
}

// NewCompositionNode creates a composition of children translated by offset.
// Nil children are dropped.
func NewCompositionNode(offset geom.Point, children ...Node) *CompositionNode {
	kept := make([]Node, 0, len(children))
	bounds := geom.EmptyRect()
	for _, c := range children {
		if c == nil {
			continue
		}
		kept = append(kept, c)
		bounds = bounds.Union(c.Bounds())
	}
	if bounds.IsEmpty() {
		bounds = geom.Rect{}
	}
	return &CompositionNode{
		offset:   offset,
		children: kept,
		bounds:   bounds.Offset(offset.X, offset.Y),
	}
}

// Offset returns the translation applied to all children.
func (n *CompositionNode) Offset() geom.Point { return n.offset }

// Children returns the children in document order. The slice must not be
// modified.
func (n *CompositionNode) Children() []Node { return n.children }

// Kind implements Node.
func (n *CompositionNode) Kind() NodeKind { return KindComposition }

// Bounds implements Node.
func (n *CompositionNode) Bounds() geom.Rect { return n.bounds }

func (*CompositionNode) sealed() {}

// WithChildren returns a copy of n with its children replaced.
func (n *CompositionNode) WithChildren(children []Node) *CompositionNode {
	return NewCompositionNode(n.offset, children...)
}
