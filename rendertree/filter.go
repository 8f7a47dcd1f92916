package rendertree

import "github.com/gogpu/renderpipe/geom"

// ViewportFilter clips the source to Viewport, optionally with rounded
// corners.
type ViewportFilter struct {
	Viewport       geom.Rect
	RoundedCorners *RoundedCorners
}

// HasRoundedCorners reports whether the clip is not a plain rectangle.
func (f *ViewportFilter) HasRoundedCorners() bool {
	return f != nil && !f.RoundedCorners.IsSquare()
}

// OpacityFilter multiplies the source's alpha by Opacity.
type OpacityFilter struct {
	Opacity float32
}

// BlurFilter applies a gaussian blur of standard deviation Sigma.
type BlurFilter struct {
	Sigma float32
}

// MapToMeshFilter projects the source onto a mesh, such as a 360 video
// sphere.
type MapToMeshFilter struct {
	Stereo bool
}

// Filters holds the optional effects of a FilterNode. Nil fields are absent.
type Filters struct {
	Viewport  *ViewportFilter
	Opacity   *OpacityFilter
	Blur      *BlurFilter
	MapToMesh *MapToMeshFilter
}

// IsPlainViewport reports whether the filters reduce to a rectangular clip.
func (f Filters) IsPlainViewport() bool {
	return f.Viewport != nil && !f.Viewport.HasRoundedCorners() &&
		f.Opacity == nil && f.Blur == nil && f.MapToMesh == nil
}

// FilterNode applies Filters to its source.
type FilterNode struct {
	source  Node
	filters Filters
	bounds  geom.Rect
}

// NewFilterNode wraps source with filters.
func NewFilterNode(source Node, filters Filters) *FilterNode {
	bounds := source.Bounds()
	if filters.Blur != nil && filters.Blur.Sigma > 0 {
		bounds = bounds.Outset(3 * filters.Blur.Sigma)
	}
	if filters.Viewport != nil {
		bounds = bounds.Intersect(filters.Viewport.Viewport)
	}
	return &FilterNode{source: source, filters: filters, bounds: bounds}
}

// NewViewportNode clips source to viewport.
func NewViewportNode(source Node, viewport geom.Rect) *FilterNode {
	return NewFilterNode(source, Filters{Viewport: &ViewportFilter{Viewport: viewport}})
}

// NewOpacityNode fades source by opacity.
func NewOpacityNode(source Node, opacity float32) *FilterNode {
	return NewFilterNode(source, Filters{Opacity: &OpacityFilter{Opacity: opacity}})
}

// Source returns the filtered subtree.
func (n *FilterNode) Source() Node { return n.source }

// Filters returns the applied filters.
func (n *FilterNode) Filters() Filters { return n.filters }

// Kind implements Node.
func (n *FilterNode) Kind() NodeKind { return KindFilter }

// Bounds implements Node.
func (n *FilterNode) Bounds() geom.Rect { return n.bounds }

func (*FilterNode) sealed() {}

// WithSource returns a copy of n filtering a different source.
func (n *FilterNode) WithSource(source Node) *FilterNode {
	return NewFilterNode(source, n.filters)
}

// WithFilters returns a copy of n with different filters.
func (n *FilterNode) WithFilters(filters Filters) *FilterNode {
	return NewFilterNode(n.source, filters)
}
