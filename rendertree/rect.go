package rendertree

import "github.com/gogpu/renderpipe/geom"

// BorderSide is one edge of a rect border.
type BorderSide struct {
	Width float32
	Color ColorRGBA
}

// Border describes the four edges around a rect's content.
type Border struct {
	Left, Top, Right, Bottom BorderSide
}

// UniformBorder returns a border with the same side on every edge.
func UniformBorder(width float32, c ColorRGBA) *Border {
	s := BorderSide{Width: width, Color: c}
	return &Border{Left: s, Top: s, Right: s, Bottom: s}
}

// RoundedCorner is the elliptical radius of one corner.
type RoundedCorner struct {
	Horizontal, Vertical float32
}

// IsSquare reports whether the corner has no rounding.
func (c RoundedCorner) IsSquare() bool {
	return c.Horizontal <= 0 || c.Vertical <= 0
}

// RoundedCorners holds the radii of the four corners.
type RoundedCorners struct {
	TopLeft, TopRight, BottomRight, BottomLeft RoundedCorner
}

// UniformCorners returns circular corners of radius r.
func UniformCorners(r float32) *RoundedCorners {
	c := RoundedCorner{Horizontal: r, Vertical: r}
	return &RoundedCorners{TopLeft: c, TopRight: c, BottomRight: c, BottomLeft: c}
}

// IsSquare reports whether no corner is rounded.
func (r *RoundedCorners) IsSquare() bool {
	return r == nil || (r.TopLeft.IsSquare() && r.TopRight.IsSquare() &&
		r.BottomRight.IsSquare() && r.BottomLeft.IsSquare())
}

// RectNode is a rectangle with an optional background brush, border and
// rounded corners.
type RectNode struct {
	rect           geom.Rect
	brush          Brush
	border         *Border
	roundedCorners *RoundedCorners
}

// RectOption configures optional RectNode attributes.
type RectOption func(*RectNode)

// WithBorder sets the rect border.
func WithBorder(b *Border) RectOption {
	return func(n *RectNode) { n.border = b }
}

// WithRoundedCorners sets the corner radii.
func WithRoundedCorners(c *RoundedCorners) RectOption {
	return func(n *RectNode) { n.roundedCorners = c }
}

// NewRectNode creates a rect painted with brush. brush may be nil.
func NewRectNode(rect geom.Rect, brush Brush, opts ...RectOption) *RectNode {
	n := &RectNode{rect: rect, brush: brush}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewSolidRectNode is shorthand for a rect filled with a single color.
func NewSolidRectNode(rect geom.Rect, c ColorRGBA) *RectNode {
	return NewRectNode(rect, &SolidColorBrush{Color: c})
}

// Rect returns the outer rectangle.
func (n *RectNode) Rect() geom.Rect { return n.rect }

// Brush returns the background brush, or nil.
func (n *RectNode) Brush() Brush { return n.brush }

// Border returns the border, or nil.
func (n *RectNode) Border() *Border { return n.border }

// RoundedCorners returns the corner radii, or nil.
func (n *RectNode) RoundedCorners() *RoundedCorners { return n.roundedCorners }

// ContentRect returns the rect inset by the border widths.
func (n *RectNode) ContentRect() geom.Rect {
	if n.border == nil {
		return n.rect
	}
	return n.rect.Inset(n.border.Left.Width, n.border.Top.Width, n.border.Right.Width, n.border.Bottom.Width)
}

// Kind implements Node.
func (n *RectNode) Kind() NodeKind { return KindRect }

// Bounds implements Node.
func (n *RectNode) Bounds() geom.Rect { return n.rect }

func (*RectNode) sealed() {}

// WithBrush returns a copy of n painted with a different brush.
func (n *RectNode) WithBrush(b Brush) *RectNode {
	c := *n
	c.brush = b
	return &c
}

// WithRect returns a copy of n with a different rectangle.
func (n *RectNode) WithRect(r geom.Rect) *RectNode {
	c := *n
	c.rect = r
	return &c
}
