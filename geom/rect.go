package geom

import "github.com/chewxy/math32"

// Point is a 2D point or vector.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle with float32 bounds.
// A rectangle whose Min is not strictly less than its Max on both axes is empty.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// RectXYWH builds a Rect from an origin and a size.
func RectXYWH(x, y, w, h float32) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// EmptyRect returns a rectangle suitable as the identity for Union.
func EmptyRect() Rect {
	inf := math32.Inf(1)
	return Rect{MinX: inf, MinY: inf, MaxX: -inf, MaxY: -inf}
}

// UnboundedRect returns a rectangle that covers any target. Its extent is
// finite so that it survives transformation.
func UnboundedRect() Rect {
	const e = 1 << 30
	return Rect{MinX: -e, MinY: -e, MaxX: e, MaxY: e}
}

// IsEmpty reports whether the rectangle covers no area.
func (r Rect) IsEmpty() bool {
	return !(r.MinX < r.MaxX && r.MinY < r.MaxY)
}

// Width returns the width, or 0 for an empty rectangle.
func (r Rect) Width() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the height, or 0 for an empty rectangle.
func (r Rect) Height() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.MinX, Y: r.MinY}
}

// Offset translates the rectangle by (dx, dy).
func (r Rect) Offset(dx, dy float32) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Inset shrinks the rectangle by the given amounts on each side.
func (r Rect) Inset(left, top, right, bottom float32) Rect {
	return Rect{MinX: r.MinX + left, MinY: r.MinY + top, MaxX: r.MaxX - right, MaxY: r.MaxY - bottom}
}

// Outset grows the rectangle by d on every side.
func (r Rect) Outset(d float32) Rect {
	return r.Inset(-d, -d, -d, -d)
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if o.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return o
	}
	return Rect{
		MinX: math32.Min(r.MinX, o.MinX),
		MinY: math32.Min(r.MinY, o.MinY),
		MaxX: math32.Max(r.MaxX, o.MaxX),
		MaxY: math32.Max(r.MaxY, o.MaxY),
	}
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: math32.Max(r.MinX, o.MinX),
		MinY: math32.Max(r.MinY, o.MinY),
		MaxX: math32.Min(r.MaxX, o.MaxX),
		MaxY: math32.Min(r.MaxY, o.MaxY),
	}
}

// Contains reports whether the point lies inside the rectangle
// (min edges inclusive, max edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// Round converts the rectangle to integer bounds by rounding each edge
// to the nearest pixel.
func (r Rect) Round() IntRect {
	return IntRect{
		MinX: int(math32.Floor(r.MinX + 0.5)),
		MinY: int(math32.Floor(r.MinY + 0.5)),
		MaxX: int(math32.Floor(r.MaxX + 0.5)),
		MaxY: int(math32.Floor(r.MaxY + 0.5)),
	}
}

// RoundOut converts the rectangle to the smallest integer bounds covering it.
func (r Rect) RoundOut() IntRect {
	return IntRect{
		MinX: int(math32.Floor(r.MinX)),
		MinY: int(math32.Floor(r.MinY)),
		MaxX: int(math32.Ceil(r.MaxX)),
		MaxY: int(math32.Ceil(r.MaxY)),
	}
}

// IntRect is an integer pixel rectangle, used for scissoring.
type IntRect struct {
	MinX, MinY int
	MaxX, MaxY int
}

// IntRectXYWH builds an IntRect from an origin and a size.
func IntRectXYWH(x, y, w, h int) IntRect {
	return IntRect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// IsEmpty reports whether the rectangle covers no pixels.
func (r IntRect) IsEmpty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Width returns the width, or 0 for an empty rectangle.
func (r IntRect) Width() int {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the height, or 0 for an empty rectangle.
func (r IntRect) Height() int {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Size returns the dimensions of the rectangle.
func (r IntRect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r IntRect) Intersect(o IntRect) IntRect {
	return IntRect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// ToRect converts to float bounds.
func (r IntRect) ToRect() Rect {
	return Rect{MinX: float32(r.MinX), MinY: float32(r.MinY), MaxX: float32(r.MaxX), MaxY: float32(r.MaxY)}
}
