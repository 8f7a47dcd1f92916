package geom

import "github.com/chewxy/math32"

// Matrix3 is a 3x3 transformation matrix in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//	| G  H  I |
//
// Points are column vectors, so a point is mapped as
//
//	x' = (A*x + B*y + C) / w
//	y' = (D*x + E*y + F) / w
//	w  =  G*x + H*y + I
//
// For affine transforms G = H = 0 and I = 1.
type Matrix3 struct {
	A, B, C float32
	D, E, F float32
	G, H, I float32
}

// Identity returns the identity matrix.
func Identity() Matrix3 {
	return Matrix3{A: 1, E: 1, I: 1}
}

// Translate returns a translation matrix.
func Translate(x, y float32) Matrix3 {
	return Matrix3{A: 1, C: x, E: 1, F: y, I: 1}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float32) Matrix3 {
	return Matrix3{A: sx, E: sy, I: 1}
}

// Rotate returns a rotation matrix for the given angle in radians.
func Rotate(angle float32) Matrix3 {
	s, c := math32.Sincos(angle)
	return Matrix3{A: c, B: -s, D: s, E: c, I: 1}
}

// Multiply returns m * o. Applied to a point, o acts first.
func (m Matrix3) Multiply(o Matrix3) Matrix3 {
	return Matrix3{
		A: m.A*o.A + m.B*o.D + m.C*o.G,
		B: m.A*o.B + m.B*o.E + m.C*o.H,
		C: m.A*o.C + m.B*o.F + m.C*o.I,
		D: m.D*o.A + m.E*o.D + m.F*o.G,
		E: m.D*o.B + m.E*o.E + m.F*o.H,
		F: m.D*o.C + m.E*o.F + m.F*o.I,
		G: m.G*o.A + m.H*o.D + m.I*o.G,
		H: m.G*o.B + m.H*o.E + m.I*o.H,
		I: m.G*o.C + m.H*o.F + m.I*o.I,
	}
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix3) IsIdentity() bool {
	return m == Identity()
}

// IsScaleTranslate reports whether m only scales and translates:
// no skew, rotation or projective terms.
func (m Matrix3) IsScaleTranslate() bool {
	return m.G == 0 && m.H == 0 && m.I == 1 && m.B == 0 && m.D == 0
}

// Translation returns the translation column.
func (m Matrix3) Translation() Point {
	return Point{X: m.C, Y: m.F}
}

// MapPoint transforms p, including the projective divide.
func (m Matrix3) MapPoint(p Point) Point {
	x := m.A*p.X + m.B*p.Y + m.C
	y := m.D*p.X + m.E*p.Y + m.F
	w := m.G*p.X + m.H*p.Y + m.I
	if w != 1 && w != 0 {
		x /= w
		y /= w
	}
	return Point{X: x, Y: y}
}

// MapQuad transforms the four corners of r in clockwise order starting at
// the top-left corner.
func (m Matrix3) MapQuad(r Rect) [4]Point {
	return [4]Point{
		m.MapPoint(Point{X: r.MinX, Y: r.MinY}),
		m.MapPoint(Point{X: r.MaxX, Y: r.MinY}),
		m.MapPoint(Point{X: r.MaxX, Y: r.MaxY}),
		m.MapPoint(Point{X: r.MinX, Y: r.MaxY}),
	}
}

// QuadW returns the homogeneous w of the corners of r, in MapQuad order.
// A corner with w <= 0 lies behind the viewer.
func (m Matrix3) QuadW(r Rect) [4]float32 {
	return [4]float32{
		m.G*r.MinX + m.H*r.MinY + m.I,
		m.G*r.MaxX + m.H*r.MinY + m.I,
		m.G*r.MaxX + m.H*r.MaxY + m.I,
		m.G*r.MinX + m.H*r.MaxY + m.I,
	}
}

// MapRect returns the axis-aligned bounds of r after transformation.
func (m Matrix3) MapRect(r Rect) Rect {
	if r.IsEmpty() {
		return r
	}
	if m.IsScaleTranslate() {
		out := Rect{
			MinX: r.MinX*m.A + m.C,
			MinY: r.MinY*m.E + m.F,
			MaxX: r.MaxX*m.A + m.C,
			MaxY: r.MaxY*m.E + m.F,
		}
		if out.MinX > out.MaxX {
			out.MinX, out.MaxX = out.MaxX, out.MinX
		}
		if out.MinY > out.MaxY {
			out.MinY, out.MaxY = out.MaxY, out.MinY
		}
		return out
	}
	q := m.MapQuad(r)
	out := Rect{MinX: q[0].X, MinY: q[0].Y, MaxX: q[0].X, MaxY: q[0].Y}
	for _, p := range q[1:] {
		out.MinX = math32.Min(out.MinX, p.X)
		out.MinY = math32.Min(out.MinY, p.Y)
		out.MaxX = math32.Max(out.MaxX, p.X)
		out.MaxY = math32.Max(out.MaxY, p.Y)
	}
	return out
}

// Determinant returns the determinant of m.
func (m Matrix3) Determinant() float32 {
	return m.A*(m.E*m.I-m.F*m.H) -
		m.B*(m.D*m.I-m.F*m.G) +
		m.C*(m.D*m.H-m.E*m.G)
}

// Inverse returns the inverse of m and whether it exists.
// A singular matrix yields the zero matrix and false.
func (m Matrix3) Inverse() (Matrix3, bool) {
	det := m.Determinant()
	if det == 0 || math32.IsNaN(det) {
		return Matrix3{}, false
	}
	inv := 1 / det
	return Matrix3{
		A: (m.E*m.I - m.F*m.H) * inv,
		B: (m.C*m.H - m.B*m.I) * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: (m.F*m.G - m.D*m.I) * inv,
		E: (m.A*m.I - m.C*m.G) * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
		G: (m.D*m.H - m.E*m.G) * inv,
		H: (m.B*m.G - m.A*m.H) * inv,
		I: (m.A*m.E - m.B*m.D) * inv,
	}, true
}

// Matrix4 is a 4x4 row-major transformation matrix used by 3D transform
// nodes. M[row*4+col].
type Matrix4 struct {
	M [16]float32
}

// Identity4 returns the 4x4 identity.
func Identity4() Matrix4 {
	return Matrix4{M: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// At returns the element at row r, column c.
func (m Matrix4) At(r, c int) float32 {
	return m.M[r*4+c]
}

// HasPerspective reports whether the bottom row carries projective terms
// that an orthographic 2D projection cannot express.
func (m Matrix4) HasPerspective() bool {
	return m.At(3, 0) != 0 || m.At(3, 1) != 0 || m.At(3, 2) != 0 || m.At(3, 3) != 1
}

// Project2D drops the Z row and column, yielding the transform seen by an
// orthographic camera looking down the Z axis.
func (m Matrix4) Project2D() Matrix3 {
	return Matrix3{
		A: m.At(0, 0), B: m.At(0, 1), C: m.At(0, 3),
		D: m.At(1, 0), E: m.At(1, 1), F: m.At(1, 3),
		G: m.At(3, 0), H: m.At(3, 1), I: m.At(3, 3),
	}
}
