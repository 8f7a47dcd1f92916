package geom

import "testing"

func approx(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-4
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate after scale: (1,1) -> scale (2,2) -> translate (10,0) = (12,2)
	m := Translate(10, 0).Multiply(Scale(2, 2))
	p := m.MapPoint(Pt(1, 1))
	if !approx(p.X, 12) || !approx(p.Y, 2) {
		t.Errorf("MapPoint = %v, want (12,2)", p)
	}

	// Reversed order is different: (1,1) -> (11,1) -> (22,2)
	m = Scale(2, 2).Multiply(Translate(10, 0))
	p = m.MapPoint(Pt(1, 1))
	if !approx(p.X, 22) || !approx(p.Y, 2) {
		t.Errorf("MapPoint = %v, want (22,2)", p)
	}
}

func TestMatrixIsScaleTranslate(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix3
		want bool
	}{
		{"identity", Identity(), true},
		{"scale", Scale(2, 3), true},
		{"translate", Translate(4, 5), true},
		{"rotate", Rotate(0.5), false},
		{"skew", Matrix3{A: 1, B: 0.2, E: 1, I: 1}, false},
		{"projective", Matrix3{A: 1, E: 1, G: 0.1, I: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsScaleTranslate(); got != tt.want {
				t.Errorf("IsScaleTranslate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Translate(3, -7).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() reported singular matrix")
	}
	p := inv.MapPoint(m.MapPoint(Pt(5, 9)))
	if !approx(p.X, 5) || !approx(p.Y, 9) {
		t.Errorf("round trip = %v, want (5,9)", p)
	}

	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Error("Inverse() of singular matrix reported ok")
	}
}

func TestMatrixMapRect(t *testing.T) {
	r := RectXYWH(0, 0, 10, 20)

	got := Scale(-1, 1).MapRect(r)
	want := Rect{MinX: -10, MinY: 0, MaxX: 0, MaxY: 20}
	if got != want {
		t.Errorf("flipped MapRect = %v, want %v", got, want)
	}

	got = Rotate(1.5707964).MapRect(r)
	if !approx(got.MinX, -20) || !approx(got.MaxX, 0) || !approx(got.MinY, 0) || !approx(got.MaxY, 10) {
		t.Errorf("rotated MapRect = %v", got)
	}
}

func TestMatrix4Project2D(t *testing.T) {
	m := Identity4()
	m.M[3] = 15  // x translation
	m.M[7] = -4  // y translation
	m.M[11] = 99 // z translation is dropped
	if m.HasPerspective() {
		t.Error("HasPerspective() = true for affine matrix")
	}
	p := m.Project2D().MapPoint(Pt(1, 1))
	if !approx(p.X, 16) || !approx(p.Y, -3) {
		t.Errorf("projected point = %v, want (16,-3)", p)
	}

	m.M[14] = 0.01
	if !m.HasPerspective() {
		t.Error("HasPerspective() = false with projective row")
	}
}

func TestMatrixQuadW(t *testing.T) {
	r := RectXYWH(0, 0, 10, 10)
	for i, w := range Scale(2, 3).QuadW(r) {
		if w != 1 {
			t.Errorf("affine QuadW()[%d] = %v, want 1", i, w)
		}
	}

	// w = 1 - 0.2*x: the right edge is behind the viewer.
	m := Matrix3{A: 1, E: 1, G: -0.2, I: 1}
	want := [4]float32{1, -1, -1, 1}
	got := m.QuadW(r)
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("QuadW()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
