package rendertree

import (
	"testing"

	"github.com/gogpu/renderpipe/geom"
)

type kindRecorder struct {
	kinds []NodeKind
}

func (r *kindRecorder) VisitComposition(n *CompositionNode) {
	r.kinds = append(r.kinds, n.Kind())
	for _, c := range n.Children() {
		Dispatch(c, r)
	}
}
func (r *kindRecorder) VisitMatrixTransform(n *MatrixTransformNode) {
	r.kinds = append(r.kinds, n.Kind())
	Dispatch(n.Source(), r)
}
func (r *kindRecorder) VisitMatrixTransform3D(n *MatrixTransform3DNode) {
	r.kinds = append(r.kinds, n.Kind())
	Dispatch(n.Source(), r)
}
func (r *kindRecorder) VisitFilter(n *FilterNode) {
	r.kinds = append(r.kinds, n.Kind())
	Dispatch(n.Source(), r)
}
func (r *kindRecorder) VisitImage(n *ImageNode) { r.kinds = append(r.kinds, n.Kind()) }
func (r *kindRecorder) VisitRect(n *RectNode) { r.kinds = append(r.kinds, n.Kind()) }
func (r *kindRecorder) VisitRectShadow(n *RectShadowNode) { r.kinds = append(r.kinds, n.Kind()) }
func (r *kindRecorder) VisitText(n *TextNode) { r.kinds = append(r.kinds, n.Kind()) }
func (r *kindRecorder) VisitPunchThroughVideo(n *PunchThroughVideoNode) { r.kinds = append(r.kinds, n.Kind()) }

func TestDispatchVisitsEveryKind(t *testing.T) {
	rect := NewSolidRectNode(geom.RectXYWH(0, 0, 10, 10), White)
	tree := NewCompositionNode(geom.Pt(0, 0),
		NewMatrixTransformNode(rect, geom.Scale(2, 2)),
		NewMatrixTransform3DNode(rect, geom.Identity4()),
		NewViewportNode(rect, geom.RectXYWH(0, 0, 5, 5)),
		NewImageNode(nil, geom.RectXYWH(0, 0, 4, 4)),
		NewRectShadowNode(geom.RectXYWH(0, 0, 4, 4), Shadow{Color: Black}, 0),
		NewPunchThroughVideoNode(geom.RectXYWH(0, 0, 4, 4)),
	)

	rec := &kindRecorder{}
	Dispatch(tree, rec)

	want := []NodeKind{
		KindComposition,
		KindMatrixTransform, KindRect,
		KindMatrixTransform3D, KindRect,
		KindFilter, KindRect,
		KindImage,
		KindRectShadow,
		KindPunchThroughVideo,
	}
	if len(rec.kinds) != len(want) {
		t.Fatalf("visited %v, want %v", rec.kinds, want)
	}
	for i := range want {
		if rec.kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, rec.kinds[i], want[i])
		}
	}
	if got := Count(tree); got != len(want) {
		t.Errorf("Count() = %d, want %d", got, len(want))
	}
}

func TestDispatchNil(t *testing.T) {
	rec := &kindRecorder{}
	Dispatch(nil, rec)
	if len(rec.kinds) != 0 {
		t.Errorf("Dispatch(nil) visited %v", rec.kinds)
	}
}

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindComposition, "Composition"},
		{KindPunchThroughVideo, "PunchThroughVideo"},
		{KindCount, "NodeKind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompositionBounds(t *testing.T) {
	a := NewSolidRectNode(geom.RectXYWH(0, 0, 10, 10), White)
	b := NewSolidRectNode(geom.RectXYWH(20, 5, 10, 10), White)
	n := NewCompositionNode(geom.Pt(10, 5), a, nil, b)

	if len(n.Children()) != 2 {
		t.Fatalf("len(Children()) = %d, want 2", len(n.Children()))
	}
	want := geom.Rect{MinX: 10, MinY: 5, MaxX: 40, MaxY: 20}
	if got := n.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}

	empty := NewCompositionNode(geom.Pt(3, 3))
	if !empty.Bounds().IsEmpty() {
		t.Errorf("empty composition Bounds() = %v, want empty", empty.Bounds())
	}
}

func TestTransformBounds(t *testing.T) {
	r := NewSolidRectNode(geom.RectXYWH(0, 0, 10, 20), White)
	n := NewMatrixTransformNode(r, geom.Translate(5, 5).Multiply(geom.Scale(2, 2)))
	want := geom.Rect{MinX: 5, MinY: 5, MaxX: 25, MaxY: 45}
	if got := n.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestFilterBounds(t *testing.T) {
	r := NewSolidRectNode(geom.RectXYWH(0, 0, 100, 100), White)

	clip := NewViewportNode(r, geom.RectXYWH(10, 10, 20, 20))
	if got, want := clip.Bounds(), geom.RectXYWH(10, 10, 20, 20); got != want {
		t.Errorf("viewport Bounds() = %v, want %v", got, want)
	}
	if !clip.Filters().IsPlainViewport() {
		t.Error("IsPlainViewport() = false for plain viewport")
	}

	rounded := NewFilterNode(r, Filters{Viewport: &ViewportFilter{
		Viewport:       geom.RectXYWH(0, 0, 10, 10),
		RoundedCorners: UniformCorners(2),
	}})
	if rounded.Filters().IsPlainViewport() {
		t.Error("IsPlainViewport() = true for rounded viewport")
	}

	blur := NewFilterNode(r, Filters{Blur: &BlurFilter{Sigma: 2}})
	if got, want := blur.Bounds(), geom.Rect{MinX: -6, MinY: -6, MaxX: 106, MaxY: 106}; got != want {
		t.Errorf("blur Bounds() = %v, want %v", got, want)
	}
}

func TestRectContentRect(t *testing.T) {
	n := NewRectNode(geom.RectXYWH(0, 0, 100, 50), &SolidColorBrush{Color: White},
		WithBorder(&Border{
			Left:   BorderSide{Width: 1},
			Top:    BorderSide{Width: 2},
			Right:  BorderSide{Width: 3},
			Bottom: BorderSide{Width: 4},
		}))
	want := geom.Rect{MinX: 1, MinY: 2, MaxX: 97, MaxY: 46}
	if got := n.ContentRect(); got != want {
		t.Errorf("ContentRect() = %v, want %v", got, want)
	}
	if got := n.Bounds(); got != geom.RectXYWH(0, 0, 100, 50) {
		t.Errorf("Bounds() = %v, want outer rect", got)
	}
}

func TestRoundedCornersIsSquare(t *testing.T) {
	var nilCorners *RoundedCorners
	if !nilCorners.IsSquare() {
		t.Error("nil corners IsSquare() = false")
	}
	if !UniformCorners(0).IsSquare() {
		t.Error("zero radius IsSquare() = false")
	}
	if UniformCorners(4).IsSquare() {
		t.Error("radius 4 IsSquare() = true")
	}
}

func TestShadowBounds(t *testing.T) {
	n := NewRectShadowNode(geom.RectXYWH(10, 10, 10, 10), Shadow{Offset: geom.Pt(5, 5), BlurSigma: 1}, 2)
	// Shadow rect (13,13)-(27,27) grown by the 3 sigma blur extent.
	want := geom.Rect{MinX: 10, MinY: 10, MaxX: 30, MaxY: 30}
	if got := n.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}

	inset := NewInsetRectShadowNode(geom.RectXYWH(10, 10, 10, 10), Shadow{BlurSigma: 4}, 1)
	if got := inset.Bounds(); got != geom.RectXYWH(10, 10, 10, 10) {
		t.Errorf("inset Bounds() = %v, want rect", got)
	}
}
