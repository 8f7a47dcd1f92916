// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fallback

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rendertree"
)

var (
	red   = rendertree.RGBA(1, 0, 0, 1)
	blue  = rendertree.RGBA(0, 0, 1, 1)
	black = rendertree.RGBA(0, 0, 0, 1)
	white = rendertree.RGBA(1, 1, 1, 1)
)

func stubCompile(string) ([]byte, error) { return []byte{0x03, 0x02, 0x23, 0x07}, nil }

func newTestRenderer(t *testing.T, w, h int) (*Renderer, *backend.OffscreenTarget) {
	t.Helper()
	gc := backend.NewGraphicsContext(nil)
	target, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: w, Height: h})
	if err != nil {
		t.Fatalf("CreateOffscreenRenderTarget() error = %v", err)
	}
	target.Clear(color.RGBA{})
	r := New(gc, WithRasterizerOptions(rasterizer.WithShaderCompiler(stubCompile)))
	t.Cleanup(r.Close)
	return r, target
}

func rasterize(t *testing.T, r *Renderer, target backend.RenderTarget, n rendertree.Node) *image.RGBA {
	t.Helper()
	if err := r.Rasterize(n, geom.Identity(), target); err != nil {
		t.Fatalf("Rasterize(%s) error = %v", n.Kind(), err)
	}
	return target.ColorBuffer()
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func nearColor(got, want color.RGBA, tol int) bool {
	return near(got.R, want.R, tol) && near(got.G, want.G, tol) &&
		near(got.B, want.B, tol) && near(got.A, want.A, tol)
}

func TestSolidRect(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	img := rasterize(t, r, target, rendertree.NewSolidRectNode(geom.RectXYWH(2, 2, 8, 8), red))

	if got := img.RGBAAt(4, 4); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside = %v, want opaque red", got)
	}
	if got := img.RGBAAt(12, 12); got.A != 0 {
		t.Errorf("outside = %v, want transparent", got)
	}
}

func TestSolidRectTransformed(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	m := geom.Translate(8, 0).Multiply(geom.Scale(2, 2))
	if err := r.Rasterize(rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 4, 4), blue), m, target); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	img := target.ColorBuffer()
	if got := img.RGBAAt(15, 7); got.B != 255 {
		t.Errorf("pixel(15,7) = %v, want blue", got)
	}
	if got := img.RGBAAt(7, 7); got.A != 0 {
		t.Errorf("pixel(7,7) = %v, want transparent", got)
	}
}

func TestRoundedCorners(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	n := rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 16, 16), red)
	n = rendertree.NewRectNode(n.Rect(), n.Brush(), rendertree.WithRoundedCorners(rendertree.UniformCorners(8)))
	img := rasterize(t, r, target, n)

	for _, p := range []image.Point{{0, 0}, {15, 0}, {15, 15}, {0, 15}} {
		if got := img.RGBAAt(p.X, p.Y); got.A != 0 {
			t.Errorf("corner %v = %v, want transparent", p, got)
		}
	}
	if got := img.RGBAAt(8, 8); got.A != 255 {
		t.Errorf("center = %v, want opaque", got)
	}
	if got := img.RGBAAt(8, 0); got.A < 240 {
		t.Errorf("edge midpoint = %v, want nearly opaque", got)
	}
}

func TestBorder(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	n := rendertree.NewRectNode(geom.RectXYWH(0, 0, 10, 10), &rendertree.SolidColorBrush{Color: blue},
		rendertree.WithBorder(rendertree.UniformBorder(2, red)))
	img := rasterize(t, r, target, n)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 5, color.RGBA{255, 0, 0, 255}},
		{9, 5, color.RGBA{255, 0, 0, 255}},
		{5, 1, color.RGBA{255, 0, 0, 255}},
		{5, 5, color.RGBA{0, 0, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBorderWithoutBrush(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	n := rendertree.NewRectNode(geom.RectXYWH(0, 0, 10, 10), nil,
		rendertree.WithBorder(rendertree.UniformBorder(2, red)))
	img := rasterize(t, r, target, n)

	if got := img.RGBAAt(0, 0); got.A != 255 {
		t.Errorf("border = %v, want opaque", got)
	}
	if got := img.RGBAAt(5, 5); got.A != 0 {
		t.Errorf("content = %v, want transparent", got)
	}
}

func TestGradients(t *testing.T) {
	stops := []rendertree.ColorStop{{Position: 0, Color: black}, {Position: 1, Color: white}}
	tests := []struct {
		name      string
		brush     rendertree.Brush
		low, high image.Point
	}{
		{
			name:  "linear",
			brush: &rendertree.LinearGradientBrush{Start: geom.Pt(0, 0), End: geom.Pt(16, 0), Stops: stops},
			low:   image.Pt(0, 8),
			high:  image.Pt(15, 8),
		},
		{
			name: "radial",
			brush: &rendertree.RadialGradientBrush{
				Center: geom.Pt(8, 8), RadiusX: 8, RadiusY: 8, Stops: stops,
			},
			low:  image.Pt(8, 8),
			high: image.Pt(0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, target := newTestRenderer(t, 16, 16)
			img := rasterize(t, r, target, rendertree.NewRectNode(geom.RectXYWH(0, 0, 16, 16), tt.brush))
			lo, hi := img.RGBAAt(tt.low.X, tt.low.Y), img.RGBAAt(tt.high.X, tt.high.Y)
			if lo.R > 40 {
				t.Errorf("start %v = %v, want near black", tt.low, lo)
			}
			if hi.R < 215 {
				t.Errorf("end %v = %v, want near white", tt.high, hi)
			}
			if lo.A != 255 || hi.A != 255 {
				t.Errorf("alpha = %d, %d, want opaque", lo.A, hi.A)
			}
		})
	}
}

func TestShadow(t *testing.T) {
	shadow := rendertree.Shadow{Offset: geom.Pt(2, 2), Color: black}

	t.Run("outset", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		img := rasterize(t, r, target, rendertree.NewRectShadowNode(geom.RectXYWH(2, 2, 6, 6), shadow, 0))
		if got := img.RGBAAt(9, 9); got.A != 255 {
			t.Errorf("shadow = %v, want opaque", got)
		}
		if got := img.RGBAAt(5, 5); got.A != 0 {
			t.Errorf("under caster = %v, want transparent", got)
		}
	})

	t.Run("inset", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		img := rasterize(t, r, target, rendertree.NewInsetRectShadowNode(geom.RectXYWH(2, 2, 10, 10), shadow, 0))
		if got := img.RGBAAt(2, 2); got.A != 255 {
			t.Errorf("top-left edge = %v, want opaque", got)
		}
		if got := img.RGBAAt(8, 8); got.A != 0 {
			t.Errorf("interior = %v, want transparent", got)
		}
		if got := img.RGBAAt(13, 13); got.A != 0 {
			t.Errorf("outside = %v, want transparent", got)
		}
	})

	t.Run("blurred", func(t *testing.T) {
		r, target := newTestRenderer(t, 32, 32)
		blurred := shadow
		blurred.BlurSigma = 2
		img := rasterize(t, r, target, rendertree.NewRectShadowNode(geom.RectXYWH(6, 6, 12, 12), blurred, 0))
		edge, deep := img.RGBAAt(20, 14), img.RGBAAt(22, 14)
		if edge.A == 0 || edge.A == 255 {
			t.Errorf("edge alpha = %d, want partial", edge.A)
		}
		if deep.A >= edge.A {
			t.Errorf("falloff: alpha %d at 22 >= %d at 20", deep.A, edge.A)
		}
	})
}

func TestBoxCoverage(t *testing.T) {
	r := geom.RectXYWH(0, 0, 100, 100)
	if got := boxCoverage(geom.Pt(50, 50), r, 2); got < 0.999 {
		t.Errorf("center = %v, want 1", got)
	}
	if got := boxCoverage(geom.Pt(0, 50), r, 2); got < 0.49 || got > 0.51 {
		t.Errorf("edge = %v, want 0.5", got)
	}
	if got := boxCoverage(geom.Pt(-20, 50), r, 2); got > 0.001 {
		t.Errorf("far outside = %v, want 0", got)
	}
}

func TestText(t *testing.T) {
	r, target := newTestRenderer(t, 48, 24)
	n, err := rendertree.NewTextNode(geom.Pt(2, 16), "Hi!", 14, black)
	if err != nil {
		t.Fatalf("NewTextNode() error = %v", err)
	}
	img := rasterize(t, r, target, n)

	var inked int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Fatal("no glyph pixels drawn")
	}
	if inked > 48*24/2 {
		t.Errorf("%d pixels inked, want glyph coverage only", inked)
	}
	if got := r.faces.faces.Len(); got != 1 {
		t.Errorf("cached faces = %d, want 1", got)
	}
	rasterize(t, r, target, n)
	if got := r.faces.faces.Len(); got != 1 {
		t.Errorf("cached faces after redraw = %d, want 1", got)
	}
}

func TestFilters(t *testing.T) {
	full := rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 16, 16), red)

	t.Run("opacity", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		img := rasterize(t, r, target, rendertree.NewOpacityNode(full, 0.5))
		if got := img.RGBAAt(8, 8); !nearColor(got, color.RGBA{128, 0, 0, 128}, 1) {
			t.Errorf("pixel = %v, want half red", got)
		}
	})

	t.Run("rounded viewport", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		n := rendertree.NewFilterNode(full, rendertree.Filters{
			Viewport: &rendertree.ViewportFilter{
				Viewport:       geom.RectXYWH(0, 0, 8, 8),
				RoundedCorners: rendertree.UniformCorners(4),
			},
		})
		img := rasterize(t, r, target, n)
		if got := img.RGBAAt(4, 4); got.A != 255 {
			t.Errorf("inside = %v, want opaque", got)
		}
		if got := img.RGBAAt(0, 0); got.A != 0 {
			t.Errorf("rounded corner = %v, want transparent", got)
		}
		if got := img.RGBAAt(12, 12); got.A != 0 {
			t.Errorf("outside = %v, want transparent", got)
		}
	})

	t.Run("blur", func(t *testing.T) {
		r, target := newTestRenderer(t, 32, 32)
		src := rendertree.NewSolidRectNode(geom.RectXYWH(12, 12, 8, 8), red)
		n := rendertree.NewFilterNode(src, rendertree.Filters{Blur: &rendertree.BlurFilter{Sigma: 2}})
		img := rasterize(t, r, target, n)
		if got := img.RGBAAt(10, 16); got.A == 0 {
			t.Errorf("outside source = %v, want blurred coverage", got)
		}
		if got := img.RGBAAt(16, 16); got.A < 200 {
			t.Errorf("center = %v, want mostly opaque", got)
		}
		if got := img.RGBAAt(1, 1); got.A != 0 {
			t.Errorf("far corner = %v, want transparent", got)
		}
	})

	t.Run("map to mesh", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		n := rendertree.NewFilterNode(full, rendertree.Filters{MapToMesh: &rendertree.MapToMeshFilter{}})
		err := r.Rasterize(n, geom.Identity(), target)
		var ue *rasterizer.UnimplementedError
		if !errors.As(err, &ue) || ue.Feature != "map to mesh" {
			t.Errorf("Rasterize() error = %v, want map to mesh unimplemented", err)
		}
	})
}

func TestLargeBlurDownsamples(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 28; y < 36; y++ {
		for x := 28; x < 36; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	blur(img, 12)
	if got := img.RGBAAt(18, 32); got.A == 0 {
		t.Errorf("pixel(18,32) = %v, want spread coverage", got)
	}
	if got := img.RGBAAt(32, 32); got.A == 255 {
		t.Errorf("center = %v, want attenuated", got)
	}
}

func TestBoxRadii(t *testing.T) {
	for _, sigma := range []float32{0.5, 1, 2, 5, 8} {
		var variance float32
		for _, r := range boxRadii(sigma) {
			w := float32(2*r + 1)
			variance += (w*w - 1) / 12
		}
		tol := 0.15*sigma*sigma + 0.5
		if d := variance - sigma*sigma; d < -tol || d > tol {
			t.Errorf("boxRadii(%v) variance = %v, want %v", sigma, variance, sigma*sigma)
		}
	}
}

func TestPerspectiveClipsBehindViewer(t *testing.T) {
	r, target := newTestRenderer(t, 96, 20)
	src := rendertree.NewSolidRectNode(geom.RectXYWH(0, -10, 20, 30), red)
	m4 := geom.Identity4()
	m4.M[3] = 16    // x translation
	m4.M[12] = -0.1 // w = 1 - x/10
	n := rendertree.NewMatrixTransform3DNode(src, m4)
	if !rasterizer.CrossesViewer(n) {
		t.Fatal("CrossesViewer() = false")
	}

	if err := r.Rasterize(n, geom.Translate(70, 10), target); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	img := target.ColorBuffer()
	if got, want := img.RGBAAt(90, 10), (color.RGBA{255, 0, 0, 255}); got != want {
		t.Errorf("in front of the viewer = %v, want %v", got, want)
	}
	// (20, 10) maps back into the source at w < 0.
	if got := img.RGBAAt(20, 10); got != (color.RGBA{}) {
		t.Errorf("behind the viewer = %v, want transparent", got)
	}
	// Left of the projected source edge.
	if got := img.RGBAAt(80, 10); got != (color.RGBA{}) {
		t.Errorf("outside the source = %v, want transparent", got)
	}
}

func TestComposition(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	n := rendertree.NewCompositionNode(geom.Pt(4, 4),
		rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 4, 4), blue))
	img := rasterize(t, r, target, n)
	if got := img.RGBAAt(5, 5); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("pixel(5,5) = %v, want blue", got)
	}
	if got := img.RGBAAt(1, 1); got.A != 0 {
		t.Errorf("pixel(1,1) = %v, want transparent", got)
	}
}

func TestFilterLayerIgnoresClearColor(t *testing.T) {
	gc := backend.NewGraphicsContext(nil)
	target, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("CreateOffscreenRenderTarget() error = %v", err)
	}
	target.Clear(color.RGBA{255, 0, 0, 255})
	r := New(gc, WithRasterizerOptions(
		rasterizer.WithShaderCompiler(stubCompile),
		rasterizer.WithClearColor(color.RGBA{0, 0, 255, 255}),
	))
	t.Cleanup(r.Close)

	green := rendertree.RGBA(0, 1, 0, 1)
	src := rendertree.NewCompositionNode(geom.Point{},
		rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 4, 4), green),
		rendertree.NewSolidRectNode(geom.RectXYWH(12, 12, 4, 4), green),
	)
	img := rasterize(t, r, target, rendertree.NewOpacityNode(src, 0.5))

	if got, want := img.RGBAAt(8, 8), (color.RGBA{255, 0, 0, 255}); got != want {
		t.Errorf("gap pixel = %v, want %v", got, want)
	}
	if got := img.RGBAAt(2, 2); got.B != 0 || got.G < 100 || got.R < 100 {
		t.Errorf("filtered pixel = %v, want green blended over red", got)
	}
}

func TestNestedFiltersReuseRasterizers(t *testing.T) {
	r, target := newTestRenderer(t, 16, 16)
	inner := rendertree.NewOpacityNode(rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 16, 16), red), 0.5)
	outer := rendertree.NewFilterNode(inner, rendertree.Filters{Blur: &rendertree.BlurFilter{Sigma: 1}})
	for range 3 {
		target.Clear(color.RGBA{})
		rasterize(t, r, target, outer)
	}
	if got := len(r.nested); got != 2 {
		t.Errorf("nested rasterizers = %d, want 2", got)
	}
	if got := len(r.idle); got != 2 {
		t.Errorf("idle rasterizers = %d, want 2", got)
	}
	r.Close()
	if len(r.nested) != 0 || r.layers.Len() != 0 {
		t.Errorf("Close() left %d rasterizers, %d layers", len(r.nested), r.layers.Len())
	}
}

type fakeImage struct{}

func (fakeImage) Size() geom.Size { return geom.Size{Width: 1, Height: 1} }
func (fakeImage) IsOpaque() bool  { return true }

func TestImages(t *testing.T) {
	t.Run("rgba", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		src := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for i := range src.Pix {
			src.Pix[i] = 255
		}
		img := backend.NewImage(r.gc, src)
		out := rasterize(t, r, target, rendertree.NewImageNode(img, geom.RectXYWH(4, 4, 8, 8)))
		if got := out.RGBAAt(8, 8); got != (color.RGBA{255, 255, 255, 255}) {
			t.Errorf("inside = %v, want white", got)
		}
		if got := out.RGBAAt(1, 1); got.A != 0 {
			t.Errorf("outside = %v, want transparent", got)
		}
	})

	t.Run("local transform", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		src := image.NewRGBA(image.Rect(0, 0, 2, 1))
		src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
		src.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})
		// Mirror horizontally.
		local := geom.Matrix3{A: -1, C: 1, E: 1, I: 1}
		n := rendertree.NewImageNodeWithTransform(backend.NewImage(r.gc, src), geom.RectXYWH(0, 0, 16, 16), local)
		out := rasterize(t, r, target, n)
		if got := out.RGBAAt(1, 8); got.B < 200 {
			t.Errorf("left = %v, want blue", got)
		}
		if got := out.RGBAAt(14, 8); got.R < 200 {
			t.Errorf("right = %v, want red", got)
		}
	})

	t.Run("multi-plane", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		ycc := image.NewYCbCr(image.Rect(0, 0, 4, 4), image.YCbCrSubsampleRatio420)
		for i := range ycc.Y {
			ycc.Y[i] = 128
		}
		for i := range ycc.Cb {
			ycc.Cb[i], ycc.Cr[i] = 128, 128
		}
		n := rendertree.NewImageNode(backend.NewMultiPlaneImage(ycc), geom.RectXYWH(0, 0, 16, 16))
		out := rasterize(t, r, target, n)
		if got := out.RGBAAt(8, 8); !nearColor(got, color.RGBA{128, 128, 128, 255}, 2) {
			t.Errorf("pixel = %v, want mid gray", got)
		}
	})

	t.Run("unsupported source", func(t *testing.T) {
		r, target := newTestRenderer(t, 16, 16)
		err := r.Rasterize(rendertree.NewImageNode(fakeImage{}, geom.RectXYWH(0, 0, 4, 4)), geom.Identity(), target)
		if !errors.Is(err, rasterizer.ErrNotImplemented) {
			t.Errorf("Rasterize() error = %v, want ErrNotImplemented", err)
		}
	})
}

func TestPunchThroughLeavesTargetClear(t *testing.T) {
	r, target := newTestRenderer(t, 8, 8)
	img := rasterize(t, r, target, rendertree.NewPunchThroughVideoNode(geom.RectXYWH(0, 0, 8, 8)))
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d, want 0", i, v)
		}
	}
}

// The core rasterizer hands rounded rects to the fallback and composites
// the result.
func TestRasterizerIntegration(t *testing.T) {
	gc := backend.NewGraphicsContext(nil)
	target, err := gc.CreateOffscreenRenderTarget(geom.Size{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("CreateOffscreenRenderTarget() error = %v", err)
	}
	fb := New(gc, WithRasterizerOptions(rasterizer.WithShaderCompiler(stubCompile)))
	defer fb.Close()

	var reports []*rasterizer.UnimplementedError
	rz, err := rasterizer.New(gc,
		rasterizer.WithShaderCompiler(stubCompile),
		rasterizer.WithFallback(fb),
		rasterizer.WithUnimplementedHandler(func(e *rasterizer.UnimplementedError) { reports = append(reports, e) }))
	if err != nil {
		t.Fatalf("rasterizer.New() error = %v", err)
	}
	defer rz.Close()

	tree := rendertree.NewCompositionNode(geom.Point{},
		rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 16, 16), blue),
		rendertree.NewRectNode(geom.RectXYWH(0, 0, 16, 16), &rendertree.SolidColorBrush{Color: red},
			rendertree.WithRoundedCorners(rendertree.UniformCorners(8))),
	)
	if err := rz.Submit(tree, target); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	img := target.ColorBuffer()
	if got := img.RGBAAt(8, 8); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("center = %v, want red", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("corner = %v, want blue", got)
	}
	if len(reports) != 1 || !reports[0].Handled || reports[0].Feature != "rounded corners" {
		t.Errorf("reports = %v, want one handled rounded corners report", reports)
	}
	if got := rz.LastFrameStats().FallbackDraws; got != 1 {
		t.Errorf("FallbackDraws = %d, want 1", got)
	}
}
