package main

import (
	"image"
	"image/color"
	"time"

	"github.com/gogpu/renderpipe/animations"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rasterizer"
	"github.com/gogpu/renderpipe/rendertree"
)

// scene is the demo render tree and its animations. The tree is built
// once; every submission shares it and only the time offset changes.
type scene struct {
	tree  rendertree.Node
	anims *animations.Map
}

// loop is the animation period.
const loop = 2 * time.Second

func buildScene(provider *rasterizer.ResourceProvider, w, h int) (*scene, error) {
	fw, fh := float32(w), float32(h)
	anims := animations.NewMap()

	background := rendertree.NewRectNode(geom.RectXYWH(0, 0, fw, fh), &rendertree.LinearGradientBrush{
		Start: geom.Pt(0, 0),
		End:   geom.Pt(0, fh),
		Stops: []rendertree.ColorStop{
			{Position: 0, Color: rendertree.RGBA(0.10, 0.20, 0.40, 1)},
			{Position: 1, Color: rendertree.RGBA(0.50, 0.50, 0.60, 1)},
		},
	})

	card := geom.RectXYWH(fw*0.1, fh*0.15, fw*0.35, fh*0.5)
	shadow := rendertree.NewRectShadowNode(card, rendertree.Shadow{
		Offset:    geom.Pt(4, 6),
		BlurSigma: 6,
		Color:     rendertree.RGBA(0, 0, 0, 0.5),
	}, 0)
	cardNode := rendertree.NewRectNode(card, &rendertree.SolidColorBrush{Color: rendertree.White},
		rendertree.WithRoundedCorners(rendertree.UniformCorners(12)),
		rendertree.WithBorder(rendertree.UniformBorder(2, rendertree.RGBA(0.2, 0.3, 0.5, 1))))

	title, err := rendertree.NewTextNode(geom.Pt(card.MinX+16, card.MinY+36), "renderpipe", 24, rendertree.Black)
	if err != nil {
		return nil, err
	}

	checker, err := provider.CreateImage(checkerboard(64, 8))
	if err != nil {
		return nil, err
	}
	thumb := rendertree.NewImageNode(checker, geom.RectXYWH(card.MinX+16, card.MinY+56, 96, 96))

	// A square sliding across the right half, fading from red to green.
	mover := rendertree.NewSolidRectNode(geom.RectXYWH(fw*0.55, fh*0.2, fh*0.15, fh*0.15), rendertree.RGBA(0.9, 0.2, 0.2, 1))
	animations.MoveRect(anims, mover, geom.Pt(fw*0.85-fh*0.15, fh*0.2), 0, loop)
	animations.FadeColor(anims, mover, rendertree.RGBA(0.2, 0.8, 0.3, 1), 0, loop)

	// A translucent badge under a transform and an opacity filter.
	badge := rendertree.NewMatrixTransformNode(
		rendertree.NewOpacityNode(
			rendertree.NewSolidRectNode(geom.RectXYWH(-30, -30, 60, 60), rendertree.RGBA(1, 0.8, 0.1, 1)),
			0.6),
		geom.Translate(fw*0.7, fh*0.65).Multiply(geom.Rotate(0.3)))

	panel := rendertree.NewViewportNode(
		rendertree.NewCompositionNode(geom.Pt(fw*0.5, fh*0.75),
			rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, fw*0.45, fh*0.2), rendertree.RGBA(0.1, 0.1, 0.1, 0.7)),
		),
		geom.RectXYWH(fw*0.5, fh*0.75, fw*0.45, fh*0.15))

	tree := rendertree.NewCompositionNode(geom.Point{},
		background,
		shadow,
		cardNode,
		title,
		thumb,
		mover,
		badge,
		panel,
	)
	return &scene{tree: tree, anims: anims}, nil
}

func checkerboard(size, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	dark := color.RGBA{60, 60, 70, 255}
	light := color.RGBA{220, 220, 230, 255}
	for y := range size {
		for x := range size {
			c := light
			if (x/cell+y/cell)%2 == 1 {
				c = dark
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
