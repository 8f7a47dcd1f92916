package rendertree

import "github.com/gogpu/renderpipe/geom"

// Image is a decoded image that may be drawn by an ImageNode. Concrete
// images are created by a rasterizer's resource provider.
type Image interface {
	// Size returns the image dimensions in pixels.
	Size() geom.Size

	// IsOpaque reports whether every pixel has alpha 1.
	IsOpaque() bool
}

// ImageNode draws an image into a destination rectangle.
//
// The local transform maps the unit square of the destination rectangle to
// the image placement within it; the identity stretches the image to fill
// the rectangle.
type ImageNode struct {
	source         Image
	destRect       geom.Rect
	localTransform geom.Matrix3
}

// NewImageNode draws source stretched over destRect. source may be nil,
// in which case the node draws nothing.
func NewImageNode(source Image, destRect geom.Rect) *ImageNode {
	return &ImageNode{source: source, destRect: destRect, localTransform: geom.Identity()}
}

// NewImageNodeWithTransform draws source over destRect placed by
// localTransform.
func NewImageNodeWithTransform(source Image, destRect geom.Rect, localTransform geom.Matrix3) *ImageNode {
	return &ImageNode{source: source, destRect: destRect, localTransform: localTransform}
}

// Source returns the image, or nil if none is bound yet.
func (n *ImageNode) Source() Image { return n.source }

// DestinationRect returns the rectangle the image is drawn into.
func (n *ImageNode) DestinationRect() geom.Rect { return n.destRect }

// LocalTransform returns the placement of the image in the destination.
func (n *ImageNode) LocalTransform() geom.Matrix3 { return n.localTransform }

// Kind implements Node.
func (n *ImageNode) Kind() NodeKind { return KindImage }

// Bounds implements Node.
func (n *ImageNode) Bounds() geom.Rect { return n.destRect }

func (*ImageNode) sealed() {}

// WithSource returns a copy of n drawing a different image.
func (n *ImageNode) WithSource(source Image) *ImageNode {
	c := *n
	c.source = source
	return &c
}

// WithDestinationRect returns a copy of n drawn into a different rect.
func (n *ImageNode) WithDestinationRect(r geom.Rect) *ImageNode {
	c := *n
	c.destRect = r
	return &c
}
