// Package geom provides the float32 geometry used by the render pipeline:
// points, sizes, axis-aligned rectangles, integer scissor rectangles and
// 3x3 / 4x4 transformation matrices.
//
// Coordinates follow the usual raster convention: origin at the top-left,
// X grows to the right and Y grows downward.
package geom
