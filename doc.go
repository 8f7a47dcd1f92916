// Package renderpipe schedules asynchronously produced scene graphs onto a
// dedicated rasterizer goroutine and turns each frame into ordered draw
// commands.
//
// # Overview
//
// A producer (typically a layout goroutine) builds an immutable render tree,
// wraps it with its animations and a timestamp in a pipeline.Submission and
// hands it to pipeline.Pipeline.Submit. The pipeline smooths submission
// timing with a bounded SubmissionQueue, and a repeating timer on the
// rasterizer goroutine picks the current submission, applies animations and
// rasterizes it.
//
// Rasterization walks the tree with a RenderTreeNodeVisitor, which applies
// the accumulated transform, scissor and opacity, culls invisible subtrees
// and emits draw objects into a DrawObjectManager. Opaque draws are ordered
// by depth; transparent draws keep traversal order.
//
// # Packages
//
//   - geom: points, rectangles and matrices
//   - rendertree: immutable scene-graph nodes
//   - animations: per-node animation maps
//   - backend: graphics context, render targets and textures
//   - rasterizer: draw objects, visitor and frame execution
//   - rasterizer/fallback: CPU rendering of node kinds the core does not draw
//   - pipeline: submissions, smoothing queue and the pipeline itself
//
// # Logging
//
// Nothing is logged by default. Call SetLogger to enable output.
package renderpipe

// Version is the current version of the module.
const Version = "0.1.0"
