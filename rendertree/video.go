package rendertree

import "github.com/gogpu/renderpipe/geom"

// PunchThroughVideoNode marks a region where a platform video plane shows
// through. The region is cleared to transparent so the plane underneath is
// visible.
type PunchThroughVideoNode struct {
	rect geom.Rect
}

// NewPunchThroughVideoNode creates a punch-through region.
func NewPunchThroughVideoNode(rect geom.Rect) *PunchThroughVideoNode {
	return &PunchThroughVideoNode{rect: rect}
}

// Rect returns the punched region.
func (n *PunchThroughVideoNode) Rect() geom.Rect { return n.rect }

// Kind implements Node.
func (n *PunchThroughVideoNode) Kind() NodeKind { return KindPunchThroughVideo }

// Bounds implements Node.
func (n *PunchThroughVideoNode) Bounds() geom.Rect { return n.rect }

func (*PunchThroughVideoNode) sealed() {}
