// Package animations resolves time-varying properties of a render tree.
//
// A Map associates nodes of an immutable render tree with functions that
// produce a replacement node for a given time. Apply rebuilds only the
// ancestors of animated nodes; every other subtree is shared with the input
// tree.
package animations

import (
	"time"

	"github.com/gogpu/renderpipe/rendertree"
)

// Func returns the state of node at time t. It must not modify node.
type Func func(node rendertree.Node, t time.Duration) rendertree.Node

// Map holds the animations of one submission. The zero value is an empty
// map ready to use. A Map must not be modified once it has been submitted.
type Map struct {
	funcs map[rendertree.Node][]Func
}

// NewMap returns an empty animation map.
func NewMap() *Map {
	return &Map{funcs: make(map[rendertree.Node][]Func)}
}

// Add registers fn for node. Animations of one node are applied in the
// order they were added, each receiving the output of the previous one.
func (m *Map) Add(node rendertree.Node, fn Func) {
	if node == nil || fn == nil {
		return
	}
	if m.funcs == nil {
		m.funcs = make(map[rendertree.Node][]Func)
	}
	m.funcs[node] = append(m.funcs[node], fn)
}

// AddTyped registers a typed animation for node.
func AddTyped[T rendertree.Node](m *Map, node T, fn func(node T, t time.Duration) T) {
	m.Add(node, func(n rendertree.Node, t time.Duration) rendertree.Node {
		typed, ok := n.(T)
		if !ok {
			return n
		}
		return fn(typed, t)
	})
}

// Merge returns a map holding the animations of every input map, in
// argument order. Nil maps are skipped.
func Merge(maps ...*Map) *Map {
	out := NewMap()
	for _, m := range maps {
		if m == nil {
			continue
		}
		for node, fns := range m.funcs {
			out.funcs[node] = append(out.funcs[node], fns...)
		}
	}
	return out
}

// Len returns the number of animated nodes.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.funcs)
}

// IsAnimated reports whether node has at least one animation.
func (m *Map) IsAnimated(node rendertree.Node) bool {
	if m == nil {
		return false
	}
	_, ok := m.funcs[node]
	return ok
}

// Apply returns tree with every animation evaluated at t. A nil or empty map
// returns tree unchanged.
func (m *Map) Apply(tree rendertree.Node, t time.Duration) rendertree.Node {
	if m.Len() == 0 || tree == nil {
		return tree
	}
	return m.apply(tree, t)
}

func (m *Map) apply(n rendertree.Node, t time.Duration) rendertree.Node {
	out := n
	switch n := n.(type) {
	case *rendertree.CompositionNode:
		children := n.Children()
		var rebuilt []rendertree.Node
		for i, c := range children {
			nc := m.apply(c, t)
			if nc != c && rebuilt == nil {
				rebuilt = make([]rendertree.Node, len(children))
				copy(rebuilt, children[:i])
			}
			if rebuilt != nil {
				rebuilt[i] = nc
			}
		}
		if rebuilt != nil {
			out = n.WithChildren(rebuilt)
		}
	case *rendertree.MatrixTransformNode:
		if src := m.apply(n.Source(), t); src != n.Source() {
			out = n.WithSource(src)
		}
	case *rendertree.MatrixTransform3DNode:
		if src := m.apply(n.Source(), t); src != n.Source() {
			out = n.WithSource(src)
		}
	case *rendertree.FilterNode:
		if src := m.apply(n.Source(), t); src != n.Source() {
			out = n.WithSource(src)
		}
	}

	for _, fn := range m.funcs[n] {
		out = fn(out, t)
	}
	return out
}
