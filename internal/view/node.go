// Package view mirrors a document model as a tree of display nodes that are
// materialized lazily, one level at a time, as the user expands them.
package view

import (
	"github.com/google/uuid"

	"github.com/mcncl/jsonedit/internal/models"
)

// Node is the display counterpart of exactly one document value
type Node struct {
	id           string
	value        *models.Value
	parent       *Node
	children     []*Node
	expanded     bool
	materialized bool
	tree         *Tree
}

// NewNode creates a node for value whose children are not built yet
func NewNode(value *models.Value) *Node {
	return &Node{id: uuid.New().String(), value: value}
}

// NewBranch creates a node for value with its children already built.
// children must mirror value's children in order.
func NewBranch(value *models.Value, children []*Node) *Node {
	n := NewNode(value)
	n.materialized = true
	n.children = make([]*Node, 0, len(children))
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// ID returns the stable identifier used to select the node
func (n *Node) ID() string { return n.id }

// Value returns the mirrored document value
func (n *Node) Value() *models.Value { return n.value }

// Kind returns the kind of the mirrored value
func (n *Node) Kind() models.Kind { return n.value.Kind() }

// Parent returns the parent node, nil for the root or a detached node
func (n *Node) Parent() *Node { return n.parent }

// Tree returns the owning tree, nil while the node is not attached to one
func (n *Node) Tree() *Tree { return n.tree }

// Len returns the number of built children
func (n *Node) Len() int { return len(n.children) }

// Child returns the i-th built child
func (n *Node) Child(i int) *Node { return n.children[i] }

// Children returns a copy of the built children
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// IsExpanded reports whether the node is shown expanded
func (n *Node) IsExpanded() bool { return n.expanded }

// IsMaterialized reports whether the children have been built
func (n *Node) IsMaterialized() bool { return n.materialized }

// Index returns the position of n among its parent's children, or -1
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Label returns the display text of the node for its current expand state
func (n *Node) Label() string {
	max := DefaultMaxLabelLength
	if n.tree != nil {
		max = n.tree.opts.MaxLabelLength
	}
	return label(n.value, n.expanded, max)
}

// walk visits n and its built descendants depth first until fn returns false
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) setTree(t *Tree) {
	n.walk(func(d *Node) bool {
		d.tree = t
		return true
	})
}

func (n *Node) contains(d *Node) bool {
	for p := d; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) insertAt(i int, c *Node) {
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	c.parent = n
	c.setTree(n.tree)
}
