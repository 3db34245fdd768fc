package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
)

// DefaultExpandAllLimit bounds the number of nodes ExpandAll opens
const DefaultExpandAllLimit = 1000

// BuildFunc creates the node for value, building depth levels (0 = all)
type BuildFunc func(value *models.Value, depth int) (*Node, error)

// Options tunes labels and bulk expansion
type Options struct {
	MaxLabelLength int
	ExpandAllLimit int
	Indent         string
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxLabelLength: DefaultMaxLabelLength,
		ExpandAllLimit: DefaultExpandAllLimit,
		Indent:         formatter.DefaultIndent,
	}
}

// Selection describes the selected node. JSONText renders the value only
// when called.
type Selection struct {
	Node      *Node
	KindLabel string
	TypeLabel string
	JSONText  func() string
}

// Tree owns the display nodes of one document and the current selection
type Tree struct {
	root        *Node
	selected    *Node
	build       BuildFunc
	opts        Options
	format      *formatter.Formatter
	subscribers []func(Selection)
}

// NewTree creates an empty tree that builds nodes with build
func NewTree(build BuildFunc, opts Options) *Tree {
	return &Tree{
		build:  build,
		opts:   opts,
		format: formatter.NewFormatterWithIndent(opts.Indent),
	}
}

// Root returns the root node, nil before a document is loaded
func (t *Tree) Root() *Node { return t.root }

// Selected returns the selected node
func (t *Tree) Selected() *Node { return t.selected }

// Options returns the tree options
func (t *Tree) Options() Options { return t.opts }

// OnSelect registers fn to be called whenever the selection changes
func (t *Tree) OnSelect(fn func(Selection)) {
	t.subscribers = append(t.subscribers, fn)
}

// Select makes n the selected node
func (t *Tree) Select(n *Node) error {
	if err := t.owns(n); err != nil {
		return err
	}
	t.setSelected(n)
	return nil
}

// SelectByID selects the built node with the given id
func (t *Tree) SelectByID(id string) error {
	n := t.NodeByID(id)
	if n == nil {
		return errors.NewInputError(fmt.Sprintf("no node with id %q", id), errors.ErrPathNotFound)
	}
	return t.Select(n)
}

func (t *Tree) setSelected(n *Node) {
	t.selected = n
	if n == nil {
		return
	}
	sel := Selection{
		Node:      n,
		KindLabel: n.Kind().Label(),
		TypeLabel: n.value.TypeName(),
		JSONText:  func() string { return t.format.LiteralText(n.value) },
	}
	for _, fn := range t.subscribers {
		fn(sel)
	}
}

func (t *Tree) owns(n *Node) error {
	if n == nil || n.tree != t {
		return errors.NewDetachedError("node is not part of the tree", errors.ErrDetached)
	}
	return nil
}

// Walk visits every built node depth first until fn returns false
func (t *Tree) Walk(fn func(*Node) bool) {
	if t.root != nil {
		t.root.walk(fn)
	}
}

// NodeByID returns the built node with the given id
func (t *Tree) NodeByID(id string) *Node {
	var found *Node
	t.Walk(func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Find returns the built node mirroring v
func (t *Tree) Find(v *models.Value) *Node {
	var found *Node
	t.Walk(func(n *Node) bool {
		if n.value == v {
			found = n
			return false
		}
		return true
	})
	return found
}

// ReplaceRoot installs n as the root and selects it
func (t *Tree) ReplaceRoot(n *Node) {
	if t.root != nil {
		t.root.setTree(nil)
	}
	t.root = n
	t.selected = nil
	if n == nil {
		return
	}
	n.parent = nil
	n.setTree(t)
	t.setSelected(n)
}

// Materialize builds the children of n if they have not been built yet
func (t *Tree) Materialize(n *Node) error {
	if err := t.owns(n); err != nil {
		return err
	}
	return t.materialize(n, nil)
}

// materialize builds one level under n, using reuse for the value it mirrors
func (t *Tree) materialize(n *Node, reuse *Node) error {
	if n.materialized {
		return nil
	}
	values := n.value.Children()
	children := make([]*Node, 0, len(values))
	for _, cv := range values {
		if reuse != nil && reuse.value == cv {
			children = append(children, reuse)
			continue
		}
		c, err := t.build(cv, 1)
		if err != nil {
			return err
		}
		children = append(children, c)
	}
	for _, c := range children {
		c.parent = n
		c.setTree(n.tree)
	}
	n.children = children
	n.materialized = true
	return nil
}

// open builds one level under n, or under every never-opened descendant
// when n is already built
func (t *Tree) open(n *Node) error {
	if !n.materialized {
		return t.materialize(n, nil)
	}
	for _, c := range n.children {
		if err := t.open(c); err != nil {
			return err
		}
	}
	return nil
}

// Expand shows the children of n, building them on first use
func (t *Tree) Expand(n *Node) error {
	if err := t.owns(n); err != nil {
		return err
	}
	if err := t.open(n); err != nil {
		return err
	}
	n.expanded = true
	return nil
}

// Collapse hides the children of n
func (t *Tree) Collapse(n *Node) {
	n.expanded = false
}

// ExpandAll expands n and its descendants breadth first, stopping after the
// configured node budget. It returns the number of nodes expanded.
func (t *Tree) ExpandAll(n *Node) (int, error) {
	if err := t.owns(n); err != nil {
		return 0, err
	}
	count := 0
	queue := []*Node{n}
	for len(queue) > 0 {
		if t.opts.ExpandAllLimit > 0 && count >= t.opts.ExpandAllLimit {
			break
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.value.Len() == 0 {
			continue
		}
		if err := t.Expand(cur); err != nil {
			return count, err
		}
		count++
		queue = append(queue, cur.children...)
	}
	return count, nil
}

// CollapseAll collapses n and every built descendant
func (t *Tree) CollapseAll(n *Node) int {
	count := 0
	n.walk(func(d *Node) bool {
		if d.expanded {
			d.expanded = false
			count++
		}
		return true
	})
	return count
}

// InsertInParent places n next to ref, after it unless before is set, then
// prunes ref's parent. n takes over ref's expand state.
func (t *Tree) InsertInParent(ref, n *Node, before bool) error {
	if err := t.owns(ref); err != nil {
		return err
	}
	parent := ref.parent
	if parent == nil {
		return errors.NewStructuralError("cannot insert next to the root", errors.ErrRootNode)
	}
	if err := checkFree(n); err != nil {
		return err
	}
	i := ref.Index()
	if !before {
		i++
	}
	parent.insertAt(i, n)
	if err := t.Clean(parent); err != nil {
		return err
	}
	return t.applyState(n, ref.expanded)
}

// InsertInCurrent places n among the children of ref at the position of its
// value and expands ref. When ref was never built its children are built
// around n.
func (t *Tree) InsertInCurrent(ref, n *Node) error {
	if err := t.owns(ref); err != nil {
		return err
	}
	if err := checkFree(n); err != nil {
		return err
	}
	if n.value.Parent() != ref.value {
		return errors.NewStructuralError("value is not held by the target", errors.ErrInvalidChild)
	}
	if ref.materialized {
		i := n.value.Index()
		if i > len(ref.children) {
			i = len(ref.children)
		}
		ref.insertAt(i, n)
		if err := t.Clean(ref); err != nil {
			return err
		}
	} else if err := t.materialize(ref, n); err != nil {
		return err
	}
	return t.Expand(ref)
}

// ReplaceNode puts nodes in place of ref, in order, and prunes ref's parent.
// The new nodes take over ref's expand state.
func (t *Tree) ReplaceNode(ref *Node, nodes ...*Node) error {
	if err := t.owns(ref); err != nil {
		return err
	}
	parent := ref.parent
	if parent == nil {
		return errors.NewStructuralError("cannot replace the root node", errors.ErrRootNode)
	}
	for _, n := range nodes {
		if err := checkFree(n); err != nil {
			return err
		}
	}
	i := ref.Index()
	parent.children = append(parent.children[:i], parent.children[i+1:]...)
	t.detach(ref, parent)
	for j, n := range nodes {
		parent.insertAt(i+j, n)
	}
	if err := t.Clean(parent); err != nil {
		return err
	}
	for _, n := range nodes {
		if n.parent != parent {
			continue
		}
		if err := t.applyState(n, ref.expanded); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) applyState(n *Node, expanded bool) error {
	if n.parent == nil {
		return nil
	}
	if expanded {
		return t.Expand(n)
	}
	t.Collapse(n)
	return nil
}

func checkFree(n *Node) error {
	if n == nil || n.parent != nil || n.tree != nil {
		return errors.NewStructuralError("node is already attached", errors.ErrInvalidChild)
	}
	return nil
}

// Clean brings the built children of n back in line with n's value: children
// whose value left n's value are pruned and values without a node get one.
func (t *Tree) Clean(n *Node) error {
	if !n.materialized {
		return nil
	}
	byValue := make(map[*models.Value]*Node, len(n.children))
	var pruned []*Node
	for _, c := range n.children {
		if c.value.Parent() != n.value || byValue[c.value] != nil {
			pruned = append(pruned, c)
			continue
		}
		byValue[c.value] = c
	}

	values := n.value.Children()
	children := make([]*Node, 0, len(values))
	for _, cv := range values {
		if c := byValue[cv]; c != nil {
			children = append(children, c)
			continue
		}
		c, err := t.build(cv, 1)
		if err != nil {
			return err
		}
		children = append(children, c)
	}

	n.children = children
	for _, c := range children {
		if c.parent != n {
			c.parent = n
			c.setTree(n.tree)
		}
	}
	for _, c := range pruned {
		t.detach(c, n)
	}
	return nil
}

// Sweep cleans every built node of the tree
func (t *Tree) Sweep() error {
	var nodes []*Node
	t.Walk(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	for _, n := range nodes {
		if n.tree != t {
			continue
		}
		if err := t.Clean(n); err != nil {
			return err
		}
	}
	return nil
}

// detach unhooks c, which used to hang below parent. A selection inside c
// moves to parent.
func (t *Tree) detach(c, parent *Node) {
	if t.selected != nil && c.contains(t.selected) {
		defer t.setSelected(parent)
	}
	c.parent = nil
	c.setTree(nil)
}

// Validate checks that every built node mirrors a value reachable from the
// root, that no value has two nodes and that built children follow their
// value's children in order.
func (t *Tree) Validate() error {
	if t.root == nil {
		return nil
	}
	rootValue := t.root.value
	if rootValue.Parent() != nil {
		return fmt.Errorf("%w: root value has a parent", errors.ErrDetached)
	}
	seen := make(map[*models.Value]bool)
	var problem error
	t.Walk(func(n *Node) bool {
		problem = t.checkNode(n, rootValue, seen)
		return problem == nil
	})
	if problem != nil {
		return problem
	}
	if t.selected != nil && (t.selected.tree != t || !t.root.contains(t.selected)) {
		return fmt.Errorf("%w: selected node %s is not in the tree", errors.ErrDetached, t.selected.id)
	}
	return nil
}

func (t *Tree) checkNode(n *Node, rootValue *models.Value, seen map[*models.Value]bool) error {
	if n.tree != t {
		return fmt.Errorf("node %s: wrong owning tree", n.id)
	}
	if seen[n.value] {
		return fmt.Errorf("node %s: value mirrored twice", n.id)
	}
	seen[n.value] = true
	if n.parent != nil && n.value.Parent() != n.parent.value {
		return fmt.Errorf("%w: node %s (%s)", errors.ErrDetached, n.id, n.Label())
	}
	if n.value.Root() != rootValue {
		return fmt.Errorf("%w: node %s (%s) is unreachable from the root", errors.ErrDetached, n.id, n.Label())
	}
	if !n.materialized {
		if len(n.children) > 0 {
			return fmt.Errorf("node %s: children present but not built", n.id)
		}
		return nil
	}
	if len(n.children) != n.value.Len() {
		return fmt.Errorf("node %s: %d children for %d values", n.id, len(n.children), n.value.Len())
	}
	for i, c := range n.children {
		if c.value != n.value.Child(i) {
			return fmt.Errorf("node %s: child %d out of order", n.id, i)
		}
		if c.parent != n {
			return fmt.Errorf("node %s: child %d has the wrong parent", n.id, i)
		}
	}
	return nil
}

// Locate resolves a '/' separated path of property names and array indexes
// from the root. Stepping through a property continues with its value; the
// segment "@" selects the value of a property itself.
func (t *Tree) Locate(path string) (*Node, error) {
	if t.root == nil {
		return nil, errors.NewInputError("nothing loaded", errors.ErrNoDocument)
	}
	n := t.root
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if n.Kind() == models.KindProperty {
			if err := t.materialize(n, nil); err != nil {
				return nil, err
			}
			n = n.children[0]
			if seg == "@" {
				continue
			}
		}
		if err := t.materialize(n, nil); err != nil {
			return nil, err
		}
		next := t.step(n, seg)
		if next == nil {
			return nil, errors.NewInputError(fmt.Sprintf("path %q: no %q under %s", path, seg, n.Label()), errors.ErrPathNotFound)
		}
		n = next
	}
	return n, nil
}

func (t *Tree) step(n *Node, seg string) *Node {
	switch n.Kind() {
	case models.KindObject:
		for _, c := range n.children {
			if c.value.Name() == seg {
				return c
			}
		}
	case models.KindArray:
		i, err := strconv.Atoi(seg)
		if err == nil && i >= 0 && i < len(n.children) {
			return n.children[i]
		}
	}
	return nil
}

// Path returns the Locate path of n
func (n *Node) Path() string {
	var segs []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		switch cur.parent.Kind() {
		case models.KindProperty:
			if cur == n {
				segs = append(segs, "@")
			}
		case models.KindObject:
			segs = append(segs, cur.value.Name())
		default:
			segs = append(segs, strconv.Itoa(cur.Index()))
		}
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}
