package view_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/factory"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/view"
)

func load(t *testing.T, text string, depth int) *view.Tree {
	t.Helper()
	v, err := parser.ParseString(text)
	require.NoError(t, err)
	root, err := factory.Create(v, depth)
	require.NoError(t, err)
	tree := view.NewTree(factory.Create, view.DefaultOptions())
	tree.ReplaceRoot(root)
	return tree
}

func locate(t *testing.T, tree *view.Tree, path string) *view.Node {
	t.Helper()
	n, err := tree.Locate(path)
	require.NoError(t, err)
	return n
}

func TestExpand_BuildsOneLevel(t *testing.T) {
	tree := load(t, `{"a": {"b": [1, 2]}, "c": 3}`, 1)
	root := tree.Root()
	require.False(t, root.IsMaterialized())

	require.NoError(t, tree.Expand(root))
	assert.True(t, root.IsExpanded())
	require.Equal(t, 2, root.Len())
	a := root.Child(0)
	assert.Equal(t, "a", a.Value().Name())
	assert.False(t, a.IsMaterialized(), "first expand builds one level only")

	// Re-expanding cascades into never-opened descendants
	firstChildren := root.Children()
	require.NoError(t, tree.Expand(root))
	assert.Equal(t, firstChildren, root.Children(), "existing children are kept")
	assert.True(t, a.IsMaterialized())
	assert.False(t, a.Child(0).IsMaterialized())
	assert.False(t, a.IsExpanded())

	require.NoError(t, tree.Validate())
}

func TestLabels(t *testing.T) {
	tree := load(t, `{"name": "x", "list": [1, true], "obj": {"k": null}}`, 0)
	root := tree.Root()

	tests := []struct {
		path     string
		expand   bool
		expected string
	}{
		{"/name", false, `name: "x"`},
		{"/name", true, `name`},
		{"/name/@", false, `"x"`},
		{"/list/@", false, `[1,true]`},
		{"/list/@", true, `[]`},
		{"/obj/@", false, `{"k":null}`},
		{"/obj/@", true, `{}`},
		{"/list/1", false, `true`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n := locate(t, tree, tt.path)
			if tt.expand {
				require.NoError(t, tree.Expand(n))
			} else {
				tree.Collapse(n)
			}
			assert.Equal(t, tt.expected, n.Label())
		})
	}

	tree.Collapse(root)
	assert.Equal(t, `{"name":"x","list":[1,true],"obj":{"k":null}}`, root.Label())
}

func TestLabel_Truncated(t *testing.T) {
	long := strings.Repeat("a", 150)
	tree := load(t, `["`+long+`"]`, 0)
	n := locate(t, tree, "/0")

	label := n.Label()
	assert.True(t, strings.HasSuffix(label, " ..."))
	assert.Equal(t, view.DefaultMaxLabelLength+len(" ..."), len(label))
}

func TestSelection(t *testing.T) {
	tree := load(t, `{"s": "hi", "b": true, "n": 1.50}`, 0)

	var got []view.Selection
	tree.OnSelect(func(sel view.Selection) { got = append(got, sel) })

	tests := []struct {
		path string
		kind string
		typ  string
		text string
	}{
		{"/s/@", "Scalar", "String", `"hi"`},
		{"/b/@", "Scalar", "Boolean", `true`},
		{"/n/@", "Scalar", "Number", `1.50`},
		{"/s", "Property", "Property", `"s": "hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n := locate(t, tree, tt.path)
			require.NoError(t, tree.SelectByID(n.ID()))
			sel := got[len(got)-1]
			assert.Same(t, n, sel.Node)
			assert.Same(t, n, tree.Selected())
			assert.Equal(t, tt.kind, sel.KindLabel)
			assert.Equal(t, tt.typ, sel.TypeLabel)
			assert.Equal(t, tt.text, sel.JSONText())
		})
	}

	err := tree.SelectByID("missing")
	assert.True(t, errors.Is(err, apperrors.ErrPathNotFound))

	stray, err := factory.Wrap(models.NewNull())
	require.NoError(t, err)
	err = tree.Select(stray)
	assert.True(t, errors.Is(err, apperrors.ErrDetached))
}

func TestInsertInParent(t *testing.T) {
	tree := load(t, `[1, 2]`, 0)
	root := tree.Root()
	one := root.Child(0)

	v := models.NewNumber("9")
	require.NoError(t, one.Value().AddAfterSelf(v))
	n, err := factory.Wrap(v)
	require.NoError(t, err)

	require.NoError(t, tree.InsertInParent(one, n, false))
	assert.Same(t, n, root.Child(1))
	assert.Same(t, tree, n.Tree())
	require.NoError(t, tree.Validate())

	err = tree.InsertInParent(root, mustWrap(t, models.NewNull()), true)
	assert.True(t, errors.Is(err, apperrors.ErrRootNode))
}

func TestInsertInCurrent_Unbuilt(t *testing.T) {
	tree := load(t, `{"list": [1, 2]}`, 2)
	list := locate(t, tree, "/list/@")
	require.False(t, list.IsMaterialized())

	v := models.NewString("new")
	require.NoError(t, list.Value().AddFirst(v))
	n := mustWrap(t, v)

	require.NoError(t, tree.InsertInCurrent(list, n))
	assert.True(t, list.IsExpanded())
	require.Equal(t, 3, list.Len())
	assert.Same(t, n, list.Child(0))
	require.NoError(t, tree.Validate())
}

func TestInsertInCurrent_Built(t *testing.T) {
	tree := load(t, `[1, 2]`, 0)
	root := tree.Root()

	v := models.NewString("new")
	require.NoError(t, root.Value().AddFirst(v))
	n := mustWrap(t, v)

	require.NoError(t, tree.InsertInCurrent(root, n))
	assert.Same(t, n, root.Child(0))
	require.NoError(t, tree.Validate())

	err := tree.InsertInCurrent(root, mustWrap(t, models.NewNull()))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidChild), "value not held by target")
}

func TestClean_PrunesDetached(t *testing.T) {
	tree := load(t, `[1, [2, 3], 4]`, 0)
	root := tree.Root()
	inner := root.Child(1)
	three := inner.Child(1)
	require.NoError(t, tree.Select(three))

	require.NoError(t, inner.Value().Remove())
	require.NoError(t, tree.Clean(root))

	assert.Equal(t, 2, root.Len())
	assert.Nil(t, inner.Parent())
	assert.Nil(t, inner.Tree())
	assert.Nil(t, three.Tree())
	assert.Same(t, root, tree.Selected(), "selection leaves pruned nodes")
	require.NoError(t, tree.Validate())
}

func TestReplaceNode(t *testing.T) {
	tree := load(t, `{"a": [1], "b": 2}`, 0)
	a := locate(t, tree, "/a/@")
	require.NoError(t, tree.Expand(a))

	v := models.NewArray()
	require.NoError(t, v.Add(models.NewNull()))
	require.NoError(t, a.Value().Replace(v))
	n := mustWrap(t, v)

	require.NoError(t, tree.ReplaceNode(a, n))
	assert.True(t, n.IsExpanded(), "takes over expand state")
	assert.Nil(t, a.Tree())
	require.NoError(t, tree.Validate())
}

func TestValidate_DetectsOrphans(t *testing.T) {
	tree := load(t, `[1, 2]`, 0)
	require.NoError(t, tree.Validate())

	require.NoError(t, tree.Root().Child(0).Value().Remove())
	err := tree.Validate()
	require.Error(t, err)

	require.NoError(t, tree.Sweep())
	assert.NoError(t, tree.Validate())
}

func TestExpandAllCollapseAll(t *testing.T) {
	tree := load(t, `{"a": {"b": {"c": [1, [2]]}}}`, 1)
	root := tree.Root()

	count, err := tree.ExpandAll(root)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
	tree.Walk(func(n *view.Node) bool {
		if n.Value().Len() > 0 {
			assert.True(t, n.IsExpanded(), n.Path())
		}
		return true
	})
	require.NoError(t, tree.Validate())

	assert.Equal(t, 8, tree.CollapseAll(root))
	assert.False(t, root.IsExpanded())
}

func TestExpandAll_Limit(t *testing.T) {
	v, err := parser.ParseString(`[[1], [2], [3], [4]]`)
	require.NoError(t, err)
	root, err := factory.Wrap(v)
	require.NoError(t, err)

	opts := view.DefaultOptions()
	opts.ExpandAllLimit = 2
	tree := view.NewTree(factory.Create, opts)
	tree.ReplaceRoot(root)

	count, err := tree.ExpandAll(root)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, root.Child(0).IsExpanded())
	assert.False(t, root.Child(1).IsExpanded())
}

func TestLocateAndPath(t *testing.T) {
	tree := load(t, `{"a": {"b": [10, 20]}}`, 1)

	n := locate(t, tree, "/a/b/1")
	assert.Equal(t, "20", n.Value().Literal())
	assert.Equal(t, "/a/b/1", n.Path())

	val := locate(t, tree, "a/@")
	assert.Equal(t, models.KindObject, val.Kind())
	assert.Equal(t, "/a/@", val.Path())

	assert.Same(t, tree.Root(), locate(t, tree, "/"))

	for _, bad := range []string{"/x", "/a/b/5", "/a/b/one"} {
		_, err := tree.Locate(bad)
		assert.True(t, errors.Is(err, apperrors.ErrPathNotFound), bad)
	}
}

func TestFindAndNodeByID(t *testing.T) {
	tree := load(t, `[true]`, 0)
	child := tree.Root().Child(0)

	assert.Same(t, child, tree.Find(child.Value()))
	assert.Same(t, child, tree.NodeByID(child.ID()))
	assert.Nil(t, tree.Find(models.NewNull()))
}

func mustWrap(t *testing.T, v *models.Value) *view.Node {
	t.Helper()
	n, err := factory.Wrap(v)
	require.NoError(t, err)
	return n
}
