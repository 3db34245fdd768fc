package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcncl/jsonedit/internal/editor"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/view"
)

// WriteTree prints the visible part of the tree below root, one node per
// line. Collapsed branches are marked with +, expanded ones with - and the
// selected node with *.
func WriteTree(w io.Writer, root, selected *view.Node) error {
	var b strings.Builder
	writeNode(&b, root, selected, 0)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.NewOutputError("failed to write tree", err)
	}
	return nil
}

func writeNode(b *strings.Builder, n, selected *view.Node, depth int) {
	marker := " "
	switch {
	case n.Value().Len() == 0:
	case n.IsExpanded():
		marker = "-"
	default:
		marker = "+"
	}
	cursor := " "
	if n == selected {
		cursor = "*"
	}
	fmt.Fprintf(b, "%s%s%s %s\n", cursor, strings.Repeat("  ", depth), marker, n.Label())

	if !n.IsExpanded() {
		return
	}
	for _, c := range n.Children() {
		writeNode(b, c, selected, depth+1)
	}
}

func actionNames(a editor.Actions) []string {
	flags := []struct {
		name string
		on   bool
	}{
		{"copy", a.Copy},
		{"cut", a.Cut},
		{"paste-after", a.PasteAfter},
		{"paste-before", a.PasteBefore},
		{"paste-into", a.PasteInto},
		{"replace", a.PasteReplace},
		{"delete", a.Delete},
		{"expand-all", a.ExpandAll},
		{"collapse-all", a.CollapseAll},
	}
	var names []string
	for _, f := range flags {
		if f.on {
			names = append(names, f.name)
		}
	}
	return names
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
