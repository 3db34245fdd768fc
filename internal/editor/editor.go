// Package editor applies edit operations to a JSON document while keeping
// the document model and its view tree in step.
package editor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcncl/jsonedit/internal/clipboard"
	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/dragdrop"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/factory"
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/view"
)

// Clipboard is the slot shared by copy, cut and paste
type Clipboard = clipboard.Slot[*view.Node]

// Option configures an Editor
type Option func(*Editor)

// WithConfig sets the configuration, defaults are used otherwise
func WithConfig(cfg *config.Config) Option {
	return func(e *Editor) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithLogger sets the logger used for edit tracing
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClipboard shares clip with the editor instead of a private slot
func WithClipboard(clip *Clipboard) Option {
	return func(e *Editor) {
		if clip != nil {
			e.clip = clip
		}
	}
}

// Editor holds one document, its view tree and the clipboard
type Editor struct {
	cfg    *config.Config
	tree   *view.Tree
	clip   *Clipboard
	format *formatter.Formatter
	hover  *dragdrop.Hover
	logger *zap.Logger
}

// New creates an editor with no document loaded
func New(opts ...Option) *Editor {
	e := &Editor{
		cfg:    config.NewConfig(),
		clip:   clipboard.New[*view.Node](),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.tree = view.NewTree(factory.Create, view.Options{
		MaxLabelLength: e.cfg.View.MaxLabelLength,
		ExpandAllLimit: e.cfg.View.ExpandAllLimit,
		Indent:         e.cfg.Editor.Indent,
	})
	e.format = formatter.NewFormatterWithIndent(e.cfg.Editor.Indent)
	e.hover = dragdrop.NewHover(e.cfg.Drag.ExpandDelay)
	return e
}

// Tree returns the view tree
func (e *Editor) Tree() *view.Tree { return e.tree }

// Clipboard returns the clipboard slot
func (e *Editor) Clipboard() *Clipboard { return e.clip }

// Document returns the root value, nil before anything is loaded
func (e *Editor) Document() *models.Value {
	if root := e.tree.Root(); root != nil {
		return root.Value()
	}
	return nil
}

// Load replaces the document with the JSON in text
func (e *Editor) Load(text string) error {
	v, err := parser.ParseString(text)
	if err != nil {
		return err
	}
	return e.setDocument(v)
}

// LoadReader replaces the document with the JSON read from r
func (e *Editor) LoadReader(r io.Reader) error {
	v, err := parser.Parse(r)
	if err != nil {
		return err
	}
	return e.setDocument(v)
}

// LoadFile replaces the document with the JSON file at path
func (e *Editor) LoadFile(path string) error {
	v, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	return e.setDocument(v)
}

// NewObject starts a new document holding an empty object
func (e *Editor) NewObject() error {
	return e.setDocument(models.NewObject())
}

// NewArray starts a new document holding an empty array
func (e *Editor) NewArray() error {
	return e.setDocument(models.NewArray())
}

func (e *Editor) setDocument(v *models.Value) error {
	root, err := factory.Create(v, e.cfg.View.LoadDepth)
	if err != nil {
		return err
	}
	e.tree.ReplaceRoot(root)
	if err := e.tree.Expand(root); err != nil {
		return err
	}
	e.logger.Debug("document loaded", zap.Stringer("kind", v.Kind()), zap.Int("children", v.Len()))
	return nil
}

// Save serializes the document
func (e *Editor) Save() (string, error) {
	doc := e.Document()
	if doc == nil {
		return "", errors.NewOutputError("nothing to save", errors.ErrNoDocument)
	}
	return e.format.Format(doc)
}

// SaveTo writes the serialized document and a trailing newline to w
func (e *Editor) SaveTo(w io.Writer) error {
	text, err := e.Save()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return errors.NewOutputError("failed to write document", err)
	}
	return nil
}

// Select makes n the selected node
func (e *Editor) Select(n *view.Node) error {
	return e.tree.Select(n)
}

// Selected returns the selected node
func (e *Editor) Selected() *view.Node {
	return e.tree.Selected()
}

// Locate resolves a path such as "/items/0/name" to a node
func (e *Editor) Locate(path string) (*view.Node, error) {
	return e.tree.Locate(path)
}

// Actions reports which operations are available on a node
type Actions struct {
	Copy         bool
	Cut          bool
	PasteAfter   bool
	PasteBefore  bool
	PasteInto    bool
	PasteReplace bool
	Delete       bool
	ExpandAll    bool
	CollapseAll  bool
}

// Actions returns the operations that can be applied to n right now
func (e *Editor) Actions(n *view.Node) Actions {
	if e.checkNode(n) != nil {
		return Actions{}
	}
	hasParent := n.Parent() != nil
	removable := hasParent && n.Parent().Kind() != models.KindProperty
	full := !e.clip.IsEmpty()
	branch := n.Value().Len() > 0

	return Actions{
		Copy:         true,
		Cut:          removable,
		PasteAfter:   full && removable,
		PasteBefore:  full && removable,
		PasteInto:    full && n.Kind().IsContainer(),
		PasteReplace: full && hasParent,
		Delete:       removable,
		ExpandAll:    branch,
		CollapseAll:  branch,
	}
}

// checkNode rejects nodes that are not part of the loaded document
func (e *Editor) checkNode(n *view.Node) error {
	root := e.tree.Root()
	if n == nil || root == nil || n.Tree() != e.tree || n.Value().Root() != root.Value() {
		return errors.NewDetachedError("node is not part of the document", errors.ErrDetached)
	}
	return nil
}

// checkRemovable rejects the root and the value of a property
func checkRemovable(n *view.Node, op string) error {
	parent := n.Parent()
	if parent == nil {
		return errors.NewStructuralError(op+" is not allowed on the root", errors.ErrRootNode)
	}
	if parent.Kind() == models.KindProperty {
		return errors.NewStructuralError(op+" is not allowed on the value of a property", errors.ErrPropertyValue)
	}
	return nil
}

func (e *Editor) trace(op string, n *view.Node, fields ...zap.Field) {
	if !e.logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	fields = append([]zap.Field{
		zap.String("op", op),
		zap.String("node", n.Path()),
		zap.Stringer("kind", n.Kind()),
	}, fields...)
	e.logger.Debug("edit applied", fields...)
	if err := e.tree.Validate(); err != nil {
		e.logger.Warn("view out of sync with document", zap.String("op", op), zap.Error(err))
	}
}

// Copy puts n on the clipboard until it is replaced
func (e *Editor) Copy(n *view.Node) error {
	if err := e.checkNode(n); err != nil {
		return err
	}
	e.clip.Set(n, clipboard.Persistent)
	e.trace("copy", n, zap.Stringer("mode", clipboard.Persistent))
	return nil
}

// Cut puts n on the clipboard for a single paste, after which n is removed
func (e *Editor) Cut(n *view.Node) error {
	if err := e.checkNode(n); err != nil {
		return err
	}
	if err := checkRemovable(n, "cut"); err != nil {
		return err
	}
	e.clip.Set(n, clipboard.OneShot)
	e.trace("cut", n, zap.Stringer("mode", clipboard.OneShot))
	return nil
}

// Delete removes n from the document
func (e *Editor) Delete(n *view.Node) error {
	if err := e.checkNode(n); err != nil {
		return err
	}
	if err := checkRemovable(n, "delete"); err != nil {
		return err
	}
	parent := n.Parent()
	if err := n.Value().Remove(); err != nil {
		return errors.NewStructuralError("delete rejected", err)
	}
	if err := e.tree.Clean(parent); err != nil {
		return err
	}
	e.trace("delete", parent)
	return nil
}

// PasteAfter inserts a copy of the clipboard entry right after n
func (e *Editor) PasteAfter(n *view.Node) (*view.Node, error) {
	return e.pasteSibling(n, false)
}

// PasteBefore inserts a copy of the clipboard entry right before n
func (e *Editor) PasteBefore(n *view.Node) (*view.Node, error) {
	return e.pasteSibling(n, true)
}

func (e *Editor) pasteSibling(n *view.Node, before bool) (*view.Node, error) {
	op := "paste after"
	if before {
		op = "paste before"
	}
	return e.paste(op, n, false, func(clone *models.Value, node *view.Node) error {
		if err := checkRemovable(n, op); err != nil {
			return err
		}
		var err error
		if before {
			err = n.Value().AddBeforeSelf(clone)
		} else {
			err = n.Value().AddAfterSelf(clone)
		}
		if err != nil {
			return errors.NewStructuralError(op+" rejected", err)
		}
		if err := e.tree.InsertInParent(n, node, before); err != nil {
			e.rollback(clone, n.Parent())
			return err
		}
		return nil
	})
}

// PasteInto inserts a copy of the clipboard entry as the first child of n,
// which must be an object or an array
func (e *Editor) PasteInto(n *view.Node) (*view.Node, error) {
	return e.paste("paste into", n, true, func(clone *models.Value, node *view.Node) error {
		if !n.Kind().IsContainer() {
			return errors.NewStructuralError("paste into rejected", errors.ErrNotContainer)
		}
		if err := n.Value().AddFirst(clone); err != nil {
			return errors.NewStructuralError("paste into rejected", err)
		}
		if err := e.tree.InsertInCurrent(n, node); err != nil {
			e.rollback(clone, n)
			return err
		}
		return nil
	})
}

// PasteReplace substitutes a copy of the clipboard entry for n and selects it
func (e *Editor) PasteReplace(n *view.Node) (*view.Node, error) {
	node, err := e.paste("paste replace", n, false, func(clone *models.Value, node *view.Node) error {
		if n.Parent() == nil {
			return errors.NewStructuralError("paste replace is not allowed on the root", errors.ErrRootNode)
		}
		old := n.Value()
		if err := old.Replace(clone); err != nil {
			return errors.NewStructuralError("paste replace rejected", err)
		}
		if err := e.tree.ReplaceNode(n, node); err != nil {
			_ = clone.Replace(old)
			_ = e.tree.Sweep()
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, e.tree.Select(node)
}

// rollback takes an inserted clone back out after the view refused it
func (e *Editor) rollback(clone *models.Value, parent *view.Node) {
	if err := clone.Remove(); err != nil {
		e.logger.Error("rollback failed", zap.Error(err))
	}
	if err := e.tree.Clean(parent); err != nil {
		e.logger.Error("rollback failed", zap.Error(err))
	}
}

// paste reads the clipboard, builds a detached copy of the entry and hands it
// to apply. A consumed cut is put back when apply fails and its source is
// removed when apply succeeds.
func (e *Editor) paste(op string, target *view.Node, into bool, apply func(*models.Value, *view.Node) error) (*view.Node, error) {
	if err := e.checkNode(target); err != nil {
		return nil, err
	}
	source, mode, ok := e.clip.Get()
	if !ok {
		return nil, errors.NewStructuralError("nothing to paste", errors.ErrClipboardEmpty)
	}
	restore := func() {
		if mode == clipboard.OneShot {
			e.clip.Set(source, mode)
		}
	}

	if mode == clipboard.OneShot {
		cut := source.Value()
		if target.Value().IsDescendantOf(cut) || (into && target.Value() == cut) {
			restore()
			return nil, errors.NewStructuralError(op+" rejected", errors.ErrCutIntoSelf)
		}
	}

	clone := source.Value().DeepClone()
	node, err := factory.Create(clone, e.cfg.Editor.PasteDepth)
	if err != nil {
		restore()
		return nil, err
	}
	if err := apply(clone, node); err != nil {
		restore()
		e.logger.Debug("edit rejected", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	if mode == clipboard.OneShot {
		if err := e.removeCutSource(source); err != nil {
			return node, err
		}
	}
	e.trace(op, node, zap.Stringer("mode", mode))
	return node, nil
}

// removeCutSource deletes the value of a consumed cut if it is still part of
// the document
func (e *Editor) removeCutSource(source *view.Node) error {
	v := source.Value()
	doc := e.Document()
	if v.Parent() == nil || v.Root() != doc {
		return nil
	}
	parent, holder := source.Parent(), v.Parent()
	if err := v.Remove(); err != nil {
		return errors.NewStructuralError("cannot remove cut node", err)
	}
	if parent != nil && parent.Tree() == e.tree && parent.Value() == holder {
		return e.tree.Clean(parent)
	}
	return e.tree.Sweep()
}

// UpdateText re-parses n from text. Blank text deletes n. For a property the
// text is a member list, e.g. `b: 2, c: 3`, whose members take the place of
// n; other nodes are replaced by the parsed value. It returns the first node
// created, or nil when n was deleted.
func (e *Editor) UpdateText(n *view.Node, text string) (*view.Node, error) {
	if err := e.checkNode(n); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, e.Delete(n)
	}
	if n.Kind() == models.KindProperty {
		return e.updateProperty(n, text)
	}

	v, err := parser.ParseString(text)
	if err != nil {
		return nil, err
	}
	node, err := factory.Wrap(v)
	if err != nil {
		return nil, err
	}

	if n.Parent() == nil {
		e.tree.ReplaceRoot(node)
		if n.IsExpanded() {
			if err := e.tree.Expand(node); err != nil {
				return nil, err
			}
		}
		e.trace("update text", node)
		return node, nil
	}

	if err := n.Value().Replace(v); err != nil {
		return nil, errors.NewStructuralError("update rejected", err)
	}
	if err := e.tree.ReplaceNode(n, node); err != nil {
		return nil, err
	}
	e.trace("update text", node)
	return node, nil
}

func (e *Editor) updateProperty(n *view.Node, text string) (*view.Node, error) {
	members, err := parser.ParseMembers(text)
	if err != nil {
		return nil, err
	}
	nodes := make([]*view.Node, 0, len(members))
	for _, m := range members {
		node, err := factory.Wrap(m)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	obj := n.Value().Parent()
	dropped, err := obj.ReplaceProperty(n.Value(), members)
	if err != nil {
		return nil, errors.NewStructuralError("update rejected", err)
	}
	kept := nodes[:0]
	for _, node := range nodes {
		if node.Value().Parent() == obj {
			kept = append(kept, node)
		}
	}

	parent := n.Parent()
	if err := e.tree.ReplaceNode(n, kept...); err != nil {
		return nil, err
	}
	if len(kept) == 0 {
		e.trace("update text", parent)
		return nil, nil
	}
	e.trace("update text", kept[0], zap.Int("members", len(kept)), zap.Int("dropped", len(dropped)))
	return kept[0], nil
}

// UpdateSelected applies UpdateText to the selection and selects the result
func (e *Editor) UpdateSelected(text string) (*view.Node, error) {
	n := e.tree.Selected()
	if n == nil {
		return nil, errors.NewInputError("nothing selected", errors.ErrNoSelection)
	}
	node, err := e.UpdateText(n, text)
	if err != nil {
		return nil, err
	}
	if node != nil {
		if err := e.tree.Select(node); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func targetOf(n *view.Node) dragdrop.Target {
	return dragdrop.Target{
		Kind:             n.Kind(),
		ParentIsProperty: n.Parent() != nil && n.Parent().Kind() == models.KindProperty,
	}
}

// Transfer drops src on dst: a copy pastes a copy of src into dst, a move
// cuts src and pastes it into dst.
func (e *Editor) Transfer(src, dst *view.Node, effect dragdrop.Effect) (*view.Node, error) {
	if err := e.checkNode(src); err != nil {
		return nil, err
	}
	if err := e.checkNode(dst); err != nil {
		return nil, err
	}
	if !dragdrop.IsValidTransfer(src.Kind(), targetOf(dst), effect) {
		return nil, errors.NewStructuralError(
			fmt.Sprintf("cannot %s %s onto %s", effect, src.Kind(), dst.Kind()),
			errors.ErrInvalidTransfer,
		)
	}

	var err error
	if effect == dragdrop.Copy {
		err = e.Copy(src)
	} else {
		err = e.Cut(src)
	}
	if err != nil {
		return nil, err
	}
	return e.PasteInto(dst)
}

// DragOver reports the effect a drop of src on dst would have with the given
// modifier keys. Hovering over a collapsed dst long enough expands it.
func (e *Editor) DragOver(src, dst *view.Node, ctrl, shift bool, now time.Time) dragdrop.Effect {
	if e.checkNode(src) != nil || e.checkNode(dst) != nil {
		return dragdrop.None
	}
	if e.hover.Observe(dst.ID(), now) && !dst.IsExpanded() && dst.Value().Len() > 0 {
		if err := e.tree.Expand(dst); err != nil {
			e.logger.Warn("auto expand failed", zap.String("node", dst.Path()), zap.Error(err))
		}
	}
	effect := dragdrop.EffectFor(ctrl, shift)
	if !dragdrop.IsValidTransfer(src.Kind(), targetOf(dst), effect) {
		return dragdrop.None
	}
	return effect
}

// DragLeave forgets the hovered node
func (e *Editor) DragLeave() {
	e.hover.Reset()
}
