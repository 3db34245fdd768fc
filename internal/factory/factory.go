// Package factory builds view nodes for document values
package factory

import (
	"fmt"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/view"
)

// Create builds the node for value and depth levels of descendants. A depth
// of 0 builds the whole subtree and 1 builds the node alone, leaving its
// children to be built when it is first expanded. The value is not modified.
func Create(value *models.Value, depth int) (*view.Node, error) {
	if value == nil {
		return nil, errors.NewStructuralError("cannot build a node without a value", errors.ErrNoDocument)
	}
	if depth < 0 {
		return nil, fmt.Errorf("invalid build depth %d", depth)
	}
	if err := checkKind(value.Kind()); err != nil {
		return nil, err
	}
	if value.Kind() == models.KindScalar {
		return view.NewBranch(value, nil), nil
	}
	if depth == 1 {
		return view.NewNode(value), nil
	}

	next := depth - 1
	if depth == 0 {
		next = 0
	}
	children := make([]*view.Node, 0, value.Len())
	for _, cv := range value.Children() {
		c, err := Create(cv, next)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return view.NewBranch(value, children), nil
}

// Wrap builds the node for value alone
func Wrap(value *models.Value) (*view.Node, error) {
	return Create(value, 1)
}

func checkKind(kind models.Kind) error {
	switch kind {
	case models.KindObject, models.KindArray, models.KindProperty, models.KindScalar:
		return nil
	default:
		return errors.NewUnknownKindError(fmt.Sprintf("cannot build a node for %s", kind), errors.ErrUnknownKind)
	}
}
