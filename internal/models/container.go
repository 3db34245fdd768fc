package models

import (
	"fmt"

	apperrors "github.com/mcncl/jsonedit/internal/errors"
)

func errInvalidChild(container, child Kind) error {
	return fmt.Errorf("%w: %s cannot hold %s", apperrors.ErrInvalidChild, container, child)
}

// checkInsert validates that child may be added to container. except is a
// sibling being replaced by child and is ignored by the name check.
func checkInsert(container, child, except *Value) error {
	if child.parent != nil {
		return fmt.Errorf("%w: value is already attached", apperrors.ErrInvalidChild)
	}
	switch container.kind {
	case KindObject:
		if child.kind != KindProperty {
			return errInvalidChild(container.kind, child.kind)
		}
		if existing := container.Property(child.name); existing != nil && existing != except {
			return fmt.Errorf("%w: %q", apperrors.ErrDuplicateName, child.name)
		}
	case KindArray:
		if child.kind == KindProperty {
			return errInvalidChild(container.kind, child.kind)
		}
	case KindProperty:
		if child.kind == KindProperty {
			return errInvalidChild(container.kind, child.kind)
		}
		if except == nil {
			return fmt.Errorf("%w: a property holds exactly one value", apperrors.ErrInvalidChild)
		}
	default:
		return errInvalidChild(container.kind, child.kind)
	}
	return nil
}

func (v *Value) insertAt(i int, child *Value) {
	v.children = append(v.children, nil)
	copy(v.children[i+1:], v.children[i:])
	v.children[i] = child
	child.parent = v
}

func (v *Value) removeAt(i int) *Value {
	child := v.children[i]
	copy(v.children[i:], v.children[i+1:])
	v.children[len(v.children)-1] = nil
	v.children = v.children[:len(v.children)-1]
	child.parent = nil
	return child
}

// Add appends child to an object or array
func (v *Value) Add(child *Value) error {
	if err := checkInsert(v, child, nil); err != nil {
		return err
	}
	v.insertAt(len(v.children), child)
	return nil
}

// AddFirst inserts child as the first child of an object or array
func (v *Value) AddFirst(child *Value) error {
	if err := checkInsert(v, child, nil); err != nil {
		return err
	}
	v.insertAt(0, child)
	return nil
}

// AddAfterSelf inserts sibling right after v in v's container
func (v *Value) AddAfterSelf(sibling *Value) error {
	return v.addSibling(sibling, 1)
}

// AddBeforeSelf inserts sibling right before v in v's container
func (v *Value) AddBeforeSelf(sibling *Value) error {
	return v.addSibling(sibling, 0)
}

func (v *Value) addSibling(sibling *Value, offset int) error {
	if v.parent == nil {
		return apperrors.ErrNoParent
	}
	if err := checkInsert(v.parent, sibling, nil); err != nil {
		return err
	}
	v.parent.insertAt(v.Index()+offset, sibling)
	return nil
}

// Replace substitutes replacement for v in v's container. v becomes detached.
func (v *Value) Replace(replacement *Value) error {
	if v.parent == nil {
		return apperrors.ErrNoParent
	}
	if replacement == v {
		return nil
	}
	if err := checkInsert(v.parent, replacement, v); err != nil {
		return err
	}
	parent := v.parent
	i := v.Index()
	parent.children[i] = replacement
	replacement.parent = parent
	v.parent = nil
	return nil
}

// Remove detaches v from its container. The value of a property cannot be
// removed on its own.
func (v *Value) Remove() error {
	if v.parent == nil {
		return apperrors.ErrNoParent
	}
	if v.parent.kind == KindProperty {
		return apperrors.ErrPropertyValue
	}
	v.parent.removeAt(v.Index())
	return nil
}

// ReplaceProperty swaps the property old of object v for the properties in
// props, in order, at old's position. A sibling sharing a name with one of
// props is dropped, as is an earlier entry of props repeating a later name:
// the last occurrence of a name wins. All values are validated before v is
// modified. It returns the siblings that were dropped.
func (v *Value) ReplaceProperty(old *Value, props []*Value) ([]*Value, error) {
	if v.kind != KindObject {
		return nil, errInvalidChild(v.kind, KindProperty)
	}
	if old.parent != v {
		return nil, apperrors.ErrNoParent
	}
	last := make(map[string]int, len(props))
	for i, p := range props {
		if p.kind != KindProperty {
			return nil, errInvalidChild(v.kind, p.kind)
		}
		if p.parent != nil {
			return nil, fmt.Errorf("%w: value is already attached", apperrors.ErrInvalidChild)
		}
		last[p.name] = i
	}

	at := old.Index()
	var dropped []*Value
	next := make([]*Value, 0, len(v.children)-1+len(props))
	for i, c := range v.children {
		if i == at {
			for j, p := range props {
				if last[p.name] == j {
					next = append(next, p)
				}
			}
			continue
		}
		if _, clash := last[c.name]; clash {
			dropped = append(dropped, c)
			continue
		}
		next = append(next, c)
	}

	old.parent = nil
	for _, c := range dropped {
		c.parent = nil
	}
	for _, c := range next {
		c.parent = v
	}
	v.children = next
	return dropped, nil
}
