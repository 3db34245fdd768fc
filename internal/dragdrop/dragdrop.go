// Package dragdrop decides which drag-and-drop transfers between document
// nodes are allowed.
package dragdrop

import (
	"time"

	"github.com/mcncl/jsonedit/internal/models"
)

// Effect is the requested drop operation
type Effect int

const (
	None Effect = iota
	Copy
	Move
)

// String returns the effect name
func (e Effect) String() string {
	switch e {
	case Copy:
		return "copy"
	case Move:
		return "move"
	default:
		return "none"
	}
}

// ParseEffect converts "copy" or "move" to an Effect
func ParseEffect(s string) (Effect, bool) {
	switch s {
	case "copy":
		return Copy, true
	case "move":
		return Move, true
	case "none":
		return None, true
	}
	return None, false
}

// Target describes the node a drag is hovering over
type Target struct {
	Kind             models.Kind
	ParentIsProperty bool
}

// IsValidTransfer reports whether a node of kind source may be dropped on
// target with effect. Properties go into objects; other values go into
// arrays, and are only moved into arrays that are not the value of a
// property.
func IsValidTransfer(source models.Kind, target Target, effect Effect) bool {
	if effect != Copy && effect != Move {
		return false
	}
	switch source {
	case models.KindProperty:
		return target.Kind == models.KindObject
	case models.KindObject, models.KindArray, models.KindScalar:
		if target.Kind != models.KindArray {
			return false
		}
		return effect == Copy || !target.ParentIsProperty
	default:
		return false
	}
}

// EffectFor maps modifier keys to an effect: ctrl and shift together cancel,
// ctrl copies and anything else moves.
func EffectFor(ctrl, shift bool) Effect {
	switch {
	case ctrl && shift:
		return None
	case ctrl:
		return Copy
	default:
		return Move
	}
}

// Hover tracks how long a drag has stayed over the same target
type Hover struct {
	delay  time.Duration
	target string
	since  time.Time
	fired  bool
}

// NewHover creates a tracker that fires after delay over one target
func NewHover(delay time.Duration) *Hover {
	return &Hover{delay: delay}
}

// Observe records the drag being over target at now. It returns true once
// per visit, when the target has been hovered for at least the delay.
func (h *Hover) Observe(target string, now time.Time) bool {
	if target != h.target {
		h.target = target
		h.since = now
		h.fired = false
	}
	if h.fired || now.Sub(h.since) < h.delay {
		return false
	}
	h.fired = true
	return true
}

// Reset forgets the current target, e.g. when the drag leaves the tree
func (h *Hover) Reset() {
	h.target = ""
	h.fired = false
}
