// Package clipboard implements the single-slot holding area used by copy,
// cut and paste.
package clipboard

// Mode controls how long an entry survives reads
type Mode int

const (
	// Persistent entries stay until replaced or cleared
	Persistent Mode = iota
	// OneShot entries are cleared by the next read
	OneShot
)

// String returns the mode name used in logs
func (m Mode) String() string {
	if m == OneShot {
		return "one-shot"
	}
	return "persistent"
}

// Slot holds at most one item. It is owned by a single goroutine.
type Slot[T any] struct {
	item T
	mode Mode
	full bool
}

// New creates an empty slot
func New[T any]() *Slot[T] {
	return &Slot[T]{}
}

// Set stores item, replacing any previous entry
func (s *Slot[T]) Set(item T, mode Mode) {
	s.item = item
	s.mode = mode
	s.full = true
}

// Get returns the entry. A OneShot entry is cleared by this call.
func (s *Slot[T]) Get() (T, Mode, bool) {
	item, mode, ok := s.item, s.mode, s.full
	if ok && mode == OneShot {
		s.Clear()
	}
	return item, mode, ok
}

// Peek returns the entry without consuming it
func (s *Slot[T]) Peek() (T, Mode, bool) {
	return s.item, s.mode, s.full
}

// IsEmpty reports whether the slot holds nothing
func (s *Slot[T]) IsEmpty() bool {
	return !s.full
}

// Clear empties the slot
func (s *Slot[T]) Clear() {
	var zero T
	s.item = zero
	s.mode = Persistent
	s.full = false
}
