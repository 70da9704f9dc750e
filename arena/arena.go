// Package arena stores values in slots addressed by generational handles.
// Removing a value bumps the slot generation, so handles taken before the
// removal stop resolving instead of aliasing whatever reuses the slot.
package arena

import "errors"

var ErrStaleHandle = errors.New("arena: stale handle")

// Handle addresses one slot of an Arena[T]. The zero value never resolves.
type Handle[T any] struct {
	Index      uint32
	Generation uint32
}

// IsNil reports whether the handle is the zero "none" handle.
func (h Handle[T]) IsNil() bool {
	return h.Generation == 0
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores value and returns its handle. Freed slots are reused first.
func (a *Arena[T]) Insert(value T) Handle[T] {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}

	s := &a.slots[index]
	s.generation++
	if s.generation == 0 {
		// wrapped: generation 0 is reserved for the nil handle
		s.generation = 1
	}
	s.value = value
	s.live = true
	a.count++

	return Handle[T]{Index: index, Generation: s.generation}
}

// Get resolves h. ok is false for nil, removed or out of range handles.
func (a *Arena[T]) Get(h Handle[T]) (value T, ok bool) {
	if !a.Contains(h) {
		return value, false
	}
	return a.slots[h.Index].value, true
}

// Contains reports whether h still points at a live value.
func (a *Arena[T]) Contains(h Handle[T]) bool {
	if h.IsNil() || int(h.Index) >= len(a.slots) {
		return false
	}
	s := a.slots[h.Index]
	return s.live && s.generation == h.Generation
}

// Remove frees the slot behind h. It returns ErrStaleHandle if h no longer resolves.
func (a *Arena[T]) Remove(h Handle[T]) error {
	if !a.Contains(h) {
		return ErrStaleHandle
	}
	var zero T
	s := &a.slots[h.Index]
	s.value = zero
	s.live = false
	a.free = append(a.free, h.Index)
	a.count--
	return nil
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each calls fn for every live value in slot order. Iteration stops when fn returns false.
// fn must not insert into or remove from the arena.
func (a *Arena[T]) Each(fn func(h Handle[T], value T) bool) {
	for i := range a.slots {
		s := a.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle[T]{Index: uint32(i), Generation: s.generation}, s.value) {
			return
		}
	}
}
