package core

import "fmt"

// Handle is an opaque identity for an object owned by an Arena. Two handles
// compare equal only when they refer to the same acquired slot, so cached
// state keyed by a Handle is keyed by object identity, not value.
type Handle uint32

const InvalidHandle Handle = 0xFFFFFFFF

// Arena hands out integer handles for stored values. Released slots are
// reused, so a Handle must not be kept across a Release of the same id.
type Arena[T any] struct {
	slots    []T
	occupied []bool
}

func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		slots:    make([]T, 0, 16),
		occupied: make([]bool, 0, 16),
	}
}

// Acquire stores value and returns its handle. Existing free slots are
// taken before the arena grows.
func (a *Arena[T]) Acquire(value T) Handle {
	for i := range a.occupied {
		if !a.occupied[i] {
			a.slots[i] = value
			a.occupied[i] = true
			return Handle(i)
		}
	}
	a.slots = append(a.slots, value)
	a.occupied = append(a.occupied, true)
	return Handle(len(a.slots) - 1)
}

func (a *Arena[T]) Get(h Handle) (T, bool) {
	var zero T
	if int(h) >= len(a.slots) || !a.occupied[h] {
		return zero, false
	}
	return a.slots[h], true
}

// Set replaces the value stored at an acquired handle.
func (a *Arena[T]) Set(h Handle, value T) error {
	if int(h) >= len(a.slots) || !a.occupied[h] {
		return fmt.Errorf("arena set: handle '%d' is not acquired. Nothing was done", h)
	}
	a.slots[h] = value
	return nil
}

// Release zeroes out the entry, making the slot available for reuse.
func (a *Arena[T]) Release(h Handle) error {
	if int(h) >= len(a.slots) {
		return fmt.Errorf("arena release: handle '%d' out of range (max=%d). Nothing was done", h, len(a.slots))
	}
	if !a.occupied[h] {
		return fmt.Errorf("arena release: handle '%d' was not acquired. Nothing was done", h)
	}
	var zero T
	a.slots[h] = zero
	a.occupied[h] = false
	return nil
}

// Cap reports the total slot count, acquired or not. Handles below Cap are
// the only ones Get can ever succeed for.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}

// Len reports the number of currently acquired slots.
func (a *Arena[T]) Len() int {
	n := 0
	for _, occ := range a.occupied {
		if occ {
			n++
		}
	}
	return n
}
