package containers

import (
	"fmt"

	"github.com/spaghettifunk/ferrite/engine/core"
)

// Redundancy describes how many CPU-writable copies of a GPU resource
// exist: one, one per in-flight frame (parity), or one per swapchain image.
type Redundancy int

const (
	RedundancySingle Redundancy = iota
	RedundancyParity
	RedundancySwapchain
)

func (r Redundancy) String() string {
	switch r {
	case RedundancySingle:
		return "Single"
	case RedundancyParity:
		return "Parity"
	case RedundancySwapchain:
		return "Swapchain"
	}
	return "Unknown"
}

// Compatible reports whether two shapes have a common generalization.
// Parity and Swapchain replicate along different axes and never mix.
func (r Redundancy) Compatible(other Redundancy) bool {
	if r == RedundancyParity && other == RedundancySwapchain {
		return false
	}
	if r == RedundancySwapchain && other == RedundancyParity {
		return false
	}
	return true
}

// Generalize is the lattice join. Single is a two-sided identity; joining
// Parity with Swapchain is undefined and reports false.
func (r Redundancy) Generalize(other Redundancy) (Redundancy, bool) {
	if !r.Compatible(other) {
		return RedundancySingle, false
	}
	if other == RedundancySingle {
		return r, true
	}
	return other, true
}

// Parity selects which in-flight frame's copy of a resource is active.
// It is advanced once per rendered frame by the engine loop.
type Parity int

const (
	ParityEven Parity = iota
	ParityOdd
)

func (p *Parity) Swap() {
	if *p == ParityEven {
		*p = ParityOdd
	} else {
		*p = ParityEven
	}
}

func (p Parity) String() string {
	if p == ParityEven {
		return "Even"
	}
	return "Odd"
}

// ParitySet holds exactly one value per in-flight frame slot.
type ParitySet[T any] struct {
	Even T
	Odd  T
}

func NewParitySet[T any](even, odd T) ParitySet[T] {
	return ParitySet[T]{Even: even, Odd: odd}
}

// ParitySetFromSingle replicates one value into both slots.
func ParitySetFromSingle[T any](value T) ParitySet[T] {
	return ParitySet[T]{Even: value, Odd: value}
}

// ParitySetFromFn invokes f once per slot, even first.
func ParitySetFromFn[T any](f func() T) ParitySet[T] {
	return ParitySet[T]{Even: f(), Odd: f()}
}

// ParitySetFromFnErr is ParitySetFromFn for fallible provisioning, such as
// creating one uniform buffer per in-flight frame.
func ParitySetFromFnErr[T any](f func() (T, error)) (ParitySet[T], error) {
	even, err := f()
	if err != nil {
		return ParitySet[T]{}, err
	}
	odd, err := f()
	if err != nil {
		return ParitySet[T]{}, err
	}
	return ParitySet[T]{Even: even, Odd: odd}, nil
}

// ParitySetFromSlice enforces the fixed arity at construction.
func ParitySetFromSlice[T any](values []T) (ParitySet[T], error) {
	if len(values) != 2 {
		return ParitySet[T]{}, fmt.Errorf("slice for a parity set must contain exactly 2 elements, got %d", len(values))
	}
	return ParitySet[T]{Even: values[0], Odd: values[1]}, nil
}

func (ps ParitySet[T]) Get(parity Parity) T {
	if parity == ParityEven {
		return ps.Even
	}
	return ps.Odd
}

// Slice returns the slots in parity order (even, odd).
func (ps ParitySet[T]) Slice() []T {
	return []T{ps.Even, ps.Odd}
}

// MapParitySet applies f per slot, preserving slot assignment.
func MapParitySet[T, R any](ps ParitySet[T], f func(T) R) ParitySet[R] {
	return ParitySet[R]{Even: f(ps.Even), Odd: f(ps.Odd)}
}

// SwapSet holds one value per swapchain image, in image order.
type SwapSet[T any] []T

func (ss SwapSet[T]) Len() int {
	return len(ss)
}

// RedundantSet is a tagged union holding exactly one of a single value, a
// parity set, or a swap set. The active variant always matches Redundancy().
type RedundantSet[T any] struct {
	redundancy Redundancy
	single     T
	parity     ParitySet[T]
	swap       SwapSet[T]
}

func SingleOf[T any](value T) RedundantSet[T] {
	return RedundantSet[T]{redundancy: RedundancySingle, single: value}
}

func ParityOf[T any](set ParitySet[T]) RedundantSet[T] {
	return RedundantSet[T]{redundancy: RedundancyParity, parity: set}
}

func SwapchainOf[T any](set SwapSet[T]) RedundantSet[T] {
	return RedundantSet[T]{redundancy: RedundancySwapchain, swap: set}
}

func (rs RedundantSet[T]) Redundancy() Redundancy {
	return rs.redundancy
}

func (rs RedundantSet[T]) Single() (T, bool) {
	return rs.single, rs.redundancy == RedundancySingle
}

func (rs RedundantSet[T]) Parity() (ParitySet[T], bool) {
	return rs.parity, rs.redundancy == RedundancyParity
}

func (rs RedundantSet[T]) Swapchain() (SwapSet[T], bool) {
	return rs.swap, rs.redundancy == RedundancySwapchain
}

// Slice flattens the active variant into slot order.
func (rs RedundantSet[T]) Slice() []T {
	switch rs.redundancy {
	case RedundancySingle:
		return []T{rs.single}
	case RedundancyParity:
		return rs.parity.Slice()
	default:
		return append([]T(nil), rs.swap...)
	}
}

// AsType widens the set to the target shape. Single replicates into every
// slot of the wider shape; Single to Swapchain uses swapLen slots, defaulting
// to 1 when swapLen is not positive. Identical shapes pass through. Any
// other pairing, including narrowing and Parity against Swapchain, fails
// with core.ErrRedundancyIncompatible.
func (rs RedundantSet[T]) AsType(target Redundancy, swapLen int) (RedundantSet[T], error) {
	switch {
	case rs.redundancy == target:
		return rs, nil
	case rs.redundancy == RedundancySingle && target == RedundancyParity:
		return ParityOf(ParitySetFromSingle(rs.single)), nil
	case rs.redundancy == RedundancySingle && target == RedundancySwapchain:
		if swapLen <= 0 {
			swapLen = 1
		}
		swap := make(SwapSet[T], swapLen)
		for i := range swap {
			swap[i] = rs.single
		}
		return SwapchainOf(swap), nil
	default:
		return RedundantSet[T]{}, fmt.Errorf("redundant set of type %s not convertible to %s: %w",
			rs.redundancy, target, core.ErrRedundancyIncompatible)
	}
}
