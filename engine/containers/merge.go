package containers

import (
	"fmt"

	"github.com/spaghettifunk/ferrite/engine/core"
)

// MergeRedundantSets combines heterogeneously shaped sets into one set of
// per-slot sequences. The result takes the generalized shape of all inputs;
// each slot holds one element contributed by each input, in input order.
//
// Merging an empty input yields a Single set with an empty sequence.
func MergeRedundantSets[T any](sets []RedundantSet[T]) (RedundantSet[[]T], error) {
	target := RedundancySingle
	for _, set := range sets {
		next, ok := target.Generalize(set.Redundancy())
		if !ok {
			return RedundantSet[[]T]{}, fmt.Errorf("failed to generalize redundancy (%s vs %s): %w",
				target, set.Redundancy(), core.ErrRedundancyIncompatible)
		}
		target = next
	}

	// All swap-shaped inputs must agree on length; single-shaped inputs are
	// replicated to the common length during widening. A zero-length swap
	// input is a valid length, so -1 marks "none seen yet".
	swapLen := -1
	if target == RedundancySwapchain {
		for _, set := range sets {
			swap, ok := set.Swapchain()
			if !ok {
				continue
			}
			if swapLen == -1 {
				swapLen = swap.Len()
			} else if swapLen != swap.Len() {
				return RedundantSet[[]T]{}, fmt.Errorf("%w: %d vs %d",
					core.ErrLengthMismatch, swapLen, swap.Len())
			}
		}
		// An empty swap input empties the whole merge: there is no slot
		// for any input to contribute to.
		if swapLen == 0 {
			return SwapchainOf(SwapSet[[]T]{}), nil
		}
	}

	widened := make([]RedundantSet[T], len(sets))
	for i, set := range sets {
		w, err := set.AsType(target, swapLen)
		if err != nil {
			return RedundantSet[[]T]{}, err
		}
		widened[i] = w
	}

	switch target {
	case RedundancySingle:
		out := make([]T, 0, len(widened))
		for _, set := range widened {
			value, _ := set.Single()
			out = append(out, value)
		}
		return SingleOf(out), nil

	case RedundancyParity:
		evens := make([]T, 0, len(widened))
		odds := make([]T, 0, len(widened))
		for _, set := range widened {
			parity, _ := set.Parity()
			evens = append(evens, parity.Even)
			odds = append(odds, parity.Odd)
		}
		return ParityOf(NewParitySet(evens, odds)), nil

	default:
		rows := make(SwapSet[[]T], swapLen)
		for i := range rows {
			rows[i] = make([]T, 0, len(widened))
		}
		for _, set := range widened {
			swap, _ := set.Swapchain()
			for i, value := range swap {
				rows[i] = append(rows[i], value)
			}
		}
		return SwapchainOf(rows), nil
	}
}
