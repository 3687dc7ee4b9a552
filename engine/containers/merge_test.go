package containers

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/ferrite/engine/core"
)

func TestMergeSingles(t *testing.T) {
	combined, err := MergeRedundantSets([]RedundantSet[string]{
		SingleOf("foo"),
		SingleOf("bar"),
		SingleOf("rust"),
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if combined.Redundancy() != RedundancySingle {
		t.Fatalf("merged redundancy = %s, want Single", combined.Redundancy())
	}

	inner, _ := combined.Single()
	want := []string{"foo", "bar", "rust"}
	if len(inner) != len(want) {
		t.Fatalf("merged sequence length = %d, want %d", len(inner), len(want))
	}
	for i := range want {
		if inner[i] != want[i] {
			t.Errorf("slot 0 element %d = %q, want %q", i, inner[i], want[i])
		}
	}
}

func TestMergeParity(t *testing.T) {
	combined, err := MergeRedundantSets([]RedundantSet[string]{
		SingleOf("foo"),
		ParityOf(ParitySetFromSingle("bar")),
		ParityOf(NewParitySet("crab", "rust")),
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if combined.Redundancy() != RedundancyParity {
		t.Fatalf("merged redundancy = %s, want Parity", combined.Redundancy())
	}

	parity, _ := combined.Parity()
	wantEven := []string{"foo", "bar", "crab"}
	wantOdd := []string{"foo", "bar", "rust"}
	for i := range wantEven {
		if parity.Even[i] != wantEven[i] {
			t.Errorf("even element %d = %q, want %q", i, parity.Even[i], wantEven[i])
		}
		if parity.Odd[i] != wantOdd[i] {
			t.Errorf("odd element %d = %q, want %q", i, parity.Odd[i], wantOdd[i])
		}
	}
	if len(parity.Even) != 3 || len(parity.Odd) != 3 {
		t.Errorf("sequence lengths = %d, %d, want 3, 3", len(parity.Even), len(parity.Odd))
	}
}

func TestMergeSwapSets(t *testing.T) {
	combined, err := MergeRedundantSets([]RedundantSet[string]{
		SingleOf("foo"),
		SwapchainOf(SwapSet[string]{"bar", "bar", "bar"}),
		SwapchainOf(SwapSet[string]{"rust", "crab", "ferris"}),
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if combined.Redundancy() != RedundancySwapchain {
		t.Fatalf("merged redundancy = %s, want Swapchain", combined.Redundancy())
	}

	swap, _ := combined.Swapchain()
	if swap.Len() != 3 {
		t.Fatalf("merged swap length = %d, want 3", swap.Len())
	}
	want := [][]string{
		{"foo", "bar", "rust"},
		{"foo", "bar", "crab"},
		{"foo", "bar", "ferris"},
	}
	for slot := range want {
		if len(swap[slot]) != len(want[slot]) {
			t.Fatalf("slot %d length = %d, want %d", slot, len(swap[slot]), len(want[slot]))
		}
		for i := range want[slot] {
			if swap[slot][i] != want[slot][i] {
				t.Errorf("slot %d element %d = %q, want %q", slot, i, swap[slot][i], want[slot][i])
			}
		}
	}
}

func TestMergeEmptySwapSet(t *testing.T) {
	combined, err := MergeRedundantSets([]RedundantSet[string]{
		SingleOf("foo"),
		SwapchainOf(SwapSet[string]{}),
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if combined.Redundancy() != RedundancySwapchain {
		t.Fatalf("merged redundancy = %s, want Swapchain", combined.Redundancy())
	}

	swap, _ := combined.Swapchain()
	if swap.Len() != 0 {
		t.Errorf("merged swap length = %d, want 0", swap.Len())
	}
}

func TestMergeEmptySwapSetAgainstNonEmpty(t *testing.T) {
	_, err := MergeRedundantSets([]RedundantSet[string]{
		SwapchainOf(SwapSet[string]{}),
		SwapchainOf(SwapSet[string]{"a", "b"}),
	})
	if !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestMergeSwapSetsUnequalLength(t *testing.T) {
	_, err := MergeRedundantSets([]RedundantSet[string]{
		SwapchainOf(SwapSet[string]{"a", "b"}),
		SwapchainOf(SwapSet[string]{"a", "b", "c"}),
	})
	if !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestMergeParityAgainstSwapchain(t *testing.T) {
	_, err := MergeRedundantSets([]RedundantSet[string]{
		ParityOf(ParitySetFromSingle("a")),
		SwapchainOf(SwapSet[string]{"a", "b"}),
	})
	if !errors.Is(err, core.ErrRedundancyIncompatible) {
		t.Errorf("err = %v, want ErrRedundancyIncompatible", err)
	}
}

func TestMergeEmpty(t *testing.T) {
	combined, err := MergeRedundantSets[string](nil)
	if err != nil {
		t.Fatalf("merging nothing failed: %v", err)
	}
	if combined.Redundancy() != RedundancySingle {
		t.Errorf("merged redundancy = %s, want Single", combined.Redundancy())
	}
	inner, _ := combined.Single()
	if len(inner) != 0 {
		t.Errorf("merged sequence = %v, want empty", inner)
	}
}
