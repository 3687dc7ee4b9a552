package containers

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/ferrite/engine/core"
)

func TestGeneralizeSingleIdentity(t *testing.T) {
	for _, r := range []Redundancy{RedundancySingle, RedundancyParity, RedundancySwapchain} {
		got, ok := RedundancySingle.Generalize(r)
		if !ok || got != r {
			t.Errorf("Generalize(Single, %s) = %s, %v, want %s, true", r, got, ok, r)
		}
		got, ok = r.Generalize(RedundancySingle)
		if !ok || got != r {
			t.Errorf("Generalize(%s, Single) = %s, %v, want %s, true", r, got, ok, r)
		}
	}
}

func TestGeneralizeCommutative(t *testing.T) {
	shapes := []Redundancy{RedundancySingle, RedundancyParity, RedundancySwapchain}
	for _, a := range shapes {
		for _, b := range shapes {
			ab, okAB := a.Generalize(b)
			ba, okBA := b.Generalize(a)
			if okAB != okBA || (okAB && ab != ba) {
				t.Errorf("Generalize not commutative for %s, %s", a, b)
			}
		}
	}
}

func TestGeneralizeParitySwapchainUndefined(t *testing.T) {
	if _, ok := RedundancyParity.Generalize(RedundancySwapchain); ok {
		t.Error("Generalize(Parity, Swapchain) should be undefined")
	}
	if _, ok := RedundancySwapchain.Generalize(RedundancyParity); ok {
		t.Error("Generalize(Swapchain, Parity) should be undefined")
	}
	if RedundancyParity.Compatible(RedundancySwapchain) {
		t.Error("Parity should not be compatible with Swapchain")
	}
}

func TestParitySetFromSingle(t *testing.T) {
	manual := ParitySet[string]{Even: "test", Odd: "test"}
	automatic := ParitySetFromSingle("test")
	if manual != automatic {
		t.Errorf("ParitySetFromSingle = %v, want %v", automatic, manual)
	}
}

func TestParitySetFromFn(t *testing.T) {
	increment := 0
	automatic := ParitySetFromFn(func() int {
		increment++
		return increment
	})
	if automatic.Even != 1 || automatic.Odd != 2 {
		t.Errorf("ParitySetFromFn = %v, want {1 2}", automatic)
	}
}

func TestParitySetFromSliceArity(t *testing.T) {
	if _, err := ParitySetFromSlice([]int{1}); err == nil {
		t.Error("ParitySetFromSlice with 1 element should fail")
	}
	if _, err := ParitySetFromSlice([]int{1, 2, 3}); err == nil {
		t.Error("ParitySetFromSlice with 3 elements should fail")
	}
	ps, err := ParitySetFromSlice([]int{1, 2})
	if err != nil {
		t.Fatalf("ParitySetFromSlice with 2 elements failed: %v", err)
	}
	if ps.Even != 1 || ps.Odd != 2 {
		t.Errorf("ParitySetFromSlice = %v, want {1 2}", ps)
	}
}

func TestParitySwap(t *testing.T) {
	p := ParityEven
	p.Swap()
	if p != ParityOdd {
		t.Errorf("after Swap, parity = %s, want Odd", p)
	}
	p.Swap()
	if p != ParityEven {
		t.Errorf("after double Swap, parity = %s, want Even", p)
	}
}

func TestAsTypeSingleToParity(t *testing.T) {
	single := SingleOf("test")
	widened, err := single.AsType(RedundancyParity, 0)
	if err != nil {
		t.Fatalf("AsType(Single, Parity) failed: %v", err)
	}
	parity, ok := widened.Parity()
	if !ok {
		t.Fatalf("widened set is %s, want Parity", widened.Redundancy())
	}
	if parity.Even != "test" || parity.Odd != "test" {
		t.Errorf("parity = %v, want both slots \"test\"", parity)
	}
}

func TestAsTypeSingleToSwapchain(t *testing.T) {
	single := SingleOf("test")
	widened, err := single.AsType(RedundancySwapchain, 3)
	if err != nil {
		t.Fatalf("AsType(Single, Swapchain, 3) failed: %v", err)
	}
	swap, ok := widened.Swapchain()
	if !ok {
		t.Fatalf("widened set is %s, want Swapchain", widened.Redundancy())
	}
	if swap.Len() != 3 {
		t.Fatalf("swap set length = %d, want 3", swap.Len())
	}
	for i, v := range swap {
		if v != "test" {
			t.Errorf("slot %d = %q, want \"test\"", i, v)
		}
	}
}

func TestAsTypeSingleToSwapchainDefaultLength(t *testing.T) {
	widened, err := SingleOf(1).AsType(RedundancySwapchain, 0)
	if err != nil {
		t.Fatalf("AsType failed: %v", err)
	}
	if swap, _ := widened.Swapchain(); swap.Len() != 1 {
		t.Errorf("swap set length = %d, want 1", swap.Len())
	}
}

func TestAsTypeIncompatiblePairs(t *testing.T) {
	parity := ParityOf(ParitySetFromSingle("a"))
	swap := SwapchainOf(SwapSet[string]{"a", "b"})

	cases := []struct {
		name   string
		set    RedundantSet[string]
		target Redundancy
	}{
		{"parity to swapchain", parity, RedundancySwapchain},
		{"swapchain to parity", swap, RedundancyParity},
		{"parity to single", parity, RedundancySingle},
		{"swapchain to single", swap, RedundancySingle},
	}
	for _, tc := range cases {
		if _, err := tc.set.AsType(tc.target, 0); !errors.Is(err, core.ErrRedundancyIncompatible) {
			t.Errorf("%s: err = %v, want ErrRedundancyIncompatible", tc.name, err)
		}
	}
}

func TestAsTypePassThrough(t *testing.T) {
	swap := SwapchainOf(SwapSet[int]{1, 2, 3})
	same, err := swap.AsType(RedundancySwapchain, 0)
	if err != nil {
		t.Fatalf("same-shape AsType failed: %v", err)
	}
	got, _ := same.Swapchain()
	if got.Len() != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("pass-through swap set = %v, want [1 2 3]", got)
	}
}

func TestRedundantSetSlice(t *testing.T) {
	if got := SingleOf("x").Slice(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Single slice = %v", got)
	}
	if got := ParityOf(NewParitySet("e", "o")).Slice(); len(got) != 2 || got[0] != "e" || got[1] != "o" {
		t.Errorf("Parity slice = %v", got)
	}
}
