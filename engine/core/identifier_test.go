package core

import "testing"

func TestArenaAcquireGetRelease(t *testing.T) {
	a := NewArena[string]()

	h1 := a.Acquire("first")
	h2 := a.Acquire("second")
	if h1 == h2 {
		t.Fatal("distinct acquisitions share a handle")
	}

	if v, ok := a.Get(h1); !ok || v != "first" {
		t.Errorf("Get(h1) = %q, %v", v, ok)
	}
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}

	if err := a.Release(h1); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, ok := a.Get(h1); ok {
		t.Error("released handle still resolves")
	}
	if err := a.Release(h1); err == nil {
		t.Error("double release succeeded")
	}
}

func TestArenaReusesReleasedSlots(t *testing.T) {
	a := NewArena[int]()

	h1 := a.Acquire(10)
	a.Acquire(20)
	if err := a.Release(h1); err != nil {
		t.Fatal(err)
	}

	h3 := a.Acquire(30)
	if h3 != h1 {
		t.Errorf("freed slot not reused: got handle %d, want %d", h3, h1)
	}
	if a.Cap() != 2 {
		t.Errorf("Cap = %d, want 2", a.Cap())
	}
	if v, _ := a.Get(h3); v != 30 {
		t.Errorf("reused slot holds %d, want 30", v)
	}
}

func TestArenaSet(t *testing.T) {
	a := NewArena[int]()
	h := a.Acquire(1)

	if err := a.Set(h, 2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := a.Get(h); v != 2 {
		t.Errorf("value after Set = %d, want 2", v)
	}
	if err := a.Set(InvalidHandle, 3); err == nil {
		t.Error("Set on an invalid handle succeeded")
	}
}
