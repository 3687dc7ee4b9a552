package containers

import "testing"

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)

	for _, v := range []int{1, 2, 3} {
		if err := rq.Enqueue(v); err != nil {
			t.Fatalf("Enqueue(%d) failed: %v", v, err)
		}
	}
	if err := rq.Enqueue(4); err == nil {
		t.Error("enqueue on a full queue succeeded")
	}

	for _, want := range []int{1, 2, 3} {
		got, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue = %d, want %d", got, want)
		}
	}
	if _, err := rq.Dequeue(); err == nil {
		t.Error("dequeue on an empty queue succeeded")
	}
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[string](2)

	rq.Enqueue("a")
	rq.Enqueue("b")
	rq.Dequeue()
	if err := rq.Enqueue("c"); err != nil {
		t.Fatalf("enqueue after wrap failed: %v", err)
	}

	if v, _ := rq.Peek(); v != "b" {
		t.Errorf("Peek = %q, want %q", v, "b")
	}
	if v, _ := rq.Dequeue(); v != "b" {
		t.Errorf("Dequeue = %q, want %q", v, "b")
	}
	if v, _ := rq.Dequeue(); v != "c" {
		t.Errorf("Dequeue = %q, want %q", v, "c")
	}
	if !rq.IsEmpty() {
		t.Error("queue not empty after draining")
	}
}
