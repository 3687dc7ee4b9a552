package math

import "testing"

func TestMat4IdentityMul(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	got := m.Mul(NewMat4Identity())
	if got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, low, high, want float32
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.value, tt.low, tt.high); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.low, tt.high, got, tt.want)
		}
	}
}

func TestTransformLocalRecomputedOnChange(t *testing.T) {
	tr := TransformCreate()
	first := tr.GetLocal()
	if tr.IsDirty {
		t.Error("transform still dirty after GetLocal")
	}

	tr.SetPosition(NewVec3(1, 0, 0))
	if !tr.IsDirty {
		t.Fatal("SetPosition did not mark the transform dirty")
	}
	second := tr.GetLocal()
	if first == second {
		t.Error("local matrix unchanged after moving the transform")
	}
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalized()
	if got := v.Length(); got < 0.9999 || got > 1.0001 {
		t.Errorf("normalized length = %v, want 1", got)
	}
}

func TestQuatAxisAngleToMat4(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), DegToRad(90), false)
	got := q.ToMat4()

	// A quarter turn about Y maps +X onto -Z and +Z onto +X.
	want := map[int]float32{0: 0, 2: 1, 5: 1, 8: -1, 10: 0}
	for i, w := range want {
		if diff := got.Data[i] - w; diff < -1e-5 || diff > 1e-5 {
			t.Errorf("rotation element %d = %v, want %v", i, got.Data[i], w)
		}
	}
}
