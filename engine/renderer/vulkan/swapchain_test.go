package vulkan

import "testing"

func TestDesiredImageCount(t *testing.T) {
	tests := []struct {
		name                string
		requested, min, max uint32
		want                uint32
	}{
		{"configured count honored", 3, 2, 8, 3},
		{"zero request defaults to min plus one", 0, 2, 8, 3},
		{"request below surface minimum", 1, 2, 8, 2},
		{"request above surface maximum", 16, 2, 8, 8},
		{"unbounded surface maximum", 16, 2, 0, 16},
	}
	for _, tt := range tests {
		if got := desiredImageCount(tt.requested, tt.min, tt.max); got != tt.want {
			t.Errorf("%s: desiredImageCount(%d, %d, %d) = %d, want %d",
				tt.name, tt.requested, tt.min, tt.max, got, tt.want)
		}
	}
}
