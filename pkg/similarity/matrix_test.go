package similarity

import (
	"bytes"
	"math"
	"testing"
)

func testMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := New(
		[]string{"a", "b", "c"},
		[]float64{
			1.0, 0.8, 0.2,
			0.8, 1.0, 0.5,
			0.2, 0.5, 1.0,
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		values []float64
	}{
		{"empty ids", []string{}, []float64{}},
		{"wrong value count", []string{"a", "b"}, []float64{1, 0, 0}},
		{"duplicate ids", []string{"a", "a"}, []float64{1, 0.5, 0.5, 1}},
		{"asymmetric", []string{"a", "b"}, []float64{1, 0.5, 0.6, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.ids, tt.values); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

func TestToDistance(t *testing.T) {
	m := testMatrix(t)
	d := m.ToDistance()

	tests := []struct {
		i, j int
		want float64
	}{
		{0, 0, 0.0},
		{0, 1, 0.2},
		{0, 2, 0.8},
		{1, 2, 0.5},
	}
	for _, tt := range tests {
		if got := d.At(tt.i, tt.j); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("distance (%d,%d) = %v, want %v", tt.i, tt.j, got, tt.want)
		}
	}
}

func TestToDistanceClipsFloatNoise(t *testing.T) {
	// A similarity a hair above 1 must clip to distance 0, not go negative.
	m, err := New([]string{"a", "b"}, []float64{1, 1.0000004, 1.0000004, 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d := m.ToDistance()
	if got := d.At(0, 1); got != 0 {
		t.Errorf("distance = %v, want 0", got)
	}
}

func TestSubmatrix(t *testing.T) {
	m := testMatrix(t)

	sub, err := m.Submatrix([]int{2, 0})
	if err != nil {
		t.Fatalf("Submatrix() error = %v", err)
	}
	if sub.Len() != 2 {
		t.Fatalf("Submatrix() dimension = %d, want 2", sub.Len())
	}
	if sub.FeatureIDs[0] != "c" || sub.FeatureIDs[1] != "a" {
		t.Errorf("Submatrix() ids = %v, want [c a]", sub.FeatureIDs)
	}
	if got := sub.At(0, 1); got != 0.2 {
		t.Errorf("Submatrix() value = %v, want 0.2", got)
	}

	if _, err := m.Submatrix([]int{5}); err == nil {
		t.Error("Submatrix() with out-of-range iloc expected error")
	}
	if _, err := m.Submatrix(nil); err == nil {
		t.Error("Submatrix() with empty ilocs expected error")
	}
}

func TestReorderIsPermutation(t *testing.T) {
	m := testMatrix(t)

	reordered, err := m.Reorder([]int{2, 0, 1})
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	// The multiset of values must be preserved.
	if got, want := valueCounts(reordered), valueCounts(m); !sameCounts(got, want) {
		t.Errorf("Reorder() changed value multiset: %v vs %v", got, want)
	}

	// Invalid permutations are rejected.
	if _, err := m.Reorder([]int{0, 0, 1}); err == nil {
		t.Error("Reorder() with repeated entry expected error")
	}
	if _, err := m.Reorder([]int{0, 1}); err == nil {
		t.Error("Reorder() with short permutation expected error")
	}
}

func TestMatrixJSONRoundTrip(t *testing.T) {
	m := testMatrix(t)

	var buf bytes.Buffer
	if err := WriteMatrixJSON(&buf, m); err != nil {
		t.Fatalf("WriteMatrixJSON() error = %v", err)
	}

	parsed, err := ReadMatrixJSON(&buf)
	if err != nil {
		t.Fatalf("ReadMatrixJSON() error = %v", err)
	}
	if parsed.Len() != m.Len() {
		t.Fatalf("round trip dimension = %d, want %d", parsed.Len(), m.Len())
	}
	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			if parsed.At(i, j) != m.At(i, j) {
				t.Errorf("round trip value (%d,%d) = %v, want %v", i, j, parsed.At(i, j), m.At(i, j))
			}
		}
	}
}

func valueCounts(m *Matrix) map[float64]int {
	counts := make(map[float64]int)
	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			counts[m.At(i, j)]++
		}
	}
	return counts
}

func sameCounts(a, b map[float64]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
