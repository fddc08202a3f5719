package network

import (
	"testing"

	"github.com/sdewaal/specnet/pkg/similarity"
)

func simMatrix(t *testing.T, ids []string, values []float64) *similarity.Matrix {
	t.Helper()
	m, err := similarity.New(ids, values)
	if err != nil {
		t.Fatalf("similarity.New() error = %v", err)
	}
	return m
}

func fourFeatureMatrix(t *testing.T) *similarity.Matrix {
	return simMatrix(t,
		[]string{"f1", "f2", "f3", "f4"},
		[]float64{
			1.0, 0.9, 0.3, 0.1,
			0.9, 1.0, 0.5, 0.2,
			0.3, 0.5, 1.0, 0.7,
			0.1, 0.2, 0.7, 1.0,
		},
	)
}

func TestGenerateEdgeListTopKBound(t *testing.T) {
	m := fourFeatureMatrix(t)

	if _, err := GenerateEdgeList(m, 4); err == nil {
		t.Error("GenerateEdgeList() with topK+1 > n expected error")
	}
	if _, err := GenerateEdgeList(m, 0); err == nil {
		t.Error("GenerateEdgeList() with topK 0 expected error")
	}
	if _, err := GenerateEdgeList(m, 3); err != nil {
		t.Errorf("GenerateEdgeList() with topK 3 unexpected error: %v", err)
	}
}

func TestGenerateEdgeListProperties(t *testing.T) {
	m := fourFeatureMatrix(t)
	n := m.Len()

	for topK := 1; topK < n-1; topK++ {
		edges, err := GenerateEdgeList(m, topK)
		if err != nil {
			t.Fatalf("topK=%d: GenerateEdgeList() error = %v", topK, err)
		}

		seen := make(map[[2]string]bool)
		for _, edge := range edges {
			if edge.Data.Source == edge.Data.Target {
				t.Errorf("topK=%d: self-loop on %s", topK, edge.Data.Source)
			}
			key := pairKey(edge.Data.Source, edge.Data.Target)
			if seen[key] {
				t.Errorf("topK=%d: duplicate unordered pair %v", topK, key)
			}
			seen[key] = true
		}

		if max := n * topK; len(edges) > max {
			t.Errorf("topK=%d: %d edges exceeds bound %d", topK, len(edges), max)
		}
	}
}

func TestGenerateEdgeListWeightsAndLabels(t *testing.T) {
	m := fourFeatureMatrix(t)

	edges, err := GenerateEdgeList(m, 1)
	if err != nil {
		t.Fatalf("GenerateEdgeList() error = %v", err)
	}

	// Row f1 keeps its strongest neighbor f2; f2's own top pick duplicates
	// the pair and is dropped, f3/f4 contribute their mutual strongest edge.
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	first := edges[0].Data
	if first.Source != "f1" || first.Target != "f2" {
		t.Errorf("first edge = %s->%s, want f1->f2", first.Source, first.Target)
	}
	if first.Weight != 0.9 {
		t.Errorf("first edge weight = %v, want 0.9", first.Weight)
	}
	if first.Label != "0.9" {
		t.Errorf("first edge label = %q, want \"0.9\"", first.Label)
	}
	if first.ID != "f1-to-f2" {
		t.Errorf("first edge id = %q, want \"f1-to-f2\"", first.ID)
	}
}

func TestSortEdgesByWeight(t *testing.T) {
	edges := []Edge{
		{Data: EdgeData{ID: "a", Weight: 0.2}},
		{Data: EdgeData{ID: "b", Weight: 0.9}},
		{Data: EdgeData{ID: "c", Weight: 0.5}},
	}

	SortEdgesByWeight(edges)

	want := []string{"b", "c", "a"}
	for i, edge := range edges {
		if edge.Data.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, edge.Data.ID, want[i])
		}
	}
}
