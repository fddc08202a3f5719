// Package network constructs Cytoscape-compatible similarity network elements:
// top-k edge lists, node entries, and the incremental edge expansion used for
// interactive exploration.
package network

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/similarity"
)

// EdgeData is the payload of a Cytoscape edge element.
type EdgeData struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Label  string  `json:"label"`
	ID     string  `json:"id"`
}

// Edge is a single Cytoscape edge element.
type Edge struct {
	Data EdgeData `json:"data"`
}

// GenerateEdgeList constructs the top-k similarity edge list. For each row of
// the matrix the topK highest-scoring neighbors are selected (the self match
// is included in the selection and dropped), and each unordered node pair is
// emitted at most once, first occurrence winning. Weight carries the raw
// similarity score; the label is the score rounded to 2 decimals.
//
// Fails when topK+1 exceeds the matrix dimension.
func GenerateEdgeList(m *similarity.Matrix, topK int) ([]Edge, error) {
	n := m.Len()
	if topK < 1 {
		return nil, fmt.Errorf("topK must be at least 1, got %d", topK)
	}
	if topK+1 > n {
		return nil, fmt.Errorf("topK %d exceeds number of possible neighbors (%d features)", topK, n)
	}

	// Self is among the top-k of its own row; select one extra and drop it.
	k := topK + 1

	covered := make(map[[2]string]bool)
	var edges []Edge

	for row := 0; row < n; row++ {
		featureID := m.FeatureIDs[row]
		for _, col := range topIndices(m, row, k) {
			neighborID := m.FeatureIDs[col]
			if neighborID == featureID {
				continue
			}
			key := pairKey(featureID, neighborID)
			if covered[key] {
				continue
			}
			covered[key] = true

			score := m.At(row, col)
			edges = append(edges, Edge{Data: EdgeData{
				Source: featureID,
				Target: neighborID,
				Weight: score,
				Label:  formatScoreLabel(score),
				ID:     featureID + "-to-" + neighborID,
			}})
		}
	}

	return edges, nil
}

// topIndices returns the column indices of the k highest values in a row,
// in descending score order.
func topIndices(m *similarity.Matrix, row, k int) []int {
	n := m.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return m.At(row, indices[a]) > m.At(row, indices[b])
	})
	return indices[:k]
}

// pairKey canonicalizes an unordered node pair (smaller id first).
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func formatScoreLabel(score float64) string {
	return strconv.FormatFloat(core.RoundFloat(score, 2), 'g', -1, 64)
}

// SortEdgesByWeight sorts an edge list by descending weight in place. The
// sort is stable so equal-weight edges keep their construction order. This
// establishes the ordering Expand assumes.
func SortEdgesByWeight(edges []Edge) {
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Data.Weight > edges[j].Data.Weight
	})
}
