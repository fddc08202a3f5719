package network

// EdgeIndex answers incident-edge queries for on-demand edge expansion. It is
// built from a complete edge list sorted by descending weight (see
// SortEdgesByWeight), so the incident list of every node is already in
// descending-weight order.
type EdgeIndex struct {
	edges    []Edge
	incident map[string][]int
}

// NewEdgeIndex builds the per-node incidence index over a complete edge list.
// The list is assumed sorted by descending weight.
func NewEdgeIndex(edges []Edge) *EdgeIndex {
	incident := make(map[string][]int)
	for i, edge := range edges {
		incident[edge.Data.Source] = append(incident[edge.Data.Source], i)
		if edge.Data.Target != edge.Data.Source {
			incident[edge.Data.Target] = append(incident[edge.Data.Target], i)
		}
	}
	return &EdgeIndex{edges: edges, incident: incident}
}

// Expand gathers, for each selected node in order, its incident edges capped
// at topK, and returns them appended in selection order. Edges incident to
// more than one selected node are returned once per selection; callers that
// need a unique set run the result through DedupeEdges.
func (ix *EdgeIndex) Expand(selected []string, topK int) []Edge {
	if len(selected) == 0 || topK < 1 {
		return nil
	}

	var out []Edge
	for _, nodeID := range selected {
		indices := ix.incident[nodeID]
		if len(indices) > topK {
			indices = indices[:topK]
		}
		for _, i := range indices {
			out = append(out, ix.edges[i])
		}
	}
	return out
}

// DedupeEdges removes duplicate edges by element id, keeping the first
// occurrence. Input order is preserved.
func DedupeEdges(edges []Edge) []Edge {
	seen := make(map[string]bool, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, edge := range edges {
		if seen[edge.Data.ID] {
			continue
		}
		seen[edge.Data.ID] = true
		out = append(out, edge)
	}
	return out
}
