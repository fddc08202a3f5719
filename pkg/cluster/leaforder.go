package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// orderState holds the leaf-ordering DP tables for one dendrogram node: the
// set of leaves under it and, for every (leftmost, rightmost) leaf pair, the
// minimal sum of adjacent-leaf distances achievable by flipping subtrees.
type orderState struct {
	leaves []int
	cost   map[[2]int]float64
	// split records, for each optimal (u, w), the boundary leaves chosen at
	// the child junction so the ordering can be reconstructed.
	split map[[2]int][2]int
}

// OptimalLeafOrder reorders the leaves of a dendrogram so that the sum of
// distances between adjacent leaves is minimal among all orderings reachable
// by flipping subtrees. The distance matrix must cover all leaves.
func OptimalLeafOrder(d *Dendrogram, dist mat.Symmetric) ([]int, error) {
	n := d.NumLeaves
	if dist.SymmetricDim() != n {
		return nil, fmt.Errorf("distance matrix is %dx%d, dendrogram has %d leaves",
			dist.SymmetricDim(), dist.SymmetricDim(), n)
	}
	if len(d.Merges) != n-1 {
		return nil, fmt.Errorf("dendrogram has %d merges, expected %d", len(d.Merges), n-1)
	}

	states := make(map[int]*orderState, 2*n-1)
	var build func(id int) *orderState
	build = func(id int) *orderState {
		if s, ok := states[id]; ok {
			return s
		}
		merge, ok := d.node(id)
		if !ok {
			s := &orderState{
				leaves: []int{id},
				cost:   map[[2]int]float64{{id, id}: 0},
				split:  map[[2]int][2]int{},
			}
			states[id] = s
			return s
		}

		left := build(merge.Left)
		right := build(merge.Right)
		s := &orderState{
			leaves: append(append([]int{}, left.leaves...), right.leaves...),
			cost:   map[[2]int]float64{},
			split:  map[[2]int][2]int{},
		}
		// An ordering of this node places one child's leaves before the
		// other's. Try both arrangements; (u, w) spans the junction (x, y).
		combine := func(first, second *orderState) {
			for _, u := range first.leaves {
				for _, w := range second.leaves {
					best := math.Inf(1)
					var bestSplit [2]int
					for _, x := range first.leaves {
						cu, ok := first.cost[[2]int{u, x}]
						if !ok {
							continue
						}
						for _, y := range second.leaves {
							cw, ok := second.cost[[2]int{y, w}]
							if !ok {
								continue
							}
							total := cu + dist.At(x, y) + cw
							if total < best {
								best = total
								bestSplit = [2]int{x, y}
							}
						}
					}
					if !math.IsInf(best, 1) {
						key := [2]int{u, w}
						if prev, ok := s.cost[key]; !ok || best < prev {
							s.cost[key] = best
							s.split[key] = bestSplit
						}
					}
				}
			}
		}
		combine(left, right)
		combine(right, left)
		states[id] = s
		return s
	}

	root := build(d.Root())

	bestU, bestW := -1, -1
	best := math.Inf(1)
	for key, c := range root.cost {
		if c < best {
			best = c
			bestU, bestW = key[0], key[1]
		}
	}
	if bestU < 0 {
		return nil, fmt.Errorf("no leaf ordering found")
	}

	order := make([]int, 0, n)
	var emit func(id, u, w int)
	emit = func(id, u, w int) {
		merge, ok := d.node(id)
		if !ok {
			order = append(order, id)
			return
		}
		s := states[id]
		junction := s.split[[2]int{u, w}]
		x, y := junction[0], junction[1]
		left := states[merge.Left]
		if containsLeaf(left, u) {
			emit(merge.Left, u, x)
			emit(merge.Right, y, w)
		} else {
			emit(merge.Right, u, x)
			emit(merge.Left, y, w)
		}
	}
	emit(d.Root(), bestU, bestW)
	return order, nil
}

func containsLeaf(s *orderState, leaf int) bool {
	for _, l := range s.leaves {
		if l == leaf {
			return true
		}
	}
	return false
}
