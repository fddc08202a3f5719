// Package cluster provides agglomerative hierarchical clustering over
// pairwise distance matrices and the optimal leaf ordering used to arrange
// heatmap axes.
package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Node is one merge step of a dendrogram. Leaves are numbered 0..n-1;
// internal nodes n..2n-2 in merge order. Height is the Ward merge distance.
type Node struct {
	Left   int
	Right  int
	Height float64
	Count  int
}

// Dendrogram is the result of hierarchical clustering over n observations.
type Dendrogram struct {
	NumLeaves int
	Merges    []Node
}

// Root returns the id of the final merge node.
func (d *Dendrogram) Root() int {
	return d.NumLeaves + len(d.Merges) - 1
}

// node resolves an id to its merge entry; leaf ids return a zero Node and
// false.
func (d *Dendrogram) node(id int) (Node, bool) {
	if id < d.NumLeaves {
		return Node{}, false
	}
	return d.Merges[id-d.NumLeaves], true
}

// Ward performs agglomerative clustering with Ward linkage over a pairwise
// distance matrix, using the Lance-Williams update on squared distances. The
// matrix must be at least 2x2.
func Ward(dist mat.Symmetric) (*Dendrogram, error) {
	n := dist.SymmetricDim()
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d", n)
	}

	// Squared inter-cluster distances, updated in place as clusters merge.
	d2 := make([][]float64, n)
	for i := range d2 {
		d2[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			v := dist.At(i, j)
			d2[i][j] = v * v
		}
	}

	// active[i] maps a working slot to its current cluster id and size.
	clusterID := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := 0; i < n; i++ {
		clusterID[i] = i
		size[i] = 1
		active[i] = true
	}

	dendrogram := &Dendrogram{NumLeaves: n}
	nextID := n

	for merge := 0; merge < n-1; merge++ {
		// Find the closest active pair.
		bestI, bestJ := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if d2[i][j] < best {
					best = d2[i][j]
					bestI, bestJ = i, j
				}
			}
		}

		ni := float64(size[bestI])
		nj := float64(size[bestJ])

		// Lance-Williams Ward update against every other active cluster.
		for k := 0; k < n; k++ {
			if !active[k] || k == bestI || k == bestJ {
				continue
			}
			nk := float64(size[k])
			total := ni + nj + nk
			updated := ((ni+nk)*d2[bestI][k] + (nj+nk)*d2[bestJ][k] - nk*d2[bestI][bestJ]) / total
			d2[bestI][k] = updated
			d2[k][bestI] = updated
		}

		dendrogram.Merges = append(dendrogram.Merges, Node{
			Left:   clusterID[bestI],
			Right:  clusterID[bestJ],
			Height: math.Sqrt(best),
			Count:  size[bestI] + size[bestJ],
		})

		// The merged cluster takes over slot bestI.
		clusterID[bestI] = nextID
		size[bestI] += size[bestJ]
		active[bestJ] = false
		nextID++
	}

	return dendrogram, nil
}

// LeavesList returns the leaf ids of a dendrogram in left-to-right traversal
// order.
func (d *Dendrogram) LeavesList() []int {
	out := make([]int, 0, d.NumLeaves)
	var walk func(id int)
	walk = func(id int) {
		merge, ok := d.node(id)
		if !ok {
			out = append(out, id)
			return
		}
		walk(merge.Left)
		walk(merge.Right)
	}
	walk(d.Root())
	return out
}
