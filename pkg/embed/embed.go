// Package embed projects a pairwise distance matrix into two dimensions using
// SMACOF stress majorization, and scores each embedding by how well its
// Euclidean distances correlate with the input distances. A grid of seeds is
// run so a well-preserving embedding can be picked by quality score.
package embed

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/mds"
)

const (
	smacofMaxIterations = 300
	smacofTolerance     = 1e-6
)

// GridEntry is one embedding run: per-feature coordinates plus distance
// preservation scores against the input matrix.
type GridEntry struct {
	Seed     int64
	X        []float64
	Y        []float64
	Pearson  float64
	Spearman float64
}

// RunGrid embeds the distance matrix once per seed and returns the entries in
// seed order. Seed 0 runs are initialized with Torgerson classical scaling;
// other seeds start from random coordinates.
func RunGrid(dist *mat.SymDense, seeds []int64) ([]GridEntry, error) {
	if dist == nil || dist.SymmetricDim() == 0 {
		return nil, fmt.Errorf("distance matrix is nil or empty")
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds provided")
	}
	n := dist.SymmetricDim()
	if n < 3 {
		return nil, fmt.Errorf("need at least 3 features to embed, got %d", n)
	}

	entries := make([]GridEntry, 0, len(seeds))
	for _, seed := range seeds {
		coords, err := embedOnce(dist, seed)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		entry := GridEntry{
			Seed: seed,
			X:    make([]float64, n),
			Y:    make([]float64, n),
		}
		for i := 0; i < n; i++ {
			entry.X[i] = coords.At(i, 0)
			entry.Y[i] = coords.At(i, 1)
		}
		entry.Pearson, entry.Spearman = qualityScores(dist, coords)
		entries = append(entries, entry)
	}
	return entries, nil
}

// BestEntry returns the entry with the highest Pearson score.
func BestEntry(entries []GridEntry) (GridEntry, error) {
	if len(entries) == 0 {
		return GridEntry{}, fmt.Errorf("empty grid")
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Pearson > best.Pearson {
			best = e
		}
	}
	return best, nil
}

func embedOnce(dist *mat.SymDense, seed int64) (*mat.Dense, error) {
	n := dist.SymmetricDim()
	init := mat.NewDense(n, 2, nil)
	if seed == 0 {
		var coords mat.Dense
		var eigenvals []float64
		k, _ := mds.TorgersonScaling(&coords, eigenvals, dist)
		if k >= 2 {
			for i := 0; i < n; i++ {
				init.Set(i, 0, coords.At(i, 0))
				init.Set(i, 1, coords.At(i, 1))
			}
		} else {
			randomInit(init, 1)
		}
	} else {
		randomInit(init, seed)
	}
	return smacof(dist, init), nil
}

func randomInit(coords *mat.Dense, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rows, cols := coords.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			coords.Set(i, j, rng.NormFloat64())
		}
	}
}

// smacof iterates the Guttman transform until the raw stress improvement
// falls below tolerance.
func smacof(dist *mat.SymDense, init *mat.Dense) *mat.Dense {
	n, dims := init.Dims()
	current := mat.DenseCopyOf(init)
	next := mat.NewDense(n, dims, nil)
	prevStress := math.Inf(1)

	for iter := 0; iter < smacofMaxIterations; iter++ {
		stress := 0.0
		next.Zero()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				target := dist.At(i, j)
				actual := pointDistance(current, i, j, dims)
				diff := actual - target
				stress += diff * diff / 2

				ratio := 0.0
				if actual > 0 {
					ratio = target / actual
				}
				for d := 0; d < dims; d++ {
					delta := current.At(i, d) - current.At(j, d)
					next.Set(i, d, next.At(i, d)+ratio*delta)
				}
			}
		}
		next.Scale(1/float64(n), next)
		current, next = next, current

		if prevStress-stress < smacofTolerance {
			break
		}
		prevStress = stress
	}
	return current
}

func pointDistance(coords *mat.Dense, i, j, dims int) float64 {
	sum := 0.0
	for d := 0; d < dims; d++ {
		delta := coords.At(i, d) - coords.At(j, d)
		sum += delta * delta
	}
	return math.Sqrt(sum)
}

// qualityScores returns the Pearson and Spearman correlations between the
// input distances and the embedding distances over all feature pairs.
func qualityScores(dist *mat.SymDense, coords *mat.Dense) (pearson, spearman float64) {
	n := dist.SymmetricDim()
	_, dims := coords.Dims()
	var input, embedded []float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			input = append(input, dist.At(i, j))
			embedded = append(embedded, pointDistance(coords, i, j, dims))
		}
	}
	pearson = stat.Correlation(input, embedded, nil)
	spearman = stat.Correlation(ranks(input), ranks(embedded), nil)
	return pearson, spearman
}

// ranks returns fractional ranks, averaging over ties.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = rank
		}
		i = j + 1
	}
	return out
}
