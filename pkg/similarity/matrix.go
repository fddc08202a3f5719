// Package similarity provides pairwise spectral similarity matrices and the
// score measures used to fill them.
package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// distanceRoundDecimals bounds floating point noise in similarity-to-distance
// conversion so exact similarity inputs survive the round trip.
const distanceRoundDecimals = 6

// Matrix is a dense symmetric pairwise similarity (or distance) matrix with
// values in [0,1], aligned with a feature id list. FeatureIDs[i] labels row
// and column i.
type Matrix struct {
	FeatureIDs []string
	Scores     *mat.SymDense

	index map[string]int
}

// New creates a Matrix from a feature id list and a row-major n*n value slice.
func New(featureIDs []string, values []float64) (*Matrix, error) {
	n := len(featureIDs)
	if n == 0 {
		return nil, fmt.Errorf("feature id list must not be empty")
	}
	if len(values) != n*n {
		return nil, fmt.Errorf("expected %d values for %d features, got %d", n*n, n, len(values))
	}

	scores := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			upper := values[i*n+j]
			lower := values[j*n+i]
			if math.Abs(upper-lower) > 1e-9 {
				return nil, fmt.Errorf("matrix not symmetric at (%d,%d): %v vs %v", i, j, upper, lower)
			}
			scores.SetSym(i, j, upper)
		}
	}

	return fromSym(featureIDs, scores)
}

func fromSym(featureIDs []string, scores *mat.SymDense) (*Matrix, error) {
	index := make(map[string]int, len(featureIDs))
	for i, id := range featureIDs {
		if id == "" {
			return nil, fmt.Errorf("feature id at index %d is empty", i)
		}
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("duplicate feature id %q", id)
		}
		index[id] = i
	}
	return &Matrix{FeatureIDs: featureIDs, Scores: scores, index: index}, nil
}

// Len returns the matrix dimension.
func (m *Matrix) Len() int {
	return len(m.FeatureIDs)
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Scores.At(i, j)
}

// IndexOf returns the row index of a feature id.
func (m *Matrix) IndexOf(featureID string) (int, bool) {
	i, ok := m.index[featureID]
	return i, ok
}

// Validate checks that all values are finite and within [0,1].
func (m *Matrix) Validate() error {
	n := m.Len()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := m.Scores.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("value at (%d,%d) is not finite", i, j)
			}
			if v < 0 || v > 1 {
				return fmt.Errorf("value at (%d,%d) out of range [0,1]: %v", i, j, v)
			}
		}
	}
	return nil
}

// ToDistance converts a similarity matrix to a distance matrix: d = 1 - s,
// rounded to 6 decimals and clipped to [0,1] to absorb floating point noise.
// On exact inputs in [0,1] the conversion is a bijection.
func (m *Matrix) ToDistance() *Matrix {
	n := m.Len()
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := roundTo(1.0-m.Scores.At(i, j), distanceRoundDecimals)
			dist.SetSym(i, j, clip01(d))
		}
	}
	out, _ := fromSym(append([]string(nil), m.FeatureIDs...), dist)
	return out
}

// Submatrix extracts the rows and columns at the given integer locations,
// in the order provided.
func (m *Matrix) Submatrix(ilocs []int) (*Matrix, error) {
	if len(ilocs) == 0 {
		return nil, fmt.Errorf("iloc list must not be empty")
	}
	n := m.Len()
	for _, iloc := range ilocs {
		if iloc < 0 || iloc >= n {
			return nil, fmt.Errorf("iloc %d out of range for %d features", iloc, n)
		}
	}

	k := len(ilocs)
	ids := make([]string, k)
	sub := mat.NewSymDense(k, nil)
	for i, ri := range ilocs {
		ids[i] = m.FeatureIDs[ri]
		for j := i; j < k; j++ {
			sub.SetSym(i, j, m.Scores.At(ri, ilocs[j]))
		}
	}
	return fromSym(ids, sub)
}

// Reorder permutes rows and columns (and the feature id list) according to
// perm, which must be a permutation of 0..n-1. The value multiset is
// preserved.
func (m *Matrix) Reorder(perm []int) (*Matrix, error) {
	n := m.Len()
	if len(perm) != n {
		return nil, fmt.Errorf("permutation length %d does not match matrix dimension %d", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, fmt.Errorf("invalid permutation entry %d", p)
		}
		seen[p] = true
	}
	return m.Submatrix(perm)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func roundTo(v float64, decimals int) float64 {
	ratio := math.Pow(10, float64(decimals))
	return math.Round(v*ratio) / ratio
}
