package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/sdewaal/specnet/pkg/core"
)

// DefaultTolerance is the fragment m/z match tolerance in Daltons.
const DefaultTolerance = 0.1

// Measure scores the spectral match quality of two spectra in [0,1].
type Measure interface {
	Score(a, b *core.Spectrum) float64
	Name() string
}

// CosineGreedy is the greedy cosine score: fragment peaks within Tolerance
// are paired greedily by descending intensity product, each peak used at most
// once, and the summed products are normalized by the intensity L2 norms.
type CosineGreedy struct {
	Tolerance float64
}

func (c CosineGreedy) Name() string { return "cosine_greedy" }

func (c CosineGreedy) Score(a, b *core.Spectrum) float64 {
	pairs := collectPeakPairs(a.Peaks, b.Peaks, c.tolerance(), 0)
	return normalizedGreedyScore(pairs, a.Peaks, b.Peaks)
}

func (c CosineGreedy) tolerance() float64 {
	if c.Tolerance <= 0 {
		return DefaultTolerance
	}
	return c.Tolerance
}

// ModifiedCosine extends the greedy cosine with precursor-shifted matching:
// peaks are also paired when their m/z difference equals the precursor mass
// difference within Tolerance, accommodating a shared modification.
type ModifiedCosine struct {
	Tolerance float64
}

func (c ModifiedCosine) Name() string { return "modified_cosine" }

func (c ModifiedCosine) Score(a, b *core.Spectrum) float64 {
	tolerance := c.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	shift := a.PrecursorMZ - b.PrecursorMZ

	pairs := collectPeakPairs(a.Peaks, b.Peaks, tolerance, 0)
	if shift != 0 {
		pairs = append(pairs, collectPeakPairs(a.Peaks, b.Peaks, tolerance, shift)...)
	}
	return normalizedGreedyScore(pairs, a.Peaks, b.Peaks)
}

// peakPair is a tolerance-compatible candidate match between one peak of each
// spectrum.
type peakPair struct {
	i, j    int
	product float64
}

// collectPeakPairs finds all peak index pairs with
// |mzA - (mzB + shift)| <= tolerance. Peak slices are assumed sorted by m/z.
func collectPeakPairs(a, b []core.Peak, tolerance, shift float64) []peakPair {
	var pairs []peakPair
	lo := 0
	for i, pa := range a {
		target := pa.MZ - shift
		for lo < len(b) && b[lo].MZ < target-tolerance {
			lo++
		}
		for j := lo; j < len(b) && b[j].MZ <= target+tolerance; j++ {
			pairs = append(pairs, peakPair{i: i, j: j, product: pa.Intensity * b[j].Intensity})
		}
	}
	return pairs
}

// normalizedGreedyScore greedily accepts candidate pairs by descending
// intensity product, using each peak at most once, and normalizes the summed
// products by the intensity norms of both spectra.
func normalizedGreedyScore(pairs []peakPair, a, b []core.Peak) float64 {
	normA := intensityNorm(a)
	normB := intensityNorm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	sort.Slice(pairs, func(x, y int) bool {
		return pairs[x].product > pairs[y].product
	})

	usedA := make(map[int]bool, len(a))
	usedB := make(map[int]bool, len(b))
	score := 0.0
	for _, pair := range pairs {
		if usedA[pair.i] || usedB[pair.j] {
			continue
		}
		usedA[pair.i] = true
		usedB[pair.j] = true
		score += pair.product
	}

	return clip01(score / (normA * normB))
}

func intensityNorm(peaks []core.Peak) float64 {
	sum := 0.0
	for _, peak := range peaks {
		sum += peak.Intensity * peak.Intensity
	}
	return math.Sqrt(sum)
}

// Pairwise computes the symmetric pairwise similarity matrix for a list of
// spectra using the provided measure. The diagonal is set to 1 and all scores
// are clipped to [0,1].
func Pairwise(spectra []*core.Spectrum, measure Measure) (*Matrix, error) {
	if len(spectra) == 0 {
		return nil, fmt.Errorf("spectra list must not be empty")
	}

	n := len(spectra)
	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		values[i*n+i] = 1.0
		for j := i + 1; j < n; j++ {
			score := clip01(measure.Score(spectra[i], spectra[j]))
			values[i*n+j] = score
			values[j*n+i] = score
		}
	}

	return New(core.FeatureIDs(spectra), values)
}

// MeasureByName maps a measure identifier to its implementation.
// Supported: cosine_greedy, modified_cosine.
func MeasureByName(name string, tolerance float64) (Measure, error) {
	switch name {
	case "cosine_greedy", "cosine":
		return CosineGreedy{Tolerance: tolerance}, nil
	case "modified_cosine":
		return ModifiedCosine{Tolerance: tolerance}, nil
	default:
		return nil, fmt.Errorf("unknown similarity measure %q, use cosine_greedy or modified_cosine", name)
	}
}
