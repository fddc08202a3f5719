package network

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sdewaal/specnet/pkg/core"
)

// Node size mapping bounds: absolute log2 fold changes are considered up to
// 13 (an 8192-fold change) and rendered in the 10..50 size range.
const (
	log2RatioUpperBound = 13.0
	nodeSizeLowerBound  = 10.0
	nodeSizeUpperBound  = 50.0
)

// WidthForScore maps a similarity score in [0,1] to a discrete edge width.
// The score is taken to 2-decimal display precision first, so cut locations
// are not subject to floating point drift; scores displaying as 0.99 or
// higher get the saturated width. The mapping is monotonic and
// piecewise-constant. Scores below 0 map to 1, scores at or above 1 to 26.
func WidthForScore(score float64) int {
	scoreInt := int64(math.Round(score * 100))
	switch {
	case scoreInt < 20:
		return 1
	case scoreInt < 40:
		return 6
	case scoreInt < 60:
		return 11
	case scoreInt < 80:
		return 16
	case scoreInt < 99:
		return 21
	default:
		return 26
	}
}

// ForceToNumeric parses a value that may come from loosely-typed statistical
// exports ("", "NA", "-INF", numbers as strings) into a float64. Parse
// failures and NaN are replaced with the provided replacement; infinite
// values parse to valid infinite floats and are kept.
func ForceToNumeric(value string, replacement float64) float64 {
	num, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(num) {
		return replacement
	}
	return num
}

// LinearRangeTransform linearly maps a value from one range to another. Both
// ranges must be ordered (lower strictly below upper) and the input must lie
// within the original range.
func LinearRangeTransform(input, origLower, origUpper, newLower, newUpper float64) (float64, error) {
	if origLower >= origUpper {
		return 0, fmt.Errorf("original lower bound %v must be strictly smaller than upper bound %v", origLower, origUpper)
	}
	if newLower >= newUpper {
		return 0, fmt.Errorf("new lower bound %v must be strictly smaller than upper bound %v", newLower, newUpper)
	}
	if input < origLower || input > origUpper {
		return 0, fmt.Errorf("input %v outside original bounds [%v, %v]", input, origLower, origUpper)
	}

	normalized := (input - origLower) / (origUpper - origLower)
	return newLower + normalized*(newUpper-newLower), nil
}

// SizeForLog2Ratio maps a log2 fold change value (as exported, possibly
// non-numeric) to a node display size. Positive and negative folds are
// treated equally via the absolute value, upper-bounded so outliers do not
// mask smaller effects, and rescaled to the node size range.
func SizeForLog2Ratio(value string) float64 {
	v := ForceToNumeric(value, 0)
	v = math.Min(math.Abs(v), log2RatioUpperBound)

	size, err := LinearRangeTransform(v, 0, log2RatioUpperBound, nodeSizeLowerBound, nodeSizeUpperBound)
	if err != nil {
		// Unreachable after clipping; fall back to the neutral size.
		return nodeSizeLowerBound
	}
	return core.RoundFloat(size, 4)
}
