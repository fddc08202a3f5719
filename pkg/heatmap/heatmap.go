// Package heatmap builds clustered similarity heatmap documents: a
// sub-selected similarity matrix reordered by optimal leaf ordering, plus a
// color scale diverging around a similarity threshold.
package heatmap

import (
	"fmt"
	"math"

	"github.com/sdewaal/specnet/pkg/cluster"
	"github.com/sdewaal/specnet/pkg/similarity"
)

// Document is the JSON-serializable heatmap payload consumed by front ends.
// Values[i][j] is the similarity between IDs[i] and IDs[j] after reordering.
type Document struct {
	IDs        []string    `json:"ids"`
	Values     [][]float64 `json:"values"`
	ColorScale []string    `json:"colorscale"`
	Threshold  float64     `json:"threshold"`
}

// Build constructs a heatmap document for the matrix rows selected by ilocs.
// The selection is clustered with Ward linkage over the derived distance
// matrix and reordered by optimal leaf ordering. Threshold positions the color
// scale breakpoint; grayscale switches to a colorblind-safe scale.
func Build(m *similarity.Matrix, ilocs []int, threshold float64, grayscale bool) (*Document, error) {
	if m == nil {
		return nil, fmt.Errorf("similarity matrix is nil")
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1]", threshold)
	}

	sub := m
	if ilocs != nil {
		var err error
		sub, err = m.Submatrix(ilocs)
		if err != nil {
			return nil, fmt.Errorf("extracting sub-matrix: %w", err)
		}
	}
	if sub.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 features for a heatmap, got %d", sub.Len())
	}

	dist := sub.ToDistance()
	dendrogram, err := cluster.Ward(dist.Scores)
	if err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}
	order, err := cluster.OptimalLeafOrder(dendrogram, dist.Scores)
	if err != nil {
		return nil, fmt.Errorf("leaf ordering: %w", err)
	}
	reordered, err := sub.Reorder(order)
	if err != nil {
		return nil, fmt.Errorf("reordering: %w", err)
	}

	n := reordered.Len()
	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = reordered.Scores.At(i, j)
		}
		values[i] = row
	}

	return &Document{
		IDs:        append([]string{}, reordered.FeatureIDs...),
		Values:     values,
		ColorScale: ColorScale(threshold, grayscale),
		Threshold:  threshold,
	}, nil
}

// ColorScale returns 100 rgb color stops covering similarities 0 to 1. The
// default scale runs dark blue to light below the threshold and light to dark
// red above it, with the breakpoint at the 0.01 increment closest to the
// threshold. The grayscale variant runs white to black.
func ColorScale(threshold float64, grayscale bool) []string {
	if grayscale {
		return sampleColors(greysAnchors, 100)
	}
	breakpoint := closestBreakpoint(threshold)
	numBlues := breakpoint - 1
	numReds := 100 - breakpoint + 1
	scale := sampleColors(bluesReversedAnchors, numBlues)
	return append(scale, sampleColors(redsAnchors, numReds)...)
}

// closestBreakpoint snaps a threshold to the nearest value in
// {0.00, 0.01, ..., 0.99} and returns it scaled by 100.
func closestBreakpoint(threshold float64) int {
	bp := int(math.Round(threshold * 100))
	if bp < 2 {
		bp = 2
	}
	if bp > 99 {
		bp = 99
	}
	return bp
}

type rgb struct{ r, g, b float64 }

func (c rgb) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", int(math.Round(c.r)), int(math.Round(c.g)), int(math.Round(c.b)))
}

// ColorBrewer sequential anchors.
var (
	bluesReversedAnchors = []rgb{
		{8, 48, 107}, {8, 81, 156}, {33, 113, 181}, {66, 146, 198}, {107, 174, 214},
		{158, 202, 225}, {198, 219, 239}, {222, 235, 247}, {247, 251, 255},
	}
	redsAnchors = []rgb{
		{255, 245, 240}, {254, 224, 210}, {252, 187, 161}, {252, 146, 114}, {251, 106, 74},
		{239, 59, 44}, {203, 24, 29}, {165, 15, 21}, {103, 0, 13},
	}
	greysAnchors = []rgb{
		{255, 255, 255}, {240, 240, 240}, {217, 217, 217}, {189, 189, 189}, {150, 150, 150},
		{115, 115, 115}, {82, 82, 82}, {37, 37, 37}, {0, 0, 0},
	}
)

// sampleColors draws n evenly spaced colors from the piecewise-linear scale
// defined by the anchors.
func sampleColors(anchors []rgb, n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	if n == 1 {
		out[0] = anchors[0].String()
		return out
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out[i] = interpolate(anchors, t).String()
	}
	return out
}

func interpolate(anchors []rgb, t float64) rgb {
	segments := float64(len(anchors) - 1)
	position := t * segments
	idx := int(position)
	if idx >= len(anchors)-1 {
		return anchors[len(anchors)-1]
	}
	frac := position - float64(idx)
	a, b := anchors[idx], anchors[idx+1]
	return rgb{
		r: a.r + (b.r-a.r)*frac,
		g: a.g + (b.g-a.g)*frac,
		b: a.b + (b.b-a.b)*frac,
	}
}
