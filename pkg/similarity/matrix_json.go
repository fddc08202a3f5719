package similarity

import (
	"encoding/json"
	"fmt"
	"io"
)

// matrixDocument is the on-disk JSON shape for a similarity matrix:
// {"feature_ids": [...], "scores": [[...], ...]}
type matrixDocument struct {
	FeatureIDs []string    `json:"feature_ids"`
	Scores     [][]float64 `json:"scores"`
}

// ReadMatrixJSON parses a similarity matrix from its JSON document form.
func ReadMatrixJSON(r io.Reader) (*Matrix, error) {
	var doc matrixDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode matrix JSON: %w", err)
	}

	n := len(doc.FeatureIDs)
	if len(doc.Scores) != n {
		return nil, fmt.Errorf("expected %d score rows, got %d", n, len(doc.Scores))
	}

	values := make([]float64, 0, n*n)
	for i, row := range doc.Scores {
		if len(row) != n {
			return nil, fmt.Errorf("score row %d has %d columns, expected %d", i, len(row), n)
		}
		values = append(values, row...)
	}

	m, err := New(doc.FeatureIDs, values)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid similarity matrix: %w", err)
	}
	return m, nil
}

// WriteMatrixJSON writes a matrix in its JSON document form.
func WriteMatrixJSON(w io.Writer, m *Matrix) error {
	n := m.Len()
	doc := matrixDocument{
		FeatureIDs: m.FeatureIDs,
		Scores:     make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = m.Scores.At(i, j)
		}
		doc.Scores[i] = row
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode matrix JSON: %w", err)
	}
	return nil
}
