package network

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteElements writes a network element bundle as indented JSON.
func WriteElements(w io.Writer, elements *Elements) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(elements); err != nil {
		return fmt.Errorf("failed to encode network elements: %w", err)
	}
	return nil
}

// ReadElements parses a network element bundle from JSON.
func ReadElements(r io.Reader) (*Elements, error) {
	var elements Elements
	if err := json.NewDecoder(r).Decode(&elements); err != nil {
		return nil, fmt.Errorf("failed to decode network elements: %w", err)
	}
	return &elements, nil
}
