// Package mmjson provides streaming readers for matchms JSON spectrum exports
package mmjson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sdewaal/specnet/pkg/core"
)

// Reader provides streaming access to matchms JSON export files. The file is
// a single JSON array of spectrum objects; objects are decoded one at a time.
type Reader struct {
	decoder     *json.Decoder
	started     bool
	index       int
	currentSpec *core.Spectrum
	err         error
}

// NewReader creates a new matchms JSON reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		decoder: json.NewDecoder(r),
	}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (r *Reader) Next() bool {
	r.currentSpec = nil

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentSpec = spec
	return true
}

// Spectrum returns the current spectrum
func (r *Reader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// jsonSpectrum mirrors one matchms export entry. peaks_json holds
// [mz, intensity] pairs.
type jsonSpectrum struct {
	FeatureID     string       `json:"feature_id"`
	PrecursorMZ   float64      `json:"precursor_mz"`
	RetentionTime *float64     `json:"retention_time"`
	Peaks         [][2]float64 `json:"peaks_json"`
}

// readSpectrum decodes a single array element
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	if !r.started {
		token, err := r.decoder.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading opening token: %w", err)
		}
		delim, ok := token.(json.Delim)
		if !ok || delim != '[' {
			return nil, fmt.Errorf("expected JSON array of spectra, got %v", token)
		}
		r.started = true
	}

	if !r.decoder.More() {
		// Consume the closing bracket.
		if _, err := r.decoder.Token(); err != nil && err != io.EOF {
			return nil, err
		}
		return nil, io.EOF
	}

	var entry jsonSpectrum
	if err := r.decoder.Decode(&entry); err != nil {
		return nil, fmt.Errorf("spectrum %d: %w", r.index, err)
	}
	r.index++

	if entry.FeatureID == "" {
		return nil, fmt.Errorf("spectrum %d: missing feature_id", r.index-1)
	}

	spec := &core.Spectrum{
		FeatureID:    entry.FeatureID,
		PrecursorMZ:  entry.PrecursorMZ,
		SourceFormat: "mmjson",
		Peaks:        make([]core.Peak, 0, len(entry.Peaks)),
	}
	if entry.RetentionTime != nil {
		spec.RetentionTime = *entry.RetentionTime
	}
	for _, pair := range entry.Peaks {
		spec.Peaks = append(spec.Peaks, core.Peak{MZ: pair[0], Intensity: pair[1]})
	}
	spec.SortPeaks()

	return spec, nil
}

// ReadAll drains a reader and returns all spectra
func ReadAll(r io.Reader) ([]*core.Spectrum, error) {
	reader := NewReader(r)
	var spectra []*core.Spectrum
	for reader.Next() {
		spectra = append(spectra, reader.Spectrum())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return spectra, nil
}
