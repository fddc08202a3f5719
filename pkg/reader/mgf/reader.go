// Package mgf provides streaming readers for MGF (Mascot Generic Format) files
package mgf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sdewaal/specnet/pkg/core"
)

// Reader provides streaming access to MGF format files
type Reader struct {
	scanner     *bufio.Scanner
	lineNum     int
	entryNum    int
	currentSpec *core.Spectrum
	err         error
}

// NewReader creates a new MGF reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
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

// readSpectrum reads a single BEGIN IONS / END IONS block
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	spec := &core.Spectrum{
		SourceFormat: "mgf",
		Peaks:        []core.Peak{},
	}

	inBlock := false

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !inBlock {
			if line == "BEGIN IONS" {
				inBlock = true
			}
			continue
		}

		if line == "END IONS" {
			r.entryNum++
			if spec.FeatureID == "" {
				spec.FeatureID = fmt.Sprintf("scan_%d", r.entryNum)
			}
			spec.SortPeaks()
			return spec, nil
		}

		if idx := strings.Index(line, "="); idx > 0 && !strings.ContainsAny(line[:idx], " \t") {
			if err := r.parseHeader(spec, line[:idx], line[idx+1:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			continue
		}

		peak, err := r.parsePeak(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		spec.Peaks = append(spec.Peaks, peak)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if inBlock {
		return nil, fmt.Errorf("line %d: unterminated BEGIN IONS block", r.lineNum)
	}

	return nil, io.EOF
}

// parseHeader handles one KEY=VALUE header line inside a block
func (r *Reader) parseHeader(spec *core.Spectrum, key, value string) error {
	switch strings.ToUpper(key) {
	case "PEPMASS":
		// PEPMASS may carry a trailing intensity; only the m/z matters
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return fmt.Errorf("empty PEPMASS value")
		}
		mz, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("invalid PEPMASS value '%s': %w", fields[0], err)
		}
		spec.PrecursorMZ = mz

	case "RTINSECONDS":
		rt, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RTINSECONDS value '%s': %w", value, err)
		}
		spec.RetentionTime = rt

	case "FEATURE_ID", "SPECTRUMID":
		spec.FeatureID = value

	case "SCANS":
		// SCANS is a fallback identifier when no FEATURE_ID is present
		if spec.FeatureID == "" {
			spec.FeatureID = value
		}

	case "TITLE", "CHARGE", "MSLEVEL", "IONMODE":
		// Recognized but unused metadata
	}

	return nil
}

// parsePeak parses a single peak line (format: "mz intensity")
func (r *Reader) parsePeak(line string) (core.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	return core.Peak{MZ: mz, Intensity: intensity}, nil
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
