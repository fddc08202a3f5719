// Package core provides the intermediate representation (IR) models and validation logic
// for MS/MS feature spectra used by specnet.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum represents a single MS/MS feature spectrum with associated metadata.
type Spectrum struct {
	FeatureID     string  // Feature identifier from the upstream export
	PrecursorMZ   float64 // Precursor m/z
	RetentionTime float64 // Retention time in seconds (unit not validated)
	Peaks         []Peak  // Fragment peaks

	// Internal tracking
	SourceFile   string
	SourceFormat string // mmjson, mgf
}

// Peak represents a single m/z, intensity pair.
type Peak struct {
	MZ        float64
	Intensity float64
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum meets all requirements for processing.
func (s *Spectrum) Validate() error {
	var errs []string

	// Required fields
	if s.FeatureID == "" {
		errs = append(errs, "feature id is required")
	}
	if s.PrecursorMZ <= 0 {
		errs = append(errs, "precursor m/z must be positive")
	}
	if len(s.Peaks) == 0 {
		errs = append(errs, "at least one peak is required")
	}

	// Validate peaks
	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	// Check if peaks are sorted
	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Spectrum) SortPeaks() {
	sort.Slice(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// BasePeakIntensity returns the maximum fragment intensity, or 0 for an empty spectrum.
func (s *Spectrum) BasePeakIntensity() float64 {
	maxIntensity := 0.0
	for _, peak := range s.Peaks {
		if peak.Intensity > maxIntensity {
			maxIntensity = peak.Intensity
		}
	}
	return maxIntensity
}

// FeatureIDs returns the feature ids of a spectra list, in order.
func FeatureIDs(spectra []*Spectrum) []string {
	ids := make([]string, len(spectra))
	for i, spectrum := range spectra {
		ids[i] = spectrum.FeatureID
	}
	return ids
}

// MZRange computes the min and max fragment m/z across a list of spectra.
// A single spectrum must be packaged into a list as well.
func MZRange(spectra []*Spectrum) (float64, float64) {
	minMZ := math.Inf(1)
	maxMZ := math.Inf(-1)
	for _, spectrum := range spectra {
		for _, peak := range spectrum.Peaks {
			if peak.MZ < minMZ {
				minMZ = peak.MZ
			}
			if peak.MZ > maxMZ {
				maxMZ = peak.MZ
			}
		}
	}
	return minMZ, maxMZ
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
