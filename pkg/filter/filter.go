// Package filter provides peak filtering and transformation functions
package filter

import (
	"fmt"
	"sort"

	"github.com/sdewaal/specnet/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int     // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64 // Keep only peaks above this % of base peak (0 = no cutoff)
	MinMZ           float64 // Drop peaks below this m/z (0 = no lower bound)
	MaxMZ           float64 // Drop peaks above this m/z (0 = no upper bound)
	Normalize       bool    // Scale intensities so the base peak is 1.0
}

// Apply applies all configured filters to a spectrum
func (c *Config) Apply(spec *core.Spectrum) error {
	if c.MinMZ > 0 || c.MaxMZ > 0 {
		if err := c.filterByMZRange(spec); err != nil {
			return err
		}
	}

	if c.IntensityCutoff > 0 {
		c.filterByIntensity(spec)
	}

	if c.TopN > 0 {
		c.filterTopN(spec)
	}

	if c.Normalize {
		normalizeIntensities(spec)
	}

	// Ensure peaks are sorted after all filtering
	spec.SortPeaks()

	return nil
}

// filterByMZRange keeps only peaks within the configured m/z window
func (c *Config) filterByMZRange(spec *core.Spectrum) error {
	if c.MaxMZ > 0 && c.MinMZ > c.MaxMZ {
		return fmt.Errorf("invalid m/z window: min %.4f exceeds max %.4f", c.MinMZ, c.MaxMZ)
	}

	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if c.MinMZ > 0 && peak.MZ < c.MinMZ {
			continue
		}
		if c.MaxMZ > 0 && peak.MZ > c.MaxMZ {
			continue
		}
		filtered = append(filtered, peak)
	}

	spec.Peaks = filtered
	return nil
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(spec *core.Spectrum) {
	if len(spec.Peaks) == 0 {
		return
	}

	// Find maximum intensity
	maxIntensity := 0.0
	for _, peak := range spec.Peaks {
		if peak.Intensity > maxIntensity {
			maxIntensity = peak.Intensity
		}
	}

	// Calculate threshold
	threshold := (c.IntensityCutoff / 100.0) * maxIntensity

	// Filter peaks
	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	spec.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(spec *core.Spectrum) {
	if len(spec.Peaks) <= c.TopN {
		return
	}

	// Create a copy and sort by intensity descending
	peaks := make([]core.Peak, len(spec.Peaks))
	copy(peaks, spec.Peaks)

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	// Keep only top N
	spec.Peaks = peaks[:c.TopN]
}

// normalizeIntensities scales intensities so the base peak becomes 1.0
func normalizeIntensities(spec *core.Spectrum) {
	base := spec.BasePeakIntensity()
	if base <= 0 {
		return
	}
	for i := range spec.Peaks {
		spec.Peaks[i].Intensity /= base
	}
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(spec *core.Spectrum) {
	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	spec.Peaks = filtered
}
