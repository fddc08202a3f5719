package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/core"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize spectra file contents",
	Long:  `Print summary statistics about a spectra file including spectrum count, precursor and fragment m/z ranges, and peak counts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spectra, err := loadSpectra(args[0], inputFormat)
		if err != nil {
			return err
		}

		totalPeaks := 0
		minPeaks, maxPeaks := len(spectra[0].Peaks), len(spectra[0].Peaks)
		minPrecursor, maxPrecursor := spectra[0].PrecursorMZ, spectra[0].PrecursorMZ
		withRT := 0
		for _, spec := range spectra {
			n := len(spec.Peaks)
			totalPeaks += n
			if n < minPeaks {
				minPeaks = n
			}
			if n > maxPeaks {
				maxPeaks = n
			}
			if spec.PrecursorMZ < minPrecursor {
				minPrecursor = spec.PrecursorMZ
			}
			if spec.PrecursorMZ > maxPrecursor {
				maxPrecursor = spec.PrecursorMZ
			}
			if spec.RetentionTime > 0 {
				withRT++
			}
		}
		minFragment, maxFragment := core.MZRange(spectra)

		fmt.Printf("File: %s\n", args[0])
		fmt.Printf("Spectra: %d\n", len(spectra))
		fmt.Printf("Format: %s\n", spectra[0].SourceFormat)
		fmt.Printf("Precursor m/z: %.4f - %.4f\n", minPrecursor, maxPrecursor)
		fmt.Printf("Fragment m/z: %.4f - %.4f\n", minFragment, maxFragment)
		fmt.Printf("Peaks per spectrum: %d - %d (avg %.1f)\n", minPeaks, maxPeaks, float64(totalPeaks)/float64(len(spectra)))
		fmt.Printf("With retention time: %d/%d\n", withRT, len(spectra))
		return nil
	},
}
