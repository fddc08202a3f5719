package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/filter"
	"github.com/sdewaal/specnet/pkg/similarity"
)

var similarityCmd = &cobra.Command{
	Use:   "similarity",
	Short: "Compute a pairwise spectral similarity matrix",
	Long: `Compute pairwise similarity scores between all spectra in an input file and
write the resulting matrix as JSON.

Examples:
  # Modified cosine scores with default settings
  specnet similarity --in features.json --out scores.json

  # Plain cosine with peak filtering
  specnet similarity --in features.mgf --out scores.json --measure cosine_greedy --top-n 50 --cutoff 1`,
	RunE: runSimilarity,
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	measure, err := similarity.MeasureByName(measureName, tolerance)
	if err != nil {
		return err
	}

	spectra, err := loadSpectra(inputFile, inputFormat)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d spectra from %s\n", len(spectra), inputFile)

	filterConfig := &filter.Config{
		TopN:            topN,
		IntensityCutoff: cutoffPercent,
		MinMZ:           minMZ,
		MaxMZ:           maxMZ,
		Normalize:       normalize,
	}

	kept := spectra[:0]
	for _, spec := range spectra {
		filter.RemoveZeroIntensityPeaks(spec)
		if err := filterConfig.Apply(spec); err != nil {
			return fmt.Errorf("failed to filter spectrum %s: %w", spec.FeatureID, err)
		}
		if len(spec.Peaks) == 0 {
			fmt.Fprintf(os.Stderr, "Warning: spectrum %s has no peaks after filtering, dropped\n", spec.FeatureID)
			continue
		}
		kept = append(kept, spec)
	}
	spectra = kept

	fmt.Printf("Computing %s scores for %d spectra...\n", measure.Name(), len(spectra))
	m, err := similarity.Pairwise(spectra, measure)
	if err != nil {
		return fmt.Errorf("failed to compute similarity matrix: %w", err)
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if err := similarity.WriteMatrixJSON(outFile, m); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}

	fmt.Printf("Wrote %dx%d matrix to %s\n", m.Len(), m.Len(), outputFile)
	return nil
}
