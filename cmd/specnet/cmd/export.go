package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/network"
	"github.com/sdewaal/specnet/pkg/writer/sqlite"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export spectra and network elements to a SQLite database",
	Long: `Write spectra, and optionally the computed network elements, to a SQLite
database for downstream tooling. Peak arrays are stored as binary blobs.

Examples:
  specnet export --in features.json --out network.db
  specnet export --in features.json --elements elements.json --out network.db`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	spectra, err := loadSpectra(inputFile, inputFormat)
	if err != nil {
		return err
	}

	writer, err := sqlite.NewWriter(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	count := 0
	for _, spec := range spectra {
		if err := writer.WriteSpectrum(spec); err != nil {
			return fmt.Errorf("failed to write spectrum %s: %w", spec.FeatureID, err)
		}
		count++
		if count%1000 == 0 {
			fmt.Printf("Processed %d spectra...\n", count)
		}
	}

	nodeCount, edgeCount := 0, 0
	if elementsFile != "" {
		file, err := os.Open(elementsFile)
		if err != nil {
			return fmt.Errorf("failed to open elements file: %w", err)
		}
		elements, err := network.ReadElements(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to read elements: %w", err)
		}

		if err := writer.WriteElements(elements); err != nil {
			return fmt.Errorf("failed to write elements: %w", err)
		}
		nodeCount = len(elements.Nodes)
		edgeCount = len(elements.Edges)
	}

	if err := writer.Finalize(description, topK, measureName); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	fmt.Printf("\nExport complete!\n")
	fmt.Printf("Spectra: %d\n", count)
	if elementsFile != "" {
		fmt.Printf("Nodes: %d, Edges: %d\n", nodeCount, edgeCount)
	}
	fmt.Printf("Output: %s\n", outputFile)

	return nil
}
