package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/heatmap"
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Build a clustered similarity heatmap document",
	Long: `Cluster a (sub)selection of the similarity matrix with Ward linkage,
reorder it by optimal leaf ordering and write a heatmap document with ids,
values and a diverging color scale.

Examples:
  # Full matrix, diverging scale around 0.7
  specnet heatmap --matrix scores.json --out heatmap.json

  # Selected features with a grayscale color scale
  specnet heatmap --matrix scores.json --out heatmap.json --ids f1,f2,f3 --colorblind`,
	RunE: runHeatmap,
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	m, err := loadMatrix(matrixFile)
	if err != nil {
		return err
	}

	var ilocs []int
	if featureIDs != "" {
		for _, id := range strings.Split(featureIDs, ",") {
			id = strings.TrimSpace(id)
			iloc, ok := m.IndexOf(id)
			if !ok {
				return fmt.Errorf("feature id %s not present in matrix", id)
			}
			ilocs = append(ilocs, iloc)
		}
	}

	doc, err := heatmap.Build(m, ilocs, threshold, colorblind)
	if err != nil {
		return fmt.Errorf("failed to build heatmap: %w", err)
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	encoder := json.NewEncoder(outFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to write heatmap document: %w", err)
	}

	fmt.Printf("Wrote %dx%d heatmap to %s\n", len(doc.IDs), len(doc.IDs), outputFile)
	return nil
}
