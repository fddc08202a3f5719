package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/embed"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed features into two dimensions",
	Long: `Embed the features of a similarity matrix into two dimensions using stress
majorization over the derived distance matrix. One embedding is run per seed;
each is scored by Pearson and Spearman correlation between input and embedding
distances, and the best-scoring entry is written as a coordinates CSV.

Examples:
  specnet embed --matrix scores.json --out coords.csv
  specnet embed --matrix scores.json --out coords.csv --seeds 0,7,21,42`,
	RunE: runEmbed,
}

func runEmbed(cmd *cobra.Command, args []string) error {
	m, err := loadMatrix(matrixFile)
	if err != nil {
		return err
	}

	seeds, err := parseSeeds(seedList)
	if err != nil {
		return err
	}

	dist := m.ToDistance()
	fmt.Printf("Embedding %d features over %d seeds...\n", m.Len(), len(seeds))

	entries, err := embed.RunGrid(dist.Scores, seeds)
	if err != nil {
		return fmt.Errorf("failed to run embedding grid: %w", err)
	}

	fmt.Printf("\n%-8s %-10s %-10s\n", "Seed", "Pearson", "Spearman")
	for _, entry := range entries {
		fmt.Printf("%-8d %-10.4f %-10.4f\n", entry.Seed, entry.Pearson, entry.Spearman)
	}

	best, err := embed.BestEntry(entries)
	if err != nil {
		return err
	}
	fmt.Printf("\nBest entry: seed %d (Pearson %.4f)\n", best.Seed, best.Pearson)

	outFile, err := os.Create(coordsOut)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	fmt.Fprintln(outFile, "feature_id,x,y")
	for i, id := range m.FeatureIDs {
		fmt.Fprintf(outFile, "%s,%g,%g\n", id, best.X[i], best.Y[i])
	}

	fmt.Printf("Wrote coordinates to %s\n", coordsOut)
	return nil
}

func parseSeeds(list string) ([]int64, error) {
	var seeds []int64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		seed, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed '%s': %w", field, err)
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds provided")
	}
	return seeds, nil
}
