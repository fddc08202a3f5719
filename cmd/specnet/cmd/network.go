package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/network"
	"github.com/sdewaal/specnet/pkg/similarity"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build a top-k network element list from a similarity matrix",
	Long: `Build the Cytoscape-style node and edge element lists for a similarity
matrix: the strongest k partners per feature become edges, and node entries
carry labels, layout positions, group classes and display statistics.

Examples:
  # Edge list only
  specnet network --matrix scores.json --out elements.json --top-k 15

  # Full elements with node metadata
  specnet network --matrix scores.json --in features.json --out elements.json \
    --coordinates coords.csv --groups groups.csv --stats stats.csv`,
	RunE: runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	m, err := loadMatrix(matrixFile)
	if err != nil {
		return err
	}

	fmt.Printf("Building top-%d edge list for %d features...\n", topK, m.Len())
	edges, err := network.GenerateEdgeList(m, topK)
	if err != nil {
		return fmt.Errorf("failed to build edge list: %w", err)
	}

	elements := &network.Elements{Edges: edges}

	// Node entries need spectra plus aligned metadata tables
	if inputFile != "" {
		nodes, err := buildNodes(m)
		if err != nil {
			return err
		}
		elements.Nodes = nodes
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if err := network.WriteElements(outFile, elements); err != nil {
		return fmt.Errorf("failed to write elements: %w", err)
	}

	fmt.Printf("Wrote %d nodes and %d edges to %s\n", len(elements.Nodes), len(elements.Edges), outputFile)
	return nil
}

// buildNodes loads spectra and the optional metadata tables, aligns them with
// the matrix feature ordering and builds the node list.
func buildNodes(m *similarity.Matrix) ([]network.Node, error) {
	loaded, err := loadSpectra(inputFile, inputFormat)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*core.Spectrum, len(loaded))
	for _, spec := range loaded {
		byID[spec.FeatureID] = spec
	}

	// Node order follows the matrix feature ordering
	spectra := make([]*core.Spectrum, m.Len())
	for i, id := range m.FeatureIDs {
		spec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("matrix feature %s not found in %s", id, inputFile)
		}
		spectra[i] = spec
	}

	coords := make([]network.Coordinate, len(spectra))
	if coordsCSV != "" {
		coords, err = loadCoordinatesCSV(coordsCSV, spectra)
		if err != nil {
			return nil, fmt.Errorf("failed to load coordinates CSV: %w", err)
		}
		fmt.Printf("Loaded %d coordinates\n", len(coords))
	}

	groups := make([]int, len(spectra))
	if groupsCSV != "" {
		groups, err = loadGroupsCSV(groupsCSV, spectra)
		if err != nil {
			return nil, fmt.Errorf("failed to load groups CSV: %w", err)
		}
	}

	var stats []network.NodeStats
	if statsCSV != "" {
		stats, err = loadStatsCSV(statsCSV, spectra)
		if err != nil {
			return nil, fmt.Errorf("failed to load stats CSV: %w", err)
		}
	}

	return network.GenerateNodeList(spectra, coords, groups, stats, scaler)
}
