// Package cmd provides CLI command implementations
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Flags for similarity command
	inputFile     string
	inputFormat   string
	outputFile    string
	measureName   string
	tolerance     float64
	topN          int
	cutoffPercent float64
	minMZ         float64
	maxMZ         float64
	normalize     bool

	// Flags for network command
	matrixFile string
	topK       int
	coordsCSV  string
	groupsCSV  string
	statsCSV   string
	scaler     float64

	// Flags for heatmap command
	featureIDs string
	threshold  float64
	colorblind bool

	// Flags for embed command
	seedList  string
	coordsOut string

	// Flags for export command
	elementsFile string
	description  string

	// Flags for serve command
	port string
)

var rootCmd = &cobra.Command{
	Use:   "specnet",
	Short: "specnet - Spectral similarity network toolkit",
	Long: `specnet turns MS/MS feature spectra into interactive similarity networks.

It computes pairwise spectral similarity, builds top-k edge lists and node
tables for network front ends, renders clustered heatmap documents, embeds
features into two dimensions, and serves the resulting network over HTTP.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(similarityCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)

	// Similarity command flags
	similarityCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input spectra file path (required)")
	similarityCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: mmjson, mgf (auto-detect if not specified)")
	similarityCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output similarity matrix JSON (required)")
	similarityCmd.Flags().StringVar(&measureName, "measure", "modified_cosine", "Similarity measure: cosine_greedy or modified_cosine")
	similarityCmd.Flags().Float64Var(&tolerance, "tolerance", 0.1, "Fragment m/z matching tolerance")
	similarityCmd.Flags().IntVar(&topN, "top-n", 0, "Keep only top N most intense peaks (0 = no limit)")
	similarityCmd.Flags().Float64Var(&cutoffPercent, "cutoff", 0, "Intensity cutoff as % of base peak (0 = no cutoff)")
	similarityCmd.Flags().Float64Var(&minMZ, "min-mz", 0, "Drop fragment peaks below this m/z (0 = no bound)")
	similarityCmd.Flags().Float64Var(&maxMZ, "max-mz", 0, "Drop fragment peaks above this m/z (0 = no bound)")
	similarityCmd.Flags().BoolVar(&normalize, "normalize", true, "Scale intensities so the base peak is 1.0")
	similarityCmd.MarkFlagRequired("in")
	similarityCmd.MarkFlagRequired("out")

	// Network command flags
	networkCmd.Flags().StringVarP(&matrixFile, "matrix", "m", "", "Similarity matrix JSON (required)")
	networkCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input spectra file for node metadata")
	networkCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: mmjson, mgf (auto-detect if not specified)")
	networkCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output elements JSON (required)")
	networkCmd.Flags().IntVarP(&topK, "top-k", "k", 15, "Number of strongest partners per feature")
	networkCmd.Flags().StringVar(&coordsCSV, "coordinates", "", "Path to coordinates CSV (feature_id,x,y)")
	networkCmd.Flags().StringVar(&groupsCSV, "groups", "", "Path to group assignment CSV (feature_id,group)")
	networkCmd.Flags().StringVar(&statsCSV, "stats", "", "Path to statistics CSV (feature_id,size,log2ratio,effect)")
	networkCmd.Flags().Float64Var(&scaler, "scaler", 100, "Coordinate scaling factor for node positions")
	networkCmd.MarkFlagRequired("matrix")
	networkCmd.MarkFlagRequired("out")

	// Heatmap command flags
	heatmapCmd.Flags().StringVarP(&matrixFile, "matrix", "m", "", "Similarity matrix JSON (required)")
	heatmapCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output heatmap document JSON (required)")
	heatmapCmd.Flags().StringVar(&featureIDs, "ids", "", "Comma-separated feature ids (all features if not specified)")
	heatmapCmd.Flags().Float64Var(&threshold, "threshold", 0.7, "Similarity threshold for the color scale breakpoint")
	heatmapCmd.Flags().BoolVar(&colorblind, "colorblind", false, "Use a grayscale color scale")
	heatmapCmd.MarkFlagRequired("matrix")
	heatmapCmd.MarkFlagRequired("out")

	// Embed command flags
	embedCmd.Flags().StringVarP(&matrixFile, "matrix", "m", "", "Similarity matrix JSON (required)")
	embedCmd.Flags().StringVar(&seedList, "seeds", "0,1,2,3,4", "Comma-separated random seeds for the embedding grid")
	embedCmd.Flags().StringVarP(&coordsOut, "out", "o", "", "Output coordinates CSV for the best entry (required)")
	embedCmd.MarkFlagRequired("matrix")
	embedCmd.MarkFlagRequired("out")

	// Export command flags
	exportCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input spectra file path (required)")
	exportCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: mmjson, mgf (auto-detect if not specified)")
	exportCmd.Flags().StringVar(&elementsFile, "elements", "", "Network elements JSON to include")
	exportCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	exportCmd.Flags().StringVar(&description, "description", "", "Description stored in the database header")
	exportCmd.Flags().IntVarP(&topK, "top-k", "k", 15, "Top-k setting recorded in the database header")
	exportCmd.Flags().StringVar(&measureName, "measure", "modified_cosine", "Similarity measure recorded in the database header")
	exportCmd.MarkFlagRequired("in")
	exportCmd.MarkFlagRequired("out")

	// Serve command flags
	serveCmd.Flags().StringVarP(&matrixFile, "matrix", "m", "", "Similarity matrix JSON (required)")
	serveCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input spectra file path (required)")
	serveCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: mmjson, mgf (auto-detect if not specified)")
	serveCmd.Flags().StringVar(&elementsFile, "elements", "", "Network elements JSON (required)")
	serveCmd.Flags().IntVarP(&topK, "top-k", "k", 15, "Per-node edge cap for expansion requests")
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT from the environment)")
	serveCmd.MarkFlagRequired("matrix")
	serveCmd.MarkFlagRequired("in")
	serveCmd.MarkFlagRequired("elements")

	// Summarize command flags
	summarizeCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: mmjson, mgf (auto-detect if not specified)")
}
