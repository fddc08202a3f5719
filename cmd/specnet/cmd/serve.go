package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sdewaal/specnet/pkg/network"
	"github.com/sdewaal/specnet/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a computed network over HTTP",
	Long: `Serve a computed similarity network for interactive front ends. The API
provides the full element list, session-scoped incremental expansion around
selected nodes, on-demand clustered heatmaps and raw spectrum lookup.

Configuration is read from the environment (a .env file is honored); the
--port flag overrides PORT.

Examples:
  specnet serve --matrix scores.json --in features.json --elements elements.json
  PORT=9090 specnet serve --matrix scores.json --in features.json --elements elements.json`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	listenPort := port
	if listenPort == "" {
		listenPort = getenv("PORT", "8080")
	}

	m, err := loadMatrix(matrixFile)
	if err != nil {
		return err
	}

	spectra, err := loadSpectra(inputFile, inputFormat)
	if err != nil {
		return err
	}

	file, err := os.Open(elementsFile)
	if err != nil {
		return fmt.Errorf("failed to open elements file: %w", err)
	}
	elements, err := network.ReadElements(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("failed to read elements: %w", err)
	}

	srv, err := server.New(m, spectra, elements, topK)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	fmt.Printf("Serving %d features, %d nodes, %d edges\n", m.Len(), len(elements.Nodes), len(elements.Edges))
	fmt.Printf("specnet listening on :%s\n", listenPort)
	return http.ListenAndServe(":"+listenPort, srv.Router())
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
