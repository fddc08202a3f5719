package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/network"
	"github.com/sdewaal/specnet/pkg/reader/mgf"
	"github.com/sdewaal/specnet/pkg/reader/mmjson"
	"github.com/sdewaal/specnet/pkg/similarity"
)

// spectrumReader is the streaming access shared by all input formats
type spectrumReader interface {
	Next() bool
	Spectrum() *core.Spectrum
	Err() error
}

// detectFormat resolves the input format from the flag or the file extension
func detectFormat(path, format string) (string, error) {
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "mmjson"
		case ".mgf":
			format = "mgf"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}

	format = strings.ToLower(format)
	if format != "mmjson" && format != "mgf" {
		return "", fmt.Errorf("invalid input format '%s', must be mmjson or mgf", format)
	}
	return format, nil
}

// loadSpectra reads all spectra from a file, skipping invalid entries with a
// warning the way conversion pipelines do
func loadSpectra(path, format string) ([]*core.Spectrum, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file does not exist: %s", path)
	}

	format, err := detectFormat(path, format)
	if err != nil {
		return nil, err
	}

	inFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	var reader spectrumReader
	switch format {
	case "mmjson":
		reader = mmjson.NewReader(inFile)
	case "mgf":
		reader = mgf.NewReader(inFile)
	}

	var spectra []*core.Spectrum
	skipped := 0
	for reader.Next() {
		spec := reader.Spectrum()
		spec.SourceFile = path

		if err := spec.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid spectrum %s: %v\n", spec.FeatureID, err)
			skipped++
			continue
		}
		spectra = append(spectra, spec)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d invalid spectra\n", skipped)
	}
	if len(spectra) == 0 {
		return nil, fmt.Errorf("no valid spectra in %s", path)
	}

	return spectra, nil
}

// loadMatrix reads a similarity matrix JSON file
func loadMatrix(path string) (*similarity.Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix file: %w", err)
	}
	defer file.Close()

	m, err := similarity.ReadMatrixJSON(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix %s: %w", path, err)
	}
	return m, nil
}

// csvRows reads a CSV file line by line, skipping the header and empty lines
func csvRows(path string, minFields int, handle func(lineNum int, fields []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	// Skip header line
	if scanner.Scan() {
		// header
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < minFields {
			return fmt.Errorf("line %d: expected %d fields, got %d", lineNum, minFields, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if err := handle(lineNum, fields); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// loadCoordinatesCSV reads feature_id,x,y rows and aligns them with the
// spectra ordering. Every feature must have a coordinate.
func loadCoordinatesCSV(path string, spectra []*core.Spectrum) ([]network.Coordinate, error) {
	byID := make(map[string]network.Coordinate)
	err := csvRows(path, 3, func(lineNum int, fields []string) error {
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid x value '%s': %w", lineNum, fields[1], err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid y value '%s': %w", lineNum, fields[2], err)
		}
		byID[fields[0]] = network.Coordinate{X: x, Y: y}
		return nil
	})
	if err != nil {
		return nil, err
	}

	coords := make([]network.Coordinate, len(spectra))
	for i, spec := range spectra {
		coord, ok := byID[spec.FeatureID]
		if !ok {
			return nil, fmt.Errorf("no coordinate for feature %s", spec.FeatureID)
		}
		coords[i] = coord
	}
	return coords, nil
}

// loadGroupsCSV reads feature_id,group rows and aligns them with the spectra
// ordering. Features without an assignment fall into group 0.
func loadGroupsCSV(path string, spectra []*core.Spectrum) ([]int, error) {
	byID := make(map[string]int)
	err := csvRows(path, 2, func(lineNum int, fields []string) error {
		group, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: invalid group value '%s': %w", lineNum, fields[1], err)
		}
		byID[fields[0]] = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	groups := make([]int, len(spectra))
	for i, spec := range spectra {
		groups[i] = byID[spec.FeatureID]
	}
	return groups, nil
}

// loadStatsCSV reads feature_id,log2ratio,effect rows and aligns them with
// the spectra ordering. Node size is derived from the log2 ratio; features
// without a row keep display defaults.
func loadStatsCSV(path string, spectra []*core.Spectrum) ([]network.NodeStats, error) {
	type statRow struct {
		log2Ratio string
		effect    string
	}
	byID := make(map[string]statRow)
	err := csvRows(path, 3, func(lineNum int, fields []string) error {
		byID[fields[0]] = statRow{log2Ratio: fields[1], effect: fields[2]}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := make([]network.NodeStats, len(spectra))
	for i, spec := range spectra {
		row, ok := byID[spec.FeatureID]
		if !ok {
			stats[i] = network.NodeStats{Size: 25, Log2Ratio: "none", EffectDirection: "none"}
			continue
		}
		stats[i] = network.NodeStats{
			Size:            network.SizeForLog2Ratio(row.log2Ratio),
			Log2Ratio:       row.log2Ratio,
			EffectDirection: row.effect,
		}
	}
	return stats, nil
}
