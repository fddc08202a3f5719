package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/network"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("creating writer: %v", err)
	}

	spec := &core.Spectrum{
		FeatureID:     "f1",
		PrecursorMZ:   400.2,
		RetentionTime: 120.5,
		SourceFormat:  "mmjson",
		Peaks: []core.Peak{
			{MZ: 80.2, Intensity: 1.0},
			{MZ: 150.1, Intensity: 0.3},
		},
	}
	if err := w.WriteSpectrum(spec); err != nil {
		t.Fatalf("writing spectrum: %v", err)
	}

	elements := &network.Elements{
		Nodes: []network.Node{{
			Data:     network.NodeData{ID: "f1", Label: "f1; 400.2", Size: 25, Group: "group_0"},
			Position: network.Position{X: 12.5, Y: -3.75},
		}},
		Edges: []network.Edge{{
			Data: network.EdgeData{Source: "f1", Target: "f2", Weight: 0.9, Label: "0.9", ID: "f1-to-f2"},
		}},
	}
	if err := w.WriteElements(elements); err != nil {
		t.Fatalf("writing elements: %v", err)
	}

	if err := w.Finalize("test export", 15, "modified_cosine"); err != nil {
		t.Fatalf("finalizing: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer db.Close()

	var numPeaks int
	var blobMass []byte
	err = db.QueryRow(
		`SELECT NumPeaks, blobMass FROM SpectrumTable WHERE FeatureId = ?`, "f1",
	).Scan(&numPeaks, &blobMass)
	if err != nil {
		t.Fatalf("querying spectrum: %v", err)
	}
	if numPeaks != 2 {
		t.Errorf("NumPeaks = %d, want 2", numPeaks)
	}
	masses, err := DecodePeakBlob(blobMass)
	if err != nil {
		t.Fatalf("decoding blob: %v", err)
	}
	if len(masses) != 2 || masses[0] != 80.2 || masses[1] != 150.1 {
		t.Errorf("decoded masses = %v, want [80.2 150.1]", masses)
	}

	var width int
	err = db.QueryRow(`SELECT Width FROM EdgeTable WHERE EdgeId = ?`, "f1-to-f2").Scan(&width)
	if err != nil {
		t.Fatalf("querying edge: %v", err)
	}
	if width != network.WidthForScore(0.9) {
		t.Errorf("Width = %d, want %d", width, network.WidthForScore(0.9))
	}

	var measure string
	var topK int
	err = db.QueryRow(`SELECT SimilarityMeasure, TopK FROM HeaderTable`).Scan(&measure, &topK)
	if err != nil {
		t.Fatalf("querying header: %v", err)
	}
	if measure != "modified_cosine" || topK != 15 {
		t.Errorf("header = (%s, %d), want (modified_cosine, 15)", measure, topK)
	}
}

func TestDecodePeakBlobRejectsBadLength(t *testing.T) {
	if _, err := DecodePeakBlob(make([]byte, 7)); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}
