// Package sqlite provides SQLite database export for spectral networks
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/network"
	_ "github.com/mattn/go-sqlite3"
)

// Date format for HeaderTable (ISO 8601)
const headerDateFormat = "2006-01-02"

// Writer handles writing spectra and network elements to SQLite database files
type Writer struct {
	db           *sql.DB
	outputPath   string
	spectrumStmt *sql.Stmt
	nodeStmt     *sql.Stmt
	edgeStmt     *sql.Stmt
	spectrumID   int
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		spectrumID: 1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS SpectrumTable (
		SpectrumId INTEGER PRIMARY KEY,
		FeatureId TEXT UNIQUE NOT NULL,
		PrecursorMZ DOUBLE,
		RetentionTime DOUBLE,
		NumPeaks INTEGER,
		SourceFile TEXT,
		SourceFormat TEXT,
		blobMass BLOB,
		blobIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS NodeTable (
		FeatureId TEXT PRIMARY KEY,
		Label TEXT,
		GroupName TEXT,
		X DOUBLE,
		Y DOUBLE,
		Size DOUBLE,
		Log2Ratio TEXT,
		EffectDirection TEXT
	);

	CREATE TABLE IF NOT EXISTS EdgeTable (
		EdgeId TEXT PRIMARY KEY,
		Source TEXT NOT NULL,
		Target TEXT NOT NULL,
		Weight DOUBLE,
		Label TEXT,
		Width INTEGER
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		Description TEXT,
		TopK INTEGER,
		SimilarityMeasure TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.spectrumStmt, err = w.db.Prepare(`
		INSERT INTO SpectrumTable (
			SpectrumId, FeatureId, PrecursorMZ, RetentionTime, NumPeaks,
			SourceFile, SourceFormat, blobMass, blobIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare spectrum statement: %w", err)
	}

	w.nodeStmt, err = w.db.Prepare(`
		INSERT INTO NodeTable (
			FeatureId, Label, GroupName, X, Y, Size, Log2Ratio, EffectDirection
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}

	w.edgeStmt, err = w.db.Prepare(`
		INSERT INTO EdgeTable (
			EdgeId, Source, Target, Weight, Label, Width
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}

	return nil
}

// WriteSpectrum writes a single spectrum to the database
func (w *Writer) WriteSpectrum(spec *core.Spectrum) error {
	// Ensure peaks are sorted
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}

	// Encode peaks as binary blobs (little-endian float64)
	mzBlob := encodePeaksFloat64(spec.Peaks, true)   // m/z values
	intBlob := encodePeaksFloat64(spec.Peaks, false) // intensity values

	_, err := w.spectrumStmt.Exec(
		w.spectrumID,
		spec.FeatureID,
		spec.PrecursorMZ,
		spec.RetentionTime,
		len(spec.Peaks),
		spec.SourceFile,
		spec.SourceFormat,
		mzBlob,
		intBlob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert spectrum %s: %w", spec.FeatureID, err)
	}

	w.spectrumID++
	return nil
}

// WriteNode writes a single network node to the database
func (w *Writer) WriteNode(node network.Node) error {
	_, err := w.nodeStmt.Exec(
		node.Data.ID,
		node.Data.Label,
		node.Data.Group,
		node.Position.X,
		node.Position.Y,
		node.Data.Size,
		node.Data.Log2Ratio,
		node.Data.EffectDirection,
	)
	if err != nil {
		return fmt.Errorf("failed to insert node %s: %w", node.Data.ID, err)
	}
	return nil
}

// WriteEdge writes a single network edge to the database
func (w *Writer) WriteEdge(edge network.Edge) error {
	_, err := w.edgeStmt.Exec(
		edge.Data.ID,
		edge.Data.Source,
		edge.Data.Target,
		edge.Data.Weight,
		edge.Data.Label,
		network.WidthForScore(edge.Data.Weight),
	)
	if err != nil {
		return fmt.Errorf("failed to insert edge %s: %w", edge.Data.ID, err)
	}
	return nil
}

// WriteElements writes a full node and edge set to the database
func (w *Writer) WriteElements(elements *network.Elements) error {
	for _, node := range elements.Nodes {
		if err := w.WriteNode(node); err != nil {
			return err
		}
	}
	for _, edge := range elements.Edges {
		if err := w.WriteEdge(edge); err != nil {
			return err
		}
	}
	return nil
}

// encodePeaksFloat64 encodes peak data as little-endian float64 blob
func encodePeaksFloat64(peaks []core.Peak, useMZ bool) []byte {
	buf := make([]byte, len(peaks)*8)
	for i, peak := range peaks {
		var value float64
		if useMZ {
			value = peak.MZ
		} else {
			value = peak.Intensity
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// DecodePeakBlob decodes a little-endian float64 blob back into values
func DecodePeakBlob(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}

// Finalize writes the header table and closes the database
func (w *Writer) Finalize(description string, topK int, measure string) error {
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, Description, TopK, SimilarityMeasure)
		VALUES (?, ?, ?, ?, ?)
	`, 1, time.Now().Format(headerDateFormat), description, topK, measure)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Close prepared statements
	if w.spectrumStmt != nil {
		w.spectrumStmt.Close()
	}
	if w.nodeStmt != nil {
		w.nodeStmt.Close()
	}
	if w.edgeStmt != nil {
		w.edgeStmt.Close()
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database without writing a header row
func (w *Writer) Close() error {
	if w.spectrumStmt != nil {
		w.spectrumStmt.Close()
	}
	if w.nodeStmt != nil {
		w.nodeStmt.Close()
	}
	if w.edgeStmt != nil {
		w.edgeStmt.Close()
	}
	return w.db.Close()
}
