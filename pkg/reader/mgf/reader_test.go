package mgf

import (
	"strings"
	"testing"
)

const sampleMGF = `# exported features
BEGIN IONS
FEATURE_ID=f1
PEPMASS=400.2 12345.0
RTINSECONDS=120.5
CHARGE=1+
80.2 1.0
150.1 0.3
220.7 0.05
END IONS

BEGIN IONS
SCANS=42
PEPMASS=310.9
90.4 0.8
END IONS
`

func TestReaderParsesBlocks(t *testing.T) {
	reader := NewReader(strings.NewReader(sampleMGF))

	if !reader.Next() {
		t.Fatalf("expected first spectrum, got error: %v", reader.Err())
	}
	spec := reader.Spectrum()
	if spec.FeatureID != "f1" {
		t.Errorf("FeatureID = %q, want f1", spec.FeatureID)
	}
	if spec.PrecursorMZ != 400.2 {
		t.Errorf("PrecursorMZ = %v, want 400.2", spec.PrecursorMZ)
	}
	if spec.RetentionTime != 120.5 {
		t.Errorf("RetentionTime = %v, want 120.5", spec.RetentionTime)
	}
	if len(spec.Peaks) != 3 {
		t.Fatalf("got %d peaks, want 3", len(spec.Peaks))
	}
	if spec.Peaks[2].MZ != 220.7 || spec.Peaks[2].Intensity != 0.05 {
		t.Errorf("third peak = %+v, want {220.7 0.05}", spec.Peaks[2])
	}

	if !reader.Next() {
		t.Fatalf("expected second spectrum, got error: %v", reader.Err())
	}
	// SCANS serves as the identifier when FEATURE_ID is absent.
	if got := reader.Spectrum().FeatureID; got != "42" {
		t.Errorf("FeatureID = %q, want 42", got)
	}

	if reader.Next() {
		t.Fatal("expected end of stream")
	}
	if err := reader.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReaderGeneratesFallbackID(t *testing.T) {
	input := "BEGIN IONS\nPEPMASS=100.0\n50.0 1.0\nEND IONS\n"
	reader := NewReader(strings.NewReader(input))
	if !reader.Next() {
		t.Fatalf("expected spectrum, got error: %v", reader.Err())
	}
	if got := reader.Spectrum().FeatureID; got != "scan_1" {
		t.Errorf("FeatureID = %q, want scan_1", got)
	}
}

func TestReaderSortsPeaks(t *testing.T) {
	input := "BEGIN IONS\nFEATURE_ID=f1\nPEPMASS=100.0\n300.0 0.2\n100.0 1.0\n200.0 0.5\nEND IONS\n"
	reader := NewReader(strings.NewReader(input))
	if !reader.Next() {
		t.Fatalf("expected spectrum, got error: %v", reader.Err())
	}
	spec := reader.Spectrum()
	if len(spec.Peaks) != 3 {
		t.Fatalf("got %d peaks, want 3", len(spec.Peaks))
	}
	for i, want := range []float64{100.0, 200.0, 300.0} {
		if spec.Peaks[i].MZ != want {
			t.Errorf("peak %d m/z = %v, want %v", i, spec.Peaks[i].MZ, want)
		}
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("sorted spectrum failed validation: %v", err)
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated block", "BEGIN IONS\nPEPMASS=100.0\n50.0 1.0\n"},
		{"bad peak line", "BEGIN IONS\nPEPMASS=100.0\nfifty one\nEND IONS\n"},
		{"bad pepmass", "BEGIN IONS\nPEPMASS=heavy\n50.0 1.0\nEND IONS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewReader(strings.NewReader(tt.input))
			if reader.Next() {
				t.Fatal("expected failure")
			}
			if reader.Err() == nil {
				t.Fatal("expected error to be recorded")
			}
		})
	}
}

func TestReadAll(t *testing.T) {
	spectra, err := ReadAll(strings.NewReader(sampleMGF))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spectra) != 2 {
		t.Fatalf("got %d spectra, want 2", len(spectra))
	}
}
