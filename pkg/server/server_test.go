package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/network"
	"github.com/sdewaal/specnet/pkg/similarity"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	ids := []string{"f1", "f2", "f3", "f4"}
	values := []float64{
		1, 0.9, 0.5, 0.2,
		0.9, 1, 0.6, 0.3,
		0.5, 0.6, 1, 0.8,
		0.2, 0.3, 0.8, 1,
	}
	m, err := similarity.New(ids, values)
	if err != nil {
		t.Fatalf("building matrix: %v", err)
	}

	spectra := make([]*core.Spectrum, 0, len(ids))
	for i, id := range ids {
		spectra = append(spectra, &core.Spectrum{
			FeatureID:   id,
			PrecursorMZ: 100 + float64(i),
			Peaks:       []core.Peak{{MZ: 50, Intensity: 1}},
		})
	}

	edges, err := network.GenerateEdgeList(m, 2)
	if err != nil {
		t.Fatalf("building edges: %v", err)
	}
	elements := &network.Elements{Edges: edges}

	srv, err := New(m, spectra, elements, 2)
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	return srv
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := testServer(t).Router()
	rec := doRequest(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestNetworkEndpoint(t *testing.T) {
	router := testServer(t).Router()
	rec := doRequest(t, router, http.MethodGet, "/api/network", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var elements network.Elements
	if err := json.Unmarshal(rec.Body.Bytes(), &elements); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(elements.Edges) == 0 {
		t.Fatal("expected edges in network response")
	}
}

func TestExpandAccumulatesWithoutDuplicates(t *testing.T) {
	router := testServer(t).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	sessionID := created["session_id"]
	if sessionID == "" {
		t.Fatal("expected a session id")
	}

	expand := func(selected []string) expandResponse {
		rec := doRequest(t, router, http.MethodPost, "/api/network/expand", expandRequest{
			SessionID: sessionID,
			Selected:  selected,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var resp expandResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding expand response: %v", err)
		}
		return resp
	}

	first := expand([]string{"f1"})
	if len(first.Edges) == 0 {
		t.Fatal("expected edges after first expansion")
	}

	// Repeating the same selection must not grow the displayed set.
	second := expand([]string{"f1"})
	if len(second.Edges) != len(first.Edges) {
		t.Errorf("repeated expansion grew edges from %d to %d", len(first.Edges), len(second.Edges))
	}

	seen := make(map[string]bool)
	for _, edge := range second.Edges {
		if seen[edge.Data.ID] {
			t.Errorf("duplicate edge %s in displayed set", edge.Data.ID)
		}
		seen[edge.Data.ID] = true
	}
}

func TestExpandReturnsStrongestEdges(t *testing.T) {
	// f3's weakest incident edge (f1-to-f3, 0.3) appears before its
	// strongest (f3-to-f4, 0.7) in the generated edge list, so the index
	// must rank by weight rather than list order.
	ids := []string{"f1", "f2", "f3", "f4"}
	values := []float64{
		1, 0.9, 0.3, 0.2,
		0.9, 1, 0.4, 0.1,
		0.3, 0.4, 1, 0.7,
		0.2, 0.1, 0.7, 1,
	}
	m, err := similarity.New(ids, values)
	if err != nil {
		t.Fatalf("building matrix: %v", err)
	}
	edges, err := network.GenerateEdgeList(m, 2)
	if err != nil {
		t.Fatalf("building edges: %v", err)
	}
	srv, err := New(m, nil, &network.Elements{Edges: edges}, 2)
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	router := srv.Router()

	rec := doRequest(t, router, http.MethodPost, "/api/sessions", nil)
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/network/expand", expandRequest{
		SessionID: created["session_id"],
		Selected:  []string{"f3"},
		TopK:      1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp expandResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding expand response: %v", err)
	}
	if len(resp.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(resp.Edges))
	}
	if got := resp.Edges[0].Data.Weight; got != 0.7 {
		t.Errorf("expansion weight = %v, want the strongest incident edge 0.7", got)
	}
}

func TestExpandUnknownSession(t *testing.T) {
	router := testServer(t).Router()
	rec := doRequest(t, router, http.MethodPost, "/api/network/expand", expandRequest{
		SessionID: "nope",
		Selected:  []string{"f1"},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHeatmapEndpoint(t *testing.T) {
	router := testServer(t).Router()
	rec := doRequest(t, router, http.MethodGet, "/api/heatmap?ids=f1,f2,f3&threshold=0.6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var doc struct {
		IDs    []string    `json:"ids"`
		Values [][]float64 `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decoding heatmap: %v", err)
	}
	if len(doc.IDs) != 3 || len(doc.Values) != 3 {
		t.Fatalf("got %d ids, %d rows, want 3 each", len(doc.IDs), len(doc.Values))
	}

	rec = doRequest(t, router, http.MethodGet, "/api/heatmap?ids=f1,unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown id", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/heatmap", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing ids", rec.Code)
	}
}

func TestSpectrumEndpoint(t *testing.T) {
	router := testServer(t).Router()
	rec := doRequest(t, router, http.MethodGet, "/api/spectra/f2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		FeatureID   string       `json:"feature_id"`
		PrecursorMZ float64      `json:"precursor_mz"`
		Peaks       [][2]float64 `json:"peaks_json"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding spectrum: %v", err)
	}
	if resp.FeatureID != "f2" || resp.PrecursorMZ != 101 {
		t.Errorf("unexpected spectrum: %+v", resp)
	}
	if len(resp.Peaks) != 1 {
		t.Errorf("got %d peaks, want 1", len(resp.Peaks))
	}

	rec = doRequest(t, router, http.MethodGet, "/api/spectra/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
