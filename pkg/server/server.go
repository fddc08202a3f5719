// Package server exposes a computed spectral network over HTTP for
// interactive front ends: full network retrieval, session-scoped incremental
// expansion, on-demand heatmaps and raw spectrum lookup.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sdewaal/specnet/pkg/core"
	"github.com/sdewaal/specnet/pkg/heatmap"
	"github.com/sdewaal/specnet/pkg/network"
	"github.com/sdewaal/specnet/pkg/similarity"
)

// Server serves a computed network state. The underlying data is read-only
// after construction; only session state mutates.
type Server struct {
	matrix   *similarity.Matrix
	spectra  map[string]*core.Spectrum
	elements *network.Elements
	index    *network.EdgeIndex
	topK     int

	mu       sync.Mutex
	sessions map[string][]network.Edge
}

// New builds a server from a similarity matrix, the spectra backing it and
// precomputed network elements. topK caps per-node expansion.
func New(m *similarity.Matrix, spectra []*core.Spectrum, elements *network.Elements, topK int) (*Server, error) {
	if m == nil {
		return nil, fmt.Errorf("similarity matrix is nil")
	}
	if elements == nil {
		return nil, fmt.Errorf("network elements are nil")
	}
	if topK < 1 {
		return nil, fmt.Errorf("top k must be at least 1, got %d", topK)
	}

	byID := make(map[string]*core.Spectrum, len(spectra))
	for _, spec := range spectra {
		byID[spec.FeatureID] = spec
	}

	// The expansion index requires descending-weight order; sort a copy so
	// the served element list keeps its stored order.
	ranked := make([]network.Edge, len(elements.Edges))
	copy(ranked, elements.Edges)
	network.SortEdgesByWeight(ranked)

	return &Server{
		matrix:   m,
		spectra:  byID,
		elements: elements,
		index:    network.NewEdgeIndex(ranked),
		topK:     topK,
		sessions: make(map[string][]network.Edge),
	}, nil
}

// Router builds the chi router for the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/network", s.handleNetwork)
		r.Post("/network/expand", s.handleExpand)
		r.Get("/heatmap", s.handleHeatmap)
		r.Get("/spectra/{id}", s.handleSpectrum)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true,"service":"specnet"}`))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleNetwork(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.elements)
}

type expandRequest struct {
	SessionID string   `json:"session_id"`
	Selected  []string `json:"selected"`
	TopK      int      `json:"top_k,omitempty"`
}

type expandResponse struct {
	SessionID string         `json:"session_id"`
	Edges     []network.Edge `json:"edges"`
}

// handleExpand appends the top edges incident to the selected nodes to the
// session's displayed edge set. The response carries the deduplicated
// accumulated set, so repeated selections do not grow the displayed network.
func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("session_id is required"))
		return
	}
	topK := req.TopK
	if topK == 0 {
		topK = s.topK
	}
	if topK < 1 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("top_k must be at least 1, got %d", topK))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	displayed, ok := s.sessions[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session %s", req.SessionID))
		return
	}

	displayed = append(displayed, s.index.Expand(req.Selected, topK)...)
	displayed = network.DedupeEdges(displayed)
	s.sessions[req.SessionID] = displayed

	writeJSON(w, http.StatusOK, expandResponse{SessionID: req.SessionID, Edges: displayed})
}

// handleHeatmap builds a clustered heatmap for the requested feature ids.
// Query parameters: ids (comma-separated, required), threshold (default 0.7),
// colorblind (bool).
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	idsParam := r.URL.Query().Get("ids")
	if idsParam == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("ids query parameter is required"))
		return
	}

	var ilocs []int
	for _, id := range strings.Split(idsParam, ",") {
		iloc, ok := s.matrix.IndexOf(strings.TrimSpace(id))
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("unknown feature id %s", id))
			return
		}
		ilocs = append(ilocs, iloc)
	}

	threshold := 0.7
	if param := r.URL.Query().Get("threshold"); param != "" {
		parsed, err := strconv.ParseFloat(param, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid threshold %q: %w", param, err))
			return
		}
		threshold = parsed
	}

	colorblind := false
	if param := r.URL.Query().Get("colorblind"); param != "" {
		parsed, err := strconv.ParseBool(param)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid colorblind %q: %w", param, err))
			return
		}
		colorblind = parsed
	}

	doc, err := heatmap.Build(s.matrix, ilocs, threshold, colorblind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSpectrum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	spec, ok := s.spectra[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown feature id %s", id))
		return
	}

	peaks := make([][2]float64, len(spec.Peaks))
	for i, peak := range spec.Peaks {
		peaks[i] = [2]float64{peak.MZ, peak.Intensity}
	}
	writeJSON(w, http.StatusOK, spectrumResponse{
		FeatureID:     spec.FeatureID,
		PrecursorMZ:   spec.PrecursorMZ,
		RetentionTime: spec.RetentionTime,
		Peaks:         peaks,
	})
}

// spectrumResponse mirrors the matchms export entry shape.
type spectrumResponse struct {
	FeatureID     string       `json:"feature_id"`
	PrecursorMZ   float64      `json:"precursor_mz"`
	RetentionTime float64      `json:"retention_time"`
	Peaks         [][2]float64 `json:"peaks_json"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
