// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/internal/synth"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// PaperResponse wraps a single-paper lookup.
type PaperResponse struct {
	Paper types.PubMedPaper `json:"paper"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if !s.decode(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}

	out, err := s.search.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out.Response)
}

func (s *Server) handlePubMed(w http.ResponseWriter, r *http.Request) {
	if s.papers == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "PubMed lookup is not configured"})
		return
	}
	var req search.PaperRequest
	if !s.decode(w, r, &req) {
		return
	}

	paper, err := s.papers.Lookup(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PaperResponse{Paper: paper})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if s.synth == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "synthesis backend is not configured"})
		return
	}
	var req synth.Request
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.synth.Synthesize(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// decode reads a JSON body into v. It writes a 400 and returns false on
// malformed or oversized input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatusOf(err)
	msg := err.Error()
	if errors.CodeOf(err) == errors.CodeInternal {
		s.logger.Error("unhandled error", zap.Error(err))
		msg = "internal server error"
	}
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
