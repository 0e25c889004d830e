package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/postforge/internal/config"
	"github.com/ternarybob/postforge/internal/render"
	"github.com/ternarybob/postforge/pkg/sdk"
)

// version is set via -ldflags at build time
var version = "dev"

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

// maxBodyBytes bounds /generate request bodies.
const maxBodyBytes = 1 << 20

// Response types

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the response for /version.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GenerateRequest is the request body for /generate. NDrafts is optional;
// when absent the configured default is used.
type GenerateRequest struct {
	Text           string `json:"text"`
	TargetAudience string `json:"target_audience"`
	NDrafts        *int   `json:"n_drafts,omitempty"`
	RenderHTML     bool   `json:"render_html,omitempty"`
}

// VersionView is a draft with advisory length and hashtag stats.
type VersionView struct {
	sdk.Version
	Stats sdk.Stats `json:"stats"`
}

// GenerateResponse is the response for /generate.
type GenerateResponse struct {
	FinalPost      string        `json:"final_post"`
	AllVersions    []VersionView `json:"all_versions"`
	WorkflowStatus sdk.Status    `json:"workflow_status"`
	FinalPostHTML  string        `json:"final_post_html,omitempty"`
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: version,
		Service: "postforge",
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if strings.TrimSpace(req.TargetAudience) == "" {
		writeError(w, http.StatusBadRequest, "target_audience is required")
		return
	}

	drafts, err := s.cfg.ResolveDrafts(req.NDrafts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if s.cfg.LLM.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LLM.Timeout)
		defer cancel()
	}

	result, err := s.gen.Run(ctx, req.Text, req.TargetAudience, drafts)
	if err != nil {
		s.logger.Error().Err(err).Int("n_drafts", drafts).Msg("Generation failed")
		writeError(w, generateStatus(err), err.Error())
		return
	}

	resp := GenerateResponse{
		FinalPost:      result.FinalPost,
		AllVersions:    make([]VersionView, 0, len(result.AllVersions)),
		WorkflowStatus: result.Status,
	}
	for _, v := range result.AllVersions {
		resp.AllVersions = append(resp.AllVersions, VersionView{Version: v, Stats: sdk.PostStats(v.Content)})
	}

	if req.RenderHTML {
		html, err := render.HTML(result.FinalPost)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to render post HTML")
		} else {
			resp.FinalPostHTML = html
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// generateStatus maps a generation error to an HTTP status.
func generateStatus(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidDraftCount):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
