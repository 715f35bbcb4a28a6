package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/settings"
	"github.com/jonathan/slopescout/internal/types"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ConfigResponse exposes non-secret runtime settings for downstream services
type ConfigResponse struct {
	Subreddits              []string        `json:"subreddits"`
	PollIntervalSeconds     int             `json:"poll_interval_seconds"`
	MaxCommentsPerSubPerDay int             `json:"max_comments_per_sub_per_day"`
	LinkCooldownHours       int             `json:"link_cooldown_hours"`
	QuietHours              string          `json:"quiet_hours"`
	Env                     string          `json:"env"`
	UserAgentSet            bool            `json:"user_agent_set"`
	OpenAIKeyPresent        bool            `json:"openai_key_present"`
	Scoring                 scoring.Summary `json:"scoring"`
}

// ReloadResponse is the body of a successful POST /config/reload
type ReloadResponse struct {
	Reloaded bool            `json:"reloaded"`
	Scoring  scoring.Summary `json:"scoring"`
}

// handleHealth is the readiness probe
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{OK: true, Service: serviceName, Version: Version})
}

// handleConfig returns non-secret settings plus the live snapshot summary
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	summary := s.engine.Snapshot().Summary()

	// SUBREDDITS from the environment wins; otherwise report the subs document.
	subreddits := s.settings.Subreddits
	if len(subreddits) == 0 {
		subreddits = summary.Subreddits
	}

	s.jsonResponse(w, http.StatusOK, ConfigResponse{
		Subreddits:              subreddits,
		PollIntervalSeconds:     s.settings.PollIntervalSeconds,
		MaxCommentsPerSubPerDay: s.settings.MaxCommentsPerSubPerDay,
		LinkCooldownHours:       s.settings.LinkCooldownHours,
		QuietHours:              s.settings.QuietHours,
		Env:                     s.settings.Env,
		UserAgentSet:            s.settings.UserAgentSet(),
		OpenAIKeyPresent:        s.settings.OpenAIAPIKey != "",
		Scoring:                 summary,
	})
}

// handleScoreAndDraft scores a batch of posts and returns one result per post, in order
func (s *Server) handleScoreAndDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req types.ScoreAndDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	posts, err := types.ValidatePosts(req.Posts)
	if err != nil {
		s.handleError(w, err)
		return
	}

	results, err := s.engine.ScoreBatch(r.Context(), posts)
	if err != nil {
		// Only cancellation reaches here; the client has gone away.
		log.Printf("[score] batch of %d aborted: %v", len(posts), err)
		s.errorResponse(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ScoreAndDraftResponse{Results: results})
}

// handleReload rebuilds the snapshot from disk. On failure the live snapshot is kept.
func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	snap, err := settings.Load(s.paths)
	if err != nil {
		log.Printf("[settings] reload rejected, keeping previous configuration: %v", err)
		s.handleError(w, err)
		return
	}

	s.engine.Swap(snap)
	log.Printf("[settings] configuration reloaded via API")
	s.jsonResponse(w, http.StatusOK, ReloadResponse{Reloaded: true, Scoring: snap.Summary()})
}

// handleError maps typed errors to a status and a structured body
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var batchErr *types.BatchValidationError
	if errors.As(err, &batchErr) {
		details := make([]ErrorDetail, 0, len(batchErr.Errors))
		for _, e := range batchErr.Errors {
			details = append(details, ErrorDetail{Index: intPtr(e.Index), ID: e.ID, Field: e.Field, Message: e.Message})
		}
		s.jsonResponse(w, status, ErrorResponse{Error: "invalid posts", Details: details})
		return
	}

	var cfgErr *settings.ConfigurationError
	if errors.As(err, &cfgErr) {
		details := make([]ErrorDetail, 0, len(cfgErr.Fields))
		for _, f := range cfgErr.Fields {
			details = append(details, ErrorDetail{Field: f.Field, Message: f.Message})
		}
		s.jsonResponse(w, status, ErrorResponse{
			Error:    "configuration error",
			Document: cfgErr.Document,
			Path:     cfgErr.Path,
			Message:  cfgErr.Message,
			Details:  details,
		})
		return
	}

	s.errorResponse(w, status, err.Error())
}

func intPtr(i int) *int { return &i }
