package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/slopescout/internal/config"
	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/server/ratelimit"
	"github.com/jonathan/slopescout/internal/settings"
	"github.com/jonathan/slopescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer builds a server over built-in defaults with documents rooted at dir.
func newTestServer(t *testing.T, dir string, rl *ratelimit.Config) *Server {
	t.Helper()
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	cfg := config.Default()
	s, err := New(Config{
		Port:     0,
		Settings: &cfg,
		Engine:   scoring.NewEngine(scoring.DefaultSnapshot(), 4),
		Paths: settings.Paths{
			Defaults: settings.Location{Path: filepath.Join(dir, "defaults.yaml")},
			Persona:  settings.Location{Path: filepath.Join(dir, "persona.json")},
			Subs:     settings.Location{Path: filepath.Join(dir, "subs.json")},
			Keywords: settings.Location{Path: filepath.Join(dir, "keywords.yaml")},
		},
		RateLimit: rl,
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, HealthResponse{OK: true, Service: "brain", Version: Version}, resp)
}

func TestConfigEndpoint(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)
	s.settings.Subreddits = []string{"skiing"}
	s.settings.OpenAIAPIKey = "sk-secret"

	w := do(t, s, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-secret")

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"skiing"}, resp.Subreddits)
	assert.Equal(t, 300, resp.PollIntervalSeconds)
	assert.Equal(t, 3, resp.MaxCommentsPerSubPerDay)
	assert.Equal(t, 96, resp.LinkCooldownHours)
	assert.Equal(t, "01:00-06:30", resp.QuietHours)
	assert.Equal(t, "dev", resp.Env)
	assert.False(t, resp.UserAgentSet)
	assert.True(t, resp.OpenAIKeyPresent)
	assert.Equal(t, 0.5, resp.Scoring.Thresholds.Product)
	assert.NotZero(t, resp.Scoring.Patterns["problem"])
}

func TestScoreAndDraft(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	body := `{"posts": [
		{"id": "a", "title": "Ski rack worry, skis sliding while buckling boots in the parking lot"},
		{"id": "b", "title": "First season, any tips for car setup?", "subreddit": "skiing"},
		{"id": "c", "title": "What's your favorite ski resort?", "selftext": null}
	]}`

	w := do(t, s, http.MethodPost, "/score_and_draft", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.ScoreAndDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "a", resp.Results[0].ID)
	assert.Equal(t, types.CategoryProduct, resp.Results[0].Category)
	assert.Equal(t, 0.5, resp.Results[0].Score)
	assert.True(t, resp.Results[0].Draft.IncludeLink)

	assert.Equal(t, "b", resp.Results[1].ID)
	assert.Equal(t, types.CategoryGoodwill, resp.Results[1].Category)
	assert.False(t, resp.Results[1].Draft.IncludeLink)
	assert.Nil(t, resp.Results[1].RiskNotes)

	assert.Equal(t, "c", resp.Results[2].ID)
	assert.Equal(t, types.CategorySkip, resp.Results[2].Category)
	assert.Equal(t, "", resp.Results[2].Draft.Text)
}

func TestScoreAndDraft_SelftextIsBody(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	w := do(t, s, http.MethodPost, "/score_and_draft",
		`{"posts": [{"id": "s", "title": "Roof box question", "selftext": "thinking about a magnetic holder"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ScoreAndDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0.2, resp.Results[0].Score)
}

func TestScoreAndDraft_EmptyBatch(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	w := do(t, s, http.MethodPost, "/score_and_draft", `{"posts": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results": []}`, w.Body.String())
}

func TestScoreAndDraft_InvalidPosts(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	body := `{"posts": [
		{"id": "ok", "title": "fine"},
		{"id": "no-title"},
		{"title": "no id"}
	]}`

	w := do(t, s, http.MethodPost, "/score_and_draft", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid posts", resp.Error)
	require.Len(t, resp.Details, 2)

	require.NotNil(t, resp.Details[0].Index)
	assert.Equal(t, 1, *resp.Details[0].Index)
	assert.Equal(t, "no-title", resp.Details[0].ID)
	assert.Equal(t, "title", resp.Details[0].Field)
	assert.Equal(t, "is required", resp.Details[0].Message)

	require.NotNil(t, resp.Details[1].Index)
	assert.Equal(t, 2, *resp.Details[1].Index)
	assert.Equal(t, "id", resp.Details[1].Field)
}

func TestScoreAndDraft_MalformedBody(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	w := do(t, s, http.MethodPost, "/score_and_draft", `{"posts": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir, nil)
	before := s.engine.Snapshot()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "defaults.yaml"),
		[]byte("thresholds:\n  product_threshold: 0.8\n"), 0o644))

	w := do(t, s, http.MethodPost, "/config/reload", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Reloaded)
	assert.Equal(t, 0.8, resp.Scoring.Thresholds.Product)
	assert.NotSame(t, before, s.engine.Snapshot())
	assert.Equal(t, 0.8, s.engine.Snapshot().Thresholds.Product)
}

func TestReload_BadDocumentKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir, nil)
	before := s.engine.Snapshot()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "keywords.yaml"),
		[]byte("patterns:\n  problem:\n    - \"(unclosed\"\n"), 0o644))

	w := do(t, s, http.MethodPost, "/config/reload", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "configuration error", resp.Error)
	assert.Equal(t, settings.DocKeywords, resp.Document)
	assert.Same(t, before, s.engine.Snapshot())
}

func TestMiddleware_RequestID(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	w := do(t, s, http.MethodGet, "/health", "")
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
}

func TestMiddleware_CORSPreflight(t *testing.T) {
	s := newTestServer(t, t.TempDir(), nil)

	w := do(t, s, http.MethodOptions, "/score_and_draft", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST"))
}

func TestMiddleware_RateLimit(t *testing.T) {
	s := newTestServer(t, t.TempDir(), &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
	})

	for i := 0; i < 2; i++ {
		w := do(t, s, http.MethodGet, "/config", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(t, s, http.MethodGet, "/config", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// health stays reachable
	w = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
