package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/settings"
	"github.com/jonathan/slopescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplesDir = "../../config/examples"

// useExampleDocuments points every document at the shipped examples.
func useExampleDocuments(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_DEFAULTS_PATH", filepath.Join(examplesDir, "defaults.example.yaml"))
	t.Setenv("CONFIG_PERSONA_PATH", filepath.Join(examplesDir, "persona.example.json"))
	t.Setenv("CONFIG_SUBS_PATH", filepath.Join(examplesDir, "subs.example.json"))
	t.Setenv("CONFIG_KEYWORDS_PATH", filepath.Join(examplesDir, "keywords.example.yaml"))
}

// execute runs the root command with fresh flag values and captured output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	scoreInput, scoreOutput, scorePretty = "-", "", false
	checkConfigJSON = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

const samplePosts = `{"posts": [
	{"id": "a", "title": "Ski rack worry, skis sliding while buckling boots in the parking lot"},
	{"id": "b", "title": "First season, any tips for car setup?", "subreddit": "skiing"},
	{"id": "c", "title": "What's your favorite ski resort?"}
]}`

func TestScoreCommand_JSONFromStdin(t *testing.T) {
	useExampleDocuments(t)

	out, err := execute(t, samplePosts, "score")
	require.NoError(t, err)

	var resp types.ScoreAndDraftResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, types.CategoryProduct, resp.Results[0].Category)
	assert.Equal(t, types.CategoryGoodwill, resp.Results[1].Category)
	assert.Equal(t, types.CategorySkip, resp.Results[2].Category)
}

func TestScoreCommand_FileToFile(t *testing.T) {
	useExampleDocuments(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "posts.json")
	outPath := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"id": "c", "title": "What's your favorite ski resort?"}]`), 0644))

	out, err := execute(t, "", "score", "--in", in, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Scored 1 post(s)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var resp types.ScoreAndDraftResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "c", resp.Results[0].ID)
}

func TestScoreCommand_Pretty(t *testing.T) {
	useExampleDocuments(t)

	out, err := execute(t, samplePosts, "score", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "Category: product")
	assert.Contains(t, out, "Posts scored: 3")
}

func TestScoreCommand_InvalidPosts(t *testing.T) {
	useExampleDocuments(t)

	_, err := execute(t, `{"posts": [{"id": "x"}]}`, "score")
	require.Error(t, err)

	var batchErr *types.BatchValidationError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "title", batchErr.Errors[0].Field)
}

func TestScoreCommand_BadConfigurationFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("patterns:\n  problem: [\"(bad\"]\n"), 0644))
	useExampleDocuments(t)
	t.Setenv("CONFIG_KEYWORDS_PATH", bad)

	_, err := execute(t, samplePosts, "score")
	var cfgErr *settings.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, settings.DocKeywords, cfgErr.Document)
}

func TestCheckConfigCommand(t *testing.T) {
	useExampleDocuments(t)

	out, err := execute(t, "", "check-config")
	require.NoError(t, err)
	assert.Contains(t, out, "SCORING CONFIGURATION")
	assert.Contains(t, out, "persona.example.json")

	out, err = execute(t, "", "check-config", "--json")
	require.NoError(t, err)
	var sum scoring.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "slopeScout", sum.Persona)
	assert.Equal(t, 0.5, sum.Thresholds.Product)
}

func TestLoadSettings_FileOverridesEnv(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"env": "prod", "link_cooldown_hours": 12}`), 0644))

	configPath = path
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 12, cfg.LinkCooldownHours)
	assert.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	assert.Equal(t, 3, cfg.MaxCommentsPerSubPerDay)
}

func TestLoadSettings_InvalidQuietHours(t *testing.T) {
	t.Setenv("QUIET_HOURS", "late")
	configPath = ""

	_, err := loadSettings()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiet_hours")
}

func TestParsePosts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr string
	}{
		{name: "envelope", input: samplePosts, wantLen: 3},
		{name: "bare array", input: `[{"id": "a", "title": "t"}]`, wantLen: 1},
		{name: "empty envelope", input: `{"posts": []}`, wantLen: 0},
		{name: "blank", input: "  \n", wantErr: "no posts"},
		{name: "malformed", input: `{"posts": [`, wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := parsePosts([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, posts, tt.wantLen)
		})
	}
}
