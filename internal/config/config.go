// Package config provides process configuration loading and validation for slopescout.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/slopescout/internal/settings"
)

// DefaultUserAgent is the placeholder user agent; it counts as "not set".
const DefaultUserAgent = "slopeScout/0.1 (by u/<your_username>)"

// Config represents process settings. Values come from the environment (after .env is
// loaded) and may be overridden by an optional JSON file.
type Config struct {
	// Runtime
	Env     string `json:"env,omitempty"`
	Port    int    `json:"port,omitempty"`
	Workers int    `json:"workers,omitempty"` // Batch fan-out; 0 means GOMAXPROCS

	// Reddit / downstream settings exposed on /config
	UserAgent               string   `json:"user_agent,omitempty"`
	OpenAIAPIKey            string   `json:"-"`
	Subreddits              []string `json:"subreddits,omitempty"`
	PollIntervalSeconds     int      `json:"poll_interval_seconds,omitempty"`
	MaxCommentsPerSubPerDay int      `json:"max_comments_per_sub_per_day,omitempty"`
	LinkCooldownHours       int      `json:"link_cooldown_hours,omitempty"`
	QuietHours              string   `json:"quiet_hours,omitempty"` // "HH:MM-HH:MM"

	// Scoring documents
	DefaultsPath string `json:"defaults_path,omitempty"`
	PersonaPath  string `json:"persona_path,omitempty"`
	SubsPath     string `json:"subs_path,omitempty"`
	KeywordsPath string `json:"keywords_path,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Env:                     "dev",
		Port:                    8000,
		UserAgent:               DefaultUserAgent,
		PollIntervalSeconds:     300,
		MaxCommentsPerSubPerDay: 3,
		LinkCooldownHours:       96,
		QuietHours:              "01:00-06:30",
		DefaultsPath:            "config/defaults.yaml",
		PersonaPath:             "config/persona.json",
		SubsPath:                "config/subs.json",
		KeywordsPath:            "config/keywords.yaml",
	}
}

// FromEnv builds a Config from environment variables on top of Default. A variable that
// is set but cannot be parsed is an error rather than silently ignored.
func FromEnv() (*Config, error) {
	cfg := Default()

	cfg.Env = getEnvString("ENV", cfg.Env)
	cfg.UserAgent = getEnvString("REDDIT_USER_AGENT", cfg.UserAgent)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Subreddits = parseList(os.Getenv("SUBREDDITS"))
	cfg.QuietHours = getEnvString("QUIET_HOURS", cfg.QuietHours)

	cfg.DefaultsPath = getEnvString("CONFIG_DEFAULTS_PATH", cfg.DefaultsPath)
	cfg.PersonaPath = getEnvString("CONFIG_PERSONA_PATH", cfg.PersonaPath)
	cfg.SubsPath = getEnvString("CONFIG_SUBS_PATH", cfg.SubsPath)
	cfg.KeywordsPath = getEnvString("CONFIG_KEYWORDS_PATH", cfg.KeywordsPath)

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &cfg.Port},
		{"SCORING_WORKERS", &cfg.Workers},
		{"POLL_INTERVAL_SECONDS", &cfg.PollIntervalSeconds},
		{"MAX_COMMENTS_PER_SUB_PER_DAY", &cfg.MaxCommentsPerSubPerDay},
		{"LINK_COOLDOWN_HOURS", &cfg.LinkCooldownHours},
	}
	for _, i := range ints {
		if err := getEnvInt(i.key, i.dst); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// LoadConfig loads configuration overrides from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// quietHoursRegex validates "HH:MM-HH:MM" with proper ranges.
var quietHoursRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])-([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("config error: 'poll_interval_seconds' must be non-negative")
	}
	if c.MaxCommentsPerSubPerDay < 0 {
		return fmt.Errorf("config error: 'max_comments_per_sub_per_day' must be non-negative")
	}
	if c.LinkCooldownHours < 0 {
		return fmt.Errorf("config error: 'link_cooldown_hours' must be non-negative")
	}
	if c.QuietHours != "" && !quietHoursRegex.MatchString(c.QuietHours) {
		return fmt.Errorf("config error: 'quiet_hours' must be HH:MM-HH:MM, got %q", c.QuietHours)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer a JSON file over environment values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Env == "" {
		result.Env = defaults.Env
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.QuietHours == "" {
		result.QuietHours = defaults.QuietHours
	}
	if result.DefaultsPath == "" {
		result.DefaultsPath = defaults.DefaultsPath
	}
	if result.PersonaPath == "" {
		result.PersonaPath = defaults.PersonaPath
	}
	if result.SubsPath == "" {
		result.SubsPath = defaults.SubsPath
	}
	if result.KeywordsPath == "" {
		result.KeywordsPath = defaults.KeywordsPath
	}
	if len(result.Subreddits) == 0 {
		result.Subreddits = defaults.Subreddits
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if result.MaxCommentsPerSubPerDay == 0 {
		result.MaxCommentsPerSubPerDay = defaults.MaxCommentsPerSubPerDay
	}
	if result.LinkCooldownHours == 0 {
		result.LinkCooldownHours = defaults.LinkCooldownHours
	}

	return result
}

// UserAgentSet reports whether a real user agent replaced the placeholder.
func (c *Config) UserAgentSet() bool {
	return c.UserAgent != "" && !strings.Contains(c.UserAgent, "<your_username>")
}

// SettingsPaths returns the document locations, each with its example fallback.
func (c *Config) SettingsPaths() settings.Paths {
	fallbacks := settings.DefaultPaths()
	return settings.Paths{
		Defaults: settings.Location{Path: c.DefaultsPath, Fallback: fallbacks.Defaults.Fallback},
		Persona:  settings.Location{Path: c.PersonaPath, Fallback: fallbacks.Persona.Fallback},
		Subs:     settings.Location{Path: c.SubsPath, Fallback: fallbacks.Subs.Fallback},
		Keywords: settings.Location{Path: c.KeywordsPath, Fallback: fallbacks.Keywords.Fallback},
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt overwrites dst when key is set, failing on a malformed value.
func getEnvInt(key string, dst *int) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config error: %s must be an integer, got %q", key, value)
	}
	*dst = parsed
	return nil
}

// parseList parses a comma-separated list, dropping blanks.
func parseList(list string) []string {
	var result []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
