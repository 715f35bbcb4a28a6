// Package scoring evaluates posts against an immutable configuration snapshot.
package scoring

import (
	"time"

	"github.com/jonathan/slopescout/internal/decision"
	"github.com/jonathan/slopescout/internal/signals"
)

// Persona is reviewer-facing persona data. The scorer carries it but does not use it.
type Persona map[string]any

// Snapshot is a fully resolved configuration. It is never mutated after construction;
// reloading builds a new Snapshot and swaps it in whole.
type Snapshot struct {
	Extractor  *signals.Extractor
	Thresholds decision.Thresholds
	Drafting   decision.Drafting
	Persona    Persona
	Subreddits []string
	// Sources records which file, if any, each document was read from.
	Sources  map[string]string
	LoadedAt time.Time
}

// NewSnapshot builds a snapshot from already-resolved parts, validating the thresholds.
func NewSnapshot(cfg signals.Config, thresholds decision.Thresholds, drafting decision.Drafting) (*Snapshot, error) {
	extractor, err := signals.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Snapshot{
		Extractor:  extractor,
		Thresholds: thresholds,
		Drafting:   drafting,
		Sources:    map[string]string{},
		LoadedAt:   time.Now(),
	}, nil
}

// DefaultSnapshot returns a snapshot made only of built-in defaults.
func DefaultSnapshot() *Snapshot {
	snap, err := NewSnapshot(signals.DefaultConfig(), decision.DefaultThresholds(), decision.DefaultDrafting())
	if err != nil {
		// Built-in defaults are covered by tests; failing here is a programming error.
		panic("invalid built-in scoring defaults: " + err.Error())
	}
	return snap
}

// Summary is the reviewer-facing view of a snapshot; it leaves out templates and persona details.
type Summary struct {
	Sources    map[string]string   `json:"sources"`
	Subreddits []string            `json:"subreddits"`
	Persona    string              `json:"persona,omitempty"`
	Patterns   map[string]int      `json:"patterns"`
	Weights    signals.Weights     `json:"weights"`
	Thresholds decision.Thresholds `json:"thresholds"`
	LinkToken  string              `json:"link_token"`
	LoadedAt   time.Time           `json:"loaded_at"`
}

// Summary describes where the snapshot came from and what it resolved to.
func (s *Snapshot) Summary() Summary {
	patterns := make(map[string]int, len(signals.AllSignals))
	for _, sig := range signals.AllSignals {
		patterns[string(sig)] = s.Extractor.PatternCount(sig)
	}

	sources := make(map[string]string, len(s.Sources))
	for name, src := range s.Sources {
		sources[name] = src
	}

	subreddits := s.Subreddits
	if subreddits == nil {
		subreddits = []string{}
	}

	var persona string
	if name, ok := s.Persona["name"].(string); ok {
		persona = name
	}

	return Summary{
		Sources:    sources,
		Subreddits: subreddits,
		Persona:    persona,
		Patterns:   patterns,
		Weights:    s.Extractor.Weights(),
		Thresholds: s.Thresholds,
		LinkToken:  s.Drafting.LinkToken,
		LoadedAt:   s.LoadedAt,
	}
}
