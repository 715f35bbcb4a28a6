package settings

import (
	"errors"
	"sort"
	"time"

	"github.com/jonathan/slopescout/internal/decision"
	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/signals"
	"github.com/jonathan/slopescout/internal/types"
)

// Typed views of the documents. Pointer fields distinguish an absent entry, which falls
// back to the built-in default, from a present one, which is used as-is.

type weightsSection struct {
	ProblemAndContext *float64 `json:"problem_and_context"`
	ProblemOnly       *float64 `json:"problem_only"`
	Solution          *float64 `json:"solution"`
	Beginner          *float64 `json:"beginner"`
	Cap               *float64 `json:"cap"`
}

type thresholdsSection struct {
	Product  *float64 `json:"product_threshold"`
	Goodwill *float64 `json:"goodwill_threshold"`
}

type draftingSection struct {
	LinkToken             *string             `json:"link_token"`
	IncludeLinkForProduct *bool               `json:"include_link_for_product"`
	GoodwillAllowLinks    *bool               `json:"goodwill_allow_links"`
	Templates             map[string][]string `json:"templates"`
}

type defaultsDocument struct {
	Weights    *weightsSection    `json:"weights"`
	Thresholds *thresholdsSection `json:"thresholds"`
	Drafting   *draftingSection   `json:"drafting"`
}

type keywordsDocument struct {
	Patterns      map[string][]string     `json:"patterns"`
	Normalization *[]signals.Substitution `json:"normalization"`
}

// Load reads, validates and resolves all documents into a snapshot.
func Load(paths Paths) (*scoring.Snapshot, error) {
	docs, err := LoadDocuments(paths)
	if err != nil {
		return nil, err
	}
	return Build(docs)
}

// Build resolves documents into a snapshot. Every document is schema-checked first so
// that a present but malformed entry is reported instead of replaced by a default.
func Build(docs Documents) (*scoring.Snapshot, error) {
	for _, name := range DocumentNames {
		if err := ValidateDocument(docs[name]); err != nil {
			return nil, err
		}
	}

	var defaults defaultsDocument
	if err := decodeInto(docs[DocDefaults], &defaults); err != nil {
		return nil, err
	}
	var keywords keywordsDocument
	if err := decodeInto(docs[DocKeywords], &keywords); err != nil {
		return nil, err
	}

	cfg := signals.Config{
		Patterns:      resolvePatterns(keywords.Patterns),
		Substitutions: signals.DefaultSubstitutions(),
		Weights:       resolveWeights(defaults.Weights),
	}
	if keywords.Normalization != nil {
		cfg.Substitutions = *keywords.Normalization
	}

	extractor, err := signals.NewExtractor(cfg)
	if err != nil {
		return nil, wrapBuildError(docs, err)
	}

	thresholds := resolveThresholds(defaults.Thresholds)
	if err := thresholds.Validate(); err != nil {
		return nil, wrapBuildError(docs, err)
	}

	persona, err := resolvePersona(docs[DocPersona])
	if err != nil {
		return nil, err
	}
	subreddits, err := resolveSubreddits(docs[DocSubs])
	if err != nil {
		return nil, err
	}

	sources := make(map[string]string, len(docs))
	for name, doc := range docs {
		sources[name] = doc.Source
	}

	return &scoring.Snapshot{
		Extractor:  extractor,
		Thresholds: thresholds,
		Drafting:   resolveDrafting(defaults.Drafting),
		Persona:    persona,
		Subreddits: subreddits,
		Sources:    sources,
		LoadedAt:   time.Now(),
	}, nil
}

// wrapBuildError attributes an extractor or threshold failure to its document.
func wrapBuildError(docs Documents, err error) error {
	var thErr *decision.ThresholdError
	var weightErr *signals.WeightError
	switch {
	case errors.As(err, &thErr), errors.As(err, &weightErr):
		doc := docs[DocDefaults]
		return &ConfigurationError{Document: DocDefaults, Path: doc.Source, Message: "invalid scoring values", Cause: err}
	default:
		doc := docs[DocKeywords]
		return &ConfigurationError{Document: DocKeywords, Path: doc.Source, Message: "invalid pattern", Cause: err}
	}
}

func resolvePatterns(configured map[string][]string) map[signals.Signal][]string {
	patterns := signals.DefaultPatterns()
	for name, list := range configured {
		if list == nil {
			list = []string{}
		}
		patterns[signals.Signal(name)] = list
	}
	return patterns
}

func resolveWeights(s *weightsSection) signals.Weights {
	w := signals.DefaultWeights()
	if s == nil {
		return w
	}
	setFloat(&w.ProblemAndContext, s.ProblemAndContext)
	setFloat(&w.ProblemOnly, s.ProblemOnly)
	setFloat(&w.Solution, s.Solution)
	setFloat(&w.Beginner, s.Beginner)
	setFloat(&w.Cap, s.Cap)
	return w
}

func resolveThresholds(s *thresholdsSection) decision.Thresholds {
	t := decision.DefaultThresholds()
	if s == nil {
		return t
	}
	setFloat(&t.Product, s.Product)
	setFloat(&t.Goodwill, s.Goodwill)
	return t
}

func resolveDrafting(s *draftingSection) decision.Drafting {
	d := decision.DefaultDrafting()
	if s == nil {
		return d
	}
	if s.LinkToken != nil {
		d.LinkToken = *s.LinkToken
	}
	if s.IncludeLinkForProduct != nil {
		d.IncludeLinkForProduct = *s.IncludeLinkForProduct
	}
	if s.GoodwillAllowLinks != nil {
		d.GoodwillAllowLinks = *s.GoodwillAllowLinks
	}
	for category, templates := range s.Templates {
		d.Templates[types.Category(category)] = templates
	}
	return d
}

func resolvePersona(doc Document) (scoring.Persona, error) {
	persona := scoring.Persona{}
	if err := decodeInto(doc, &persona); err != nil {
		return nil, err
	}
	return persona, nil
}

func resolveSubreddits(doc Document) ([]string, error) {
	if doc.Data == nil {
		return nil, nil
	}
	var names []string
	if _, isList := doc.Data.([]any); isList {
		if err := decodeInto(doc, &names); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Subreddits []string `json:"subreddits"`
		}
		if err := decodeInto(doc, &wrapped); err != nil {
			return nil, err
		}
		names = wrapped.Subreddits
	}
	sort.Strings(names)
	return names, nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
