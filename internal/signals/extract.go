package signals

import (
	"math"
	"regexp"
)

// Signal names a pattern group.
type Signal string

// Signal groups evaluated for every post
const (
	SignalProblem  Signal = "problem"
	SignalContext  Signal = "context"
	SignalSolution Signal = "solution"
	SignalBeginner Signal = "beginner"
)

// AllSignals lists the known signal groups in evaluation order.
var AllSignals = []Signal{SignalProblem, SignalContext, SignalSolution, SignalBeginner}

// IsKnown reports whether s is one of AllSignals.
func IsKnown(s Signal) bool {
	for _, known := range AllSignals {
		if s == known {
			return true
		}
	}
	return false
}

// Weights control how signals add up to a score.
type Weights struct {
	ProblemAndContext float64 `json:"problem_and_context"`
	ProblemOnly       float64 `json:"problem_only"`
	Solution          float64 `json:"solution"`
	Beginner          float64 `json:"beginner"`
	Cap               float64 `json:"cap"`
}

// DefaultWeights returns the built-in weights.
func DefaultWeights() Weights {
	return Weights{
		ProblemAndContext: 0.5,
		ProblemOnly:       0.3,
		Solution:          0.2,
		Beginner:          0.2,
		Cap:               1.0,
	}
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"problem_and_context", w.ProblemAndContext},
		{"problem_only", w.ProblemOnly},
		{"solution", w.Solution},
		{"beginner", w.Beginner},
		{"cap", w.Cap},
	}
	for _, n := range named {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return &WeightError{Name: n.name, Value: n.value, Message: "must be a finite number"}
		}
		if n.value < 0 {
			return &WeightError{Name: n.name, Value: n.value, Message: "must be non-negative"}
		}
	}
	return nil
}

// DefaultPatterns returns the built-in pattern groups for the ski-carrier niche.
func DefaultPatterns() map[Signal][]string {
	return map[Signal][]string{
		SignalProblem: {
			`\bskis? (?:sliding|slipping|falling|fell|slid|tipping|tipped)\b`,
			`\b(?:sliding|slipping|falling) off (?:the |my )?car\b`,
			`\bdings?\b`,
			`\bscratch(?:ed|es|ing)? (?:the |my )?(?:car|paint|hatch|tailgate)\b`,
			`\bprotect(?:ing)? (?:the |my )?edges\b`,
			`\bedges? (?:chipped|dinged|scratched)\b`,
		},
		SignalContext: {
			`\bparking lot\b`,
			`\btrailhead\b`,
			`\btailgate\b`,
			`\bbuckl(?:e|es|ing)\b`,
			`\b(?:ski )?boots?\b`,
			`\bhatch(?:back)?\b`,
			`\blean(?:ing|ed)? (?:against|on) (?:the |my )?car\b`,
		},
		SignalSolution: {
			`\bmagnet(?:s|ic)?\b`,
			`\bstraps?\b`,
			`\bbungees?\b`,
			`\b(?:ski )?holders?\b`,
			`\bclamps?\b`,
			`\b(?:ski|roof) (?:carrier|box)\b`,
		},
		SignalBeginner: {
			`\bfirst (?:season|time|year)\b`,
			`\bany tips\b`,
			`\bnewbie\b`,
			`\bbeginners?\b`,
			`\bwinter prep\b`,
			`\bnew to (?:skiing|snowboarding|the sport)\b`,
		},
	}
}

// Config is everything the extractor needs. Patterns must already be resolved: a group
// that is missing or empty never matches.
type Config struct {
	Patterns      map[Signal][]string
	Substitutions []Substitution
	Weights       Weights
}

// DefaultConfig returns the built-in extractor configuration.
func DefaultConfig() Config {
	return Config{
		Patterns:      DefaultPatterns(),
		Substitutions: DefaultSubstitutions(),
		Weights:       DefaultWeights(),
	}
}

// Analysis is the outcome of evaluating one post.
type Analysis struct {
	Score       float64 `json:"score"`
	HasProblem  bool    `json:"has_problem"`
	HasContext  bool    `json:"has_context"`
	HasSolution bool    `json:"has_solution"`
	HasBeginner bool    `json:"has_beginner"`
}

// Extractor evaluates compiled pattern groups against normalized text.
// It is immutable after construction and safe for concurrent use.
type Extractor struct {
	normalizer *Normalizer
	groups     map[Signal][]*regexp.Regexp
	weights    Weights
}

// NewExtractor compiles every pattern in cfg. Any invalid pattern, unknown group or bad
// weight is returned as an error so that nothing fails later per post.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	normalizer, err := NewNormalizer(cfg.Substitutions)
	if err != nil {
		return nil, err
	}

	groups := make(map[Signal][]*regexp.Regexp, len(cfg.Patterns))
	for signal, patterns := range cfg.Patterns {
		if !IsKnown(signal) {
			return nil, &UnknownSignalError{Name: string(signal)}
		}
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for i, pattern := range patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, &PatternError{Group: string(signal), Index: i, Pattern: pattern, Cause: err}
			}
			compiled = append(compiled, re)
		}
		groups[signal] = compiled
	}

	return &Extractor{
		normalizer: normalizer,
		groups:     groups,
		weights:    cfg.Weights,
	}, nil
}

// Weights returns the weights the extractor scores with.
func (e *Extractor) Weights() Weights {
	return e.weights
}

// PatternCount returns the number of compiled patterns in a group.
func (e *Extractor) PatternCount(signal Signal) int {
	return len(e.groups[signal])
}

// Normalize exposes the extractor's text normalization.
func (e *Extractor) Normalize(title, body string) string {
	return e.normalizer.Normalize(title, body)
}

// Analyze normalizes title and body, evaluates every group and scores the flags.
func (e *Extractor) Analyze(title, body string) Analysis {
	text := e.normalizer.Normalize(title, body)

	a := Analysis{
		HasProblem:  e.matches(SignalProblem, text),
		HasContext:  e.matches(SignalContext, text),
		HasSolution: e.matches(SignalSolution, text),
		HasBeginner: e.matches(SignalBeginner, text),
	}
	a.Score = Score(a, e.weights)
	return a
}

func (e *Extractor) matches(signal Signal, text string) bool {
	for _, re := range e.groups[signal] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Score combines the flags of a into a capped score. Problem+context and problem-only
// contributions are exclusive.
func Score(a Analysis, w Weights) float64 {
	score := 0.0
	if a.HasProblem && a.HasContext {
		score += w.ProblemAndContext
	} else if a.HasProblem {
		score += w.ProblemOnly
	}
	if a.HasSolution {
		score += w.Solution
	}
	if a.HasBeginner {
		score += w.Beginner
	}
	return math.Min(score, w.Cap)
}
