package signals

import (
	"regexp"
	"strings"
)

// Substitution is a single normalization rule. Pattern is a regular expression and every
// match is replaced by Replace taken literally.
type Substitution struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Replace string `json:"replace" yaml:"replace"`
}

// DefaultSubstitutions folds typographic quotes and primes to an apostrophe and turns
// hyphen, en dash and em dash into spaces.
func DefaultSubstitutions() []Substitution {
	return []Substitution{
		{Pattern: "[‘’′]", Replace: "'"},
		{Pattern: "[-–—]", Replace: " "},
	}
}

type compiledSubstitution struct {
	re      *regexp.Regexp
	replace string
}

// Normalizer canonicalizes post text before matching.
type Normalizer struct {
	rules []compiledSubstitution
}

// NewNormalizer compiles the substitutions in order. A nil slice yields a normalizer that
// only lowercases and collapses whitespace.
func NewNormalizer(subs []Substitution) (*Normalizer, error) {
	rules := make([]compiledSubstitution, 0, len(subs))
	for i, sub := range subs {
		re, err := regexp.Compile(sub.Pattern)
		if err != nil {
			return nil, &PatternError{Group: "normalization", Index: i, Pattern: sub.Pattern, Cause: err}
		}
		rules = append(rules, compiledSubstitution{re: re, replace: sub.Replace})
	}
	return &Normalizer{rules: rules}, nil
}

// Normalize joins title and body with a single space and normalizes the result.
func (n *Normalizer) Normalize(title, body string) string {
	return n.NormalizeText(title + " " + body)
}

// NormalizeText applies the substitutions, lowercases, and collapses whitespace.
func (n *Normalizer) NormalizeText(text string) string {
	for _, rule := range n.rules {
		text = rule.re.ReplaceAllLiteralString(text, rule.replace)
	}
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}
