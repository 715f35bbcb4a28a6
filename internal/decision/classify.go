// Package decision classifies analyzed posts and renders the reply draft for each category.
package decision

import (
	"fmt"
	"math"

	"github.com/jonathan/slopescout/internal/signals"
	"github.com/jonathan/slopescout/internal/types"
)

// Rationales attached to each classification rule
const (
	RationaleProduct  = "problem+context signal above product threshold."
	RationaleGoodwill = "beginner/setup signal present."
	RationaleSkip     = "no strong match."
)

// Thresholds gate the product and goodwill tiers.
type Thresholds struct {
	Product  float64 `json:"product_threshold"`
	Goodwill float64 `json:"goodwill_threshold"`
}

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Product:  0.5,
		Goodwill: 0.25,
	}
}

// Validate requires finite thresholds with goodwill not above product.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Product) || math.IsInf(t.Product, 0) {
		return &ThresholdError{Message: fmt.Sprintf("product_threshold must be a finite number, got %g", t.Product)}
	}
	if math.IsNaN(t.Goodwill) || math.IsInf(t.Goodwill, 0) {
		return &ThresholdError{Message: fmt.Sprintf("goodwill_threshold must be a finite number, got %g", t.Goodwill)}
	}
	if t.Goodwill > t.Product {
		return &ThresholdError{
			Message: fmt.Sprintf("goodwill_threshold (%g) must not exceed product_threshold (%g)", t.Goodwill, t.Product),
		}
	}
	return nil
}

// Classify applies the ordered tier rules; the first matching rule wins. The product tier
// needs the problem+context co-occurrence no matter how high the score is.
func Classify(a signals.Analysis, t Thresholds) (types.Category, string) {
	if a.HasProblem && a.HasContext && a.Score >= t.Product {
		return types.CategoryProduct, RationaleProduct
	}
	if a.Score >= t.Goodwill || a.HasBeginner || a.HasContext || a.HasSolution {
		return types.CategoryGoodwill, RationaleGoodwill
	}
	return types.CategorySkip, RationaleSkip
}

// Outcome is the decision for one post.
type Outcome struct {
	Category  types.Category
	Rationale string
	Draft     types.Draft
	RiskNotes *string
}

// Decide classifies the analysis and renders the matching draft and risk notes.
func Decide(a signals.Analysis, post types.Post, t Thresholds, d Drafting) Outcome {
	category, rationale := Classify(a, t)
	return Outcome{
		Category:  category,
		Rationale: rationale,
		Draft:     RenderDraft(category, post, d),
		RiskNotes: RiskNotes(category),
	}
}

// ThresholdError reports inconsistent thresholds.
type ThresholdError struct {
	Message string
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("threshold error: %s", e.Message)
}
