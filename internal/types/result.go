//nolint:revive // types is a standard Go package name pattern
package types

// Category is the three-way classification outcome.
type Category string

const (
	// CategoryProduct marks a strong problem+context match worth a product mention
	CategoryProduct Category = "product"
	// CategoryGoodwill marks a soft, non-commercial engagement opportunity
	CategoryGoodwill Category = "goodwill"
	// CategorySkip marks a thread with no actionable match
	CategorySkip Category = "skip"
)

// Draft is a rendered reply candidate for human review.
type Draft struct {
	Text        string  `json:"text"`
	IncludeLink bool    `json:"include_link"`
	LinkToken   *string `json:"link_token"`
}

// ScoreResult is the per-post output of the scorer.
type ScoreResult struct {
	ID        string   `json:"id"`
	Score     float64  `json:"score"`
	Rationale string   `json:"rationale"`
	Category  Category `json:"category"`
	Draft     Draft    `json:"draft"`
	RiskNotes *string  `json:"risk_notes"`
}
