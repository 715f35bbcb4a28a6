package decision

import (
	"strings"

	"github.com/jonathan/slopescout/internal/types"
)

const (
	// maxTopicRunes bounds the topic hint taken from a title
	maxTopicRunes = 60
	// fallbackTopic is used when neither title nor subreddit yields a hint
	fallbackTopic = "your setup"

	// Template placeholders
	placeholderTopic = "{topic}"
	placeholderLink  = "{link}"
)

// Risk notes attached for human reviewers
const (
	RiskNoteProduct = "Product mention: many subreddits restrict links or self-promotion; check the sidebar rules before posting."
	RiskNoteSkip    = "Low-signal thread; skip for now."
)

// Built-in templates used when none are configured for a category
const (
	DefaultProductTemplate  = "Had the same worry with skis sliding around the car. A clamp-style holder that leans them at a steady angle fixed it for us: {link}"
	DefaultGoodwillTemplate = "If you're dialing {topic}, wiping the rack pads before loading keeps edges happy on the drive back down."
	DefaultLinkToken        = "[[LINK]]"
)

// Drafting controls how drafts are rendered.
type Drafting struct {
	// Templates lists candidate templates per category. Only the first is used.
	Templates             map[types.Category][]string
	LinkToken             string
	IncludeLinkForProduct bool
	GoodwillAllowLinks    bool
}

// DefaultDrafting returns the built-in drafting configuration.
func DefaultDrafting() Drafting {
	return Drafting{
		Templates: map[types.Category][]string{
			types.CategoryProduct:  {DefaultProductTemplate},
			types.CategoryGoodwill: {DefaultGoodwillTemplate},
		},
		LinkToken:             DefaultLinkToken,
		IncludeLinkForProduct: true,
		GoodwillAllowLinks:    false,
	}
}

// template returns the first configured template for category or fallback.
func (d Drafting) template(category types.Category, fallback string) string {
	if candidates := d.Templates[category]; len(candidates) > 0 {
		return candidates[0]
	}
	return fallback
}

// TopicHint derives a short phrase from the title: cut at the first '?', keep at most 60
// characters, trim. An empty result falls back to the subreddit, then to "your setup".
func TopicHint(post types.Post) string {
	hint := post.Title
	if i := strings.Index(hint, "?"); i >= 0 {
		hint = hint[:i]
	}
	if runes := []rune(hint); len(runes) > maxTopicRunes {
		hint = string(runes[:maxTopicRunes])
	}
	hint = strings.TrimSpace(hint)
	if hint != "" {
		return hint
	}
	if subreddit, ok := post.SubredditName(); ok {
		return "the crew in r/" + subreddit
	}
	return fallbackTopic
}

// RenderDraft renders the draft for category. The {link} placeholder becomes the link
// token when the draft carries a link and is removed otherwise.
func RenderDraft(category types.Category, post types.Post, d Drafting) types.Draft {
	var tmpl string
	var includeLink bool
	switch category {
	case types.CategoryProduct:
		tmpl = d.template(types.CategoryProduct, DefaultProductTemplate)
		includeLink = d.IncludeLinkForProduct
	case types.CategoryGoodwill:
		tmpl = d.template(types.CategoryGoodwill, DefaultGoodwillTemplate)
		includeLink = d.GoodwillAllowLinks
	default:
		return types.Draft{}
	}

	link := ""
	var linkToken *string
	if includeLink {
		link = d.LinkToken
		token := d.LinkToken
		linkToken = &token
	}

	text := strings.NewReplacer(
		placeholderTopic, TopicHint(post),
		placeholderLink, link,
	).Replace(tmpl)

	return types.Draft{
		Text:        strings.TrimSpace(text),
		IncludeLink: includeLink,
		LinkToken:   linkToken,
	}
}

// RiskNotes returns the reviewer note for category, or nil for goodwill.
func RiskNotes(category types.Category) *string {
	var note string
	switch category {
	case types.CategoryProduct:
		note = RiskNoteProduct
	case types.CategorySkip:
		note = RiskNoteSkip
	default:
		return nil
	}
	return &note
}
