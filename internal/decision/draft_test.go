package decision

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/slopescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTopicHint(t *testing.T) {
	tests := []struct {
		name     string
		post     types.Post
		expected string
	}{
		{"cut at question mark", types.Post{Title: "Best wax for spring? asking for a friend"}, "Best wax for spring"},
		{"plain title", types.Post{Title: "Roof box vs hitch rack"}, "Roof box vs hitch rack"},
		{"empty title with subreddit", types.Post{Title: "", Subreddit: strPtr("skiing")}, "the crew in r/skiing"},
		{"question only with subreddit", types.Post{Title: "?", Subreddit: strPtr("snowboarding")}, "the crew in r/snowboarding"},
		{"empty title no subreddit", types.Post{Title: ""}, "your setup"},
		{"blank subreddit", types.Post{Title: "  ", Subreddit: strPtr("  ")}, "your setup"},
		{"trims whitespace", types.Post{Title: "  Wet boots  ?"}, "Wet boots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TopicHint(tt.post))
		})
	}
}

func TestTopicHint_Truncation(t *testing.T) {
	long := strings.Repeat("abcdefghij", 9)
	hint := TopicHint(types.Post{Title: long})
	assert.Equal(t, long[:60], hint)

	unicodeTitle := strings.Repeat("é", 80)
	hint = TopicHint(types.Post{Title: unicodeTitle})
	assert.Equal(t, 60, utf8.RuneCountInString(hint))
	assert.True(t, utf8.ValidString(hint))

	withQuestion := strings.Repeat("x", 70) + "? tail"
	hint = TopicHint(types.Post{Title: withQuestion})
	assert.LessOrEqual(t, utf8.RuneCountInString(hint), 60)
	assert.NotContains(t, hint, "?")
}

func TestRenderDraft_GoodwillLinksDisallowed(t *testing.T) {
	d := DefaultDrafting()
	d.LinkToken = "https://example.com/holder"
	d.GoodwillAllowLinks = false
	d.Templates[types.CategoryGoodwill] = []string{"Try wiping pads before {topic}. {link}"}

	draft := RenderDraft(types.CategoryGoodwill, types.Post{Title: "loading up"}, d)

	assert.False(t, draft.IncludeLink)
	assert.Nil(t, draft.LinkToken)
	assert.Equal(t, "Try wiping pads before loading up.", draft.Text)
	assert.NotContains(t, draft.Text, d.LinkToken)
}

func TestRenderDraft_GoodwillLinksAllowed(t *testing.T) {
	d := DefaultDrafting()
	d.GoodwillAllowLinks = true
	d.Templates[types.CategoryGoodwill] = []string{"More here: {link}"}

	draft := RenderDraft(types.CategoryGoodwill, types.Post{Title: "x"}, d)

	assert.True(t, draft.IncludeLink)
	require.NotNil(t, draft.LinkToken)
	assert.Equal(t, DefaultLinkToken, *draft.LinkToken)
	assert.Equal(t, "More here: "+DefaultLinkToken, draft.Text)
}

func TestRenderDraft_Product(t *testing.T) {
	d := DefaultDrafting()
	d.LinkToken = "<LINK>"
	d.Templates[types.CategoryProduct] = []string{"first {link}", "second {link}"}

	draft := RenderDraft(types.CategoryProduct, types.Post{Title: "t"}, d)
	assert.Equal(t, "first <LINK>", draft.Text)
	assert.True(t, draft.IncludeLink)
	require.NotNil(t, draft.LinkToken)
	assert.Equal(t, "<LINK>", *draft.LinkToken)

	d.IncludeLinkForProduct = false
	draft = RenderDraft(types.CategoryProduct, types.Post{Title: "t"}, d)
	assert.Equal(t, "first", draft.Text)
	assert.False(t, draft.IncludeLink)
	assert.Nil(t, draft.LinkToken)
}

func TestRenderDraft_FallsBackToBuiltInTemplates(t *testing.T) {
	d := Drafting{LinkToken: "[[LINK]]", IncludeLinkForProduct: true}

	product := RenderDraft(types.CategoryProduct, types.Post{Title: "t"}, d)
	assert.True(t, strings.HasSuffix(product.Text, "[[LINK]]"))

	goodwill := RenderDraft(types.CategoryGoodwill, types.Post{Title: "Winter prep"}, d)
	assert.Equal(t, "If you're dialing Winter prep, wiping the rack pads before loading keeps edges happy on the drive back down.", goodwill.Text)
}

func TestRenderDraft_Skip(t *testing.T) {
	draft := RenderDraft(types.CategorySkip, types.Post{Title: "anything"}, DefaultDrafting())
	assert.Equal(t, "", draft.Text)
	assert.False(t, draft.IncludeLink)
	assert.Nil(t, draft.LinkToken)
}

func TestRiskNotes(t *testing.T) {
	require.NotNil(t, RiskNotes(types.CategoryProduct))
	assert.Contains(t, *RiskNotes(types.CategoryProduct), "links")
	require.NotNil(t, RiskNotes(types.CategorySkip))
	assert.Equal(t, RiskNoteSkip, *RiskNotes(types.CategorySkip))
	assert.Nil(t, RiskNotes(types.CategoryGoodwill))
}
