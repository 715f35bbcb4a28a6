// Package types provides type definitions for posts and scoring results exchanged with slopescout.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Post is a candidate submission evaluated by the scorer. Optional fields are nil when absent.
type Post struct {
	ID        string
	Title     string
	Body      *string
	Subreddit *string
	URL       *string
}

// BodyText returns the body or an empty string when the post has none.
func (p Post) BodyText() string {
	if p.Body == nil {
		return ""
	}
	return *p.Body
}

// SubredditName returns the trimmed subreddit name and whether one was supplied.
func (p Post) SubredditName() (string, bool) {
	if p.Subreddit == nil {
		return "", false
	}
	name := strings.TrimSpace(*p.Subreddit)
	return name, name != ""
}

// PostInput is the wire form of a post. Title is a pointer so that an explicitly empty
// title can be told apart from a missing one.
type PostInput struct {
	ID        string  `json:"id" validate:"required"`
	Title     *string `json:"title" validate:"required"`
	Body      *string `json:"body,omitempty"`
	Selftext  *string `json:"selftext,omitempty"` // Reddit's name for body
	Subreddit *string `json:"subreddit,omitempty"`
	URL       *string `json:"url,omitempty"`
}

// ToPost converts a validated input into a Post.
func (in PostInput) ToPost() Post {
	post := Post{
		ID:        in.ID,
		Body:      in.Body,
		Subreddit: in.Subreddit,
		URL:       in.URL,
	}
	if in.Title != nil {
		post.Title = *in.Title
	}
	if post.Body == nil {
		post.Body = in.Selftext
	}
	return post
}

// ScoreAndDraftRequest is the batch request body.
type ScoreAndDraftRequest struct {
	Posts []PostInput `json:"posts"`
}

// ScoreAndDraftResponse is the batch response body.
type ScoreAndDraftResponse struct {
	Results []ScoreResult `json:"results"`
}

var validate = newValidator()

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the PostInput using the validator.
func (in *PostInput) Validate() error {
	return validate.Struct(in)
}
