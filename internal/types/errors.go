//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InputValidationError reports a post that is missing a required field.
type InputValidationError struct {
	Index   int
	ID      string
	Field   string
	Message string
}

func (e *InputValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("post %d (%s): %s: %s", e.Index, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("post %d: %s: %s", e.Index, e.Field, e.Message)
}

// BatchValidationError collects every invalid post in a batch.
type BatchValidationError struct {
	Errors []*InputValidationError
}

func (e *BatchValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d invalid post(s):\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ValidatePost validates a single input and converts it. index is only used for error reporting.
func ValidatePost(index int, in PostInput) (Post, []*InputValidationError) {
	err := in.Validate()
	if err == nil {
		return in.ToPost(), nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Post{}, []*InputValidationError{{Index: index, ID: in.ID, Field: "(post)", Message: err.Error()}}
	}

	out := make([]*InputValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &InputValidationError{
			Index:   index,
			ID:      in.ID,
			Field:   fe.Field(),
			Message: describeTag(fe.Tag()),
		})
	}
	return Post{}, out
}

// ValidatePosts validates every input. It returns the converted posts in input order,
// or a *BatchValidationError naming each failing index.
func ValidatePosts(inputs []PostInput) ([]Post, error) {
	posts := make([]Post, 0, len(inputs))
	var failures []*InputValidationError
	for i, in := range inputs {
		post, errs := ValidatePost(i, in)
		if len(errs) > 0 {
			failures = append(failures, errs...)
			continue
		}
		posts = append(posts, post)
	}
	if len(failures) > 0 {
		return nil, &BatchValidationError{Errors: failures}
	}
	return posts, nil
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "is required"
	default:
		return "failed " + tag + " check"
	}
}
