// Package settings loads the scoring configuration documents and resolves them into a snapshot.
package settings

import (
	"fmt"
	"strings"
)

// FieldError is a single schema violation inside a document.
type FieldError struct {
	Field   string
	Message string
}

// ConfigurationError reports a document that is present but malformed. It is fatal at
// startup; a reload that fails with it leaves the previous snapshot in place.
type ConfigurationError struct {
	Document string
	Path     string
	Message  string
	Fields   []FieldError
	Cause    error
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error: ")
	sb.WriteString(e.Document)
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", e.Path))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", f.Field, f.Message))
	}
	return sb.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
