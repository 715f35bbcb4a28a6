// Package signals extracts boolean relevance signals from post text and combines them into a score.
package signals

import "fmt"

// PatternError reports a pattern that does not compile.
type PatternError struct {
	Group   string
	Index   int
	Pattern string
	Cause   error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern error: %s[%d] %q: %v", e.Group, e.Index, e.Pattern, e.Cause)
}

func (e *PatternError) Unwrap() error {
	return e.Cause
}

// WeightError reports a weight outside its allowed range.
type WeightError struct {
	Name    string
	Value   float64
	Message string
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("weight error: %s=%g: %s", e.Name, e.Value, e.Message)
}

// UnknownSignalError reports a pattern group for a signal the extractor does not know.
type UnknownSignalError struct {
	Name string
}

func (e *UnknownSignalError) Error() string {
	return fmt.Sprintf("unknown signal group %q", e.Name)
}
