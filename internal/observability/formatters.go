// Package observability provides formatted output utilities for the CLI report mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// innerWidth is the printable width inside a box
	innerWidth = boxWidth - 4
)

// Printer handles formatted output for human-readable reports
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", innerWidth, truncate(title, innerWidth))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", innerWidth, truncate(line, innerWidth))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResults prints one box per result followed by a category tally.
func (p *Printer) PrintResults(results []types.ScoreResult) {
	if len(results) == 0 {
		p.printBox("NO POSTS", "Nothing to score.")
		return
	}

	counts := map[types.Category]int{}
	for i, res := range results {
		counts[res.Category]++
		p.printBox(fmt.Sprintf("#%d  %s", i+1, res.ID), formatResult(res))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Posts scored: %d\n", len(results)))
	for _, c := range []types.Category{types.CategoryProduct, types.CategoryGoodwill, types.CategorySkip} {
		sb.WriteString(fmt.Sprintf("  %-9s %d\n", c, counts[c]))
	}
	p.printBox("SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

func formatResult(res types.ScoreResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Category: %s\n", res.Category))
	sb.WriteString(fmt.Sprintf("Score:    %.2f\n", res.Score))
	sb.WriteString(fmt.Sprintf("Why:      %s\n", res.Rationale))

	if res.Draft.Text != "" {
		sb.WriteString("\nDraft")
		if res.Draft.IncludeLink {
			sb.WriteString(" (with link)")
		}
		sb.WriteString(":\n")
		for _, line := range wrap(res.Draft.Text, innerWidth-2) {
			sb.WriteString("  " + line + "\n")
		}
	}

	if res.RiskNotes != nil {
		sb.WriteString("\nRisk:\n")
		for _, line := range wrap(*res.RiskNotes, innerWidth-2) {
			sb.WriteString("  " + line + "\n")
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// PrintSummary outputs where each configuration document came from and what it resolved to.
func (p *Printer) PrintSummary(sum scoring.Summary) {
	var sb strings.Builder

	sb.WriteString("Documents:\n")
	names := make([]string, 0, len(sum.Sources))
	for name := range sum.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src := sum.Sources[name]
		if src == "" {
			src = "(built-in defaults)"
		}
		sb.WriteString(fmt.Sprintf("  %-9s %s\n", name, src))
	}

	sb.WriteString("\nPatterns:\n")
	sb.WriteString(fmt.Sprintf("  problem %d  context %d  solution %d  beginner %d\n",
		sum.Patterns["problem"], sum.Patterns["context"], sum.Patterns["solution"], sum.Patterns["beginner"]))

	w := sum.Weights
	sb.WriteString("\nWeights:\n")
	sb.WriteString(fmt.Sprintf("  problem+context %.2f  problem %.2f\n", w.ProblemAndContext, w.ProblemOnly))
	sb.WriteString(fmt.Sprintf("  solution %.2f  beginner %.2f  cap %.2f\n", w.Solution, w.Beginner, w.Cap))

	sb.WriteString("\nThresholds:\n")
	sb.WriteString(fmt.Sprintf("  product %.2f  goodwill %.2f\n", sum.Thresholds.Product, sum.Thresholds.Goodwill))

	if sum.Persona != "" {
		sb.WriteString(fmt.Sprintf("\nPersona:    %s\n", sum.Persona))
	}
	if len(sum.Subreddits) > 0 {
		sb.WriteString(fmt.Sprintf("Subreddits: %s\n", strings.Join(sum.Subreddits, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Link token: %s", sum.LinkToken))

	p.printBox("SCORING CONFIGURATION", sb.String())
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if lineLen > 0 && lineLen+1+wordLen > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += wordLen
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
