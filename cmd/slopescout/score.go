package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/slopescout/internal/observability"
	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/settings"
	"github.com/jonathan/slopescout/internal/types"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score posts from a JSON file or stdin",
	Long: `Reads posts as {"posts": [...]} or a bare JSON array, scores them against the
configured documents and prints the results as JSON, or as a report with --pretty.`,
	RunE: runScore,
}

var (
	scoreInput  string
	scoreOutput string
	scorePretty bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "in", "i", "-", "Path to posts JSON file, or - for stdin")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to write results JSON (default: stdout)")
	scoreCmd.Flags().BoolVar(&scorePretty, "pretty", false, "Print a human-readable report instead of JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	var data []byte
	if scoreInput == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(scoreInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read posts: %w", err)
	}

	posts, err := parsePosts(data)
	if err != nil {
		return err
	}

	snap, err := settings.Load(cfg.SettingsPaths())
	if err != nil {
		return err
	}

	results, err := scoring.NewEngine(snap, cfg.Workers).ScoreBatch(cmd.Context(), posts)
	if err != nil {
		return err
	}

	if scorePretty {
		observability.NewPrinter(cmd.OutOrStdout()).PrintResults(results)
		return nil
	}

	out, err := json.MarshalIndent(types.ScoreAndDraftResponse{Results: results}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	out = append(out, '\n')

	if scoreOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(scoreOutput, out, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Scored %d post(s) -> %s\n", len(results), scoreOutput)
	return nil
}

// parsePosts accepts either the request envelope or a bare array and validates every post.
func parsePosts(data []byte) ([]types.Post, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("no posts supplied")
	}

	var inputs []types.PostInput
	if data[0] == '[' {
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("failed to parse posts JSON: %w", err)
		}
	} else {
		var req types.ScoreAndDraftRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to parse posts JSON: %w", err)
		}
		inputs = req.Posts
	}

	return types.ValidatePosts(inputs)
}
