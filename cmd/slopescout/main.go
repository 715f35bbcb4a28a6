// Package main provides the entry point for the slopescout scorer: HTTP service and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/slopescout/internal/config"
	"github.com/jonathan/slopescout/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "slopescout",
	Short:   "Score subreddit posts and draft replies for human review",
	Long:    "slopescout scores candidate posts for a niche product, classifies them as product, goodwill or skip, and renders a reply draft for a human to review. It never posts anything itself.",
	Version: server.Version,
	// Errors are printed once by main.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON file overriding environment settings (optional)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings resolves process settings: environment first, then the optional JSON file on top.
func loadSettings() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		// Secrets never come from the file.
		merged.OpenAIAPIKey = cfg.OpenAIAPIKey
		cfg = &merged
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
