package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/slopescout/internal/observability"
	"github.com/jonathan/slopescout/internal/settings"
	"github.com/spf13/cobra"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Load and validate the configuration documents",
	Long:  "Loads the defaults, persona, subs and keywords documents, validates them, and prints what they resolved to. Exits non-zero on any configuration error.",
	RunE:  runCheckConfig,
}

var checkConfigJSON bool

func init() {
	checkConfigCmd.Flags().BoolVar(&checkConfigJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	snap, err := settings.Load(cfg.SettingsPaths())
	if err != nil {
		return err
	}

	summary := snap.Summary()
	if checkConfigJSON {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSummary(summary)
	return nil
}
