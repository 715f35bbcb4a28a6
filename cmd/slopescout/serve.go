package main

import (
	"fmt"
	"log"

	"github.com/jonathan/slopescout/internal/scoring"
	"github.com/jonathan/slopescout/internal/server"
	"github.com/jonathan/slopescout/internal/settings"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveWatch   bool
	serveWorkers int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server exposing /health, /config, /config/reload and /score_and_draft.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: PORT or 8000)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload configuration documents when they change on disk")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Batch scoring workers (default: SCORING_WORKERS or GOMAXPROCS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveWorkers != 0 {
		cfg.Workers = serveWorkers
	}

	paths := cfg.SettingsPaths()
	snap, err := settings.Load(paths)
	if err != nil {
		// A malformed document is fatal at startup.
		return err
	}
	logSources(snap)

	engine := scoring.NewEngine(snap, cfg.Workers)

	if serveWatch {
		watcher, err := settings.NewWatcher(paths, func(next *scoring.Snapshot) {
			engine.Swap(next)
			logSources(next)
		})
		if err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
		watcher.Start(cmd.Context())
		defer watcher.Stop()
	}

	srv, err := server.New(server.Config{
		Port:     cfg.Port,
		Settings: cfg,
		Engine:   engine,
		Paths:    paths,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(cmd.Context())
}

func logSources(snap *scoring.Snapshot) {
	for _, name := range settings.DocumentNames {
		src := snap.Sources[name]
		if src == "" {
			src = "built-in defaults"
		}
		log.Printf("[settings] %s: %s", name, src)
	}
}
