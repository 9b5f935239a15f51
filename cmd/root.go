// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vidmeta/internal/config"
	"vidmeta/internal/extract"
	"vidmeta/internal/httputil"
	"vidmeta/internal/media"
	"vidmeta/internal/provider"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagJSON      bool
	flagDebug     bool
	flagWorkers   int
	flagLanguage  string
	flagNoHistory bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger is the process logger, installed by loadConfig.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "vidmeta",
	Short: "Extract metadata from video watch pages",
	Long: `vidmeta fetches a video's public watch page and extracts its metadata:
title, views, likes, duration, author, upload date, thumbnail and tags.
Videos may be given as watch URLs, short URLs or bare ids.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().IntVarP(&flagWorkers, "workers", "w", 0, "Concurrent field extractions (default from config: 8)")
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "Accept-Language sent with requests (default: en-US)")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not save snapshots to history")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(thumbnailCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagWorkers != 0 {
		cfg.Workers = flagWorkers
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return nil
}

// newFetcher builds the watch page fetcher from the loaded config.
func newFetcher() *provider.YouTube {
	return provider.NewYouTube(provider.Options{
		Client:    httputil.NewClient(cfg.Timeout()),
		UserAgent: cfg.UserAgent,
		Language:  cfg.Language,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
}

// fetcherFor returns the fetcher commands extract with. Tests replace it.
var fetcherFor = func() extract.Fetcher { return newFetcher() }

// newEngine builds an extraction engine over the configured fetcher.
func newEngine() *extract.Engine {
	return extract.New(fetcherFor(),
		extract.WithWorkers(cfg.Workers),
		extract.WithLogger(logger),
	)
}

// resolve turns a command-line argument into an identifier on the configured host.
func resolve(arg string) media.Identifier {
	id := media.ResolveHost(arg, cfg.Host)
	if !media.LooksLikeID(id.ID) {
		logger.Debug("identifier does not look like a video id", "input", arg, "id", id.ID)
	}
	return id
}
