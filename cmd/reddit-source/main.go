package main

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reddit-source/internal/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reddit-source",
	Short: "Fetch, cache and normalize the hot posts of a subreddit",
	Long: `reddit-source pulls the hot listing of one subreddit, caches it between runs
and prints it as normalized reddit-post entries.

Examples:
  reddit-source setup                 # Choose the subreddit interactively
  reddit-source run                   # Fetch (or reuse the cache) and show the posts
  reddit-source run --records         # Print posts as plain JSON records
  reddit-source cache clear           # Force a refetch on the next run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cmd.Name() == "setup" {
			cfg, err = config.LoadOrDefault(configPath)
		} else {
			cfg, err = config.Load(configPath)
		}
		if err != nil {
			return errors.WithHint(err, "run 'reddit-source setup' to create a config file")
		}

		setupLogging(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "reddit-source.yaml", "Path to config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}

func setupLogging(cfg config.LoggingConfig) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output. Stdout is reserved for command output.
	var output = os.Stderr
	if cfg.Path != "" {
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to open log file, using stderr")
		} else {
			output = file
		}
	}

	// Configure format
	if cfg.Format == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}
}
