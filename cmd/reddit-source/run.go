package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reddit-source/internal/pipeline"
	"reddit-source/internal/sources/reddit"
	"reddit-source/internal/state"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the pipeline once (or repeatedly with --watch)",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		jsonOut, _ := flags.GetBool("json")
		recordsOut, _ := flags.GetBool("records")
		watch, _ := flags.GetBool("watch")

		// Runtime parameters override the config file and environment.
		rc := cfg.Sources.Reddit
		if flags.Changed("subreddit") {
			rc.SubredditName, _ = flags.GetString("subreddit")
		}
		if flags.Changed("title-case") {
			rc.TitleCase, _ = flags.GetBool("title-case")
		}
		if flags.Changed("interval") {
			cfg.Pipeline.IntervalSeconds, _ = flags.GetInt("interval")
		}

		if !rc.Enabled {
			return errors.WithHint(errors.New("the reddit source is disabled"),
				"set sources.reddit.enabled: true in the config file")
		}

		store, err := state.Open(cfg.State)
		if err != nil {
			return err
		}
		defer store.Close()

		manager := pipeline.NewManager(store, cfg.Pipeline)
		manager.Register(reddit.New(rc))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		out := cmd.OutOrStdout()
		emit := func(data pipeline.Data) error {
			switch {
			case recordsOut:
				return writeRecords(out, data)
			case jsonOut:
				return writeJSON(out, data)
			default:
				return writeTable(out, data)
			}
		}

		if watch {
			if cfg.Pipeline.IntervalSeconds <= 0 {
				return errors.WithHint(errors.New("--watch needs an interval"),
					"pass --interval or set pipeline.interval_seconds")
			}
			return manager.Watch(ctx, func(data pipeline.Data) {
				if err := emit(data); err != nil {
					log.Error().Err(err).Msg("Failed to write output")
				}
			})
		}

		data, err := manager.Run(ctx)
		if err != nil {
			return err
		}
		return emit(data)
	},
}

func init() {
	runCmd.Flags().String("subreddit", "", "Subreddit to fetch (overrides config)")
	runCmd.Flags().Bool("title-case", false, "Capitalize every word of post titles")
	runCmd.Flags().Bool("json", false, "Print the pipeline data object as JSON")
	runCmd.Flags().Bool("records", false, "Print reddit posts as JSON records without metadata")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run the pipeline every interval")
	runCmd.Flags().Int("interval", 0, "Seconds between runs in watch mode (overrides config)")
}

func writeJSON(w io.Writer, data pipeline.Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// writeRecords prints only reddit-post entries, stripped of metadata.
func writeRecords(w io.Writer, data pipeline.Data) error {
	records := []reddit.PostRecord{}
	for _, e := range data.EntriesOf(reddit.Model().Ref()) {
		if post, ok := e.(reddit.Post); ok {
			records = append(records, post.Record())
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeTable(w io.Writer, data pipeline.Data) error {
	rows := pterm.TableData{{"Title", "Subreddit", "URL"}}
	for _, e := range data.EntriesOf(reddit.Model().Ref()) {
		if post, ok := e.(reddit.Post); ok {
			rows = append(rows, []string{post.Title, post.Subreddit, post.URL})
		}
	}
	if len(rows) == 1 {
		pterm.Warning.Println("No posts")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(w).Render()
}
