package main

import (
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"reddit-source/internal/config"
	"reddit-source/internal/setup"
	"reddit-source/internal/sources/reddit"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the subreddit interactively and save it to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		current := reddit.Options{
			SubredditName: cfg.Sources.Reddit.SubredditName,
			TitleCase:     cfg.Sources.Reddit.TitleCase,
		}
		// Setup only asks questions; it never talks to Reddit.
		src := reddit.NewWithClient(nil, current)

		answers, err := src.GetSetup(current)(cmd.Context(), setup.TerminalPrompter{})
		if err != nil {
			return err
		}
		opts := src.GetOptionsFromSetup(answers)

		if err := config.SetSubreddit(configPath, opts.SubredditName); err != nil {
			return errors.Wrap(err, "failed to save config")
		}

		pterm.Success.Printfln("Saved configuration to %s", configPath)
		return nil
	},
}
