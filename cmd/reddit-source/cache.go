package main

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"reddit-source/internal/sources/reddit"
	"reddit-source/internal/state"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset persisted plugin contexts",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached plugin contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.Open(cfg.State)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}

		rows := pterm.TableData{{"Plugin", "Entries"}}
		for _, name := range snap.Plugins() {
			var c struct {
				Entries *[]json.RawMessage `json:"entries"`
			}
			count := "-"
			if err := json.Unmarshal(snap[name], &c); err == nil && c.Entries != nil {
				count = fmt.Sprint(len(*c.Entries))
			}
			rows = append(rows, []string{name, count})
		}

		if len(rows) == 1 {
			pterm.Info.Printfln("Cache at %s is empty", cfg.State.Path)
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(cmd.OutOrStdout()).Render()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [plugin]",
	Short: "Drop a plugin's cached context so the next run fetches again",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plugin := reddit.SourceName
		if len(args) == 1 {
			plugin = args[0]
		}

		store, err := state.Open(cfg.State)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		snap, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if !snap.Delete(plugin) {
			pterm.Info.Printfln("Nothing cached for %s", plugin)
			return nil
		}
		if err := store.Save(ctx, snap); err != nil {
			return err
		}

		pterm.Success.Printfln("Cleared cached context of %s", plugin)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
