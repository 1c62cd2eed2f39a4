// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-engine/internal/replay"
	"github.com/pdiddy/literature-engine/internal/search"
)

var replayCmd = &cobra.Command{
	Use:   "replay [run-id]",
	Short: "List recorded runs or re-run merge and rank over one",
	Long: `Replay reads runs recorded with search --record (or replay.enabled) from
the SQLite replay store. With --list it prints recent runs; with a run ID
it re-runs deduplication and ranking over the stored per-source results
without contacting any source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	store, err := replay.Open(cfg.Replay.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	list, _ := cmd.Flags().GetBool("list")
	if list || len(args) == 0 {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(w, "No recorded runs.")
			return nil
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-7s  %-8s  %s\n", "Run", "Recorded", "Records", "Failures", "Query")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for _, r := range runs {
			fmt.Fprintf(w, "%-36s  %-20s  %-7d  %-8d  %s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Records, r.Failures, r.Query)
		}
		return nil
	}

	out, err := store.Replay(cmd.Context(), args[0], search.AssembleOptions{
		TopN:    cfg.Search.TopN,
		Weights: cfg.Search.Weights,
	})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(out, w)
	}
	fmt.Fprintf(w, "Run %s: %q\n\n", out.RunID, out.Request.Query)
	search.FormatTable(out, w)
	return nil
}

func init() {
	replayCmd.Flags().Bool("list", false, "list recorded runs")
	replayCmd.Flags().Int("limit", 20, "number of runs to list")
	replayCmd.Flags().Bool("json", false, "output the replayed response as JSON")

	rootCmd.AddCommand(replayCmd)
}
