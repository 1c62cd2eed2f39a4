// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search all literature sources and print merged, ranked results",
	Long: `Search sends the query to every enabled source concurrently, merges
records that describe the same work, and ranks the result by citation
count and recency. A failing source never fails the search; its error is
reported alongside the results.

Use --save to write a query file that --load can re-render later without
contacting any source.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	out, err := searchOutcome(cmd, args)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, out, time.Now()); err != nil {
			return err
		}
		logger.Info("saved query file", zap.String("path", path))
	}

	w := cmd.OutOrStdout()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	cslOutput, _ := cmd.Flags().GetBool("csl")
	bibOutput, _ := cmd.Flags().GetBool("bibtex")
	switch {
	case jsonOutput:
		return search.FormatJSON(out, w)
	case cslOutput:
		return search.FormatCSL(out.Response.Items, w)
	case bibOutput:
		return search.FormatBibTeX(out.Response.Items, w)
	default:
		search.FormatTable(out, w)
		return nil
	}
}

// searchOutcome runs a live search, or re-assembles a saved query file when
// --load is set.
func searchOutcome(cmd *cobra.Command, args []string) (search.Outcome, error) {
	sc := cfg.Search
	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		sc.TopN = top
	}

	if path, _ := cmd.Flags().GetString("load"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return search.Outcome{}, err
		}
		return qf.Outcome(search.AssembleOptions{TopN: sc.TopN, Weights: sc.Weights}), nil
	}

	if sources, _ := cmd.Flags().GetString("sources"); sources != "" {
		sc.Sources = parseSourcesFlag(sources)
	}
	record, _ := cmd.Flags().GetBool("record")

	agg, closeStore, err := newAggregator(sc, record || cfg.Replay.Enabled)
	if err != nil {
		return search.Outcome{}, err
	}
	defer closeStore()

	queryFlag, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit == 0 {
		limit = sc.Limit
	}

	out, err := agg.Run(cmd.Context(), search.Request{Query: queryFromArgs(queryFlag, args), Limit: limit})
	if err != nil {
		return search.Outcome{}, err
	}
	if agg.Recorder != nil {
		fmt.Fprintf(os.Stderr, "Recorded run %s\n", out.RunID)
	}
	return out, nil
}

func init() {
	searchCmd.Flags().String("query", "", "free-text research question")
	searchCmd.Flags().Int("limit", 0, "per-source result count hint (default from config, max 50)")
	searchCmd.Flags().Int("top", 0, "length of the ranked top slice (default from config)")
	searchCmd.Flags().String("sources", "", "comma-separated sources: crossref, arxiv, semantic_scholar, pubmed")
	searchCmd.Flags().Bool("json", false, "output the response as JSON")
	searchCmd.Flags().Bool("csl", false, "output merged records as CSL-YAML")
	searchCmd.Flags().Bool("bibtex", false, "output merged records as BibTeX")
	searchCmd.Flags().String("save", "", "write a query file with the request, per-source results and response")
	searchCmd.Flags().String("load", "", "re-render a saved query file instead of searching")
	searchCmd.Flags().Bool("record", false, "record the run in the replay store")

	searchCmd.MarkFlagsMutuallyExclusive("json", "csl", "bibtex")

	rootCmd.AddCommand(searchCmd)
}
