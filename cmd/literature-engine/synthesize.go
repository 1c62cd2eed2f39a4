// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/internal/synth"
	"github.com/pdiddy/literature-engine/pkg/types"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize [query]",
	Short: "Search, then synthesize the top records into a short evidence summary",
	Long: `Synthesize runs a search and sends the top-ranked records, formatted as
numbered citation and abstract blocks, to the configured text-generation
backend (Claude or Gemini). Use --context-file to synthesize a literature
context prepared elsewhere instead of searching.`,
	RunE: runSynthesize,
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	sc := cfg.Synthesis
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		sc.Provider = types.SynthesisProvider(p)
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		sc.Model = m
	}

	s, err := newSynthesizer(cmd.Context(), sc)
	if errors.Is(err, synth.ErrNotConfigured) {
		return fmt.Errorf("%w: set ANTHROPIC_API_KEY or GEMINI_API_KEY, or add a key file to %s", err, ".secrets/")
	}
	if err != nil {
		return err
	}

	directive, _ := cmd.Flags().GetString("directive")
	var res synth.Result

	if path, _ := cmd.Flags().GetString("context-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading context file: %w", err)
		}
		res, err = s.Synthesize(cmd.Context(), synth.Request{LiteratureContext: string(data), Directive: directive})
		if err != nil {
			return err
		}
	} else {
		agg, closeStore, err := newAggregator(cfg.Search, cfg.Replay.Enabled)
		if err != nil {
			return err
		}
		defer closeStore()

		queryFlag, _ := cmd.Flags().GetString("query")
		query := queryFromArgs(queryFlag, args)
		out, err := agg.Run(cmd.Context(), search.Request{Query: query, Limit: cfg.Search.Limit})
		if err != nil {
			return err
		}
		if len(out.Response.Top) == 0 {
			return fmt.Errorf("nothing to synthesize: %s", out.Response.Warning)
		}
		if directive == "" {
			directive = "Synthesize the evidence on: " + query
		}
		res, err = s.SynthesizeRecords(cmd.Context(), out.Response.Top, directive)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}

func init() {
	synthesizeCmd.Flags().String("query", "", "research question to search for")
	synthesizeCmd.Flags().String("context-file", "", "synthesize this literature context instead of searching")
	synthesizeCmd.Flags().String("directive", "", "instruction for the synthesis (default: a general evidence summary)")
	synthesizeCmd.Flags().String("provider", "", "synthesis backend: claude or gemini (default from config)")
	synthesizeCmd.Flags().String("model", "", "model identifier (default per provider)")

	rootCmd.AddCommand(synthesizeCmd)
}
