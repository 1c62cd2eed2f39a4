// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/pkg/types"
)

var pubmedCmd = &cobra.Command{
	Use:   "pubmed",
	Short: "Look up a single PubMed paper by PMID or query",
	Long: `PubMed resolves one paper, either directly by --pmid or as the top
PubMed hit for --query. When both are given the PMID wins.`,
	RunE: runPubMed,
}

func runPubMed(cmd *cobra.Command, args []string) error {
	pmid, _ := cmd.Flags().GetString("pmid")
	query, _ := cmd.Flags().GetString("query")

	paper, err := newPubMed(cfg.Search).Lookup(cmd.Context(), search.PaperRequest{
		PMID:  pmid,
		Query: queryFromArgs(query, args),
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Paper types.PubMedPaper `json:"paper"`
		}{paper})
	}

	fmt.Fprintf(w, "PMID:     %s\n", paper.PMID)
	fmt.Fprintf(w, "Title:    %s\n", orDash(paper.Title))
	fmt.Fprintf(w, "Journal:  %s\n", orDash(paper.Journal))
	if paper.Year != nil {
		fmt.Fprintf(w, "Year:     %d\n", *paper.Year)
	}
	fmt.Fprintf(w, "Authors:  %s\n", orDash(strings.Join(paper.Authors, ", ")))
	if paper.DOI != "" {
		fmt.Fprintf(w, "DOI:      %s\n", paper.DOI)
	}
	fmt.Fprintf(w, "URL:      %s\n", paper.URL)
	if paper.Abstract != "" {
		fmt.Fprintf(w, "\n%s\n", paper.Abstract)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	pubmedCmd.Flags().String("pmid", "", "PubMed identifier")
	pubmedCmd.Flags().String("query", "", "free-text query; the top hit is returned")
	pubmedCmd.Flags().Bool("json", false, "output the paper as JSON")

	rootCmd.AddCommand(pubmedCmd)
}
