// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// FormatTable writes the ranked items as a human-readable table to w.
func FormatTable(out Outcome, w io.Writer) {
	items := out.Response.Items
	if len(items) == 0 {
		fmt.Fprintln(w, "No results found.")
		if out.Response.Warning != "" {
			fmt.Fprintf(w, "warning: %s\n", out.Response.Warning)
		}
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-7s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 122))

	for i, r := range items {
		year := ""
		if r.Year != nil {
			year = fmt.Sprintf("%d", *r.Year)
		}
		cites := "-"
		if r.CitationCount != nil {
			cites = fmt.Sprintf("%d", *r.CitationCount)
		}
		score := 0.0
		if i < len(out.Scores) {
			score = out.Scores[i]
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-7s  %-6.2f  %s\n",
			i+1, truncate(r.Title, 60), formatAuthors(r.Authors), year, cites, score, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(items))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)

	for _, res := range out.Results {
		if res.Failed() {
			fmt.Fprintf(w, "warning: %s\n", res.Error)
		}
	}
}

// FormatJSON writes the response as indented JSON to w.
func FormatJSON(out Outcome, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Response)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
