// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/literature-engine/pkg/types"
)

// Context budget defaults.
const (
	DefaultContextRecords = 12
	DefaultAbstractChars  = 1500
	DefaultContextChars   = 12000
)

// maxContextAuthors is how many authors a citation line lists before "et al".
const maxContextAuthors = 6

// ContextOptions bounds the literature context. Zero values take the
// defaults above.
type ContextOptions struct {
	MaxRecords  int
	MaxAbstract int
	MaxTotal    int
}

func (o ContextOptions) withDefaults() ContextOptions {
	if o.MaxRecords <= 0 {
		o.MaxRecords = DefaultContextRecords
	}
	if o.MaxAbstract <= 0 {
		o.MaxAbstract = DefaultAbstractChars
	}
	if o.MaxTotal <= 0 {
		o.MaxTotal = DefaultContextChars
	}
	return o
}

// BuildContext formats up to MaxRecords records as numbered evidence
// blocks separated by blank lines. Each block is a citation line followed
// by the abstract, cut to MaxAbstract characters. Blocks are added in order
// until the next one would push the total past MaxTotal characters. The
// first block is cut to MaxTotal when it is larger on its own, so any
// non-empty input yields a non-empty context. It returns "" for no records.
func BuildContext(records []types.LiteratureRecord, opts ContextOptions) string {
	opts = opts.withDefaults()
	if len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}

	const sep = "\n\n"
	var b strings.Builder
	total := 0
	for i, r := range records {
		block := formatBlock(i+1, r, opts.MaxAbstract)
		size := utf8.RuneCountInString(block)
		if i == 0 && size > opts.MaxTotal {
			block = truncateRunes(block, opts.MaxTotal-1)
			size = utf8.RuneCountInString(block)
		}
		if i > 0 {
			size += len(sep)
		}
		if total+size > opts.MaxTotal {
			break
		}
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(block)
		total += size
	}
	return b.String()
}

func formatBlock(n int, r types.LiteratureRecord, maxAbstract int) string {
	year := "n.d."
	if r.Year != nil {
		year = fmt.Sprintf("%d", *r.Year)
	}

	link := r.URL
	if r.DOI != "" {
		link = "https://doi.org/" + r.DOI
	}
	if link == "" {
		link = "no link"
	}

	abstract := truncateRunes(strings.TrimSpace(r.Abstract), maxAbstract)
	if abstract == "" {
		abstract = "not available"
	}

	return fmt.Sprintf("[%d] %s (%s). %s. %s. Citations: %s. Source: %s.\nAbstract: %s",
		n, titleOrPlaceholder(r.Title), year, authorList(r.Authors), link, r.CitationLabel(), r.Source, abstract)
}

func titleOrPlaceholder(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return "Untitled"
}

func authorList(authors []string) string {
	switch {
	case len(authors) == 0:
		return "Unknown authors"
	case len(authors) > maxContextAuthors:
		return strings.Join(authors[:maxContextAuthors], ", ") + " et al"
	default:
		return strings.Join(authors, ", ")
	}
}

// truncateRunes cuts s to max characters and marks the cut with an ellipsis.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:max]), " ") + "…"
}
