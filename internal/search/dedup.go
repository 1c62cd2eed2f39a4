// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strconv"

	"github.com/pdiddy/literature-engine/internal/normalize"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// Deduplicate collapses records that describe the same work into one
// representative each and reports how many were removed.
//
// Records are matched on the first available key: DOI, then arXiv ID, then
// normalized title plus year. A record with none of these is dropped and
// counted as removed. When two records share a key the one with strictly
// more citations wins; on equal citations a record with an abstract beats
// one without; otherwise the first one seen stays. Output follows the
// order in which keys were first seen, and representatives are copies, so
// the input slice is never mutated.
func Deduplicate(records []types.LiteratureRecord) ([]types.LiteratureRecord, int) {
	index := make(map[string]int, len(records))
	merged := make([]types.LiteratureRecord, 0, len(records))
	removed := 0

	for _, r := range records {
		key := dedupKey(r)
		if key == "" {
			removed++
			continue
		}
		idx, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, r.Clone())
			continue
		}
		removed++
		if supersedes(r, merged[idx]) {
			merged[idx] = r.Clone()
		}
	}
	return merged, removed
}

// dedupKey returns the match key for r, or "" when r has no usable
// identifier or title.
func dedupKey(r types.LiteratureRecord) string {
	doi := r.DOI
	if doi == "" {
		doi = normalize.DOI(r.ExternalIDs[types.SchemeDOI])
	}
	if doi != "" {
		return "doi:" + doi
	}

	if arxiv := normalize.ArxivID(r.ExternalIDs[types.SchemeArxiv]); arxiv != "" {
		return "arxiv:" + arxiv
	}

	title := normalize.Title(r.Title)
	if title == "" {
		return ""
	}
	year := ""
	if r.Year != nil {
		year = strconv.Itoa(*r.Year)
	}
	return "title:" + title + "|year:" + year
}

// supersedes reports whether candidate should replace the current
// representative of its group.
func supersedes(candidate, current types.LiteratureRecord) bool {
	if cc, rc := candidate.Citations(), current.Citations(); cc != rc {
		return cc > rc
	}
	return candidate.Abstract != "" && current.Abstract == ""
}
