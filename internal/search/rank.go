// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"math"
	"sort"

	"github.com/pdiddy/literature-engine/pkg/types"
)

// DefaultTopN is the length of the ranked top slice when none is configured.
const DefaultTopN = 12

// unknownAge is the age assumed for records without a publication year.
const unknownAge = 10

// Score returns the ranking score of r:
//
//	log10(1 + citations) * weights.Citation + recency + weights.SourceNudge[source]
func Score(r types.LiteratureRecord, currentYear int, weights types.RankWeights) float64 {
	citation := math.Log10(1+float64(r.Citations())) * weights.Citation
	return citation + RecencyScore(r.Year, currentYear) + weights.SourceNudge[r.Source]
}

// RecencyScore gives 2 points to works at most two years old, 1 point to
// works at most five years old, and nothing otherwise. A missing year
// counts as ten years old.
func RecencyScore(year *int, currentYear int) float64 {
	age := unknownAge
	if year != nil {
		age = currentYear - *year
	}
	switch {
	case age <= 2:
		return 2
	case age <= 5:
		return 1
	default:
		return 0
	}
}

// Rank sorts records by descending score. Records with equal scores keep
// their input order. It returns the sorted records, the first topN of them,
// and the score of each sorted record.
func Rank(records []types.LiteratureRecord, currentYear, topN int, weights types.RankWeights) ([]types.LiteratureRecord, []types.LiteratureRecord, []float64) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	type scored struct {
		rec   types.LiteratureRecord
		score float64
	}
	items := make([]scored, len(records))
	for i, r := range records {
		items[i] = scored{rec: r, score: Score(r, currentYear, weights)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	sorted := make([]types.LiteratureRecord, len(items))
	scores := make([]float64, len(items))
	for i, it := range items {
		sorted[i] = it.rec
		scores[i] = it.score
	}

	n := min(topN, len(sorted))
	top := make([]types.LiteratureRecord, n)
	copy(top, sorted[:n])
	return sorted, top, scores
}
