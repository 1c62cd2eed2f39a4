// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-engine/pkg/types"
)

func TestQueryFileRoundTripReassembles(t *testing.T) {
	results := []types.SourceResult{
		{Source: types.SourceCrossref, Records: []types.LiteratureRecord{
			{ID: "10.1/a", Source: types.SourceCrossref, Title: "Gene Editing", Year: types.IntPtr(2020), DOI: "10.1/a", CitationCount: types.IntPtr(10)},
		}},
		{Source: types.SourceArxiv, Error: "request timed out"},
		{Source: types.SourceSemanticScholar, Records: []types.LiteratureRecord{
			{ID: "s2", Source: types.SourceSemanticScholar, Title: "Gene editing", Year: types.IntPtr(2020), DOI: "10.1/a", CitationCount: types.IntPtr(50)},
		}},
	}
	opts := AssembleOptions{CurrentYear: 2024, TopN: 5, Weights: types.DefaultRankWeights()}
	out := Assemble(results, opts)
	out.RunID = "run-1"
	out.Request = Request{Query: "gene editing", Limit: 10}

	path := filepath.Join(t.TempDir(), "query.yaml")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WriteQueryFile(path, out, now))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", qf.RunID)
	assert.Equal(t, "gene editing", qf.Query.Query)
	assert.Equal(t, 1, qf.Summary.Total)
	assert.Equal(t, 1, qf.Summary.DuplicatesRemoved)
	assert.Equal(t, []string{"arxiv: request timed out"}, qf.Summary.BackendErrors)
	assert.True(t, now.Equal(qf.Summary.Timestamp))

	again := qf.Outcome(opts)
	assert.Equal(t, "run-1", again.RunID)
	assert.Equal(t, out.Request, again.Request)
	require.Len(t, again.Response.Items, 1)
	assert.Equal(t, 50, *again.Response.Items[0].CitationCount)
	assert.Equal(t, out.DupsRemoved, again.DupsRemoved)
}

func TestReadQueryFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadQueryFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading query file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("query: [unterminated"), 0o644))
	_, err = ReadQueryFile(bad)
	assert.ErrorContains(t, err, "parsing query file")
}

func TestQueryFileOutcomeScoresAgainstSavedYear(t *testing.T) {
	results := []types.SourceResult{
		{Source: types.SourceCrossref, Records: []types.LiteratureRecord{
			{ID: "10.1/old", Source: types.SourceCrossref, Title: "Saved Paper", Year: types.IntPtr(2019), DOI: "10.1/old"},
		}},
	}
	qf := &QueryFile{
		Sources: results,
		Summary: QuerySummary{Timestamp: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name string
		year int
		want float64
	}{
		{"saved year", 0, 2},
		{"explicit year wins", 2030, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := qf.Outcome(AssembleOptions{CurrentYear: tt.year, Weights: types.DefaultRankWeights()})
			require.Len(t, out.Scores, 1)
			assert.InDelta(t, tt.want, out.Scores[0], 1e-9)
		})
	}
}
