// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-engine/pkg/types"
)

func sampleOutcome() Outcome {
	results := []types.SourceResult{
		{Source: types.SourceCrossref, Records: []types.LiteratureRecord{
			{ID: "10.1/a", Source: types.SourceCrossref, Title: "Paper A", DOI: "10.1/a", Year: types.IntPtr(2025), Authors: []string{"Alice", "Bob"}, CitationCount: types.IntPtr(12)},
		}},
		{Source: types.SourceArxiv, Records: []types.LiteratureRecord{
			{ID: "1234.5678", Source: types.SourceArxiv, Title: "Paper B", Authors: []string{"Carol"}, ExternalIDs: map[string]string{"arXiv": "1234.5678"}},
			{ID: "1234.0001", Source: types.SourceArxiv, Title: "Paper A", DOI: "10.1/a"},
		}},
		{Source: types.SourcePubMed, Records: []types.LiteratureRecord{}, Error: "pubmed: HTTP 500"},
	}
	return Assemble(results, AssembleOptions{CurrentYear: 2026, Weights: types.DefaultRankWeights()})
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleOutcome(), &buf)
	out := buf.String()

	for _, want := range []string{"Rank", "Cites", "Paper A", "Alice et al.", "2025", "12", "crossref", "2 results", "(1 duplicates removed)", "warning: pubmed: HTTP 500"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	out := Assemble([]types.SourceResult{{Source: types.SourceArxiv, Error: "arxiv: request timed out"}}, AssembleOptions{CurrentYear: 2026})

	var buf bytes.Buffer
	FormatTable(out, &buf)
	assert.Contains(t, buf.String(), "No results found.")
	assert.Contains(t, buf.String(), "warning: arxiv: request timed out")
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(sampleOutcome(), &buf))

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "items")
	assert.Contains(t, decoded, "top")
	assert.NotContains(t, decoded, "warning")

	var items []types.LiteratureRecord
	require.NoError(t, json.Unmarshal(decoded["items"], &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Paper A", items[0].Title)
}

func TestFormatJSONEmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(Assemble(nil, AssembleOptions{}), &buf))
	assert.Contains(t, buf.String(), `"items": []`)
	assert.Contains(t, buf.String(), `"top": []`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Schrö...", truncate("Schrödinger", 8))
}

func TestQueryFileRoundTrip(t *testing.T) {
	out := sampleOutcome()
	out.RunID = "run-1"
	out.Request = Request{Query: "paper", Limit: 20}

	path := filepath.Join(t.TempDir(), "query.yaml")
	require.NoError(t, WriteQueryFile(path, out, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", qf.RunID)
	assert.Equal(t, "paper", qf.Query.Query)
	assert.Equal(t, 2, qf.Summary.Total)
	assert.Equal(t, 1, qf.Summary.DuplicatesRemoved)
	assert.Equal(t, []string{"pubmed: HTTP 500"}, qf.Summary.BackendErrors)
	require.Len(t, qf.Response.Items, 2)

	replayed := qf.Outcome(AssembleOptions{CurrentYear: 2026, Weights: types.DefaultRankWeights()})
	assert.Equal(t, "run-1", replayed.RunID)
	require.Len(t, replayed.Response.Items, 2)
	assert.Equal(t, out.Response.Items[0].Title, replayed.Response.Items[0].Title)
	assert.Equal(t, out.DupsRemoved, replayed.DupsRemoved)
}

func TestReadQueryFileMissing(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
