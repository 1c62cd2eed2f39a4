// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/literature-engine/internal/httputil"
	"github.com/pdiddy/literature-engine/internal/normalize"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,year,authors,externalIds,url,citationCount"

// semanticMaxLimit is the largest page the search endpoint accepts.
const semanticMaxLimit = 100

// SemanticScholarBackend queries the Semantic Scholar Graph API.
type SemanticScholarBackend struct {
	Fetch  *httputil.Fetcher
	APIKey string
}

// NewSemanticScholarBackend returns a backend configured from cfg.
func NewSemanticScholarBackend(cfg types.SearchConfig, client *http.Client) *SemanticScholarBackend {
	return &SemanticScholarBackend{
		Fetch:  newFetcher(types.SourceSemanticScholar, cfg, client, every(time.Second, 5)),
		APIKey: cfg.SemanticScholarAPIKey,
	}
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() types.Source { return types.SourceSemanticScholar }

// Search queries Semantic Scholar and maps each paper to a record.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, limit int) ([]types.LiteratureRecord, error) {
	if limit > semanticMaxLimit {
		limit = semanticMaxLimit
	}
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	var header http.Header
	if b.APIKey != "" {
		header = http.Header{"x-api-key": {b.APIKey}}
	}

	body, err := fetcherOrDefault(b.Fetch, b.Name()).Get(ctx, semanticAPIBase+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var sr semanticResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, badParse(b.Name(), err)
	}

	records := make([]types.LiteratureRecord, 0, len(sr.Data))
	for _, paper := range sr.Data {
		records = append(records, paper.record())
	}
	return records, nil
}

func (p semanticPaper) record() types.LiteratureRecord {
	doi := normalize.DOI(p.ExternalIDs.DOI)
	r := types.LiteratureRecord{
		ID:            p.PaperID,
		Source:        types.SourceSemanticScholar,
		Title:         normalize.Markup(p.Title),
		Authors:       make([]string, 0, len(p.Authors)),
		Abstract:      normalize.Markup(p.Abstract),
		DOI:           doi,
		URL:           p.URL,
		CitationCount: p.CitationCount,
	}
	if p.Year != nil {
		r.Year = yearPtr(*p.Year)
	}
	if r.URL == "" && p.PaperID != "" {
		r.URL = "https://www.semanticscholar.org/paper/" + p.PaperID
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			r.Authors = append(r.Authors, a.Name)
		}
	}
	r.SetExternalID(types.SchemeDOI, doi)
	r.SetExternalID(types.SchemeArxiv, normalize.ArxivID(p.ExternalIDs.ArXiv))
	r.SetExternalID(types.SchemePMID, p.ExternalIDs.PubMed)
	r.SetExternalID(types.SchemeS2, p.PaperID)
	return r
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Year          *int                `json:"year"`
	URL           string              `json:"url"`
	CitationCount *int                `json:"citationCount"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	PubMed   string `json:"PubMed"`
	CorpusID int    `json:"CorpusId"`
}
