// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/literature-engine/internal/httputil"
	"github.com/pdiddy/literature-engine/internal/normalize"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Fetch *httputil.Fetcher
}

// NewArxivBackend returns a backend configured from cfg. arXiv asks clients
// to space requests about three seconds apart.
func NewArxivBackend(cfg types.SearchConfig, client *http.Client) *ArxivBackend {
	return &ArxivBackend{Fetch: newFetcher(types.SourceArxiv, cfg, client, every(3*time.Second, 3))}
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() types.Source { return types.SourceArxiv }

// Search queries arXiv across all fields and decodes the Atom feed.
func (b *ArxivBackend) Search(ctx context.Context, query string, limit int) ([]types.LiteratureRecord, error) {
	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	body, err := fetcherOrDefault(b.Fetch, b.Name()).Get(ctx, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, badParse(b.Name(), err)
	}

	records := make([]types.LiteratureRecord, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		// Error feeds carry a single entry whose id is not an abstract URL.
		if !strings.Contains(entry.ID, "/abs/") {
			continue
		}
		records = append(records, entry.record())
	}
	return records, nil
}

func (e arxivEntry) record() types.LiteratureRecord {
	arxivID := normalize.ArxivID(e.ID)
	doi := normalize.DOI(e.DOI)

	r := types.LiteratureRecord{
		ID:       arxivID,
		Source:   types.SourceArxiv,
		Title:    normalize.Space(e.Title),
		Year:     e.year(),
		Authors:  make([]string, 0, len(e.Authors)),
		Abstract: normalize.Space(e.Summary),
		DOI:      doi,
		URL:      e.alternateLink(),
	}
	for _, a := range e.Authors {
		if name := normalize.Space(a.Name); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	r.SetExternalID(types.SchemeArxiv, arxivID)
	r.SetExternalID(types.SchemeDOI, doi)
	return r
}

func (e arxivEntry) year() *int {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		return yearPtr(t.Year())
	}
	return leadingYear(strings.TrimSpace(e.Published))
}

// alternateLink returns the abstract page link, falling back to the entry id.
func (e arxivEntry) alternateLink() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	return strings.TrimSpace(e.ID)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
	DOI       string        `xml:"http://arxiv.org/schemas/atom doi"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}
