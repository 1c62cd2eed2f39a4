// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/literature-engine/internal/httputil"
	"github.com/pdiddy/literature-engine/internal/normalize"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

const crossrefSelect = "DOI,title,author,issued,published,published-print,published-online,abstract,is-referenced-by-count,URL"

// CrossrefBackend queries the Crossref REST API. Setting Mailto admits
// requests to the polite pool.
type CrossrefBackend struct {
	Fetch  *httputil.Fetcher
	Mailto string
}

// NewCrossrefBackend returns a backend configured from cfg. The contact
// email is appended to the User-Agent as Crossref asks.
func NewCrossrefBackend(cfg types.SearchConfig, client *http.Client) *CrossrefBackend {
	f := newFetcher(types.SourceCrossref, cfg, client, perSecond(10))
	if cfg.CrossrefMailto != "" {
		f.UserAgent = fmt.Sprintf("%s (mailto:%s)", f.UserAgent, cfg.CrossrefMailto)
	}
	return &CrossrefBackend{Fetch: f, Mailto: cfg.CrossrefMailto}
}

// Name returns the backend identifier.
func (b *CrossrefBackend) Name() types.Source { return types.SourceCrossref }

// Search queries Crossref and maps each work to a record.
func (b *CrossrefBackend) Search(ctx context.Context, query string, limit int) ([]types.LiteratureRecord, error) {
	params := url.Values{
		"query":  {query},
		"rows":   {strconv.Itoa(limit)},
		"select": {crossrefSelect},
	}
	if b.Mailto != "" {
		params.Set("mailto", b.Mailto)
	}

	body, err := fetcherOrDefault(b.Fetch, b.Name()).Get(ctx, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, badParse(b.Name(), err)
	}

	records := make([]types.LiteratureRecord, 0, len(cr.Message.Items))
	for i, item := range cr.Message.Items {
		records = append(records, item.record(i))
	}
	return records, nil
}

func (w crossrefWork) record(pos int) types.LiteratureRecord {
	doi := normalize.DOI(w.DOI)
	r := types.LiteratureRecord{
		ID:            doi,
		Source:        types.SourceCrossref,
		Title:         normalize.Space(w.Title.first()),
		Year:          w.year(),
		Authors:       make([]string, 0, len(w.Authors)),
		Abstract:      normalize.Markup(w.Abstract),
		DOI:           doi,
		URL:           w.URL,
		CitationCount: w.ReferencedBy,
	}
	if r.ID == "" {
		r.ID = fmt.Sprintf("crossref-%d", pos+1)
	}
	if r.URL == "" && doi != "" {
		r.URL = "https://doi.org/" + doi
	}
	for _, a := range w.Authors {
		if name := a.display(); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	r.SetExternalID(types.SchemeDOI, doi)
	return r
}

// year takes the first date that carries a year, in Crossref's order of
// authority: issued, published, print, online.
func (w crossrefWork) year() *int {
	for _, d := range []*crossrefDate{w.Issued, w.Published, w.PublishedPrint, w.PublishedOnline} {
		if y := d.year(); y != nil {
			return y
		}
	}
	return nil
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Status  string `json:"status"`
	Message struct {
		TotalResults int            `json:"total-results"`
		Items        []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI             string           `json:"DOI"`
	Title           stringOrList     `json:"title"`
	Authors         []crossrefAuthor `json:"author"`
	Issued          *crossrefDate    `json:"issued"`
	Published       *crossrefDate    `json:"published"`
	PublishedPrint  *crossrefDate    `json:"published-print"`
	PublishedOnline *crossrefDate    `json:"published-online"`
	Abstract        string           `json:"abstract"`
	ReferencedBy    *int             `json:"is-referenced-by-count"`
	URL             string           `json:"URL"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

func (a crossrefAuthor) display() string {
	full := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
	if full != "" {
		return full
	}
	return strings.TrimSpace(a.Name)
}

// crossrefDate holds "date-parts": [[year, month, day]]. Unknown parts are
// null, so elements are pointers.
type crossrefDate struct {
	DateParts [][]*int `json:"date-parts"`
}

func (d *crossrefDate) year() *int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return nil
	}
	return yearPtr(*d.DateParts[0][0])
}

// stringOrList accepts either a JSON string or an array of strings. Crossref
// returns titles as arrays, but some mirrors flatten them.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = stringOrList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

func (s stringOrList) first() string {
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
