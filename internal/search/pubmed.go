// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/internal/httputil"
	"github.com/pdiddy/literature-engine/internal/normalize"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// eutilsBase is the NCBI E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultEUtilsTool identifies this client to NCBI when none is configured.
const DefaultEUtilsTool = "literature-engine"

// PubMedBackend queries PubMed through E-utilities: esearch for ids,
// esummary for bibliographic fields, efetch for abstracts.
type PubMedBackend struct {
	Fetch  *httputil.Fetcher
	Tool   string
	Email  string
	APIKey string

	// Logger receives degraded-abstract warnings. Nil disables logging.
	Logger *zap.Logger
}

// NewPubMedBackend returns a backend configured from cfg. NCBI allows three
// requests per second without an API key and ten with one.
func NewPubMedBackend(cfg types.SearchConfig, client *http.Client) *PubMedBackend {
	perSec := 3
	if cfg.PubMed.APIKey != "" {
		perSec = 10
	}
	tool := cfg.PubMed.Tool
	if tool == "" {
		tool = DefaultEUtilsTool
	}
	return &PubMedBackend{
		Fetch:  newFetcher(types.SourcePubMed, cfg, client, perSecond(perSec)),
		Tool:   tool,
		Email:  cfg.PubMed.Email,
		APIKey: cfg.PubMed.APIKey,
	}
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() types.Source { return types.SourcePubMed }

// Search runs esearch, esummary and efetch in sequence. An esearch or
// esummary failure fails the call; an efetch failure only leaves abstracts
// empty.
func (b *PubMedBackend) Search(ctx context.Context, query string, limit int) ([]types.LiteratureRecord, error) {
	ids, err := b.esearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []types.LiteratureRecord{}, nil
	}

	summaries, err := b.esummary(ctx, ids)
	if err != nil {
		return nil, err
	}
	abstracts := b.abstracts(ctx, ids)

	records := make([]types.LiteratureRecord, 0, len(ids))
	for _, id := range ids {
		s, ok := summaries[id]
		if !ok {
			continue
		}
		records = append(records, s.record(id, abstracts[id]))
	}
	return records, nil
}

// PaperRequest selects a single PubMed paper by PMID or by the best match
// for a free-text query. PMID wins when both are set.
type PaperRequest struct {
	PMID  string `json:"pmid,omitempty"`
	Query string `json:"query,omitempty"`
}

// Lookup returns one paper. A query with no hit is NOT_FOUND; a PMID that
// PubMed does not know returns a paper carrying only the PMID and URL.
func (b *PubMedBackend) Lookup(ctx context.Context, req PaperRequest) (types.PubMedPaper, error) {
	pmid := strings.TrimSpace(req.PMID)
	query := strings.TrimSpace(req.Query)

	if pmid == "" {
		if query == "" {
			return types.PubMedPaper{}, errors.InvalidInput("pmid or query is required")
		}
		ids, err := b.esearch(ctx, query, 1)
		if err != nil {
			return types.PubMedPaper{}, err
		}
		if len(ids) == 0 {
			return types.PubMedPaper{}, errors.NotFound("no PubMed article matches %q", query)
		}
		pmid = ids[0]
	}

	paper := types.PubMedPaper{PMID: pmid, URL: pubmedURL(pmid)}

	summaries, err := b.esummary(ctx, []string{pmid})
	if err != nil {
		return types.PubMedPaper{}, err
	}
	s, ok := summaries[pmid]
	if !ok {
		return paper, nil
	}

	paper.Title = normalize.Markup(s.Title)
	paper.Journal = s.journal()
	paper.Year = leadingYear(s.PubDate)
	paper.Authors = s.authors()
	paper.DOI = s.doi()
	paper.Abstract = b.abstracts(ctx, []string{pmid})[pmid]
	return paper, nil
}

// params returns the query parameters every E-utilities call carries.
func (b *PubMedBackend) params(extra url.Values) url.Values {
	v := url.Values{"db": {"pubmed"}}
	tool := b.Tool
	if tool == "" {
		tool = DefaultEUtilsTool
	}
	v.Set("tool", tool)
	if b.Email != "" {
		v.Set("email", b.Email)
	}
	if b.APIKey != "" {
		v.Set("api_key", b.APIKey)
	}
	for k, vs := range extra {
		v[k] = vs
	}
	return v
}

func (b *PubMedBackend) get(ctx context.Context, endpoint string, extra url.Values) ([]byte, error) {
	u := eutilsBase + "/" + endpoint + "?" + b.params(extra).Encode()
	return fetcherOrDefault(b.Fetch, b.Name()).Get(ctx, u, nil)
}

func (b *PubMedBackend) esearch(ctx context.Context, term string, retmax int) ([]string, error) {
	body, err := b.get(ctx, "esearch.fcgi", url.Values{
		"term":    {term},
		"retmax":  {strconv.Itoa(retmax)},
		"retmode": {"json"},
	})
	if err != nil {
		return nil, err
	}

	var sr esearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, badParse(b.Name(), err)
	}
	if sr.Result.Error != "" {
		return nil, errors.BadUpstreamResponse(string(b.Name()), sr.Result.Error, nil)
	}
	return sr.Result.IDList, nil
}

// esummary returns the summaries PubMed could resolve, keyed by PMID.
// Unknown ids are absent from the map.
func (b *PubMedBackend) esummary(ctx context.Context, ids []string) (map[string]esummaryDoc, error) {
	body, err := b.get(ctx, "esummary.fcgi", url.Values{
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	})
	if err != nil {
		return nil, err
	}

	var sr struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, badParse(b.Name(), err)
	}

	docs := make(map[string]esummaryDoc, len(ids))
	for _, id := range ids {
		raw, ok := sr.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, badParse(b.Name(), err)
		}
		if doc.Error != "" {
			continue
		}
		docs[id] = doc
	}
	return docs, nil
}

// abstracts fetches MEDLINE text for ids and returns the parsed abstracts.
// Failures are logged and yield an empty map.
func (b *PubMedBackend) abstracts(ctx context.Context, ids []string) map[string]string {
	body, err := b.get(ctx, "efetch.fcgi", url.Values{
		"id":      {strings.Join(ids, ",")},
		"rettype": {"medline"},
		"retmode": {"text"},
	})
	if err != nil {
		if b.Logger != nil {
			b.Logger.Warn("efetch failed, abstracts left empty",
				zap.Int("ids", len(ids)),
				zap.Error(err))
		}
		return map[string]string{}
	}
	return parseMedlineAbstracts(string(body))
}

func pubmedURL(pmid string) string {
	return "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
}

func (d esummaryDoc) record(pmid, abstract string) types.LiteratureRecord {
	doi := d.doi()
	r := types.LiteratureRecord{
		ID:       pmid,
		Source:   types.SourcePubMed,
		Title:    normalize.Markup(d.Title),
		Year:     leadingYear(d.PubDate),
		Authors:  d.authors(),
		Abstract: abstract,
		DOI:      doi,
		URL:      pubmedURL(pmid),
	}
	if r.Authors == nil {
		r.Authors = []string{}
	}
	r.SetExternalID(types.SchemePMID, pmid)
	r.SetExternalID(types.SchemeDOI, doi)
	return r
}

func (d esummaryDoc) authors() []string {
	var names []string
	for _, a := range d.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

func (d esummaryDoc) doi() string {
	for _, id := range d.ArticleIDs {
		if strings.EqualFold(id.IDType, "doi") {
			return normalize.DOI(id.Value)
		}
	}
	return ""
}

func (d esummaryDoc) journal() string {
	if d.FullJournalName != "" {
		return d.FullJournalName
	}
	return d.Source
}

// E-utilities JSON structures.
type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}

type esummaryDoc struct {
	UID             string `json:"uid"`
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	Source          string `json:"source"`
	PubDate         string `json:"pubdate"`
	Authors         []struct {
		Name     string `json:"name"`
		AuthType string `json:"authtype"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
	Error string `json:"error"`
}
