// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the literature-engine pipeline:
// the unified LiteratureRecord produced by every source adapter, the PubMed
// single-paper result, and the configuration for each component.
package types

import "strconv"

// Source identifies the provider that produced a record.
type Source string

const (
	SourceCrossref        Source = "crossref"
	SourceArxiv           Source = "arxiv"
	SourceSemanticScholar Source = "semantic_scholar"
	SourcePubMed          Source = "pubmed"
)

// AllSources lists every supported provider in default fan-out order.
var AllSources = []Source{SourceCrossref, SourceArxiv, SourceSemanticScholar, SourcePubMed}

// Valid reports whether s is one of the supported providers.
func (s Source) Valid() bool {
	switch s {
	case SourceCrossref, SourceArxiv, SourceSemanticScholar, SourcePubMed:
		return true
	}
	return false
}

// External identifier scheme names used as ExternalIDs keys.
const (
	SchemeDOI   = "DOI"
	SchemeArxiv = "arXiv"
	SchemeS2    = "S2"
	SchemePMID  = "PMID"
)

// LiteratureRecord is one paper as returned by a source adapter. Records
// leaving an adapter already carry normalized identifiers.
type LiteratureRecord struct {
	// ID is provider-assigned or derived and is used only for display keying.
	ID string `json:"id" yaml:"id"`

	// Source is the provider that produced the record. It never changes
	// after the adapter returns.
	Source Source `json:"source" yaml:"source"`

	// Title is the work title. Empty titles are allowed but cannot be
	// matched by title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, when known.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Authors lists display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is plain text with markup and line wrapping removed.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// DOI is lowercase with no resolver prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL is a dereferenceable link to the work.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// CitationCount is nil when the provider does not report citations.
	CitationCount *int `json:"citationCount,omitempty" yaml:"citation_count,omitempty"`

	// ExternalIDs maps scheme names (DOI, arXiv, S2, PMID) to identifiers.
	// Entries with empty values are never stored.
	ExternalIDs map[string]string `json:"externalIds,omitempty" yaml:"external_ids,omitempty"`
}

// Citations returns the citation count, treating an unknown count as zero.
func (r LiteratureRecord) Citations() int {
	if r.CitationCount == nil || *r.CitationCount < 0 {
		return 0
	}
	return *r.CitationCount
}

// CitationLabel renders the citation count for display.
func (r LiteratureRecord) CitationLabel() string {
	if r.CitationCount == nil {
		return "unknown"
	}
	return strconv.Itoa(*r.CitationCount)
}

// SetExternalID records an identifier under scheme. Empty values are ignored.
func (r *LiteratureRecord) SetExternalID(scheme, value string) {
	if value == "" {
		return
	}
	if r.ExternalIDs == nil {
		r.ExternalIDs = make(map[string]string)
	}
	r.ExternalIDs[scheme] = value
}

// Clone returns a deep copy so callers can hand out a record without
// aliasing the adapter's slices and maps.
func (r LiteratureRecord) Clone() LiteratureRecord {
	c := r
	if r.Year != nil {
		y := *r.Year
		c.Year = &y
	}
	if r.CitationCount != nil {
		n := *r.CitationCount
		c.CitationCount = &n
	}
	if r.Authors != nil {
		c.Authors = append([]string(nil), r.Authors...)
	}
	if r.ExternalIDs != nil {
		c.ExternalIDs = make(map[string]string, len(r.ExternalIDs))
		for k, v := range r.ExternalIDs {
			c.ExternalIDs[k] = v
		}
	}
	return c
}

// IntPtr returns a pointer to n. Adapters use it for optional fields.
func IntPtr(n int) *int { return &n }

// PubMedPaper is the result of a single-paper PubMed lookup. Optional fields
// are empty when PubMed has no data for the PMID.
type PubMedPaper struct {
	PMID     string   `json:"pmid" yaml:"pmid"`
	Title    string   `json:"title" yaml:"title"`
	Journal  string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year     *int     `json:"year,omitempty" yaml:"year,omitempty"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	DOI      string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL      string   `json:"url" yaml:"url"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// SourceResult is the settled outcome of one adapter call: its records, or
// the failure message when the call failed.
type SourceResult struct {
	Source  Source             `json:"source" yaml:"source"`
	Records []LiteratureRecord `json:"records" yaml:"records"`
	Error   string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the adapter call failed.
func (r SourceResult) Failed() bool {
	return r.Error != ""
}
