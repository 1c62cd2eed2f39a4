// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/literature-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names follow the CSL-JSON/CSL-YAML schema so that
// output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
	PMID     string    `yaml:"PMID,omitempty"`
	Source   string    `yaml:"source,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the ranked items as a CSL-YAML list to w.
func FormatCSL(records []types.LiteratureRecord, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a record to a CSLItem. arXiv preprints without a DOI
// are typed as manuscripts.
func toCSLItem(r types.LiteratureRecord) CSLItem {
	item := CSLItem{
		ID:       cslID(r),
		Type:     "article-journal",
		Title:    r.Title,
		Abstract: r.Abstract,
		DOI:      r.DOI,
		URL:      r.URL,
		PMID:     r.ExternalIDs[types.SchemePMID],
		Source:   string(r.Source),
	}
	if r.Source == types.SourceArxiv && r.DOI == "" {
		item.Type = "manuscript"
	}

	for _, a := range r.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if r.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*r.Year}}}
	}
	return item
}

// cslID picks the most portable identifier for the citation key.
func cslID(r types.LiteratureRecord) string {
	switch {
	case r.DOI != "":
		return r.DOI
	case r.ExternalIDs[types.SchemeArxiv] != "":
		return "arXiv:" + r.ExternalIDs[types.SchemeArxiv]
	case r.ExternalIDs[types.SchemePMID] != "":
		return "PMID:" + r.ExternalIDs[types.SchemePMID]
	default:
		return r.ID
	}
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field. PubMed names such as
// "Jinek M" put the family name first.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	last := name[idx+1:]
	if isInitials(last) {
		return CSLName{Family: name[:idx], Given: last}
	}
	return CSLName{
		Given:  name[:idx],
		Family: last,
	}
}

// isInitials reports whether s looks like MEDLINE initials ("M", "JA").
func isInitials(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
