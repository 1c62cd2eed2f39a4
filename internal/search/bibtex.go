// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/literature-engine/internal/normalize"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// FormatBibTeX writes the records as BibTeX entries. Keys are AuthorYear,
// with a letter suffix when two records would collide. arXiv preprints
// without a DOI become @misc entries with eprint fields.
func FormatBibTeX(records []types.LiteratureRecord, w io.Writer) error {
	var b strings.Builder
	used := make(map[string]int, len(records))

	for _, r := range records {
		key := bibKey(r)
		if n := used[key]; n > 0 {
			used[key]++
			key += string(rune('a' + n - 1))
		} else {
			used[key] = 1
		}

		arxiv := r.ExternalIDs[types.SchemeArxiv]
		entryType := "article"
		if r.DOI == "" && arxiv != "" {
			entryType = "misc"
		}

		fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)
		fmt.Fprintf(&b, "  title = {%s},\n", bibEscape(r.Title))
		if len(r.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", bibAuthors(r.Authors))
		}
		if r.Year != nil {
			fmt.Fprintf(&b, "  year = {%d},\n", *r.Year)
		}
		if r.DOI != "" {
			fmt.Fprintf(&b, "  doi = {%s},\n", r.DOI)
		}
		if arxiv != "" {
			fmt.Fprintf(&b, "  eprint = {%s},\n", arxiv)
			fmt.Fprintf(&b, "  archivePrefix = {arXiv},\n")
		}
		if pmid := r.ExternalIDs[types.SchemePMID]; pmid != "" {
			fmt.Fprintf(&b, "  pmid = {%s},\n", pmid)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "  url = {%s},\n", r.URL)
		}
		fmt.Fprintf(&b, "}\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// bibKey builds the AuthorYear key from the first author's family name,
// falling back to the first title word.
func bibKey(r types.LiteratureRecord) string {
	stem := ""
	if len(r.Authors) > 0 {
		n := parseAuthorName(r.Authors[0])
		stem = n.Family
		if stem == "" {
			stem = n.Literal
		}
	}
	stem = keyWord(stem)
	if stem == "" {
		stem = keyWord(r.Title)
	}
	if stem == "" {
		stem = "Ref"
	}

	year := "nd"
	if r.Year != nil {
		year = strconv.Itoa(*r.Year)
	}
	return stem + year
}

// keyWord returns the first word of s, accent-folded, ASCII letters only,
// capitalized.
func keyWord(s string) string {
	fields := strings.Fields(normalize.Title(s))
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range fields[0] {
		if c < unicode.MaxASCII && unicode.IsLetter(c) {
			b.WriteRune(c)
		}
	}
	word := b.String()
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func bibAuthors(authors []string) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		n := parseAuthorName(a)
		switch {
		case n.Literal != "":
			names = append(names, "{"+bibEscape(n.Literal)+"}")
		case n.Given != "":
			names = append(names, bibEscape(n.Family)+", "+bibEscape(n.Given))
		default:
			names = append(names, bibEscape(n.Family))
		}
	}
	return strings.Join(names, " and ")
}

var bibReplacer = strings.NewReplacer("{", `\{`, "}", `\}`, "&", `\&`, "%", `\%`, "#", `\#`)

func bibEscape(s string) string {
	return bibReplacer.Replace(s)
}
