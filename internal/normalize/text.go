// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Space collapses runs of whitespace, including line wrapping, into single
// spaces and trims the ends.
func Space(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// Title returns the comparison key for a work title: accents folded,
// lowercase, punctuation removed, whitespace collapsed. The result is only
// meaningful as a dedup key and is never displayed.
func Title(title string) string {
	folded := foldAccents(title)

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// foldAccents decomposes s and drops combining marks, so "Schrödinger"
// and "Schrodinger" compare equal.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Markup removes HTML and JATS tags, decodes entities and collapses
// whitespace. Crossref abstracts arrive as JATS XML fragments such as
// "<jats:p>Text</jats:p>".
func Markup(s string) string {
	if s == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return markupFallback(s)
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return Space(buf.String())
}

// blockElements get a separating space so adjacent paragraphs do not run
// together. JATS elements arrive with their namespace prefix intact.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "title": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"jats:p": true, "jats:title": true, "jats:sec": true, "jats:list-item": true,
}

func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		buf.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if block {
		buf.WriteString(" ")
	}
}

var markupTagRegex = regexp.MustCompile(`<[^>]*>`)

func markupFallback(s string) string {
	s = markupTagRegex.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return Space(s)
}
