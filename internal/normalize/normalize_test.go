// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDOI(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"resolver url", "https://doi.org/10.1/ABC", "10.1/abc"},
		{"dx resolver", "http://dx.doi.org/10.1038/Nature12373", "10.1038/nature12373"},
		{"bare host", "doi.org/10.5555/X", "10.5555/x"},
		{"scheme prefix", "doi:10.1000/XYZ", "10.1000/xyz"},
		{"scheme prefix uppercase", "DOI: 10.1000/xyz", "10.1000/xyz"},
		{"surrounding space", "  10.1126/science.1225829 ", "10.1126/science.1225829"},
		{"already canonical", "10.1/abc", "10.1/abc"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DOI(tt.raw))
		})
	}
}

func TestDOIIdempotent(t *testing.T) {
	for _, raw := range []string{"https://doi.org/10.1/ABC", "doi:10.2/Q", "10.3/z"} {
		once := DOI(raw)
		assert.Equal(t, once, DOI(once), raw)
	}
}

func TestArxivID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"prefixed versioned", "arXiv:1234.5678v3", "1234.5678"},
		{"lowercase prefix", "arxiv:2301.07041", "2301.07041"},
		{"abs url", "http://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"https abs url", "https://arxiv.org/abs/1706.03762", "1706.03762"},
		{"old style", "hep-th/9901001v1", "hep-th/9901001"},
		{"old style abs url", "http://arxiv.org/abs/hep-th/9901001v2", "hep-th/9901001"},
		{"bare", "1706.03762", "1706.03762"},
		{"v without digits kept", "1706.0376v", "1706.0376v"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArxivID(tt.raw))
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"case and punctuation", "Attention Is All You Need!", "attention is all you need"},
		{"whitespace", "  Deep   Learning\n\tfor  Proteins ", "deep learning for proteins"},
		{"accents folded", "Schrödinger's Équation", "schrodingers equation"},
		{"hyphen removed", "CRISPR-Cas9 Gene Editing", "crisprcas9 gene editing"},
		{"only punctuation", "?!...", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.title))
		})
	}
}

func TestTitleMatchesAcrossProviders(t *testing.T) {
	a := Title("A Programmable Dual-RNA-Guided DNA Endonuclease in Adaptive Bacterial Immunity")
	b := Title("A programmable dual-RNA–guided DNA endonuclease in adaptive bacterial immunity.")
	assert.Equal(t, a, b)
}

func TestMarkup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"jats paragraph", "<jats:p>Gene &amp; <jats:italic>editing</jats:italic> works.</jats:p>", "Gene & editing works."},
		{"jats sections", "<jats:title>Abstract</jats:title><jats:p>First.</jats:p><jats:p>Second.</jats:p>", "Abstract First. Second."},
		{"html", "<p>Hello <b>world</b></p><p>again</p>", "Hello world again"},
		{"plain text", "no markup here", "no markup here"},
		{"entities", "p &lt; 0.05", "p < 0.05"},
		{"wrapped", "line one\n  line two", "line one line two"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Markup(tt.raw))
		})
	}
}

func TestSpace(t *testing.T) {
	assert.Equal(t, "a b c", Space("  a\n  b\t\tc  "))
	assert.Equal(t, "", Space("\n\n"))
}
