// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes identifiers and text so that records from
// different providers can be compared. All functions are pure.
package normalize

import (
	"regexp"
	"strings"
)

var (
	doiResolverPrefix = regexp.MustCompile(`(?i)^(https?://)?(dx\.)?doi\.org/`)
	doiSchemePrefix   = regexp.MustCompile(`(?i)^doi:\s*`)
	arxivSchemePrefix = regexp.MustCompile(`(?i)^arxiv:\s*`)
	arxivVersion      = regexp.MustCompile(`v\d+$`)
)

// DOI returns the canonical form of a DOI: no resolver URL or "doi:"
// prefix, lowercase. It returns "" for empty input.
//
//	"https://doi.org/10.1/ABC" -> "10.1/abc"
//	"doi:10.1000/XYZ"          -> "10.1000/xyz"
func DOI(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = doiSchemePrefix.ReplaceAllString(s, "")
	s = doiResolverPrefix.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// ArxivID returns an arXiv identifier with any "arXiv:" prefix, abstract
// URL, and version suffix removed. It returns "" for empty input.
//
//	"arXiv:1234.5678v3"                   -> "1234.5678"
//	"http://arxiv.org/abs/2301.07041v2"   -> "2301.07041"
//	"hep-th/9901001v1"                    -> "hep-th/9901001"
func ArxivID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "/abs/"); idx >= 0 {
		s = s[idx+len("/abs/"):]
	}
	s = arxivSchemePrefix.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, "/")
	return arxivVersion.ReplaceAllString(s, "")
}
