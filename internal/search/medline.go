// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/pdiddy/literature-engine/internal/normalize"
)

// medlineState is the position of the MEDLINE reader within a record.
type medlineState int

const (
	seekingRecord medlineState = iota
	inAbstract
	inOtherField
)

// parseMedlineAbstracts extracts abstracts from efetch MEDLINE text output,
// keyed by PMID. Records are separated by blank lines; each field starts
// with a four-character tag padded and followed by "- " ("PMID- 123",
// "AB  - Text"), and long values wrap onto lines indented with six spaces.
// Records without an AB field are omitted.
func parseMedlineAbstracts(text string) map[string]string {
	out := make(map[string]string)

	state := seekingRecord
	var pmid string
	var abstract strings.Builder

	finish := func() {
		if pmid != "" && abstract.Len() > 0 {
			out[pmid] = normalize.Space(abstract.String())
		}
		pmid = ""
		abstract.Reset()
		state = seekingRecord
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			finish()
			continue
		}

		tag, value, isTag := medlineField(line)
		if !isTag {
			if state == inAbstract {
				abstract.WriteByte(' ')
				abstract.WriteString(strings.TrimSpace(line))
			}
			continue
		}

		switch {
		case tag == "PMID":
			if pmid != "" {
				finish()
			}
			pmid = value
			state = inOtherField
		case state == seekingRecord:
			// Fields before a PMID belong to no record.
		case tag == "AB":
			if abstract.Len() > 0 {
				abstract.WriteByte(' ')
			}
			abstract.WriteString(value)
			state = inAbstract
		default:
			state = inOtherField
		}
	}
	finish()
	return out
}

// medlineField splits a tag line into its tag and value. Continuation lines
// start with whitespace and are not tag lines.
func medlineField(line string) (tag, value string, ok bool) {
	if len(line) < 5 || line[4] != '-' || line[0] == ' ' || line[0] == '\t' {
		return "", "", false
	}
	return strings.TrimSpace(line[:4]), strings.TrimSpace(line[5:]), true
}
