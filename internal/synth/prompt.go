// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"
)

// DefaultDirective is used when a request carries no directive.
const DefaultDirective = "Summarize what this literature establishes, where the studies agree or disagree, and what remains open."

// systemPrompt frames every synthesis call.
const systemPrompt = `You are a careful research assistant writing evidence syntheses for scientists. Base every statement on the numbered sources provided and cite them inline as [n]. Do not invent sources, results, or numbers. Write plain prose paragraphs; short hyphen bullet lists are allowed. Do not use Markdown headings, bold, italics, or code formatting.`

// synthesisPromptTmpl is the user prompt sent with the literature context.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`Task: {{.Directive}}

Sources:
{{.Literature}}

Write the synthesis now. Cite sources as [n]. If the sources do not address the task, say so plainly.
`))

// renderPrompt executes the synthesis prompt template.
func renderPrompt(literature, directive string) (string, error) {
	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, struct {
		Literature string
		Directive  string
	}{Literature: literature, Directive: directive})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	headingPrefix   = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	starBullet      = regexp.MustCompile(`(?m)^([ \t]*)[*•+][ \t]+`)
	singleEmphasis  = regexp.MustCompile(`\*([^*\n]+)\*`)
	excessBlankLine = regexp.MustCompile(`\n{3,}`)
)

// Clean strips Markdown formatting the prompt asks the model not to use:
// bold and italic markers, heading hashes, and inline code ticks. Star and
// dot bullets become hyphen bullets.
func Clean(text string) string {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = headingPrefix.ReplaceAllString(s, "")
	s = starBullet.ReplaceAllString(s, "$1- ")
	s = singleEmphasis.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "`", "")
	s = excessBlankLine.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
