// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// --- mock completer ---

type mockCompleter struct {
	text  string
	err   error
	calls int
	last  CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	m.calls++
	m.last = req
	return m.text, m.err
}

func sampleRecords() []types.LiteratureRecord {
	return []types.LiteratureRecord{
		{
			Source:        types.SourcePubMed,
			Title:         "A programmable dual-RNA-guided DNA endonuclease",
			Year:          types.IntPtr(2012),
			Authors:       []string{"Jinek M", "Chylinski K"},
			DOI:           "10.1126/science.1225829",
			CitationCount: types.IntPtr(12000),
			Abstract:      "Cas9 cleaves DNA guided by dual RNAs.",
		},
		{
			Source:  types.SourceArxiv,
			Title:   "Preprint without citations",
			Authors: []string{"Someone"},
			URL:     "http://arxiv.org/abs/2401.00001v1",
		},
	}
}

// --- Synthesize ---

func TestSynthesizeEmptyContextNeverCallsBackend(t *testing.T) {
	backend := &mockCompleter{text: "should not be used"}
	s := &Synthesizer{Backend: backend}

	for _, ctxText := range []string{"", "   \n "} {
		_, err := s.Synthesize(context.Background(), Request{LiteratureContext: ctxText, Directive: "summarize"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
	assert.Equal(t, 0, backend.calls)
}

func TestSynthesizeRecordsWithNoRecordsNeverCallsBackend(t *testing.T) {
	backend := &mockCompleter{text: "x"}
	s := &Synthesizer{Backend: backend}

	_, err := s.SynthesizeRecords(context.Background(), nil, "summarize")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.Equal(t, 0, backend.calls)
}

func TestSynthesizeCallsBackendWithPromptAndDefaults(t *testing.T) {
	backend := &mockCompleter{text: "## Findings\n\n**Cas9** is programmable [1]."}
	s := &Synthesizer{Backend: backend}

	res, err := s.Synthesize(context.Background(), Request{
		LiteratureContext: "[1] Paper (2012).\nAbstract: text",
		Directive:         "What does Cas9 do?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Findings\n\nCas9 is programmable [1].", res.Text)

	require.Equal(t, 1, backend.calls)
	assert.Equal(t, DefaultTemperature, backend.last.Temperature)
	assert.Equal(t, DefaultMaxTokens, backend.last.MaxTokens)
	assert.Equal(t, systemPrompt, backend.last.System)
	assert.Contains(t, backend.last.Prompt, "Task: What does Cas9 do?")
	assert.Contains(t, backend.last.Prompt, "[1] Paper (2012).")
}

func TestSynthesizeDefaultDirective(t *testing.T) {
	backend := &mockCompleter{text: "ok"}
	s := &Synthesizer{Backend: backend}

	_, err := s.Synthesize(context.Background(), Request{LiteratureContext: "[1] x"})
	require.NoError(t, err)
	assert.Contains(t, backend.last.Prompt, DefaultDirective)
}

func TestSynthesizeOptionsOverrideDefaults(t *testing.T) {
	backend := &mockCompleter{text: "ok"}
	s := &Synthesizer{Backend: backend, Options: Options{Temperature: 0.7, MaxTokens: 300}}

	_, err := s.Synthesize(context.Background(), Request{LiteratureContext: "[1] x"})
	require.NoError(t, err)
	assert.Equal(t, 0.7, backend.last.Temperature)
	assert.Equal(t, 300, backend.last.MaxTokens)
}

func TestSynthesizeBackendFailure(t *testing.T) {
	backend := &mockCompleter{err: fmt.Errorf("Claude API returned 529: overloaded")}
	s := &Synthesizer{Backend: backend}

	_, err := s.Synthesize(context.Background(), Request{LiteratureContext: "[1] x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSynthesisFailure))
	assert.Contains(t, err.Error(), "overloaded")
	assert.Equal(t, 1, backend.calls, "no retry")
}

func TestSynthesizeEmptyOutput(t *testing.T) {
	for _, out := range []string{"", "  \n", "**", "# "} {
		s := &Synthesizer{Backend: &mockCompleter{text: out}}
		_, err := s.Synthesize(context.Background(), Request{LiteratureContext: "[1] x"})
		assert.True(t, errors.Is(err, errors.ErrSynthesisFailure), "output %q", out)
	}
}

func TestSynthesizeRecordsBuildsContext(t *testing.T) {
	backend := &mockCompleter{text: "Synthesis."}
	s := &Synthesizer{Backend: backend}

	res, err := s.SynthesizeRecords(context.Background(), sampleRecords(), "")
	require.NoError(t, err)
	assert.Equal(t, "Synthesis.", res.Text)
	assert.Contains(t, backend.last.Prompt, "[1] A programmable dual-RNA-guided DNA endonuclease (2012)")
	assert.Contains(t, backend.last.Prompt, "[2] Preprint without citations (n.d.)")
}

// --- BuildContext ---

func TestBuildContextFormat(t *testing.T) {
	got := BuildContext(sampleRecords(), ContextOptions{})

	want := "[1] A programmable dual-RNA-guided DNA endonuclease (2012). Jinek M, Chylinski K. https://doi.org/10.1126/science.1225829. Citations: 12000. Source: pubmed.\n" +
		"Abstract: Cas9 cleaves DNA guided by dual RNAs.\n\n" +
		"[2] Preprint without citations (n.d.). Someone. http://arxiv.org/abs/2401.00001v1. Citations: unknown. Source: arxiv.\n" +
		"Abstract: not available"
	assert.Equal(t, want, got)
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil, ContextOptions{}))
}

func TestBuildContextTruncatesAbstract(t *testing.T) {
	r := types.LiteratureRecord{Title: "Long", Source: types.SourceCrossref, Abstract: strings.Repeat("é", 2000)}

	got := BuildContext([]types.LiteratureRecord{r}, ContextOptions{})
	idx := strings.Index(got, "Abstract: ")
	require.GreaterOrEqual(t, idx, 0)
	abstract := got[idx+len("Abstract: "):]
	assert.Equal(t, DefaultAbstractChars+1, utf8.RuneCountInString(abstract))
	assert.True(t, strings.HasSuffix(abstract, "…"))
}

func TestBuildContextRecordLimit(t *testing.T) {
	var records []types.LiteratureRecord
	for i := 0; i < 20; i++ {
		records = append(records, types.LiteratureRecord{Title: fmt.Sprintf("Paper %d", i+1), Source: types.SourceArxiv})
	}

	got := BuildContext(records, ContextOptions{})
	assert.Contains(t, got, "[12] Paper 12")
	assert.NotContains(t, got, "[13]")

	got = BuildContext(records, ContextOptions{MaxRecords: 3})
	assert.Contains(t, got, "[3] Paper 3")
	assert.NotContains(t, got, "[4]")
}

func TestBuildContextTotalBudget(t *testing.T) {
	var records []types.LiteratureRecord
	for i := 0; i < 12; i++ {
		records = append(records, types.LiteratureRecord{
			Title:    fmt.Sprintf("Paper %d", i+1),
			Source:   types.SourceCrossref,
			Abstract: strings.Repeat("a", 1500),
		})
	}

	got := BuildContext(records, ContextOptions{})
	assert.LessOrEqual(t, utf8.RuneCountInString(got), DefaultContextChars)
	assert.Contains(t, got, "[1] Paper 1 ")
	assert.NotContains(t, got, "[12] Paper 12")
	assert.False(t, strings.HasSuffix(got, "\n\n"), "no dangling separator")
}

func TestBuildContextOversizedFirstBlock(t *testing.T) {
	r := types.LiteratureRecord{
		Title:    strings.Repeat("Very long title ", 20),
		Source:   types.SourceCrossref,
		Abstract: strings.Repeat("b", 1000),
	}

	got := BuildContext([]types.LiteratureRecord{r}, ContextOptions{MaxTotal: 100})
	assert.True(t, strings.HasPrefix(got, "[1] Very long title"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 100)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestSynthesizeRecordsSmallBudgetStillCallsBackend(t *testing.T) {
	backend := &mockCompleter{text: "Synthesis."}
	s := &Synthesizer{Backend: backend, Options: Options{Context: ContextOptions{MaxTotal: 50}}}

	res, err := s.SynthesizeRecords(context.Background(), sampleRecords(), "")
	require.NoError(t, err)
	assert.Equal(t, "Synthesis.", res.Text)
	assert.Equal(t, 1, backend.calls)
	assert.Contains(t, backend.last.Prompt, "[1] A programmable")
}

func TestAuthorList(t *testing.T) {
	assert.Equal(t, "Unknown authors", authorList(nil))
	assert.Equal(t, "A, B", authorList([]string{"A", "B"}))
	assert.Equal(t, "A, B, C, D, E, F et al", authorList([]string{"A", "B", "C", "D", "E", "F", "G"}))
}

// --- Clean ---

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "This is **important** [1].", "This is important [1]."},
		{"underscore bold", "__Key__ point", "Key point"},
		{"italic", "An *emphasized* word", "An emphasized word"},
		{"headings", "# Title\n## Subtitle\nBody", "Title\nSubtitle\nBody"},
		{"inline code", "Use `Cas9` here", "Use Cas9 here"},
		{"star bullets", "* one\n* two", "- one\n- two"},
		{"dot bullets", "• one\n  • nested", "- one\n  - nested"},
		{"hyphen bullets kept", "- one\n- two", "- one\n- two"},
		{"blank lines collapsed", "a\n\n\n\nb", "a\n\nb"},
		{"crlf", "a\r\nb", "a\nb"},
		{"trim", "  text  \n", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

// --- ClaudeBackend ---

func TestClaudeBackendComplete(t *testing.T) {
	var got claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Part one. "},{"type":"text","text":"Part two."}],"stop_reason":"end_turn"}`)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "test-key", Client: ts.Client()}
	text, err := c.Complete(context.Background(), CompletionRequest{
		System:      "sys",
		Prompt:      "prompt",
		Temperature: 0.2,
		MaxTokens:   1200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", text)

	assert.Equal(t, DefaultClaudeModel, got.Model)
	assert.Equal(t, 1200, got.MaxTokens)
	assert.Equal(t, "sys", got.System)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.2, *got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "prompt", got.Messages[0].Content)
}

func TestClaudeBackendErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"type":"rate_limit_error"}}`)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "k", Client: ts.Client()}
	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p", MaxTokens: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate_limit_error")
}

// --- GeminiBackend ---

func TestGeminiBackendComplete(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Gemini synthesis [1]."}]},"finishReason":"STOP"}]}`)
	}))
	defer ts.Close()

	g, err := NewGeminiBackend(context.Background(), "test-key", "gemini-test", ts.Client(), ts.URL)
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), CompletionRequest{System: "sys", Prompt: "prompt", Temperature: 0.2, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "Gemini synthesis [1].", text)
	assert.Contains(t, body, "contents")
	assert.Contains(t, body, "systemInstruction")
}

func TestNewGeminiBackendRequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), "", "", nil, "")
	assert.Error(t, err)
}

// --- NewBackend ---

func TestNewBackend(t *testing.T) {
	_, err := NewBackend(context.Background(), types.SynthesisConfig{}, nil)
	assert.True(t, errors.Is(err, ErrNotConfigured))

	b, err := NewBackend(context.Background(), types.SynthesisConfig{AIConfig: types.AIConfig{Provider: types.ProviderClaude, APIKey: "k", Model: "m"}}, nil)
	require.NoError(t, err)
	claude, ok := b.(*ClaudeBackend)
	require.True(t, ok)
	assert.Equal(t, "m", claude.Model)

	b, err = NewBackend(context.Background(), types.SynthesisConfig{AIConfig: types.AIConfig{Provider: types.ProviderGemini, APIKey: "k"}}, nil)
	require.NoError(t, err)
	_, ok = b.(*GeminiBackend)
	assert.True(t, ok)

	_, err = NewBackend(context.Background(), types.SynthesisConfig{AIConfig: types.AIConfig{Provider: "other", APIKey: "k"}}, nil)
	assert.Error(t, err)
}
