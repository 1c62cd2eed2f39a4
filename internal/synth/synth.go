// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth turns a ranked set of literature records into a short
// evidence synthesis by calling a text-generation backend.
package synth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/pkg/types"
)

const (
	// DefaultTemperature keeps the synthesis close to the supplied evidence.
	DefaultTemperature = 0.2
	// DefaultMaxTokens bounds the generated output.
	DefaultMaxTokens = 1200
)

// CompletionRequest is one text-generation call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer is a text-generation backend. Implementations make exactly one
// upstream call per Complete and never retry.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Request is a synthesis request. LiteratureContext is the formatted
// evidence (see BuildContext); Directive is the caller's instruction.
type Request struct {
	LiteratureContext string `json:"literature_context"`
	Directive         string `json:"directive"`
}

// Result is the cleaned synthesis text.
type Result struct {
	Text string `json:"text"`
}

// Options tunes a Synthesizer. Zero values take the package defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	Context     ContextOptions
}

// OptionsFromConfig maps the synthesis configuration onto Options.
func OptionsFromConfig(cfg types.SynthesisConfig) Options {
	return Options{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Context: ContextOptions{
			MaxRecords:  cfg.MaxRecords,
			MaxAbstract: cfg.MaxAbstractChars,
			MaxTotal:    cfg.MaxContextChars,
		},
	}
}

// Synthesizer renders the synthesis prompt and calls the backend.
type Synthesizer struct {
	Backend Completer
	Logger  *zap.Logger
	Options Options
}

// Synthesize produces a synthesis of req.LiteratureContext following
// req.Directive. An empty context is INVALID_INPUT and the backend is never
// called; a backend error or empty output is SYNTHESIS_FAILURE.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (Result, error) {
	literature := strings.TrimSpace(req.LiteratureContext)
	if literature == "" {
		return Result{}, errors.InvalidInput("literature context is required")
	}
	directive := strings.TrimSpace(req.Directive)
	if directive == "" {
		directive = DefaultDirective
	}

	prompt, err := renderPrompt(literature, directive)
	if err != nil {
		return Result{}, errors.Internal("rendering synthesis prompt", err)
	}

	logger := s.logger()
	text, err := s.Backend.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: s.temperature(),
		MaxTokens:   s.maxTokens(),
	})
	if err != nil {
		logger.Warn("synthesis backend failed", zap.Error(err))
		return Result{}, errors.SynthesisFailure("backend call failed", err)
	}

	cleaned := Clean(text)
	if cleaned == "" {
		logger.Warn("synthesis backend returned no text")
		return Result{}, errors.SynthesisFailure("backend returned no text", nil)
	}

	logger.Debug("synthesis complete",
		zap.Int("context_chars", len(literature)),
		zap.Int("output_chars", len(cleaned)))
	return Result{Text: cleaned}, nil
}

// SynthesizeRecords builds the literature context from records and
// synthesizes it. With no records the backend is never called.
func (s *Synthesizer) SynthesizeRecords(ctx context.Context, records []types.LiteratureRecord, directive string) (Result, error) {
	return s.Synthesize(ctx, Request{
		LiteratureContext: BuildContext(records, s.Options.Context),
		Directive:         directive,
	})
}

func (s *Synthesizer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Synthesizer) temperature() float64 {
	if s.Options.Temperature <= 0 {
		return DefaultTemperature
	}
	return s.Options.Temperature
}

func (s *Synthesizer) maxTokens() int {
	if s.Options.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return s.Options.MaxTokens
}
