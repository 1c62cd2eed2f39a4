// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// ErrNotConfigured reports that no synthesis backend API key is available.
var ErrNotConfigured = errors.New("synthesis backend not configured")

// NewBackend builds the Completer selected by cfg.Provider. It returns
// ErrNotConfigured when the provider's API key is missing.
func NewBackend(ctx context.Context, cfg types.SynthesisConfig, client *http.Client) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case types.ProviderClaude, "":
		return &ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model, Client: client}, nil
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model, client, "")
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q", cfg.Provider)
	}
}
