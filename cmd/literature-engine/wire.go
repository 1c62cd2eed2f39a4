// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/replay"
	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/internal/synth"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// newAggregator builds the aggregator from cfg. When record is true the
// replay store is opened and attached; the returned close func releases it.
func newAggregator(sc types.SearchConfig, record bool) (*search.Aggregator, func(), error) {
	backends, err := search.NewBackends(sc, nil, logger)
	if err != nil {
		return nil, nil, err
	}

	agg := &search.Aggregator{
		Backends: backends,
		Logger:   logger,
		TopN:     sc.TopN,
		Weights:  sc.Weights,
	}
	closer := func() {}

	if record {
		store, err := replay.Open(cfg.Replay.DBPath)
		if err != nil {
			return nil, nil, err
		}
		agg.Recorder = store
		closer = func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing replay store", zap.Error(err))
			}
		}
	}
	return agg, closer, nil
}

// newPubMed builds the single-paper lookup client.
func newPubMed(sc types.SearchConfig) *search.PubMedBackend {
	b := search.NewPubMedBackend(sc, nil)
	b.Logger = logger.Named("pubmed")
	return b
}

// newSynthesizer builds the synthesizer for sc. It returns
// synth.ErrNotConfigured when no API key is available.
func newSynthesizer(ctx context.Context, sc types.SynthesisConfig) (*synth.Synthesizer, error) {
	backend, err := synth.NewBackend(ctx, sc, nil)
	if err != nil {
		return nil, err
	}
	return &synth.Synthesizer{
		Backend: backend,
		Logger:  logger.Named("synth"),
		Options: synth.OptionsFromConfig(sc),
	}, nil
}

// parseSourcesFlag splits a comma-separated source list.
func parseSourcesFlag(value string) []types.Source {
	var sources []types.Source
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			sources = append(sources, types.Source(part))
		}
	}
	return sources
}

// queryFromArgs prefers the --query flag and falls back to joined args.
func queryFromArgs(flag string, args []string) string {
	if flag != "" {
		return flag
	}
	return strings.Join(args, " ")
}
