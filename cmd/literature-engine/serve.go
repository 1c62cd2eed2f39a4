// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/internal/server"
	"github.com/pdiddy/literature-engine/internal/synth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search, PubMed and synthesis HTTP API",
	Long: `Serve starts the HTTP API:

  GET  /health
  POST /api/literature/search      {query, limit}
  POST /api/literature/pubmed      {pmid | query}
  POST /api/literature/synthesize  {literature_context, directive}

The synthesis route answers 503 when no synthesis API key is configured.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	agg, closeStore, err := newAggregator(cfg.Search, cfg.Replay.Enabled)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var synthesizer server.Synthesizer
	s, err := newSynthesizer(ctx, cfg.Synthesis)
	switch {
	case errors.Is(err, synth.ErrNotConfigured):
		logger.Warn("synthesis disabled: no API key configured")
	case err != nil:
		return err
	default:
		synthesizer = s
	}

	srv := server.New(agg, newPubMed(cfg.Search), synthesizer, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger.Named("http"),
		DefaultLimit:   cfg.Search.Limit,
	})
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	logger.Info("server stopped", zap.Error(context.Cause(ctx)))
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")

	rootCmd.AddCommand(serveCmd)
}
