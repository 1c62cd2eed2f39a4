// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the literature-engine CLI.
package main

import (
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-engine/internal/config"
	"github.com/pdiddy/literature-engine/internal/secrets"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the configuration loaded in PersistentPreRunE.
	cfg types.Config

	// logger is replaced in PersistentPreRunE.
	logger = zap.NewNop()
)

// rootCmd is the base command for the literature-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "literature-engine",
	Short: "Search, merge and synthesize scholarly literature",
	Long: `literature-engine queries Crossref, arXiv, Semantic Scholar and PubMed
concurrently, merges duplicate records across sources, ranks them by
citations and recency, and can hand the top records to a text-generation
backend for a short evidence synthesis.

Run it as a CLI (search, pubmed, synthesize, replay) or as an HTTP API
(serve).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func loadConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	secretsDir, _ := cmd.Flags().GetString("secrets-dir")

	s, err := secrets.Load(secretsDir, nil)
	if err != nil {
		return err
	}

	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		_ = v.BindPFlag(config.KeyLogLevel, f)
	}
	if f := cmd.Flags().Lookup("log-format"); f != nil && f.Changed {
		_ = v.BindPFlag(config.KeyLogFormat, f)
	}

	cfg, err = config.Load(v, s)
	if err != nil {
		return err
	}

	logger, err = config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug("loaded secrets", zap.Strings("keys", keys))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./literature-engine.yaml or ~/.config/literature-engine/literature-engine.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
