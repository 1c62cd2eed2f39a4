// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the engine configuration from viper (flags, env,
// config file) with the secrets directory as the last fallback.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/literature-engine/internal/replay"
	"github.com/pdiddy/literature-engine/internal/search"
	"github.com/pdiddy/literature-engine/internal/secrets"
	"github.com/pdiddy/literature-engine/internal/server"
	"github.com/pdiddy/literature-engine/internal/synth"
	"github.com/pdiddy/literature-engine/pkg/types"
)

const (
	// Name is the config file base name.
	Name = "literature-engine"
	// EnvPrefix prefixes every bound environment variable.
	EnvPrefix = "LITENGINE"
)

// Viper keys.
const (
	KeySearchTimeout        = "search.timeout"
	KeySearchUserAgent      = "search.user_agent"
	KeySearchLimit          = "search.limit"
	KeySearchTopN           = "search.top_n"
	KeySearchSources        = "search.sources"
	KeyCrossrefMailto       = "search.crossref_mailto"
	KeySemanticScholarKey   = "search.semantic_scholar_api_key"
	KeyPubMedTool           = "search.pubmed.tool"
	KeyPubMedEmail          = "search.pubmed.email"
	KeyPubMedAPIKey         = "search.pubmed.api_key"
	KeyCitationWeight       = "search.weights.citation"
	KeySourceNudge          = "search.weights.source_nudge"
	KeySynthesisProvider    = "synthesis.provider"
	KeySynthesisModel       = "synthesis.model"
	KeySynthesisAPIKey      = "synthesis.api_key"
	KeySynthesisTemperature = "synthesis.temperature"
	KeySynthesisMaxTokens   = "synthesis.max_tokens"
	KeySynthesisMaxRecords  = "synthesis.max_records"
	KeySynthesisMaxAbstract = "synthesis.max_abstract_chars"
	KeySynthesisMaxContext  = "synthesis.max_context_chars"
	KeyServerAddr           = "server.addr"
	KeyServerOrigins        = "server.allowed_origins"
	KeyReplayEnabled        = "replay.enabled"
	KeyReplayDBPath         = "replay.db_path"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"

	keyAnthropicAPIKey = "anthropic_api_key"
	keyGeminiAPIKey    = "gemini_api_key"
)

// envAliases are conventional unprefixed variables accepted in addition to
// the LITENGINE_ names.
var envAliases = map[string]string{
	KeyCrossrefMailto:     "CROSSREF_MAILTO",
	KeySemanticScholarKey: "SEMANTIC_SCHOLAR_API_KEY",
	KeyPubMedAPIKey:       "NCBI_API_KEY",
	KeyPubMedTool:         "NCBI_TOOL",
	KeyPubMedEmail:        "NCBI_EMAIL",
	keyAnthropicAPIKey:    "ANTHROPIC_API_KEY",
	keyGeminiAPIKey:       "GEMINI_API_KEY",
}

// New returns a viper instance with defaults, env bindings and the config
// file search path. cfgFile overrides the search path when set. A missing
// config file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySearchTimeout, 6*time.Second)
	v.SetDefault(KeySearchUserAgent, search.DefaultUserAgent)
	v.SetDefault(KeySearchLimit, search.DefaultLimit)
	v.SetDefault(KeySearchTopN, search.DefaultTopN)
	v.SetDefault(KeySearchSources, sourceNames(types.AllSources))
	v.SetDefault(KeyPubMedTool, search.DefaultEUtilsTool)
	v.SetDefault(KeyCitationWeight, types.DefaultRankWeights().Citation)
	v.SetDefault(KeySourceNudge, map[string]any{string(types.SourceSemanticScholar): 0.1})
	v.SetDefault(KeySynthesisProvider, string(types.ProviderClaude))
	v.SetDefault(KeySynthesisTemperature, synth.DefaultTemperature)
	v.SetDefault(KeySynthesisMaxTokens, synth.DefaultMaxTokens)
	v.SetDefault(KeySynthesisMaxRecords, synth.DefaultContextRecords)
	v.SetDefault(KeySynthesisMaxAbstract, synth.DefaultAbstractChars)
	v.SetDefault(KeySynthesisMaxContext, synth.DefaultContextChars)
	v.SetDefault(KeyServerAddr, server.DefaultAddr)
	v.SetDefault(KeyReplayDBPath, replay.DefaultDBPath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// BindEnv maps LITENGINE_SECTION_KEY variables onto section.key and binds
// the unprefixed aliases.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, alias)
	}
}

// Load builds the configuration. Credentials not supplied by flag, env or
// config file fall back to s. The result is validated.
func Load(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var cfg types.Config

	cfg.Search = types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration(KeySearchTimeout),
			UserAgent: v.GetString(KeySearchUserAgent),
		},
		Limit:                 v.GetInt(KeySearchLimit),
		TopN:                  v.GetInt(KeySearchTopN),
		Sources:               parseSources(v.GetStringSlice(KeySearchSources)),
		CrossrefMailto:        orSecret(v.GetString(KeyCrossrefMailto), s, secrets.KeyCrossrefMailto),
		SemanticScholarAPIKey: orSecret(v.GetString(KeySemanticScholarKey), s, secrets.KeySemanticScholarAPIKey),
		PubMed: types.EUtilsConfig{
			Tool:   v.GetString(KeyPubMedTool),
			Email:  orSecret(v.GetString(KeyPubMedEmail), s, secrets.KeyNCBIEmail),
			APIKey: orSecret(v.GetString(KeyPubMedAPIKey), s, secrets.KeyNCBIAPIKey),
		},
		Weights: types.RankWeights{
			Citation:    v.GetFloat64(KeyCitationWeight),
			SourceNudge: sourceNudge(v),
		},
	}

	provider := types.SynthesisProvider(strings.ToLower(v.GetString(KeySynthesisProvider)))
	cfg.Synthesis = types.SynthesisConfig{
		AIConfig: types.AIConfig{
			Provider: provider,
			Model:    v.GetString(KeySynthesisModel),
			APIKey:   synthesisKey(v, s, provider),
		},
		Temperature:      v.GetFloat64(KeySynthesisTemperature),
		MaxTokens:        v.GetInt(KeySynthesisMaxTokens),
		MaxRecords:       v.GetInt(KeySynthesisMaxRecords),
		MaxAbstractChars: v.GetInt(KeySynthesisMaxAbstract),
		MaxContextChars:  v.GetInt(KeySynthesisMaxContext),
	}

	cfg.Server = types.ServerConfig{
		Addr:           v.GetString(KeyServerAddr),
		AllowedOrigins: v.GetStringSlice(KeyServerOrigins),
	}
	cfg.Replay = types.ReplayConfig{
		Enabled: v.GetBool(KeyReplayEnabled),
		DBPath:  v.GetString(KeyReplayDBPath),
	}
	cfg.Log = types.LogConfig{
		Level:  v.GetString(KeyLogLevel),
		Format: v.GetString(KeyLogFormat),
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func Validate(cfg types.Config) error {
	var result *multierror.Error

	if cfg.Search.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("%s must not be negative", KeySearchTimeout))
	}
	if cfg.Search.Limit < 0 || cfg.Search.Limit > search.MaxLimit {
		result = multierror.Append(result, fmt.Errorf("%s must be between 0 and %d", KeySearchLimit, search.MaxLimit))
	}
	if cfg.Search.TopN < 0 {
		result = multierror.Append(result, fmt.Errorf("%s must not be negative", KeySearchTopN))
	}
	for _, src := range cfg.Search.Sources {
		if !src.Valid() {
			result = multierror.Append(result, fmt.Errorf("unknown source %q", src))
		}
	}
	if cfg.Search.Weights.Citation < 0 {
		result = multierror.Append(result, fmt.Errorf("%s must not be negative", KeyCitationWeight))
	}

	switch cfg.Synthesis.Provider {
	case types.ProviderClaude, types.ProviderGemini, "":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown synthesis provider %q", cfg.Synthesis.Provider))
	}
	if cfg.Synthesis.Temperature < 0 || cfg.Synthesis.Temperature > 2 {
		result = multierror.Append(result, fmt.Errorf("%s must be between 0 and 2", KeySynthesisTemperature))
	}
	if cfg.Synthesis.MaxTokens < 0 {
		result = multierror.Append(result, fmt.Errorf("%s must not be negative", KeySynthesisMaxTokens))
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	switch cfg.Log.Format {
	case "json", "console", "":
	default:
		result = multierror.Append(result, fmt.Errorf("%s must be json or console, got %q", KeyLogFormat, cfg.Log.Format))
	}

	return result.ErrorOrNil()
}

func orSecret(value string, s secrets.Secrets, key string) string {
	if value != "" {
		return value
	}
	return s.Get(key, "")
}

// synthesisKey prefers synthesis.api_key, then the provider's conventional
// variable, then its secrets file.
func synthesisKey(v *viper.Viper, s secrets.Secrets, provider types.SynthesisProvider) string {
	if key := v.GetString(KeySynthesisAPIKey); key != "" {
		return key
	}
	if provider == types.ProviderGemini {
		return orSecret(v.GetString(keyGeminiAPIKey), s, secrets.KeyGeminiAPIKey)
	}
	return orSecret(v.GetString(keyAnthropicAPIKey), s, secrets.KeyAnthropicAPIKey)
}

func sourceNudge(v *viper.Viper) map[types.Source]float64 {
	raw := v.GetStringMap(KeySourceNudge)
	nudge := make(map[types.Source]float64, len(raw))
	for name := range raw {
		nudge[types.Source(name)] = v.GetFloat64(KeySourceNudge + "." + name)
	}
	return nudge
}

// parseSources accepts a list or a single comma-separated string, as
// env variables deliver.
func parseSources(names []string) []types.Source {
	var sources []types.Source
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
				sources = append(sources, types.Source(part))
			}
		}
	}
	return sources
}

func sourceNames(sources []types.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return names
}
