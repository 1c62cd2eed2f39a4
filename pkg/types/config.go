package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds each individual upstream call (default 6s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "literature-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EUtilsConfig identifies this client to NCBI E-utilities. Without an API key
// NCBI allows 3 requests per second; with one, 10.
type EUtilsConfig struct {
	Tool   string `json:"tool" yaml:"tool"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// RankWeights tunes the ranking score. SourceNudge adds a fixed bonus per
// provider; an empty map disables the nudge.
type RankWeights struct {
	Citation    float64            `json:"citation" yaml:"citation"`
	SourceNudge map[Source]float64 `json:"source_nudge,omitempty" yaml:"source_nudge,omitempty"`
}

// DefaultRankWeights returns citation weight 1.5 and a +0.1 nudge for
// Semantic Scholar records.
func DefaultRankWeights() RankWeights {
	return RankWeights{
		Citation:    1.5,
		SourceNudge: map[Source]float64{SourceSemanticScholar: 0.1},
	}
}

// SearchConfig holds settings for the aggregation stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Limit is the default per-source result count hint (default 20, max 50).
	Limit int `json:"limit" yaml:"limit"`

	// TopN is the length of the ranked top slice (default 12).
	TopN int `json:"top_n" yaml:"top_n"`

	// Sources lists the enabled adapters in fan-out order.
	Sources []Source `json:"sources" yaml:"sources"`

	// CrossrefMailto is the contact email that admits requests to the
	// Crossref polite pool.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// PubMed identifies the client to NCBI E-utilities.
	PubMed EUtilsConfig `json:"pubmed" yaml:"pubmed"`

	// Weights tunes the ranker.
	Weights RankWeights `json:"weights" yaml:"weights"`
}

// SynthesisProvider identifies the text-generation backend.
type SynthesisProvider string

const (
	ProviderClaude SynthesisProvider = "claude"
	ProviderGemini SynthesisProvider = "gemini"
)

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: claude or gemini.
	Provider SynthesisProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// SynthesisConfig holds settings for the synthesis stage.
type SynthesisConfig struct {
	AIConfig `yaml:",inline"`

	// Temperature is the sampling temperature (default 0.2).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the generated output (default 1200).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRecords is the number of ranked records considered for the
	// literature context (default 12).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// MaxAbstractChars caps each abstract in the context (default 1500).
	MaxAbstractChars int `json:"max_abstract_chars" yaml:"max_abstract_chars"`

	// MaxContextChars caps the whole literature context (default 12000).
	MaxContextChars int `json:"max_context_chars" yaml:"max_context_chars"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// ReplayConfig holds settings for the replay store.
type ReplayConfig struct {
	// Enabled records every aggregation run when true.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DBPath is the SQLite database path (default "data/replay.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config groups all component configurations.
type Config struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Replay    ReplayConfig    `json:"replay" yaml:"replay"`
	Log       LogConfig       `json:"log" yaml:"log"`
}
