// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and contact details from a directory of
// plain-text files. The filename is the key and the trimmed contents are the
// value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Recognized key files.
const (
	KeyCrossrefMailto        = "crossref-mailto"
	KeySemanticScholarAPIKey = "semantic-scholar-api-key"
	KeyNCBIAPIKey            = "ncbi-api-key"
	KeyNCBIEmail             = "ncbi-email"
	KeyAnthropicAPIKey       = "anthropic-api-key"
	KeyGeminiAPIKey          = "gemini-api-key"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value for key, or fallback when the key is absent.
func (s Secrets) Get(key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// Load reads every regular, non-dot file in dir. A missing directory yields
// empty Secrets. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
