// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/internal/httputil"
	"github.com/pdiddy/literature-engine/pkg/types"
)

// Backend searches a single literature provider. Implementations return
// records whose identifiers are already normalized, an empty non-nil slice
// when nothing matched, and a typed error from internal/errors on failure.
type Backend interface {
	Name() types.Source
	Search(ctx context.Context, query string, limit int) ([]types.LiteratureRecord, error)
}

// DefaultUserAgent is sent when the configuration leaves UserAgent empty.
const DefaultUserAgent = "literature-engine/0.1"

// NewBackends builds the enabled backends in the order cfg.Sources lists
// them, or every provider when the list is empty. Each backend gets its own
// rate limiter; the limiters persist for the life of the backend and are
// shared by concurrent requests.
func NewBackends(cfg types.SearchConfig, client *http.Client, logger *zap.Logger) ([]Backend, error) {
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = types.AllSources
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	backends := make([]Backend, 0, len(sources))
	seen := make(map[types.Source]bool, len(sources))
	for _, src := range sources {
		if seen[src] {
			continue
		}
		seen[src] = true

		switch src {
		case types.SourceCrossref:
			backends = append(backends, NewCrossrefBackend(cfg, client))
		case types.SourceArxiv:
			backends = append(backends, NewArxivBackend(cfg, client))
		case types.SourceSemanticScholar:
			backends = append(backends, NewSemanticScholarBackend(cfg, client))
		case types.SourcePubMed:
			b := NewPubMedBackend(cfg, client)
			b.Logger = logger.Named("pubmed")
			backends = append(backends, b)
		default:
			return nil, errors.InvalidInput("unknown source %q", src)
		}
	}
	return backends, nil
}

// newFetcher builds the bounded HTTP client for one provider.
func newFetcher(src types.Source, cfg types.SearchConfig, client *http.Client, limiter *rate.Limiter) *httputil.Fetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &httputil.Fetcher{
		Source:    string(src),
		Client:    client,
		Timeout:   cfg.Timeout,
		UserAgent: ua,
		Limiter:   limiter,
	}
}

// fetcherOrDefault lets a zero-value backend work with default settings.
func fetcherOrDefault(f *httputil.Fetcher, src types.Source) *httputil.Fetcher {
	if f != nil {
		return f
	}
	return &httputil.Fetcher{Source: string(src), UserAgent: DefaultUserAgent, Timeout: httputil.DefaultTimeout}
}

// perSecond returns a limiter allowing n requests per second with a burst of n.
func perSecond(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(n), n)
}

// every returns a limiter allowing one request per interval with the given burst.
func every(interval time.Duration, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), burst)
}

func badParse(src types.Source, err error) error {
	return errors.BadUpstreamResponse(string(src), "unparseable response", err)
}

// yearPtr returns a pointer to y, or nil when y is not a plausible year.
func yearPtr(y int) *int {
	if y <= 0 {
		return nil
	}
	return types.IntPtr(y)
}

// leadingYear parses the first four characters of s as a year, as found in
// "2012 Aug 17" or "2017-06-12T17:57:34Z".
func leadingYear(s string) *int {
	if len(s) < 4 {
		return nil
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return nil
	}
	return yearPtr(y)
}
