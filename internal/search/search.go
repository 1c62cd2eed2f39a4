// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries scholarly literature providers concurrently and
// returns one deduplicated, ranked list.
//
// Each provider is a Backend. The Aggregator fans a query out to every
// backend, waits for all of them, and merges whatever succeeded; a failing
// provider never fails the request.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/literature-engine/internal/errors"
	"github.com/pdiddy/literature-engine/pkg/types"
)

const (
	// DefaultLimit is the per-source result hint when a request sets none.
	DefaultLimit = 20
	// MaxLimit caps the per-source result hint.
	MaxLimit = 50
)

// Request is an aggregation query.
type Request struct {
	Query string `json:"query" yaml:"query"`
	Limit int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Response is the merged, ranked result. Items and Top are never nil.
// Warning is set only when Items is empty.
type Response struct {
	Items   []types.LiteratureRecord `json:"items" yaml:"items"`
	Top     []types.LiteratureRecord `json:"top" yaml:"top"`
	Warning string                   `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Outcome is a Response together with the per-backend results and
// statistics that produced it.
type Outcome struct {
	RunID       string
	Request     Request
	Response    Response
	Results     []types.SourceResult
	Scores      []float64
	DupsRemoved int
}

// Recorder persists the raw per-backend results of a run so that merge and
// rank can be replayed later.
type Recorder interface {
	Record(ctx context.Context, runID string, req Request, results []types.SourceResult) error
}

// Aggregator fans queries out to its backends. The zero value has no
// backends; Logger, Now and Weights fall back to defaults when unset.
type Aggregator struct {
	Backends []Backend
	Logger   *zap.Logger
	TopN     int
	Weights  types.RankWeights
	Now      func() time.Time

	// Recorder, when set, receives every run before merging.
	Recorder Recorder
}

// ClampLimit applies the default and the upper and lower bounds to a
// per-source limit.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Search runs the query and returns the merged response. The only error is
// INVALID_INPUT for an empty query.
func (a *Aggregator) Search(ctx context.Context, req Request) (Response, error) {
	out, err := a.Run(ctx, req)
	if err != nil {
		return Response{}, err
	}
	return out.Response, nil
}

// Run is Search with the full outcome.
func (a *Aggregator) Run(ctx context.Context, req Request) (Outcome, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return Outcome{}, errors.InvalidInput("query is required")
	}
	req.Limit = ClampLimit(req.Limit)

	runID := uuid.NewString()
	logger := a.logger().With(zap.String("run_id", runID))
	start := a.now()

	results := a.collect(ctx, logger, req)

	if a.Recorder != nil {
		if err := a.Recorder.Record(ctx, runID, req, results); err != nil {
			logger.Warn("recording run failed", zap.Error(err))
		}
	}

	out := Assemble(results, AssembleOptions{
		CurrentYear: start.Year(),
		TopN:        a.TopN,
		Weights:     a.weights(),
	})
	out.RunID = runID
	out.Request = req

	logger.Info("search complete",
		zap.String("query", req.Query),
		zap.Int("limit", req.Limit),
		zap.Int("items", len(out.Response.Items)),
		zap.Int("duplicates_removed", out.DupsRemoved),
		zap.Duration("elapsed", a.now().Sub(start)))
	return out, nil
}

// collect calls every backend concurrently and returns one result per
// backend in backend order. Goroutines never return an error, so a failing
// backend does not cancel its siblings.
func (a *Aggregator) collect(ctx context.Context, logger *zap.Logger, req Request) []types.SourceResult {
	results := make([]types.SourceResult, len(a.Backends))
	errs := make([]error, len(a.Backends))

	var g errgroup.Group
	for i, b := range a.Backends {
		g.Go(func() error {
			recs, err := b.Search(ctx, req.Query, req.Limit)
			res := types.SourceResult{Source: b.Name(), Records: recs}
			if err != nil {
				res.Records = []types.LiteratureRecord{}
				res.Error = err.Error()
				errs[i] = err
				logger.Warn("backend failed",
					zap.String("source", string(b.Name())),
					zap.Error(err))
			} else if res.Records == nil {
				res.Records = []types.LiteratureRecord{}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var failures *multierror.Error
	for _, err := range errs {
		if err != nil {
			failures = multierror.Append(failures, err)
		}
	}
	if failures != nil && len(failures.Errors) == len(a.Backends) {
		logger.Error("every backend failed", zap.Error(failures.ErrorOrNil()))
	}
	return results
}

// AssembleOptions controls the post-collection step.
type AssembleOptions struct {
	// CurrentYear anchors the recency score. Zero means the current year.
	CurrentYear int
	TopN        int
	Weights     types.RankWeights
}

// Assemble merges settled per-backend results into an Outcome:
// concatenation in backend order, deduplication, ranking. It is pure and
// is shared by live runs and replays.
func Assemble(results []types.SourceResult, opts AssembleOptions) Outcome {
	if opts.CurrentYear == 0 {
		opts.CurrentYear = time.Now().Year()
	}

	var all []types.LiteratureRecord
	for _, r := range results {
		all = append(all, r.Records...)
	}

	merged, removed := Deduplicate(all)
	items, top, scores := Rank(merged, opts.CurrentYear, opts.TopN, opts.Weights)

	resp := Response{Items: items, Top: top}
	if len(items) == 0 {
		resp.Warning = emptyWarning(results)
	}
	return Outcome{
		Response:    resp,
		Results:     results,
		Scores:      scores,
		DupsRemoved: removed,
	}
}

// emptyWarning explains an empty result: the first failure in backend order,
// or a no-results notice when every backend succeeded.
func emptyWarning(results []types.SourceResult) string {
	for _, r := range results {
		if r.Failed() {
			return r.Error
		}
	}
	return errors.NoResults("no matching literature found").Error()
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *Aggregator) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Aggregator) weights() types.RankWeights {
	if a.Weights.Citation == 0 && a.Weights.SourceNudge == nil {
		return types.DefaultRankWeights()
	}
	return a.Weights
}
