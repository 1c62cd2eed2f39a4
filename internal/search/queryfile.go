// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/literature-engine/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results.
// A saved search can be reloaded and re-rendered without querying the
// providers again.
type QueryFile struct {
	RunID    string               `yaml:"run_id,omitempty"`
	Query    Request              `yaml:"query"`
	Sources  []types.SourceResult `yaml:"sources"`
	Response Response             `yaml:"response"`
	Summary  QuerySummary         `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	BackendErrors     []string  `yaml:"backend_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the request, per-source results and merged response
// to a YAML file.
func WriteQueryFile(path string, out Outcome, now time.Time) error {
	qf := QueryFile{
		RunID:    out.RunID,
		Query:    out.Request,
		Sources:  out.Results,
		Response: out.Response,
		Summary: QuerySummary{
			Total:             len(out.Response.Items),
			DuplicatesRemoved: out.DupsRemoved,
			Timestamp:         now.UTC(),
		},
	}
	for _, r := range out.Results {
		if !r.Failed() {
			continue
		}
		msg := r.Error
		if !strings.HasPrefix(msg, string(r.Source)+":") {
			msg = fmt.Sprintf("%s: %s", r.Source, msg)
		}
		qf.Summary.BackendErrors = append(qf.Summary.BackendErrors, msg)
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Outcome rebuilds the merged outcome from the stored per-source results,
// re-running merge and rank with opts. Recency is scored against the year
// the file was saved unless opts sets CurrentYear.
func (qf *QueryFile) Outcome(opts AssembleOptions) Outcome {
	if opts.CurrentYear == 0 && !qf.Summary.Timestamp.IsZero() {
		opts.CurrentYear = qf.Summary.Timestamp.Year()
	}
	out := Assemble(qf.Sources, opts)
	out.RunID = qf.RunID
	out.Request = qf.Query
	return out
}
