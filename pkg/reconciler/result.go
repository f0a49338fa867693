package reconciler

import (
	"fmt"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// PrecedenceLatestBatch is the only collision policy: the latest batch in
// input order wins.
const PrecedenceLatestBatch = "latest-batch-wins"

// Result represents the outcome of a reconciliation operation.
type Result struct {
	// Core data
	State   *catalogs.State
	Aliases *AliasTable

	// Merge report
	Report Report

	// Metadata
	Metadata ResultMetadata

	// Issues
	Errors []error
}

// Report is the merge report handed to the host for logging.
type Report struct {
	Aliases    []Alias     `json:"aliases" yaml:"aliases"`
	Overwrites []Overwrite `json:"overwrites" yaml:"overwrites"`
	Warnings   []string    `json:"warnings" yaml:"warnings"`
	Errors     []string    `json:"errors" yaml:"errors"`
}

// Overwrite records a same-id content collision: a later batch re-declared
// an id with different content and its content was kept.
type Overwrite struct {
	ID        identity.ID   `json:"id" yaml:"id"`
	Kind      identity.Kind `json:"kind" yaml:"kind"`
	Key       string        `json:"business_key" yaml:"business_key"`
	FromBatch string        `json:"from_batch" yaml:"from_batch"`
	ToBatch   string        `json:"to_batch" yaml:"to_batch"`
	Fields    []string      `json:"fields" yaml:"fields"`
}

// String returns a one-line description of the overwrite.
func (o Overwrite) String() string {
	return fmt.Sprintf("%s %q (%s): %s overwritten by %s %v", o.Kind, o.Key, o.ID, o.FromBatch, o.ToBatch, o.Fields)
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Batches that were reconciled, in precedence order
	Batches []string

	// Precedence policy applied to collisions
	Precedence string

	// Strict reports whether anomalies were treated as errors
	Strict bool

	// Statistics about the reconciliation
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	RecordsRead int
	RecordsKept int
	Overwrites  int
	Superseded  int
	FKRewrites  int
	KindCounts  map[identity.Kind]int
	TotalTimeMs int64
}

// IsSuccess returns true if the reconciliation was successful.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0 && r.State != nil
}

// HasCollisions returns true if any cross-generation or same-id collision
// was resolved.
func (r *Result) HasCollisions() bool {
	return len(r.Report.Aliases) > 0 || len(r.Report.Overwrites) > 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if !r.IsSuccess() {
		return fmt.Sprintf("Reconciliation failed with %d errors", len(r.Errors))
	}
	s := r.Metadata.Stats
	return fmt.Sprintf("Reconciled %d batches: %d records kept of %d read, %d superseded, %d overwritten, %d references rewritten",
		len(r.Metadata.Batches), s.RecordsKept, s.RecordsRead, s.Superseded, s.Overwrites, s.FKRewrites)
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Report: Report{
			Aliases:    []Alias{},
			Overwrites: []Overwrite{},
			Warnings:   []string{},
			Errors:     []string{},
		},
		Errors: []error{},
		Metadata: ResultMetadata{
			StartTime:  time.Now(),
			Batches:    []string{},
			Precedence: PrecedenceLatestBatch,
			Stats: ResultStatistics{
				KindCounts: make(map[identity.Kind]int),
			},
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
	if r.State != nil {
		r.Metadata.Stats.RecordsKept = r.State.Len()
		for _, kind := range identity.Kinds() {
			r.Metadata.Stats.KindCounts[kind] = r.State.Count(kind)
		}
	}
	r.Metadata.Stats.Overwrites = len(r.Report.Overwrites)
	r.Metadata.Stats.Superseded = len(r.Report.Aliases)
}
