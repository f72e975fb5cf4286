package domain

import (
	"context"
	"time"
)

// RunnerPort is the public port exposed by the module (what other modules would call)
type RunnerPort interface {
	Run(ctx context.Context, units []Unit) (RunMetrics, error)
}

// PostQuery describes one retrieval request to the post searcher
type PostQuery struct {
	Account string
	Phrase  string
	Since   time.Time
	Until   time.Time
	Limit   int
}

// PostSearcher is the post-retrieval collaborator.
// Empty result is not an error
type PostSearcher interface {
	Search(ctx context.Context, q PostQuery) ([]Post, error)
}

// Extraction is the classifier's structured output for one post
type Extraction struct {
	Fields     Fields
	Confidence float64 // model signal in (0,1], 0 when absent
}

// Classifier is the classification collaborator.
// applicable=false means the post is not about the requested kind
type Classifier interface {
	Classify(ctx context.Context, kind Kind, text string, postDate time.Time) (ex Extraction, applicable bool, err error)
}

// ScheduleGateway reports whether a counted game occurred for team on date
type ScheduleGateway interface {
	GameOn(ctx context.Context, team string, date time.Time) (bool, error)
}

// GameLogPort is the performance-log collaborator
type GameLogPort interface {
	GamesBetween(ctx context.Context, player string, from, to time.Time) ([]GameLine, error)
}

// RecordSink is the durable append-only output, one row per canonical record.
// Provenance rebuilds the exported post-id set for idempotent resume
type RecordSink interface {
	Append(ctx context.Context, rec *CanonicalRecord) error
	Provenance(ctx context.Context) (map[string]struct{}, error)
}

// MonitorPort accepts the per-run metrics object
type MonitorPort interface {
	Record(ctx context.Context, m RunMetrics) error
}

// LedgerRepo is the run ledger: run bracketing plus exported provenance
// for resume when Postgres is configured
type LedgerRepo interface {
	// StartRun marks the beginning of a run
	StartRun(ctx context.Context, runID string, startedAt time.Time, units int) error

	// FinishRun marks the end of a run
	FinishRun(ctx context.Context, runID string, fin RunFinish) error

	// MarkExported records a canonical record's provenance as durably written
	MarkExported(ctx context.Context, runID string, rec *CanonicalRecord) error

	// ExportedProvenance returns every post id already exported in prior runs
	ExportedProvenance(ctx context.Context) (map[string]struct{}, error)
}

// Normalizer is the text normalizer seam
type Normalizer interface {
	Normalize(s string) string
}
