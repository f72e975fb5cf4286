// Package repo provides postgres access for the run ledger
package repo

import (
	"context"
	"time"

	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/store"
	"courtside/internal/services/tracker/domain"
)

// Ledger is the postgres implementation of domain.LedgerRepo
type Ledger struct {
	q store.TxRunner
}

// NewLedger binds the ledger over the store's postgres seam
func NewLedger(q store.TxRunner) *Ledger { return &Ledger{q: q} }

// EnsureSchema creates the ledger tables when missing. The tool owns its
// schema; there is no separate migration step to forget
func (r *Ledger) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id          uuid PRIMARY KEY,
			started_at      timestamptz NOT NULL,
			finished_at     timestamptz,
			status          text NOT NULL DEFAULT 'running',
			units           int NOT NULL DEFAULT 0,
			failed_units    int NOT NULL DEFAULT 0,
			posts_processed int NOT NULL DEFAULT 0,
			posts_skipped   int NOT NULL DEFAULT 0,
			milestones      int NOT NULL DEFAULT 0,
			shoes           int NOT NULL DEFAULT 0,
			outfits         int NOT NULL DEFAULT 0,
			exported        int NOT NULL DEFAULT 0,
			elapsed_ms      bigint NOT NULL DEFAULT 0,
			error           text
		)`,
		`CREATE TABLE IF NOT EXISTS exported_records (
			record_id   uuid NOT NULL,
			run_id      uuid NOT NULL,
			kind        text NOT NULL,
			post_id     text NOT NULL,
			exported_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (record_id, post_id)
		)`,
		`CREATE INDEX IF NOT EXISTS exported_records_post_idx ON exported_records (post_id)`,
	}
	for _, s := range stmts {
		if _, err := r.q.Exec(ctx, s); err != nil {
			return perr.DBf("ensure ledger schema: %v", err)
		}
	}
	return nil
}

// StartRun marks the beginning of a run (idempotent)
func (r *Ledger) StartRun(ctx context.Context, runID string, startedAt time.Time, units int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO runs (run_id, started_at, status, units)
		VALUES ($1, $2, 'running', $3)
		ON CONFLICT (run_id) DO UPDATE
		SET started_at = EXCLUDED.started_at, status = 'running', units = EXCLUDED.units,
		    finished_at = null, error = null
	`, runID, startedAt.UTC(), units)
	return err
}

// FinishRun marks the end of a run (idempotent)
func (r *Ledger) FinishRun(ctx context.Context, runID string, fin domain.RunFinish) error {
	_, err := r.q.Exec(ctx, `
		UPDATE runs SET
			finished_at = now(),
			status = $2,
			failed_units = $3,
			posts_processed = $4,
			posts_skipped = $5,
			milestones = $6,
			shoes = $7,
			outfits = $8,
			exported = $9,
			elapsed_ms = $10,
			error = NULLIF($11, '')
		WHERE run_id = $1
	`,
		runID, fin.Status, fin.FailedUnits, fin.PostsProcessed, fin.PostsSkipped,
		fin.Milestones, fin.Shoes, fin.Outfits, fin.Exported, fin.ElapsedMS, fin.ErrText,
	)
	return err
}

// MarkExported records every provenance post id of an exported record.
// One transaction per record so a crash never leaves partial provenance
func (r *Ledger) MarkExported(ctx context.Context, runID string, rec *domain.CanonicalRecord) error {
	return r.q.Tx(ctx, func(q store.RowQuerier) error {
		for _, postID := range rec.Provenance {
			_, err := q.Exec(ctx, `
				INSERT INTO exported_records (record_id, run_id, kind, post_id)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (record_id, post_id) DO NOTHING
			`, rec.ID, runID, string(rec.Kind), postID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ExportedProvenance returns every post id exported in any prior run
func (r *Ledger) ExportedProvenance(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT post_id FROM exported_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}
