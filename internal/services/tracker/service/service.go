// Package service is the streaming pipeline: it drives units through
// retrieval, extraction, date resolution, stat matching, dedup, and
// incremental export
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"courtside/internal/platform/logger"
	"courtside/internal/platform/retry"
	"courtside/internal/services/tracker/dedup"
	"courtside/internal/services/tracker/domain"
)

// Run statuses recorded in the ledger
const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

// Extractor turns one post into a candidate of the given kind
type Extractor interface {
	Extract(ctx context.Context, kind domain.Kind, post domain.Post) (*domain.CandidateRecord, bool, error)
}

// DateResolver derives the event date for one candidate
type DateResolver interface {
	Resolve(ctx context.Context, postDate time.Time, rawText, team string) domain.ResolvedDate
}

// StatMatcher attaches game context around an event date
type StatMatcher interface {
	Around(ctx context.Context, player string, eventDate time.Time) (*domain.GameStatsBlock, error)
}

// Options is the run configuration
type Options struct {
	Player    string        `validate:"required"`
	Team      string        `validate:"required"`
	Kinds     []domain.Kind `validate:"min=1,dive,required"`
	Since     time.Time     `validate:"required"`
	Until     time.Time     `validate:"required,gtfield=Since"`
	PostLimit int           `validate:"gte=0"`
	UnitDelay time.Duration `validate:"gte=0"`
	Resume    bool
}

// Deps are the pipeline collaborators. Monitor and Ledger may be nil
type Deps struct {
	Search  domain.PostSearcher
	Extract Extractor
	Dates   DateResolver
	Stats   StatMatcher
	Sink    domain.RecordSink
	Monitor domain.MonitorPort
	Ledger  domain.LedgerRepo
	Norm    domain.Normalizer
}

// Service processes units strictly one at a time. The only state shared
// across units is the dedup index, owned here for the run's lifetime
type Service struct {
	deps Deps
	opts Options
	log  logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs the pipeline service
func New(deps Deps, opts Options) *Service {
	return &Service{
		deps:  deps,
		opts:  opts,
		log:   *logger.Named("tracker"),
		now:   time.Now,
		sleep: retry.SleepCtx,
	}
}

// Run processes the units sequentially and returns the run's metrics.
// Cancellation is honored at unit boundaries only, so a half-processed
// post never leaves a partial record behind. A failed unit is counted
// and skipped; it never aborts the remaining units
func (s *Service) Run(ctx context.Context, units []domain.Unit) (domain.RunMetrics, error) {
	runID := uuid.NewString()
	start := s.now()

	m := domain.RunMetrics{
		RunID:      runID,
		StartedAt:  start,
		ItemsFound: make(map[domain.Kind]int),
		UnitErrors: make(map[string]int),
	}

	if s.deps.Ledger != nil {
		if err := s.deps.Ledger.StartRun(ctx, runID, start, len(units)); err != nil {
			s.log.Warn().Err(err).Str("run_id", runID).Msg("run ledger start failed, continuing")
		}
	}

	idx := dedup.New(s.deps.Norm)
	if s.opts.Resume {
		idx.SeedExported(s.priorProvenance(ctx))
	}

	exported := make(map[string]struct{})
	var runErr error

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			s.log.Warn().Str("run_id", runID).Int("units_done", i).Msg("run aborted between units")
			runErr = err
			break
		}
		if i > 0 && s.opts.UnitDelay > 0 {
			if err := s.sleep(ctx, s.opts.UnitDelay); err != nil {
				runErr = err
				break
			}
		}
		s.runUnit(logger.WithRun(ctx, runID, unit.Label()), unit, idx, exported, &m)
	}

	m.FinishedAt = s.now()
	m.DurationMS = m.FinishedAt.Sub(m.StartedAt).Milliseconds()
	s.finish(ctx, runID, len(units), &m, runErr)
	return m, runErr
}

// runUnit drives one (account, variation) pair end to end
func (s *Service) runUnit(ctx context.Context, unit domain.Unit, idx *dedup.Index, exported map[string]struct{}, m *domain.RunMetrics) {
	log := logger.C(ctx)

	posts, err := s.deps.Search.Search(ctx, domain.PostQuery{
		Account: unit.Account,
		Phrase:  unit.Variation,
		Since:   s.opts.Since,
		Until:   s.opts.Until,
		Limit:   s.opts.PostLimit,
	})
	if err != nil {
		log.Error().Err(err).Msg("post retrieval failed, unit marked failed")
		m.UnitErrors[unit.Label()]++
		m.FailedUnits++
		return
	}
	log.Info().Int("posts", len(posts)).Msg("unit retrieved")

	for _, post := range posts {
		m.PostsProcessed++
		if !s.processPost(ctx, post, idx, exported, m) {
			m.PostsSkipped++
			m.UnitErrors[unit.Label()]++
		}
	}
}

// processPost classifies the post for every requested kind; false means
// the post was skipped because extraction failed outright
func (s *Service) processPost(ctx context.Context, post domain.Post, idx *dedup.Index, exported map[string]struct{}, m *domain.RunMetrics) bool {
	log := logger.C(ctx)

	for _, kind := range s.opts.Kinds {
		cand, ok, err := s.deps.Extract.Extract(ctx, kind, post)
		if err != nil {
			log.Warn().Err(err).Str("post_id", post.ID).Str("kind", string(kind)).
				Msg("extraction failed after retries, post skipped")
			return false
		}
		if !ok {
			continue
		}

		cand.EventDate = s.deps.Dates.Resolve(ctx, post.CreatedAt, post.Text, s.opts.Team)

		if kind == domain.KindShoe && s.deps.Stats != nil {
			s.attachStats(ctx, cand)
		}

		rec, out := idx.Ingest(cand)
		switch out {
		case dedup.Created:
			m.ItemsFound[kind]++
		case dedup.Merged:
		default:
			continue
		}
		s.export(ctx, rec, exported, m)
	}
	return true
}

// attachStats adds game context to a shoe candidate. Absence of games,
// and even a stat-log failure, leaves the candidate intact
func (s *Service) attachStats(ctx context.Context, cand *domain.CandidateRecord) {
	anchor := cand.PostDate
	if cand.EventDate.Resolved {
		anchor = cand.EventDate.Date
	}
	blk, err := s.deps.Stats.Around(ctx, s.opts.Player, anchor)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("post_id", cand.SourcePostID).
			Msg("stat matching failed, continuing without stats")
		return
	}
	if blk != nil {
		cand.Fields.Shoe.Stats = blk
	}
}

// export appends a complete canonical record exactly once: first seen,
// first persisted. Later merges into an exported record never re-export
func (s *Service) export(ctx context.Context, rec *domain.CanonicalRecord, exported map[string]struct{}, m *domain.RunMetrics) {
	if _, done := exported[rec.ID]; done || !rec.Complete() {
		return
	}
	if err := s.deps.Sink.Append(ctx, rec); err != nil {
		logger.C(ctx).Error().Err(err).Str("record_id", rec.ID).Msg("sink append failed")
		return
	}
	exported[rec.ID] = struct{}{}
	m.Exported++

	if s.deps.Ledger != nil {
		if err := s.deps.Ledger.MarkExported(ctx, m.RunID, rec); err != nil {
			logger.C(ctx).Warn().Err(err).Str("record_id", rec.ID).Msg("ledger export mark failed")
		}
	}
}

// priorProvenance loads post ids exported by earlier runs, preferring
// the ledger and falling back to a sink scan
func (s *Service) priorProvenance(ctx context.Context) map[string]struct{} {
	if s.deps.Ledger != nil {
		ids, err := s.deps.Ledger.ExportedProvenance(ctx)
		if err == nil {
			return ids
		}
		s.log.Warn().Err(err).Msg("ledger provenance load failed, falling back to sink scan")
	}
	ids, err := s.deps.Sink.Provenance(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("sink provenance scan failed, resuming without seed")
		return nil
	}
	return ids
}

// finish emits metrics and closes the ledger row. Both are best effort
func (s *Service) finish(ctx context.Context, runID string, units int, m *domain.RunMetrics, runErr error) {
	if s.deps.Monitor != nil {
		if err := s.deps.Monitor.Record(context.WithoutCancel(ctx), *m); err != nil {
			s.log.Warn().Err(err).Str("run_id", runID).Msg("metrics record failed")
		}
	}
	if s.deps.Ledger == nil {
		return
	}

	status := StatusCompleted
	errText := ""
	if runErr != nil {
		status = StatusAborted
		errText = runErr.Error()
	}
	fin := domain.RunFinish{
		Status:         status,
		Units:          units,
		FailedUnits:    m.FailedUnits,
		PostsProcessed: m.PostsProcessed,
		PostsSkipped:   m.PostsSkipped,
		Milestones:     m.ItemsFound[domain.KindMilestone],
		Shoes:          m.ItemsFound[domain.KindShoe],
		Outfits:        m.ItemsFound[domain.KindOutfit],
		Exported:       m.Exported,
		ElapsedMS:      m.DurationMS,
		ErrText:        errText,
	}
	if err := s.deps.Ledger.FinishRun(context.WithoutCancel(ctx), runID, fin); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("run ledger finish failed")
	}
}
