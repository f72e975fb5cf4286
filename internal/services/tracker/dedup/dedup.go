// Package dedup folds candidate records into canonical records using
// normalized fuzzy matching plus a date gate
package dedup

import (
	"time"

	"github.com/google/uuid"

	"courtside/internal/core/similarity"
	"courtside/internal/platform/logger"
	"courtside/internal/services/tracker/domain"
)

const (
	// matchThreshold is exclusive: a score of exactly 0.85 is distinct
	matchThreshold = 0.85

	// maxPostGap bounds the post-date distance for merging two
	// candidates whose event dates are both unresolved
	maxPostGap = 72 * time.Hour
)

// Outcome classifies what Ingest did with a candidate
type Outcome int

// Ingest outcomes
const (
	Created Outcome = iota
	Merged
	Duplicate       // post id already contributed this run
	AlreadyExported // post id exported by a prior run
)

// Index is the run-scoped dedup state. Not safe for concurrent use;
// units are processed sequentially by design
type Index struct {
	norm     domain.Normalizer
	byKind   map[domain.Kind][]*domain.CanonicalRecord
	keys     map[string]string // record id -> normalized key text
	seen     map[string]struct{}
	exported map[string]struct{}
	ordinal  int
	log      logger.Logger
}

// New constructs an empty Index over the given normalizer
func New(norm domain.Normalizer) *Index {
	return &Index{
		norm:     norm,
		byKind:   make(map[domain.Kind][]*domain.CanonicalRecord),
		keys:     make(map[string]string),
		seen:     make(map[string]struct{}),
		exported: make(map[string]struct{}),
		log:      *logger.Named("dedup"),
	}
}

// SeedExported marks post ids exported by prior runs so they are never
// re-ingested. This is what makes interrupted runs resumable
func (x *Index) SeedExported(ids map[string]struct{}) {
	for id := range ids {
		x.exported[id] = struct{}{}
	}
}

// Ingest folds one candidate into the index. Idempotent on the source
// post id: feeding the same post twice changes nothing
func (x *Index) Ingest(cand *domain.CandidateRecord) (*domain.CanonicalRecord, Outcome) {
	if _, ok := x.exported[cand.SourcePostID]; ok {
		return nil, AlreadyExported
	}
	if _, ok := x.seen[cand.SourcePostID]; ok {
		return nil, Duplicate
	}
	x.seen[cand.SourcePostID] = struct{}{}

	key := x.norm.Normalize(cand.Fields.KeyText(cand.Kind))

	if rec := x.match(cand, key); rec != nil {
		x.merge(rec, cand)
		x.keys[rec.ID] = x.norm.Normalize(rec.Fields.KeyText(rec.Kind))
		x.log.Debug().Str("record_id", rec.ID).Str("post_id", cand.SourcePostID).
			Msg("candidate merged into existing record")
		return rec, Merged
	}

	rec := x.create(cand, key)
	return rec, Created
}

// Records returns the canonical records of one kind in first-seen order
func (x *Index) Records(kind domain.Kind) []*domain.CanonicalRecord {
	return x.byKind[kind]
}

// match finds the best existing record of the candidate's kind that
// clears both the similarity threshold and the date gate
func (x *Index) match(cand *domain.CandidateRecord, key string) *domain.CanonicalRecord {
	var best *domain.CanonicalRecord
	bestScore := matchThreshold
	for _, rec := range x.byKind[cand.Kind] {
		if !dateGate(rec, cand) {
			continue
		}
		score := similarity.Best(key, x.keys[rec.ID])
		if score > bestScore {
			best, bestScore = rec, score
		}
	}
	return best
}

// dateGate admits a merge only when the event dates agree: same resolved
// calendar day, or both unresolved with post dates within three days.
// Resolved never merges with unresolved
func dateGate(rec *domain.CanonicalRecord, cand *domain.CandidateRecord) bool {
	if rec.EventDate.Resolved != cand.EventDate.Resolved {
		return false
	}
	if rec.EventDate.Resolved {
		return rec.EventDate.SameDay(cand.EventDate)
	}
	gap := rec.PostDate.Sub(cand.PostDate)
	if gap < 0 {
		gap = -gap
	}
	return gap <= maxPostGap
}

func (x *Index) create(cand *domain.CandidateRecord, key string) *domain.CanonicalRecord {
	rec := &domain.CanonicalRecord{
		ID:         uuid.NewString(),
		Kind:       cand.Kind,
		Fields:     cand.Fields,
		EventDate:  cand.EventDate,
		PostDate:   cand.PostDate,
		Provenance: []string{cand.SourcePostID},
		Accounts:   []string{cand.SourceAccount},
		Confidence: cand.Confidence,
		Status:     domain.StatusPendingReview,
		FirstSeen:  x.ordinal,
	}
	x.ordinal++
	x.byKind[cand.Kind] = append(x.byKind[cand.Kind], rec)
	x.keys[rec.ID] = key
	return rec
}

// merge folds cand into rec. Per field the higher-confidence side wins,
// ties go to the longer non-empty value, and a populated value is never
// replaced by an empty one
func (x *Index) merge(rec *domain.CanonicalRecord, cand *domain.CandidateRecord) {
	cmp := 0
	switch {
	case cand.Confidence > rec.Confidence:
		cmp = 1
	case cand.Confidence < rec.Confidence:
		cmp = -1
	}

	switch rec.Kind {
	case domain.KindMilestone:
		mergeMilestone(rec.Fields.Milestone, cand.Fields.Milestone, cmp)
	case domain.KindShoe:
		mergeShoe(rec.Fields.Shoe, cand.Fields.Shoe, cmp)
	case domain.KindOutfit:
		mergeOutfit(rec.Fields.Outfit, cand.Fields.Outfit, cmp)
	}

	rec.Provenance = append(rec.Provenance, cand.SourcePostID)
	rec.Accounts = appendUnique(rec.Accounts, cand.SourceAccount)
	if cand.Confidence > rec.Confidence {
		rec.Confidence = cand.Confidence
	}
	if cand.PostDate.Before(rec.PostDate) {
		rec.PostDate = cand.PostDate
	}
}

func mergeMilestone(cur, inc *domain.MilestoneFields, cmp int) {
	cur.Title = pick(cur.Title, inc.Title, cmp)
	cur.Value = pick(cur.Value, inc.Value, cmp)
	cur.Description = pick(cur.Description, inc.Description, cmp)
	cur.PreviousRecord = pick(cur.PreviousRecord, inc.PreviousRecord, cmp)
	cur.DateContext = pick(cur.DateContext, inc.DateContext, cmp)
	for _, c := range inc.Categories {
		cur.Categories = appendUnique(cur.Categories, c)
	}
}

func mergeShoe(cur, inc *domain.ShoeFields, cmp int) {
	cur.ShoeName = pick(cur.ShoeName, inc.ShoeName, cmp)
	cur.Brand = pick(cur.Brand, inc.Brand, cmp)
	cur.Model = pick(cur.Model, inc.Model, cmp)
	cur.Colorway = pick(cur.Colorway, inc.Colorway, cmp)
	cur.ReleaseDate = pick(cur.ReleaseDate, inc.ReleaseDate, cmp)
	cur.Description = pick(cur.Description, inc.Description, cmp)
	cur.SignatureShoe = cur.SignatureShoe || inc.SignatureShoe
	cur.LimitedEdition = cur.LimitedEdition || inc.LimitedEdition
	if cur.Stats == nil {
		cur.Stats = inc.Stats
	} else if inc.Stats != nil && cmp > 0 {
		cur.Stats = inc.Stats
	}
}

func mergeOutfit(cur, inc *domain.OutfitFields, cmp int) {
	cur.Event = pick(cur.Event, inc.Event, cmp)
	cur.OutfitDetails = pick(cur.OutfitDetails, inc.OutfitDetails, cmp)
	cur.StyleCategory = pick(cur.StyleCategory, inc.StyleCategory, cmp)
	cur.Location = pick(cur.Location, inc.Location, cmp)
	cur.Description = pick(cur.Description, inc.Description, cmp)
}

// pick chooses between the current and incoming value for one field.
// cmp is the incoming candidate's confidence relative to the record
func pick(cur, inc string, cmp int) string {
	if cur == "" {
		return inc
	}
	if inc == "" {
		return cur
	}
	switch {
	case cmp > 0:
		return inc
	case cmp < 0:
		return cur
	default:
		if len(inc) > len(cur) {
			return inc
		}
		return cur
	}
}

func appendUnique(ss []string, s string) []string {
	for _, v := range ss {
		if v == s {
			return ss
		}
	}
	return append(ss, s)
}
