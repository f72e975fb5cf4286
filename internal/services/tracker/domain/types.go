// Package domain holds the core business logic and data structures for the tracker
package domain

import (
	"strings"
	"time"

	perr "courtside/internal/platform/errors"
)

// Kind is the closed set of record kinds the pipeline produces
type Kind string

// Record kinds
const (
	KindMilestone Kind = "milestone"
	KindShoe      Kind = "shoe"
	KindOutfit    Kind = "outfit"
)

// ParseKind validates a kind string
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMilestone:
		return KindMilestone, nil
	case KindShoe:
		return KindShoe, nil
	case KindOutfit:
		return KindOutfit, nil
	default:
		return "", perr.InvalidArgf("unknown kind %q", s)
	}
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	switch k {
	case KindMilestone, KindShoe, KindOutfit:
		return true
	}
	return false
}

// Post is one retrieved social post, trimmed to what extraction needs.
// Raw payloads are dropped as soon as a Post is built
type Post struct {
	ID        string
	Text      string
	Account   string
	CreatedAt time.Time
	URL       string
	Likes     int
	Retweets  int
	Replies   int
}

// Unit is one (source account, name-variation) pair processed sequentially
type Unit struct {
	Account   string
	Variation string
}

// Label is the unit's stable identifier in logs, metrics, and the run ledger
func (u Unit) Label() string { return u.Account + "/" + u.Variation }

// DateSource says how an event date was derived
type DateSource string

// Date sources, in resolution priority order
const (
	DateSourceExplicit    DateSource = "explicit_text"
	DateSourceAnniversary DateSource = "anniversary"
	DateSourcePostDate    DateSource = "post_date"
	DateSourceUnresolved  DateSource = "unresolved"
)

// ResolvedDate is a concrete calendar date or the first-class "unresolved"
// state. A guessed date is never represented here
type ResolvedDate struct {
	Date     time.Time
	Resolved bool
	Source   DateSource
}

// Unresolved returns the unresolved sentinel
func Unresolved() ResolvedDate { return ResolvedDate{Source: DateSourceUnresolved} }

// SameDay reports whether both dates are resolved to the same calendar day
func (d ResolvedDate) SameDay(o ResolvedDate) bool {
	if !d.Resolved || !o.Resolved {
		return false
	}
	y1, m1, d1 := d.Date.Date()
	y2, m2, d2 := o.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// MilestoneFields is the per-kind payload for career milestones
type MilestoneFields struct {
	Title          string   `json:"title" validate:"required"`
	Value          string   `json:"value" validate:"required"`
	Categories     []string `json:"categories,omitempty"`
	Description    string   `json:"description,omitempty"`
	PreviousRecord string   `json:"previous_record,omitempty"`
	DateContext    string   `json:"date_context,omitempty"`
}

// ShoeFields is the per-kind payload for footwear items
type ShoeFields struct {
	ShoeName       string          `json:"shoe_name" validate:"required"`
	Brand          string          `json:"brand,omitempty"`
	Model          string          `json:"model,omitempty"`
	Colorway       string          `json:"colorway,omitempty"`
	ReleaseDate    string          `json:"release_date,omitempty"`
	SignatureShoe  bool            `json:"signature_shoe,omitempty"`
	LimitedEdition bool            `json:"limited_edition,omitempty"`
	Description    string          `json:"description,omitempty"`
	Stats          *GameStatsBlock `json:"stats,omitempty"`
}

// OutfitFields is the per-kind payload for outfit items
type OutfitFields struct {
	Event         string `json:"event" validate:"required"`
	OutfitDetails string `json:"outfit_details" validate:"required"`
	StyleCategory string `json:"style_category,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Fields is the tagged union of per-kind payloads.
// Exactly one member is non-nil and it must match the record's Kind
type Fields struct {
	Milestone *MilestoneFields `json:"milestone,omitempty"`
	Shoe      *ShoeFields      `json:"shoe,omitempty"`
	Outfit    *OutfitFields    `json:"outfit,omitempty"`
}

// Validate enforces the exactly-one-member-set invariant against kind
func (f Fields) Validate(kind Kind) error {
	set := 0
	if f.Milestone != nil {
		set++
	}
	if f.Shoe != nil {
		set++
	}
	if f.Outfit != nil {
		set++
	}
	if set != 1 {
		return perr.Validationf("fields union has %d members set, want 1", set)
	}
	switch kind {
	case KindMilestone:
		if f.Milestone == nil {
			return perr.Validationf("kind %s without milestone fields", kind)
		}
	case KindShoe:
		if f.Shoe == nil {
			return perr.Validationf("kind %s without shoe fields", kind)
		}
	case KindOutfit:
		if f.Outfit == nil {
			return perr.Validationf("kind %s without outfit fields", kind)
		}
	default:
		return perr.InvalidArgf("unknown kind %q", string(kind))
	}
	return nil
}

// KeyText returns the descriptive text dedup compares per kind
func (f Fields) KeyText(kind Kind) string {
	switch kind {
	case KindMilestone:
		if f.Milestone != nil {
			return strings.TrimSpace(f.Milestone.Title + " " + f.Milestone.Value)
		}
	case KindShoe:
		if f.Shoe != nil {
			return strings.TrimSpace(f.Shoe.ShoeName + " " + f.Shoe.Model)
		}
	case KindOutfit:
		if f.Outfit != nil {
			return strings.TrimSpace(f.Outfit.Event + " " + f.Outfit.OutfitDetails)
		}
	}
	return ""
}

// CandidateRecord is one post's extracted, not-yet-deduplicated data.
// Immutable after creation; re-extraction never mutates an existing one
type CandidateRecord struct {
	SourcePostID  string
	SourceAccount string
	PostDate      time.Time
	EventDate     ResolvedDate
	Confidence    float64
	RawText       string
	Kind          Kind
	Fields        Fields
}

// GameLine is one game's stat line from the performance log
type GameLine struct {
	Date     time.Time
	Points   int
	Rebounds int
	Assists  int
	Opponent string
}

// GameStatsSummary aggregates the matched games.
// Averages are rounded to one decimal
type GameStatsSummary struct {
	GamesPlayed     int
	PointsPerGame   float64
	ReboundsPerGame float64
	AssistsPerGame  float64
	BestGame        *GameLine
}

// GameStatsBlock is the ordered matched games plus their summary
type GameStatsBlock struct {
	Games   []GameLine
	Summary GameStatsSummary
}

// StatusPendingReview is the only status records leave the pipeline with;
// publishing is a human decision downstream
const StatusPendingReview = "pending_review"

// CanonicalRecord is the merged, deduplicated form of one real-world fact
type CanonicalRecord struct {
	ID         string
	Kind       Kind
	Fields     Fields
	EventDate  ResolvedDate
	PostDate   time.Time // earliest member post date, anchors the unresolved date gate
	Provenance []string  // source post ids, first-seen order
	Accounts   []string  // contributing accounts, first-seen order
	Confidence float64   // max over members
	Status     string
	FirstSeen  int // ingestion ordinal, drives output ordering
}

// HasProvenance reports whether the given post id already contributed
func (c *CanonicalRecord) HasProvenance(postID string) bool {
	for _, p := range c.Provenance {
		if p == postID {
			return true
		}
	}
	return false
}

// Complete reports whether the record is complete enough to export:
// all kind-required fields non-empty. Event date may be unresolved and
// shoe stats may be absent, both are intentional blanks
func (c *CanonicalRecord) Complete() bool {
	switch c.Kind {
	case KindMilestone:
		return c.Fields.Milestone != nil &&
			c.Fields.Milestone.Title != "" && c.Fields.Milestone.Value != ""
	case KindShoe:
		return c.Fields.Shoe != nil && c.Fields.Shoe.ShoeName != ""
	case KindOutfit:
		return c.Fields.Outfit != nil &&
			c.Fields.Outfit.Event != "" && c.Fields.Outfit.OutfitDetails != ""
	}
	return false
}

// RunMetrics is the per-run metrics object handed to the monitoring sink
type RunMetrics struct {
	RunID          string         `json:"run_id"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	DurationMS     int64          `json:"duration_ms"`
	PostsProcessed int            `json:"posts_processed"`
	PostsSkipped   int            `json:"posts_skipped"`
	ItemsFound     map[Kind]int   `json:"items_found"`
	UnitErrors     map[string]int `json:"unit_errors"`
	FailedUnits    int            `json:"failed_units"`
	Exported       int            `json:"exported"`
}

// RunFinish summarizes a completed run for the ledger
type RunFinish struct {
	Status         string
	Units          int
	FailedUnits    int
	PostsProcessed int
	PostsSkipped   int
	Milestones     int
	Shoes          int
	Outfits        int
	Exported       int
	ElapsedMS      int64
	ErrText        string
}
