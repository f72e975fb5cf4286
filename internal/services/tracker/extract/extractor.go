// Package extract turns retrieved posts into validated candidate records
package extract

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/logger"
	"courtside/internal/services/tracker/domain"
)

// Extractor runs the classifier over posts and validates its output.
// Anything that fails validation is treated as not-applicable rather
// than an error: a bad payload for one post never fails a unit
type Extractor struct {
	cls      domain.Classifier
	validate *validator.Validate
	player   string
	log      logger.Logger
}

// New constructs an Extractor. player is the tracked subject's display
// name, used by the attribution guard
func New(cls domain.Classifier, player string) *Extractor {
	return &Extractor{
		cls:      cls,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		player:   player,
		log:      *logger.Named("extract"),
	}
}

// Extract classifies one post for the given kind.
// ok=false means the post is not a usable item of that kind (off-topic,
// misattributed, or structurally invalid). A non-nil error is reserved
// for classifier failures that survived the adapter's own retries
func (e *Extractor) Extract(ctx context.Context, kind domain.Kind, post domain.Post) (*domain.CandidateRecord, bool, error) {
	if !attributedToSubject(e.player, post.Text) {
		e.log.Debug().Str("post_id", post.ID).Msg("subject mentioned as reference only, skipping")
		return nil, false, nil
	}

	ex, applicable, err := e.cls.Classify(ctx, kind, post.Text, post.CreatedAt)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeJSON) {
			e.log.Debug().Err(err).Str("post_id", post.ID).Msg("malformed classifier payload, skipping")
			return nil, false, nil
		}
		return nil, false, err
	}
	if !applicable {
		return nil, false, nil
	}

	if err := e.validFields(kind, ex.Fields); err != nil {
		e.log.Debug().Err(err).Str("post_id", post.ID).Str("kind", string(kind)).
			Msg("extraction failed validation, skipping")
		return nil, false, nil
	}

	conf := ex.Confidence
	if conf <= 0 || conf > 1 {
		conf = completeness(kind, ex.Fields)
	}

	return &domain.CandidateRecord{
		SourcePostID:  post.ID,
		SourceAccount: post.Account,
		PostDate:      post.CreatedAt,
		EventDate:     domain.Unresolved(),
		Confidence:    conf,
		RawText:       post.Text,
		Kind:          kind,
		Fields:        ex.Fields,
	}, true, nil
}

// validFields enforces the union invariant plus per-kind required tags
func (e *Extractor) validFields(kind domain.Kind, f domain.Fields) error {
	if err := f.Validate(kind); err != nil {
		return err
	}
	var payload any
	switch kind {
	case domain.KindMilestone:
		payload = f.Milestone
	case domain.KindShoe:
		payload = f.Shoe
	case domain.KindOutfit:
		payload = f.Outfit
	}
	if err := e.validate.Struct(payload); err != nil {
		return perr.WrapIf(err, perr.ErrorCodeValidation, "payload validation")
	}
	return nil
}

// attributedToSubject rejects posts that mention the subject only as a
// reference point for someone else's achievement: "X joins <subject>",
// "the only other player besides <subject>", "like <subject>, X did..."
func attributedToSubject(player, text string) bool {
	if player == "" {
		return true
	}
	lower := strings.ToLower(text)
	name := strings.ToLower(player)

	if i := strings.Index(lower, " joins "); i >= 0 {
		if strings.Contains(lower[i:], name) {
			return false
		}
	}
	if strings.Contains(lower, "only other") || strings.Contains(lower, "other player") {
		return false
	}
	if strings.HasPrefix(lower, "like "+name) {
		return false
	}
	return true
}

// completeness is the fallback confidence when the model gives no usable
// signal: a base for passing validation plus credit per optional field
func completeness(kind domain.Kind, f domain.Fields) float64 {
	var filled, total int
	switch kind {
	case domain.KindMilestone:
		m := f.Milestone
		filled = countNonEmpty(strings.Join(m.Categories, ""), m.Description, m.PreviousRecord, m.DateContext)
		total = 4
	case domain.KindShoe:
		s := f.Shoe
		filled = countNonEmpty(s.Brand, s.Model, s.Colorway, s.ReleaseDate, s.Description)
		total = 5
	case domain.KindOutfit:
		o := f.Outfit
		filled = countNonEmpty(o.StyleCategory, o.Location, o.Description)
		total = 3
	}
	return 0.5 + 0.4*float64(filled)/float64(total)
}

func countNonEmpty(ss ...string) int {
	n := 0
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
