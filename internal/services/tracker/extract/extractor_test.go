package extract

import (
	"context"
	"testing"
	"time"

	perr "courtside/internal/platform/errors"
	"courtside/internal/services/tracker/domain"
)

type fakeClassifier struct {
	ex         domain.Extraction
	applicable bool
	err        error
	calls      int
}

func (f *fakeClassifier) Classify(_ context.Context, _ domain.Kind, _ string, _ time.Time) (domain.Extraction, bool, error) {
	f.calls++
	return f.ex, f.applicable, f.err
}

func milestonePost(text string) domain.Post {
	return domain.Post{
		ID:        "p1",
		Text:      text,
		Account:   "wnba_stats",
		CreatedAt: time.Date(2025, time.June, 10, 18, 0, 0, 0, time.UTC),
	}
}

func TestExtractApplicable(t *testing.T) {
	cls := &fakeClassifier{
		ex: domain.Extraction{
			Fields: domain.Fields{Milestone: &domain.MilestoneFields{
				Title: "Fastest to 1,000 career points", Value: "1,000 points",
			}},
			Confidence: 0.92,
		},
		applicable: true,
	}
	e := New(cls, "Caitlin Clark")

	cand, ok, err := e.Extract(context.Background(), domain.KindMilestone, milestonePost("Caitlin Clark is the fastest to 1,000 career points"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.SourcePostID != "p1" || cand.SourceAccount != "wnba_stats" {
		t.Fatalf("provenance = %s/%s", cand.SourcePostID, cand.SourceAccount)
	}
	if cand.Confidence != 0.92 {
		t.Fatalf("Confidence = %v, want model signal 0.92", cand.Confidence)
	}
	if cand.EventDate.Resolved {
		t.Fatal("event date must start unresolved")
	}
	if cand.Fields.Milestone == nil || cand.Fields.Milestone.Title == "" {
		t.Fatalf("fields = %+v", cand.Fields)
	}
}

func TestExtractConfidenceFallback(t *testing.T) {
	cls := &fakeClassifier{
		ex: domain.Extraction{
			Fields: domain.Fields{Milestone: &domain.MilestoneFields{
				Title: "Career high", Value: "35 points", Description: "vs the Sky",
			}},
			Confidence: 0, // no model signal
		},
		applicable: true,
	}
	e := New(cls, "Caitlin Clark")

	cand, ok, err := e.Extract(context.Background(), domain.KindMilestone, milestonePost("Caitlin Clark sets a new career high"))
	if err != nil || !ok {
		t.Fatalf("Extract: ok=%v err=%v", ok, err)
	}
	if cand.Confidence != 0.6 { // base 0.5 + one of four optional fields
		t.Fatalf("Confidence = %v, want 0.6", cand.Confidence)
	}
}

func TestExtractNotApplicable(t *testing.T) {
	cls := &fakeClassifier{applicable: false}
	e := New(cls, "Caitlin Clark")

	_, ok, err := e.Extract(context.Background(), domain.KindShoe, milestonePost("Caitlin Clark postgame interview"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ok {
		t.Fatal("expected not applicable")
	}
}

func TestExtractMalformedPayloadSkips(t *testing.T) {
	cls := &fakeClassifier{err: perr.JSONErrf("decode payload")}
	e := New(cls, "Caitlin Clark")

	_, ok, err := e.Extract(context.Background(), domain.KindMilestone, milestonePost("Caitlin Clark did a thing"))
	if err != nil {
		t.Fatalf("malformed payload must not be an error, got %v", err)
	}
	if ok {
		t.Fatal("expected skip")
	}
}

func TestExtractClassifierErrorPropagates(t *testing.T) {
	cls := &fakeClassifier{err: perr.Unavailablef("model down")}
	e := New(cls, "Caitlin Clark")

	_, ok, err := e.Extract(context.Background(), domain.KindMilestone, milestonePost("Caitlin Clark did a thing"))
	if err == nil || ok {
		t.Fatalf("want propagated error, got ok=%v err=%v", ok, err)
	}
}

func TestExtractInvalidFieldsSkip(t *testing.T) {
	cases := []struct {
		name   string
		fields domain.Fields
	}{
		{"missing required value", domain.Fields{Milestone: &domain.MilestoneFields{Title: "Career high"}}},
		{"wrong kind member", domain.Fields{Shoe: &domain.ShoeFields{ShoeName: "Kobe 6"}}},
		{"empty union", domain.Fields{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cls := &fakeClassifier{ex: domain.Extraction{Fields: tc.fields, Confidence: 0.9}, applicable: true}
			e := New(cls, "Caitlin Clark")
			_, ok, err := e.Extract(context.Background(), domain.KindMilestone, milestonePost("Caitlin Clark did a thing"))
			if err != nil {
				t.Fatalf("invalid fields must not be an error, got %v", err)
			}
			if ok {
				t.Fatal("expected skip")
			}
		})
	}
}

func TestAttributionGuard(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"subject is the actor", "Caitlin Clark drops 30 in the win", true},
		{"other player joins subject", "Aliyah Boston joins Caitlin Clark as the only rookies to...", false},
		{"only other phrasing", "She is the only other player besides Caitlin Clark to do it", false},
		{"like subject prefix", "Like Caitlin Clark, Paige Bueckers set the mark as a rookie", false},
		{"subject joins someone else", "Caitlin Clark joins Diana Taurasi in the record books", true},
		{"plain highlight", "35 PTS and 8 AST tonight for Caitlin Clark", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := attributedToSubject("Caitlin Clark", tc.text); got != tc.want {
				t.Fatalf("attributedToSubject(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}

	t.Run("guard short-circuits the classifier", func(t *testing.T) {
		cls := &fakeClassifier{applicable: true}
		e := New(cls, "Caitlin Clark")
		_, ok, err := e.Extract(context.Background(), domain.KindMilestone,
			milestonePost("Aliyah Boston joins Caitlin Clark as the only rookies to..."))
		if err != nil || ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
		if cls.calls != 0 {
			t.Fatalf("classifier calls = %d, want 0", cls.calls)
		}
	})
}
