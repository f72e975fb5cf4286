package domain

import (
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"milestone", KindMilestone, false},
		{"  Shoe ", KindShoe, false},
		{"OUTFIT", KindOutfit, false},
		{"sneaker", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseKind(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseKind(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestFieldsValidate(t *testing.T) {
	m := &MilestoneFields{Title: "Career high", Value: "35 points"}
	s := &ShoeFields{ShoeName: "Kobe 6"}

	if err := (Fields{Milestone: m}).Validate(KindMilestone); err != nil {
		t.Fatalf("valid union rejected: %v", err)
	}
	if err := (Fields{}).Validate(KindMilestone); err == nil {
		t.Fatal("empty union accepted")
	}
	if err := (Fields{Milestone: m, Shoe: s}).Validate(KindMilestone); err == nil {
		t.Fatal("two members accepted")
	}
	if err := (Fields{Shoe: s}).Validate(KindMilestone); err == nil {
		t.Fatal("kind mismatch accepted")
	}
}

func TestFieldsKeyText(t *testing.T) {
	cases := []struct {
		name string
		f    Fields
		kind Kind
		want string
	}{
		{"milestone", Fields{Milestone: &MilestoneFields{Title: "Career high", Value: "35 points"}}, KindMilestone, "Career high 35 points"},
		{"shoe", Fields{Shoe: &ShoeFields{ShoeName: "Kobe 6 Protro", Model: "Kobe 6"}}, KindShoe, "Kobe 6 Protro Kobe 6"},
		{"outfit", Fields{Outfit: &OutfitFields{Event: "Game 1 tunnel", OutfitDetails: "all denim"}}, KindOutfit, "Game 1 tunnel all denim"},
		{"wrong member", Fields{Shoe: &ShoeFields{ShoeName: "Kobe 6"}}, KindMilestone, ""},
	}
	for _, tc := range cases {
		if got := tc.f.KeyText(tc.kind); got != tc.want {
			t.Fatalf("%s: KeyText = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCanonicalComplete(t *testing.T) {
	if !(&CanonicalRecord{Kind: KindShoe, Fields: Fields{Shoe: &ShoeFields{ShoeName: "Kobe 6"}}}).Complete() {
		t.Fatal("shoe with a name must be complete even without stats")
	}
	if (&CanonicalRecord{Kind: KindMilestone, Fields: Fields{Milestone: &MilestoneFields{Title: "Career high"}}}).Complete() {
		t.Fatal("milestone without value must be incomplete")
	}
	if (&CanonicalRecord{Kind: KindOutfit, Fields: Fields{}}).Complete() {
		t.Fatal("outfit without fields must be incomplete")
	}
}

func TestResolvedDateSameDay(t *testing.T) {
	a := ResolvedDate{Date: time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC), Resolved: true, Source: DateSourceExplicit}
	b := ResolvedDate{Date: time.Date(2025, time.June, 10, 22, 0, 0, 0, time.UTC), Resolved: true, Source: DateSourcePostDate}
	if !a.SameDay(b) {
		t.Fatal("same calendar day with different clock times must match")
	}
	if a.SameDay(Unresolved()) {
		t.Fatal("resolved must never match unresolved")
	}
	if Unresolved().SameDay(Unresolved()) {
		t.Fatal("two unresolved dates are not the same day")
	}
}

func TestHasProvenance(t *testing.T) {
	rec := &CanonicalRecord{Provenance: []string{"p1", "p2"}}
	if !rec.HasProvenance("p1") || rec.HasProvenance("p3") {
		t.Fatalf("provenance lookup wrong: %v", rec.Provenance)
	}
}
