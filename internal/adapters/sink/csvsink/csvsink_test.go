package csvsink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"courtside/internal/services/tracker/domain"
)

func milestoneRec(id string, prov ...string) *domain.CanonicalRecord {
	return &domain.CanonicalRecord{
		ID:   id,
		Kind: domain.KindMilestone,
		Fields: domain.Fields{Milestone: &domain.MilestoneFields{
			Title: "Rookie assist record", Value: "19 assists",
			Categories: []string{"assists", "rookie"},
		}},
		EventDate: domain.ResolvedDate{
			Date: time.Date(2024, 8, 27, 0, 0, 0, 0, time.UTC), Resolved: true,
			Source: domain.DateSourceExplicit,
		},
		Provenance: prov,
		Accounts:   []string{"wnba"},
		Confidence: 0.9,
		Status:     domain.StatusPendingReview,
	}
}

func TestAppend_HeaderOnceAndRows(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := s.Append(ctx, milestoneRec("m1", "p1", "p2")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, milestoneRec("m2", "p3")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "milestones.csv"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][9] != "provenance" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "m1" || rows[1][9] != "p1;p2" {
		t.Fatalf("row1 = %v", rows[1])
	}
	if rows[1][4] != "2024-08-27" {
		t.Fatalf("event_date = %q", rows[1][4])
	}
	if rows[1][8] != domain.StatusPendingReview {
		t.Fatalf("status = %q", rows[1][8])
	}
}

func TestAppend_UnresolvedDateWrittenEmpty(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	rec := milestoneRec("m1", "p1")
	rec.EventDate = domain.Unresolved()
	if err := s.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	f, _ := os.Open(filepath.Join(dir, "milestones.csv"))
	defer f.Close()
	rows, _ := csv.NewReader(f).ReadAll()
	if rows[1][4] != "" {
		t.Fatalf("event_date = %q, want empty", rows[1][4])
	}
}

func TestAppend_ShoeWithStats(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	best := domain.GameLine{
		Date: time.Date(2024, 8, 28, 0, 0, 0, 0, time.UTC), Points: 31, Rebounds: 8, Assists: 12,
	}
	rec := &domain.CanonicalRecord{
		ID:   "s1",
		Kind: domain.KindShoe,
		Fields: domain.Fields{Shoe: &domain.ShoeFields{
			ShoeName: "Kobe 6 Protro", Brand: "Nike",
			Stats: &domain.GameStatsBlock{
				Games: []domain.GameLine{best},
				Summary: domain.GameStatsSummary{
					GamesPlayed: 1, PointsPerGame: 31.0, ReboundsPerGame: 8.0,
					AssistsPerGame: 12.0, BestGame: &best,
				},
			},
		}},
		EventDate:  domain.Unresolved(),
		Provenance: []string{"pA"},
		Accounts:   []string{"nikestore"},
		Confidence: 0.8,
		Status:     domain.StatusPendingReview,
	}
	if err := s.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	f, _ := os.Open(filepath.Join(dir, "shoes.csv"))
	defer f.Close()
	rows, _ := csv.NewReader(f).ReadAll()
	r := rows[1]
	if r[9] != "1" || r[10] != "31.0" || r[13] != "2024-08-28" || r[14] != "31" {
		t.Fatalf("stats columns = %v", r[9:15])
	}
}

func TestProvenance_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	ctx := context.Background()

	_ = s.Append(ctx, milestoneRec("m1", "p1", "p2"))
	rec := &domain.CanonicalRecord{
		ID:   "o1",
		Kind: domain.KindOutfit,
		Fields: domain.Fields{Outfit: &domain.OutfitFields{
			Event: "All-Star arrival", OutfitDetails: "black suit",
		}},
		EventDate:  domain.Unresolved(),
		Provenance: []string{"p9"},
		Status:     domain.StatusPendingReview,
	}
	_ = s.Append(ctx, rec)

	got, err := s.Provenance(ctx)
	if err != nil {
		t.Fatalf("Provenance: %v", err)
	}
	for _, id := range []string{"p1", "p2", "p9"} {
		if _, ok := got[id]; !ok {
			t.Fatalf("missing %s in %v", id, got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestProvenance_EmptyDir(t *testing.T) {
	s, _ := New(t.TempDir())
	got, err := s.Provenance(context.Background())
	if err != nil {
		t.Fatalf("Provenance: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
