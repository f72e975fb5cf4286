package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtside/internal/services/tracker/domain"
)

type fakeLog struct {
	games []domain.GameLine
	err   error
	from  time.Time
	to    time.Time
}

func (f *fakeLog) GamesBetween(_ context.Context, _ string, from, to time.Time) ([]domain.GameLine, error) {
	f.from, f.to = from, to
	return f.games, f.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAroundWindowAndSummary(t *testing.T) {
	event := day(2025, time.June, 10)
	fl := &fakeLog{games: []domain.GameLine{
		{Date: day(2025, time.June, 12), Points: 31, Rebounds: 8, Assists: 12, Opponent: "Connecticut Sun"},
		{Date: day(2025, time.June, 8), Points: 20, Rebounds: 5, Assists: 9, Opponent: "Chicago Sky"},
		{Date: day(2025, time.June, 14), Points: 15, Rebounds: 4, Assists: 6, Opponent: "New York Liberty"},
	}}

	m := New(fl)
	blk, err := m.Around(context.Background(), "Caitlin Clark", event)
	if err != nil {
		t.Fatalf("Around: %v", err)
	}
	if blk == nil {
		t.Fatal("expected a stats block")
	}

	if want := event.AddDate(0, 0, -7); !fl.from.Equal(want) {
		t.Fatalf("window from = %s, want %s", fl.from, want)
	}
	if want := event.AddDate(0, 0, 7); !fl.to.Equal(want) {
		t.Fatalf("window to = %s, want %s", fl.to, want)
	}

	if len(blk.Games) != 3 {
		t.Fatalf("games = %d, want 3", len(blk.Games))
	}
	for i := 1; i < len(blk.Games); i++ {
		if blk.Games[i].Date.Before(blk.Games[i-1].Date) {
			t.Fatalf("games out of order at %d", i)
		}
	}

	s := blk.Summary
	if s.GamesPlayed != 3 {
		t.Fatalf("GamesPlayed = %d, want 3", s.GamesPlayed)
	}
	if s.PointsPerGame != 22.0 {
		t.Fatalf("PointsPerGame = %v, want 22.0", s.PointsPerGame)
	}
	if s.ReboundsPerGame != 5.7 {
		t.Fatalf("ReboundsPerGame = %v, want 5.7", s.ReboundsPerGame)
	}
	if s.AssistsPerGame != 9.0 {
		t.Fatalf("AssistsPerGame = %v, want 9.0", s.AssistsPerGame)
	}
	if s.BestGame == nil || s.BestGame.Points != 31 {
		t.Fatalf("BestGame = %+v, want the 31-point game", s.BestGame)
	}
}

func TestAroundNoGames(t *testing.T) {
	m := New(&fakeLog{})
	blk, err := m.Around(context.Background(), "Caitlin Clark", day(2025, time.January, 5))
	if err != nil {
		t.Fatalf("Around: %v", err)
	}
	if blk != nil {
		t.Fatalf("expected nil block, got %+v", blk)
	}
}

func TestAroundPropagatesError(t *testing.T) {
	m := New(&fakeLog{err: errors.New("gamelog down")})
	if _, err := m.Around(context.Background(), "Caitlin Clark", day(2025, time.June, 10)); err == nil {
		t.Fatal("expected error")
	}
}

func TestSummarizeBestGameTieBreaks(t *testing.T) {
	cases := []struct {
		name  string
		games []domain.GameLine
		want  time.Time
	}{
		{
			"higher points wins",
			[]domain.GameLine{
				{Date: day(2025, time.June, 1), Points: 18, Rebounds: 10, Assists: 10},
				{Date: day(2025, time.June, 3), Points: 25, Rebounds: 2, Assists: 2},
			},
			day(2025, time.June, 3),
		},
		{
			"rebounds plus assists breaks point ties",
			[]domain.GameLine{
				{Date: day(2025, time.June, 1), Points: 20, Rebounds: 4, Assists: 6},
				{Date: day(2025, time.June, 3), Points: 20, Rebounds: 7, Assists: 8},
			},
			day(2025, time.June, 3),
		},
		{
			"earliest date breaks full ties",
			[]domain.GameLine{
				{Date: day(2025, time.June, 5), Points: 20, Rebounds: 5, Assists: 5},
				{Date: day(2025, time.June, 1), Points: 20, Rebounds: 5, Assists: 5},
			},
			day(2025, time.June, 1),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tc.games)
			if s.BestGame == nil || !s.BestGame.Date.Equal(tc.want) {
				t.Fatalf("BestGame date = %v, want %s", s.BestGame, tc.want.Format("2006-01-02"))
			}
		})
	}
}
