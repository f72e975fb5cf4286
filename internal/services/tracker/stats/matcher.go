// Package stats attaches on-court performance context to shoe sightings
// by matching games near the sighting date
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"courtside/internal/platform/logger"
	"courtside/internal/services/tracker/domain"
)

// window is how far either side of the event date games are matched
const window = 7 * 24 * time.Hour

// Matcher pulls game lines around an event date and summarizes them
type Matcher struct {
	logs domain.GameLogPort
	log  logger.Logger
}

// New constructs a Matcher over the given performance log
func New(logs domain.GameLogPort) *Matcher {
	return &Matcher{logs: logs, log: *logger.Named("stats")}
}

// Around returns the stats block for games within seven days either side
// of eventDate. No games in the window is not an error: (nil, nil)
func (m *Matcher) Around(ctx context.Context, player string, eventDate time.Time) (*domain.GameStatsBlock, error) {
	from := eventDate.Add(-window)
	to := eventDate.Add(window)

	games, err := m.logs.GamesBetween(ctx, player, from, to)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		m.log.Debug().Str("player", player).Time("event_date", eventDate).Msg("no games in window")
		return nil, nil
	}

	sort.Slice(games, func(i, j int) bool { return games[i].Date.Before(games[j].Date) })

	return &domain.GameStatsBlock{
		Games:   games,
		Summary: Summarize(games),
	}, nil
}

// Summarize computes per-game averages (rounded to one decimal) and the
// best game: highest points, then highest rebounds+assists, then earliest
func Summarize(games []domain.GameLine) domain.GameStatsSummary {
	var pts, reb, ast int
	best := 0
	for i, g := range games {
		pts += g.Points
		reb += g.Rebounds
		ast += g.Assists
		if better(g, games[best]) {
			best = i
		}
	}
	n := float64(len(games))
	bg := games[best]
	return domain.GameStatsSummary{
		GamesPlayed:     len(games),
		PointsPerGame:   round1(float64(pts) / n),
		ReboundsPerGame: round1(float64(reb) / n),
		AssistsPerGame:  round1(float64(ast) / n),
		BestGame:        &bg,
	}
}

func better(a, b domain.GameLine) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if sa, sb := a.Rebounds+a.Assists, b.Rebounds+b.Assists; sa != sb {
		return sa > sb
	}
	return a.Date.Before(b.Date)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
