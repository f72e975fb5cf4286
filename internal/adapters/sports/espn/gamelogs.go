package espn

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	perr "courtside/internal/platform/errors"
	"courtside/internal/services/tracker/domain"
)

// gamelog wire shapes. Stat values arrive as positional strings keyed by
// the top-level labels array

type gamelogResponse struct {
	Labels      []string                `json:"labels"`
	Events      map[string]gamelogGame  `json:"events"`
	SeasonTypes []gamelogSeasonType     `json:"seasonTypes"`
}

type gamelogGame struct {
	ID       string `json:"id"`
	GameDate string `json:"gameDate"`
	Opponent struct {
		DisplayName string `json:"displayName"`
	} `json:"opponent"`
}

type gamelogSeasonType struct {
	Categories []struct {
		Events []struct {
			EventID string   `json:"eventId"`
			Stats   []string `json:"stats"`
		} `json:"events"`
	} `json:"categories"`
}

// gameDate layouts ESPN has been seen emitting
var gamelogDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

// GamesBetween implements domain.GameLogPort: every game the configured
// athlete played in [from, to], ascending by date. Zero games is a nil
// slice, not an error
func (c *Client) GamesBetween(ctx context.Context, player string, from, to time.Time) ([]domain.GameLine, error) {
	if c.opts.AthleteID == "" {
		return nil, perr.InvalidArgf("espn: athlete id not configured")
	}

	url := c.opts.GamelogURL + "/" + c.opts.AthleteID + "/gamelog"

	var gl gamelogResponse
	if err := c.getJSON(ctx, url, &gl); err != nil {
		return nil, err
	}

	ptsIdx := labelIndex(gl.Labels, "PTS")
	rebIdx := labelIndex(gl.Labels, "REB")
	astIdx := labelIndex(gl.Labels, "AST")
	if ptsIdx < 0 {
		return nil, perr.JSONErrf("espn gamelog: no PTS label in %v", gl.Labels)
	}

	var out []domain.GameLine
	for _, st := range gl.SeasonTypes {
		for _, cat := range st.Categories {
			for _, ev := range cat.Events {
				game, ok := gl.Events[ev.EventID]
				if !ok {
					continue
				}
				d, ok := parseGameDate(game.GameDate)
				if !ok {
					c.log.Warn().Str("event_id", ev.EventID).Str("game_date", game.GameDate).
						Msg("unparseable gamelog date")
					continue
				}
				if d.Before(from) || d.After(to) {
					continue
				}
				out = append(out, domain.GameLine{
					Date:     d,
					Points:   statAt(ev.Stats, ptsIdx),
					Rebounds: statAt(ev.Stats, rebIdx),
					Assists:  statAt(ev.Stats, astIdx),
					Opponent: game.Opponent.DisplayName,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	c.log.Debug().
		Str("player", player).
		Time("from", from).
		Time("to", to).
		Int("games", len(out)).
		Msg("espn gamelog window")
	return out, nil
}

func labelIndex(labels []string, want string) int {
	for i, l := range labels {
		if strings.EqualFold(l, want) {
			return i
		}
	}
	return -1
}

func statAt(stats []string, idx int) int {
	if idx < 0 || idx >= len(stats) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(stats[idx]))
	if err != nil {
		return 0
	}
	return n
}

func parseGameDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range gamelogDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// normalize to the calendar day
			y, m, d := t.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
