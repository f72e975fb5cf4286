package espn

import (
	"context"
	"strings"
	"time"
)

// scoreboard wire shapes, trimmed to what validation needs

type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string `json:"id"`
	Status       eventStatus
	Competitions []competition `json:"competitions"`
}

type eventStatus struct {
	Type struct {
		Name string `json:"name"`
	} `json:"type"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	Team struct {
		DisplayName  string `json:"displayName"`
		ShortName    string `json:"shortDisplayName"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

// GameOn implements domain.ScheduleGateway: reports whether the team
// played a counted game on the given date. Cancelled and postponed
// events do not count
func (c *Client) GameOn(ctx context.Context, team string, date time.Time) (bool, error) {
	url := c.opts.ScoreboardURL + "?dates=" + date.Format("20060102")

	var sb scoreboardResponse
	if err := c.getJSON(ctx, url, &sb); err != nil {
		return false, err
	}

	needle := strings.ToLower(strings.TrimSpace(team))
	for _, ev := range sb.Events {
		switch ev.Status.Type.Name {
		case "STATUS_CANCELED", "STATUS_POSTPONED":
			continue
		}
		for _, comp := range ev.Competitions {
			for _, ctr := range comp.Competitors {
				if teamMatches(needle, ctr) {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func teamMatches(needle string, ctr competitor) bool {
	if needle == "" {
		return false
	}
	for _, name := range []string{
		ctr.Team.DisplayName,
		ctr.Team.ShortName,
		ctr.Team.Abbreviation,
	} {
		n := strings.ToLower(name)
		if n != "" && (n == needle || strings.Contains(n, needle)) {
			return true
		}
	}
	return false
}
