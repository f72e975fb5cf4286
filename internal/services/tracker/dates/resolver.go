// Package dates resolves a post's timestamp plus text cues into a
// canonical event date. Conservative by design: an unresolved date is
// always preferred over a wrong one
package dates

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"courtside/internal/platform/logger"
	"courtside/internal/services/tracker/domain"
)

// explicit calendar dates
var (
	reYMD = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
	reMDY = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)

	reNamedMonth = regexp.MustCompile(
		`\b(january|february|march|april|may|june|july|august|september|october|november|december|` +
			`jan|feb|mar|apr|may|jun|jul|aug|sept|sep|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

// relative anniversary phrasing
var (
	reOnThisDayYear = regexp.MustCompile(`\bon this day in (\d{4})\b`)
	reOneYearAgo    = regexp.MustCompile(`\b(?:one|a) year ago(?: today)?\b|\bon this day last year\b`)
	reNYearsAgo     = regexp.MustCompile(`\b(\d{1,2}|two|three|four|five) years? ago(?: today)?\b`)

	reYesterday = regexp.MustCompile(`\byesterday\b`)
	reToday     = regexp.MustCompile(`\btoday\b`)
)

var wordNumbers = map[string]int{"two": 2, "three": 3, "four": 4, "five": 5}

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Window is one [From, To] calendar span that triggers schedule validation
type Window struct {
	From time.Time
	To   time.Time
}

// Option mutates the Resolver during New
type Option func(*Resolver)

// WithPreseasonWindows overrides the built-in preseason windows
func WithPreseasonWindows(ws []Window) Option {
	return func(r *Resolver) { r.windows = ws }
}

// Resolver turns (post date, raw text, team) into a ResolvedDate.
// Deterministic: same inputs always produce the same output, and at
// most one gateway call is made per resolve
type Resolver struct {
	gateway domain.ScheduleGateway
	windows []Window
	log     logger.Logger
}

// New constructs a Resolver. gateway may be nil, disabling validation
func New(gateway domain.ScheduleGateway, opts ...Option) *Resolver {
	r := &Resolver{
		gateway: gateway,
		log:     *logger.Named("dates"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve derives the event date for one candidate.
// Order: explicit calendar date, anniversary phrasing, yesterday/today
// cues, else the post date itself. When the result lands in a preseason
// window for a known team, the schedule gateway confirms a game
// happened; "no game" downgrades to unresolved
func (r *Resolver) Resolve(ctx context.Context, postDate time.Time, rawText, team string) domain.ResolvedDate {
	day := dayOf(postDate)
	text := strings.ToLower(rawText)

	out := r.fromText(day, text)
	if !out.Resolved {
		out = domain.ResolvedDate{Date: day, Resolved: true, Source: domain.DateSourcePostDate}
	}

	if team != "" && r.gateway != nil && r.inPreseason(out.Date) {
		on, err := r.gateway.GameOn(ctx, team, out.Date)
		if err != nil {
			// validation unavailable: keep the computed date, do not guess downward
			r.log.Warn().Err(err).Str("team", team).Time("date", out.Date).
				Msg("schedule validation unavailable")
			return out
		}
		if !on {
			r.log.Debug().Str("team", team).Time("date", out.Date).
				Msg("no game on candidate date, downgrading to unresolved")
			return domain.Unresolved()
		}
	}
	return out
}

// fromText extracts a date from the text cues alone; zero value when none match
func (r *Resolver) fromText(postDay time.Time, text string) domain.ResolvedDate {
	if d, ok := explicitDate(text); ok {
		return domain.ResolvedDate{Date: d, Resolved: true, Source: domain.DateSourceExplicit}
	}

	if m := reOnThisDayYear.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return domain.ResolvedDate{Date: sameDayInYear(postDay, year), Resolved: true, Source: domain.DateSourceAnniversary}
	}
	if reOneYearAgo.MatchString(text) {
		return domain.ResolvedDate{Date: addYears(postDay, -1), Resolved: true, Source: domain.DateSourceAnniversary}
	}
	if m := reNYearsAgo.FindStringSubmatch(text); m != nil {
		n, ok := wordNumbers[m[1]]
		if !ok {
			n, _ = strconv.Atoi(m[1])
		}
		if n > 0 {
			return domain.ResolvedDate{Date: addYears(postDay, -n), Resolved: true, Source: domain.DateSourceAnniversary}
		}
	}

	if reYesterday.MatchString(text) {
		return domain.ResolvedDate{Date: postDay.AddDate(0, 0, -1), Resolved: true, Source: domain.DateSourceExplicit}
	}
	if reToday.MatchString(text) {
		return domain.ResolvedDate{Date: postDay, Resolved: true, Source: domain.DateSourceExplicit}
	}

	return domain.ResolvedDate{}
}

// explicitDate finds the first parseable calendar date in text
func explicitDate(text string) (time.Time, bool) {
	if m := reYMD.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, true
		}
	}
	if m := reMDY.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[3]), atoi(m[1]), atoi(m[2])); ok {
			return d, true
		}
	}
	if m := reNamedMonth.FindStringSubmatch(text); m != nil {
		month := monthsByName[m[1]]
		if d, ok := makeDate(atoi(m[3]), int(month), atoi(m[2])); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// makeDate builds a UTC date and rejects values that normalize away
// (month 13, day 32 and friends)
func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// addYears shifts by whole years with leap pinning: Feb 29 in a year
// where the target is common lands on Feb 28, not Mar 1
func addYears(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	ny := y + years
	if m == time.February && d == 29 && !isLeap(ny) {
		d = 28
	}
	return time.Date(ny, m, d, 0, 0, 0, 0, time.UTC)
}

// sameDayInYear keeps month/day and swaps the year, with the same leap pinning
func sameDayInYear(t time.Time, year int) time.Time {
	_, m, d := t.Date()
	if m == time.February && d == 29 && !isLeap(year) {
		d = 28
	}
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// inPreseason reports whether d falls in a configured window, or in the
// built-in May 1-15 span when none are configured
func (r *Resolver) inPreseason(d time.Time) bool {
	if len(r.windows) > 0 {
		for _, w := range r.windows {
			if !d.Before(w.From) && !d.After(w.To) {
				return true
			}
		}
		return false
	}
	return d.Month() == time.May && d.Day() <= 15
}
