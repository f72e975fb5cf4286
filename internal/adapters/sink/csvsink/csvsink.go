// Package csvsink is the durable output sink: one append-only CSV file
// per record kind with a fixed column set. Unresolved fields are written
// empty, never as a placeholder
package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/logger"
	"courtside/internal/services/tracker/domain"
)

const provenanceSep = ";"

var fileByKind = map[domain.Kind]string{
	domain.KindMilestone: "milestones.csv",
	domain.KindShoe:      "shoes.csv",
	domain.KindOutfit:    "outfits.csv",
}

var columnsByKind = map[domain.Kind][]string{
	domain.KindMilestone: {
		"id", "title", "value", "categories", "event_date", "previous_record",
		"description", "confidence", "status", "provenance", "accounts",
	},
	domain.KindShoe: {
		"id", "shoe_name", "brand", "model", "colorway", "release_date",
		"signature_shoe", "limited_edition", "event_date",
		"games_played", "points_per_game", "rebounds_per_game", "assists_per_game",
		"best_game_date", "best_game_points",
		"description", "confidence", "status", "provenance", "accounts",
	},
	domain.KindOutfit: {
		"id", "event", "outfit_details", "style_category", "location",
		"event_date", "description", "confidence", "status", "provenance", "accounts",
	},
}

// Sink writes canonical records to per-kind CSV files under one directory
type Sink struct {
	dir string
	log logger.Logger
}

// New constructs a Sink rooted at dir, creating it if needed
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink mkdir %s", dir)
	}
	return &Sink{dir: dir, log: *logger.Named("csvsink")}, nil
}

// Append implements domain.RecordSink: one row per canonical record,
// header written when the file is first created
func (s *Sink) Append(_ context.Context, rec *domain.CanonicalRecord) error {
	name, ok := fileByKind[rec.Kind]
	if !ok {
		return perr.InvalidArgf("csvsink: unknown kind %q", string(rec.Kind))
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink open %s", path)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink stat %s", path)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(columnsByKind[rec.Kind]); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink header %s", path)
		}
	}
	if err := w.Write(row(rec)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink row %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink flush %s", path)
	}

	s.log.Debug().Str("kind", string(rec.Kind)).Str("id", rec.ID).Msg("canonical record appended")
	return nil
}

// Provenance implements domain.RecordSink: scans all kind files and
// rebuilds the set of post ids already durably exported
func (s *Sink) Provenance(_ context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for kind, name := range fileByKind {
		path := filepath.Join(s.dir, name)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink open %s", path)
		}

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		_ = f.Close()
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "csvsink read %s", path)
		}
		if len(rows) < 2 {
			continue
		}

		provIdx := indexOf(rows[0], "provenance")
		if provIdx < 0 {
			return nil, perr.JSONErrf("csvsink: %s has no provenance column", name)
		}
		for _, rw := range rows[1:] {
			if provIdx >= len(rw) {
				continue
			}
			for _, id := range strings.Split(rw[provIdx], provenanceSep) {
				if id = strings.TrimSpace(id); id != "" {
					out[id] = struct{}{}
				}
			}
		}
		s.log.Debug().Str("kind", string(kind)).Int("rows", len(rows)-1).Msg("provenance scanned")
	}
	return out, nil
}

func indexOf(header []string, want string) int {
	for i, h := range header {
		if h == want {
			return i
		}
	}
	return -1
}

// row renders one canonical record into its kind's column order
func row(rec *domain.CanonicalRecord) []string {
	date := ""
	if rec.EventDate.Resolved {
		date = rec.EventDate.Date.Format("2006-01-02")
	}
	conf := strconv.FormatFloat(rec.Confidence, 'f', 2, 64)
	prov := strings.Join(rec.Provenance, provenanceSep)
	accts := strings.Join(rec.Accounts, provenanceSep)

	switch rec.Kind {
	case domain.KindMilestone:
		m := rec.Fields.Milestone
		return []string{
			rec.ID, m.Title, m.Value, strings.Join(m.Categories, provenanceSep),
			date, m.PreviousRecord, m.Description, conf, rec.Status, prov, accts,
		}
	case domain.KindShoe:
		sh := rec.Fields.Shoe
		games, ppg, rpg, apg, bestDate, bestPts := "", "", "", "", "", ""
		if sh.Stats != nil {
			sum := sh.Stats.Summary
			games = strconv.Itoa(sum.GamesPlayed)
			ppg = fmt.Sprintf("%.1f", sum.PointsPerGame)
			rpg = fmt.Sprintf("%.1f", sum.ReboundsPerGame)
			apg = fmt.Sprintf("%.1f", sum.AssistsPerGame)
			if sum.BestGame != nil {
				bestDate = sum.BestGame.Date.Format("2006-01-02")
				bestPts = strconv.Itoa(sum.BestGame.Points)
			}
		}
		return []string{
			rec.ID, sh.ShoeName, sh.Brand, sh.Model, sh.Colorway, sh.ReleaseDate,
			strconv.FormatBool(sh.SignatureShoe), strconv.FormatBool(sh.LimitedEdition), date,
			games, ppg, rpg, apg, bestDate, bestPts,
			sh.Description, conf, rec.Status, prov, accts,
		}
	case domain.KindOutfit:
		o := rec.Fields.Outfit
		return []string{
			rec.ID, o.Event, o.OutfitDetails, o.StyleCategory, o.Location,
			date, o.Description, conf, rec.Status, prov, accts,
		}
	}
	return nil
}
