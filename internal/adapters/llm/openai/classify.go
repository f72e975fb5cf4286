package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	perr "courtside/internal/platform/errors"
	"courtside/internal/services/tracker/domain"
)

// per-kind payloads the model is instructed to return.
// "applicable": false with everything else empty means not this kind

type milestonePayload struct {
	Applicable     bool     `json:"applicable"`
	Title          string   `json:"title"`
	Value          string   `json:"value"`
	Categories     []string `json:"categories"`
	Description    string   `json:"description"`
	PreviousRecord string   `json:"previous_record"`
	DateContext    string   `json:"date_context"`
	Confidence     float64  `json:"confidence"`
}

type shoePayload struct {
	Applicable     bool    `json:"applicable"`
	ShoeName       string  `json:"shoe_name"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	Colorway       string  `json:"colorway"`
	ReleaseDate    string  `json:"release_date"`
	SignatureShoe  bool    `json:"signature_shoe"`
	LimitedEdition bool    `json:"limited_edition"`
	Description    string  `json:"description"`
	Confidence     float64 `json:"confidence"`
}

type outfitPayload struct {
	Applicable    bool    `json:"applicable"`
	Event         string  `json:"event"`
	OutfitDetails string  `json:"outfit_details"`
	StyleCategory string  `json:"style_category"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
}

const systemPrompt = `You extract structured records about a specific player from social media posts.
Respond with a single JSON object only, no prose, matching exactly the schema in the user message.
If the post is not about the requested record kind, or the fact belongs to a different player,
respond {"applicable": false}. Never invent fields outside the schema.`

// attribution rules the model is reminded of for milestones; the
// extractor double-checks these patterns afterwards
const milestoneRules = `Only mark applicable when the named player is the SOLE achiever:
- NOT "X joins <player> ..." (X is the achiever)
- NOT "... The only other players to do this? <player> & Y" (comparison)
- NOT posts starting "Like <player>, ..." (comparison)
- NOT routine game stats unless explicitly a record ("first", "most", "youngest", "broke")`

func userPrompt(kind domain.Kind, text string, postDate time.Time) string {
	var schema string
	switch kind {
	case domain.KindMilestone:
		schema = `{"applicable": true, "title": "...", "value": "...", "categories": ["scoring"],
"description": "...", "previous_record": "...", "date_context": "...", "confidence": 0.9}`
	case domain.KindShoe:
		schema = `{"applicable": true, "shoe_name": "...", "brand": "...", "model": "...",
"colorway": "...", "release_date": "...", "signature_shoe": false, "limited_edition": false,
"description": "...", "confidence": 0.9}`
	case domain.KindOutfit:
		schema = `{"applicable": true, "event": "...", "outfit_details": "...",
"style_category": "...", "location": "...", "description": "...", "confidence": 0.9}`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Record kind: %s\nPost date: %s\nPost: %q\n\nSchema:\n%s\n",
		kind, postDate.Format("2006-01-02"), text, schema)
	if kind == domain.KindMilestone {
		b.WriteString("\n" + milestoneRules + "\n")
	}
	b.WriteString(`
"confidence" is your certainty in (0,1] that the extraction is correct and belongs to the player.
Keep "date_context" / "release_date" as literal text from the post; do not guess dates.`)
	return b.String()
}

// Classify implements domain.Classifier.
// applicable=false means the post is not about the requested kind;
// an undecodable payload surfaces as an ErrorCodeJSON error and is the
// caller's call to treat as not-applicable
func (c *Client) Classify(
	ctx context.Context,
	kind domain.Kind,
	text string,
	postDate time.Time,
) (domain.Extraction, bool, error) {
	if !kind.Valid() {
		return domain.Extraction{}, false, perr.InvalidArgf("unknown kind %q", string(kind))
	}

	content, err := c.chat(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt(kind, text, postDate)},
	})
	if err != nil {
		return domain.Extraction{}, false, err
	}
	return parsePayload(kind, content)
}

// parsePayload decodes the model content for the given kind
func parsePayload(kind domain.Kind, content string) (domain.Extraction, bool, error) {
	raw := []byte(stripFences(content))

	switch kind {
	case domain.KindMilestone:
		var p milestonePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return domain.Extraction{}, false, perr.Wrapf(err, perr.ErrorCodeJSON, "milestone payload decode")
		}
		if !p.Applicable {
			return domain.Extraction{}, false, nil
		}
		return domain.Extraction{
			Fields: domain.Fields{Milestone: &domain.MilestoneFields{
				Title:          strings.TrimSpace(p.Title),
				Value:          strings.TrimSpace(p.Value),
				Categories:     p.Categories,
				Description:    strings.TrimSpace(p.Description),
				PreviousRecord: strings.TrimSpace(p.PreviousRecord),
				DateContext:    strings.TrimSpace(p.DateContext),
			}},
			Confidence: p.Confidence,
		}, true, nil

	case domain.KindShoe:
		var p shoePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return domain.Extraction{}, false, perr.Wrapf(err, perr.ErrorCodeJSON, "shoe payload decode")
		}
		if !p.Applicable {
			return domain.Extraction{}, false, nil
		}
		return domain.Extraction{
			Fields: domain.Fields{Shoe: &domain.ShoeFields{
				ShoeName:       strings.TrimSpace(p.ShoeName),
				Brand:          strings.TrimSpace(p.Brand),
				Model:          strings.TrimSpace(p.Model),
				Colorway:       strings.TrimSpace(p.Colorway),
				ReleaseDate:    strings.TrimSpace(p.ReleaseDate),
				SignatureShoe:  p.SignatureShoe,
				LimitedEdition: p.LimitedEdition,
				Description:    strings.TrimSpace(p.Description),
			}},
			Confidence: p.Confidence,
		}, true, nil

	case domain.KindOutfit:
		var p outfitPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return domain.Extraction{}, false, perr.Wrapf(err, perr.ErrorCodeJSON, "outfit payload decode")
		}
		if !p.Applicable {
			return domain.Extraction{}, false, nil
		}
		return domain.Extraction{
			Fields: domain.Fields{Outfit: &domain.OutfitFields{
				Event:         strings.TrimSpace(p.Event),
				OutfitDetails: strings.TrimSpace(p.OutfitDetails),
				StyleCategory: strings.TrimSpace(p.StyleCategory),
				Location:      strings.TrimSpace(p.Location),
				Description:   strings.TrimSpace(p.Description),
			}},
			Confidence: p.Confidence,
		}, true, nil
	}
	return domain.Extraction{}, false, perr.InvalidArgf("unknown kind %q", string(kind))
}

// stripFences drops a markdown code fence the model sometimes wraps
// JSON in despite JSON mode
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
