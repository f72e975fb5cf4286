// Package espn provides the schedule-validation and performance-log
// collaborators backed by ESPN's public site APIs
package espn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/logger"
	"courtside/internal/platform/retry"

	"golang.org/x/time/rate"
)

const (
	scoreboardURLDefault = "https://site.api.espn.com/apis/site/v2/sports/basketball/wnba/scoreboard"
	gamelogURLDefault    = "https://site.web.api.espn.com/apis/common/v3/sports/basketball/wnba/athletes"
	defaultTimeout       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	ScoreboardURL string
	GamelogURL    string
	Timeout       time.Duration

	// AthleteID is the ESPN athlete id behind GamesBetween
	AthleteID string

	Retry retry.Policy
}

// Client serves both the ScheduleGateway and GameLogPort facets
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
}

// NewClient creates a new Client with sane defaults.
// The limiter is shared with the other collaborator clients; nil means no pacing
func NewClient(o Options, limiter *rate.Limiter) *Client {
	if o.ScoreboardURL == "" {
		o.ScoreboardURL = scoreboardURLDefault
	}
	if o.GamelogURL == "" {
		o.GamelogURL = gamelogURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = retry.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: limiter,
		log:     *logger.Named("espn"),
	}
}

// getJSON fetches url and decodes the body into out, with pacing and
// bounded retries on transient failures
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return c.opts.Retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "espn new request")
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "espn request failed")
		}
		defer resp.Body.Close()

		c.log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Dur("latency", time.Since(start)).
			Msg("espn http response")

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
			return perr.FromHTTPStatus(resp.StatusCode, "espn api error")
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "espn decode response")
		}
		return nil
	})
}
