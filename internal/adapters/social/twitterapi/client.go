// Package twitterapi provides a resilient client for the twitterapi.io
// advanced-search endpoint
package twitterapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/logger"
	"courtside/internal/platform/retry"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault   = "https://api.twitterapi.io"
	defaultTimeout   = 30 * time.Second
	defaultPageSize  = 20
	defaultQueryType = "Latest"

	// twitter legacy timestamp, e.g. "Tue Aug 27 19:42:18 +0000 2024"
	legacyTimeLayout = "Mon Jan 2 15:04:05 -0700 2006"
)

// Options configures the Client
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// QueryType is "Latest" or "Top"
	QueryType string

	// PageSize is how many tweets one page carries, used for page math
	PageSize int

	// Retry policy for transient and rate limited responses
	Retry retry.Policy
}

// Client is a minimal advanced-search client with pagination, reply
// filtering, and rate-limit aware retries
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(time.Duration)
}

// NewClient creates a new Client with sane defaults.
// The limiter is shared with the other collaborator clients so the
// process-wide rate floor holds; nil means no pacing
func NewClient(o Options, limiter *rate.Limiter) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.QueryType == "" {
		o.QueryType = defaultQueryType
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = retry.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: limiter,
		log:     *logger.Named("twitterapi"),
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Search runs one advanced-search query, following cursors until the
// limit is reached or pages run out. Replies are dropped
func (c *Client) Search(ctx context.Context, q Query) ([]Tweet, error) {
	query := fmt.Sprintf("from:%s %q since:%s until:%s",
		q.Account, q.Phrase,
		q.Since.Format("2006-01-02"), q.Until.Format("2006-01-02"))

	limit := q.Limit
	if limit <= 0 {
		limit = c.opts.PageSize
	}
	maxPages := (limit + c.opts.PageSize - 1) / c.opts.PageSize

	var out []Tweet
	cursor := ""
	for page := 0; page < maxPages && len(out) < limit; page++ {
		if err := c.wait(ctx); err != nil {
			return out, err
		}

		resp, err := c.fetchPage(ctx, query, cursor)
		if err != nil {
			return out, err
		}
		if len(resp.Tweets) == 0 {
			break
		}

		for _, wt := range resp.Tweets {
			if len(out) >= limit {
				break
			}
			if wt.IsReply {
				c.log.Debug().Str("tweet_id", wt.ID).Msg("dropping reply tweet")
				continue
			}
			out = append(out, c.convert(wt))
		}

		c.log.Debug().
			Str("query", query).
			Int("page", page+1).
			Int("page_tweets", len(resp.Tweets)).
			Int("kept", len(out)).
			Msg("twitterapi page fetched")

		if !resp.HasNextPage || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return out, nil
}

// fetchPage issues one GET with auth header, retries, and rate limit handling
func (c *Client) fetchPage(ctx context.Context, query, cursor string) (*searchResponse, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		v := url.Values{}
		v.Set("query", query)
		v.Set("queryType", c.opts.QueryType)
		v.Set("cursor", cursor)
		u := c.opts.BaseURL + "/twitter/tweet/advanced_search?" + v.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "twitterapi new request failed")
		}
		req.Header.Set("x-api-key", c.opts.APIKey)
		req.Header.Set("Content-Type", "application/json")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "twitterapi do failed")
			}
			back := c.opts.Retry.Backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("twitterapi transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("twitterapi http response")

		switch resp.StatusCode {
		case http.StatusOK:
			var sr searchResponse
			if derr := json.NewDecoder(resp.Body).Decode(&sr); derr != nil {
				_ = resp.Body.Close()
				return nil, perr.Wrapf(derr, perr.ErrorCodeJSON, "twitterapi decode failed")
			}
			_ = resp.Body.Close()
			return &sr, nil
		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.opts.Retry.Backoff(attempts)
			}
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "twitterapi rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("twitterapi rate limited backing off")
			c.sleep(wait)
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "twitterapi transient server error")
			}
			back := c.opts.Retry.Backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("twitterapi transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUpstream,
				"twitterapi unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.Retry.MaxAttempts
}

// convert maps one wire tweet to the caller shape; a bad timestamp keeps
// the tweet with a zero time rather than dropping real content
func (c *Client) convert(wt wireTweet) Tweet {
	var created time.Time
	if wt.CreatedAt != "" {
		t, err := time.Parse(legacyTimeLayout, wt.CreatedAt)
		if err != nil {
			c.log.Warn().Str("tweet_id", wt.ID).Str("created_at", wt.CreatedAt).Msg("unparseable tweet timestamp")
		} else {
			created = t
		}
	}
	handle := wt.Author.UserName
	u := "https://twitter.com/unknown/status/" + wt.ID
	if handle != "" {
		u = "https://twitter.com/" + handle + "/status/" + wt.ID
	}
	return Tweet{
		ID:        wt.ID,
		Text:      wt.Text,
		Author:    wt.Author.Name,
		Handle:    handle,
		CreatedAt: created,
		URL:       u,
		Retweets:  wt.RetweetCount,
		Likes:     wt.LikeCount,
		Replies:   wt.ReplyCount,
	}
}

func retryAfter(h http.Header) time.Duration {
	s := h.Get("Retry-After")
	if s == "" {
		return 0
	}
	sec, err := strconv.Atoi(s)
	if err != nil || sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
