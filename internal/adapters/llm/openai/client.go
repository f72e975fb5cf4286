// Package openai provides the classification collaborator: an
// OpenAI-compatible chat-completions client in JSON mode
package openai

import (
	"bytes"
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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Options configures the Client
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int

	Retry retry.Policy
}

// Client is a thin chat-completions wrapper with bounded retries on
// transient failures. Schema-level 4xx responses are never retried
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
}

// NewClient constructs a client with sane defaults.
// The limiter is shared with the other collaborator clients; nil means no pacing
func NewClient(o Options, limiter *rate.Limiter) *Client {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.Model == "" {
		o.Model = defaultModel
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
		log:     *logger.Named("openai"),
	}
}

// chat issues one completion call and returns the first choice's content
func (c *Client) chat(ctx context.Context, msgs []Message) (string, error) {
	if c.opts.APIKey == "" {
		return "", perr.InvalidArgf("openai: missing API key")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	body, err := json.Marshal(chatRequest{
		Model:          c.opts.Model,
		Messages:       msgs,
		Temperature:    c.opts.Temperature,
		MaxTokens:      c.opts.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "openai marshal request")
	}

	var content string
	err = c.opts.Retry.Do(ctx, func() error {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.opts.BaseURL+"/chat/completions", bytes.NewReader(body))
		if rerr != nil {
			return perr.Wrapf(rerr, perr.ErrorCodeUnknown, "openai new request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

		start := time.Now()
		resp, derr := c.http.Do(req)
		if derr != nil {
			return perr.Wrapf(derr, perr.ErrorCodeUnavailable, "openai request failed")
		}
		defer resp.Body.Close()

		c.log.Debug().
			Int("status", resp.StatusCode).
			Dur("latency", time.Since(start)).
			Msg("openai http response")

		if resp.StatusCode >= 300 {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			if serr := perr.FromHTTPStatus(resp.StatusCode, "openai api error"); serr != nil {
				return perr.Wrapf(serr, perr.CodeOf(serr), "body %s", string(data))
			}
			return perr.Upstreamf("openai api error %d: %s", resp.StatusCode, string(data))
		}

		var payload chatResponse
		if derr := json.NewDecoder(resp.Body).Decode(&payload); derr != nil {
			return perr.Wrapf(derr, perr.ErrorCodeJSON, "openai decode response")
		}
		if len(payload.Choices) == 0 {
			return perr.JSONErrf("openai response has no choices")
		}
		content = payload.Choices[0].Message.Content
		return nil
	})
	return content, err
}
