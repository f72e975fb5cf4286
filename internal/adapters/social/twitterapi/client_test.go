package twitterapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtside/internal/platform/retry"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Retry:   retry.Policy{MaxAttempts: 3, Base: time.Millisecond, Cap: time.Millisecond},
	}, nil)
	c.sleep = func(time.Duration) {}
	return c
}

func page(tweets []wireTweet, next string) searchResponse {
	return searchResponse{Tweets: tweets, HasNextPage: next != "", NextCursor: next}
}

func TestSearch_PaginatesAndFiltersReplies(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		calls++
		var resp searchResponse
		switch r.URL.Query().Get("cursor") {
		case "":
			resp = page([]wireTweet{
				{ID: "1", Text: "rookie record", CreatedAt: "Tue Aug 27 19:42:18 +0000 2024",
					Author: wireAuthor{Name: "WNBA", UserName: "wnba"}},
				{ID: "2", Text: "reply noise", IsReply: true},
			}, "c2")
		case "c2":
			resp = page([]wireTweet{
				{ID: "3", Text: "another one", CreatedAt: "Wed Aug 28 10:00:00 +0000 2024",
					Author: wireAuthor{Name: "ESPN", UserName: "espn"}},
			}, "")
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	got, err := c.Search(context.Background(), Query{
		Account: "wnba",
		Phrase:  "caitlin clark",
		Since:   time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		Until:   time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Limit:   40,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (reply filtered)", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("ids = %s, %s", got[0].ID, got[1].ID)
	}
	want := time.Date(2024, 8, 27, 19, 42, 18, 0, time.UTC)
	if !got[0].CreatedAt.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", got[0].CreatedAt, want)
	}
	if got[0].URL != "https://twitter.com/wnba/status/1" {
		t.Fatalf("URL = %s", got[0].URL)
	}
}

func TestSearch_LimitStopsEarly(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(page([]wireTweet{
			{ID: "1", Text: "a"}, {ID: "2", Text: "b"}, {ID: "3", Text: "c"},
		}, "more"))
	})
	got, err := c.Search(context.Background(), Query{Account: "x", Phrase: "y", Limit: 2,
		Since: time.Now().AddDate(0, 0, -1), Until: time.Now()})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestSearch_RetriesOnRateLimit(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(page([]wireTweet{{ID: "1", Text: "ok"}}, ""))
	})
	got, err := c.Search(context.Background(), Query{Account: "x", Phrase: "y", Limit: 5,
		Since: time.Now().AddDate(0, 0, -1), Until: time.Now()})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 2 || len(got) != 1 {
		t.Fatalf("calls = %d len = %d", calls, len(got))
	}
}

func TestSearch_UpstreamErrorNotRetried(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.Search(context.Background(), Query{Account: "x", Phrase: "y", Limit: 5,
		Since: time.Now().AddDate(0, 0, -1), Until: time.Now()})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
