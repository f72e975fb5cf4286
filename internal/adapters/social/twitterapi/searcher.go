package twitterapi

import (
	"context"

	"courtside/internal/services/tracker/domain"
)

// Searcher adapts Client to domain.PostSearcher
type Searcher struct {
	c *Client
}

// NewSearcher wraps an existing client
func NewSearcher(c *Client) *Searcher { return &Searcher{c: c} }

// Search implements domain.PostSearcher
func (s *Searcher) Search(ctx context.Context, q domain.PostQuery) ([]domain.Post, error) {
	tweets, err := s.c.Search(ctx, Query{
		Account: q.Account,
		Phrase:  q.Phrase,
		Since:   q.Since,
		Until:   q.Until,
		Limit:   q.Limit,
	})
	if err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(tweets))
	for _, t := range tweets {
		posts = append(posts, domain.Post{
			ID:        t.ID,
			Text:      t.Text,
			Account:   t.Handle,
			CreatedAt: t.CreatedAt,
			URL:       t.URL,
			Likes:     t.Likes,
			Retweets:  t.Retweets,
			Replies:   t.Replies,
		})
	}
	return posts, nil
}
