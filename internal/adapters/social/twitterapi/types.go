package twitterapi

import "time"

// Query is one advanced-search request: posts from one account that
// quote one name variation inside a date range
type Query struct {
	Account string
	Phrase  string
	Since   time.Time
	Until   time.Time
	Limit   int
}

// Tweet is the trimmed tweet shape callers get back.
// Replies are filtered out before conversion
type Tweet struct {
	ID        string
	Text      string
	Author    string
	Handle    string
	CreatedAt time.Time
	URL       string
	Retweets  int
	Likes     int
	Replies   int
}

// wire shapes for the advanced_search endpoint

type wireAuthor struct {
	Name     string `json:"name"`
	UserName string `json:"userName"`
}

type wireTweet struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	CreatedAt    string     `json:"createdAt"`
	Author       wireAuthor `json:"author"`
	RetweetCount int        `json:"retweetCount"`
	LikeCount    int        `json:"likeCount"`
	ReplyCount   int        `json:"replyCount"`
	IsReply      bool       `json:"isReply"`
}

type searchResponse struct {
	Tweets      []wireTweet `json:"tweets"`
	HasNextPage bool        `json:"has_next_page"`
	NextCursor  string      `json:"next_cursor"`
}
