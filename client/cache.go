package client

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ttm-go/tweetmd/tweet"
)

// CachingClient memoizes successful post and user lookups for the life of
// the process. A thread note quoting the same post twice, or a timeline
// whose posts quote each other, hits the API once per post. Errors are
// never cached.
type CachingClient struct {
	Inner Fetcher
	posts *expirable.LRU[string, *tweet.Post]
	users *expirable.LRU[string, *tweet.Author]
}

var _ Fetcher = (*CachingClient)(nil)

// Capacity of zero means unlimited size. Similarly, ttl of zero means unlimited duration.
func NewCachingClient(inner Fetcher, capacity int, ttl time.Duration) *CachingClient {
	return &CachingClient{
		Inner: inner,
		posts: expirable.NewLRU[string, *tweet.Post](capacity, nil, ttl),
		users: expirable.NewLRU[string, *tweet.Author](capacity, nil, ttl),
	}
}

func (c *CachingClient) FetchPost(ctx context.Context, id string) (*tweet.Post, error) {
	if p, ok := c.posts.Get(id); ok {
		cacheLookups.WithLabelValues("post", "hit").Inc()
		return p, nil
	}
	cacheLookups.WithLabelValues("post", "miss").Inc()
	p, err := c.Inner.FetchPost(ctx, id)
	if err != nil {
		return nil, err
	}
	c.posts.Add(id, p)
	return p, nil
}

func (c *CachingClient) FetchUser(ctx context.Context, handle string) (*tweet.Author, error) {
	key := strings.ToLower(handle)
	if u, ok := c.users.Get(key); ok {
		cacheLookups.WithLabelValues("user", "hit").Inc()
		return u, nil
	}
	cacheLookups.WithLabelValues("user", "miss").Inc()
	u, err := c.Inner.FetchUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	c.users.Add(key, u)
	return u, nil
}

// FetchTimeline always goes to the inner fetcher, but seeds the post cache
// with the results.
func (c *CachingClient) FetchTimeline(ctx context.Context, userID string, since time.Time) ([]*tweet.Post, error) {
	posts, err := c.Inner.FetchTimeline(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		c.posts.Add(p.ID, p)
	}
	return posts, nil
}
