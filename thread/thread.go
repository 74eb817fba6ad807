// Package thread reconstructs a reply thread by walking replied_to
// references from a leaf post back to the conversation root.
package thread

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ttm-go/tweetmd/tweet"
)

// MaxDepth bounds the number of posts fetched for a single thread.
var MaxDepth = 500

var threadLength = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "tweetmd_thread_length",
	Help:    "Number of posts in assembled threads",
	Buckets: prometheus.ExponentialBuckets(1, 2, 10),
})

type Fetcher interface {
	FetchPost(ctx context.Context, id string) (*tweet.Post, error)
}

type Link struct {
	Post *tweet.Post
	// Condensed is set when condensed rendering is enabled and the post has
	// the same author as the one before it.
	Condensed bool
}

// Chain is a thread in reading order, root first.
type Chain []Link

func (c Chain) Posts() []*tweet.Post {
	out := make([]*tweet.Post, len(c))
	for i, l := range c {
		out[i] = l.Post
	}
	return out
}

// Root returns the first post of the chain, or nil for an empty chain.
func (c Chain) Root() *tweet.Post {
	if len(c) == 0 {
		return nil
	}
	return c[0].Post
}

// BuildChain fetches leafID and every ancestor up to the root, one fetch at
// a time. Any failure discards the whole chain: the returned error wraps
// tweet.ErrThreadBroken along with the cause.
func BuildChain(ctx context.Context, leafID string, f Fetcher, condensed bool) (Chain, error) {
	ctx, span := otel.Tracer("thread").Start(ctx, "BuildChain")
	defer span.End()
	span.SetAttributes(attribute.String("leaf", leafID))

	current, err := f.FetchPost(ctx, leafID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", tweet.ErrThreadBroken, leafID, err)
	}

	// accumulated leaf first
	posts := []*tweet.Post{current}
	seen := map[string]bool{current.ID: true}
	for !current.IsRoot() {
		ref, ok := current.Reference(tweet.ReferenceRepliedTo)
		if !ok {
			return nil, fmt.Errorf("%w: post %s is not the root of conversation %s but replies to nothing", tweet.ErrThreadBroken, current.ID, current.ConversationID)
		}
		if seen[ref.ID] {
			return nil, fmt.Errorf("%w: reply cycle at post %s", tweet.ErrThreadBroken, ref.ID)
		}
		if len(posts) >= MaxDepth {
			return nil, fmt.Errorf("%w: thread longer than %d posts", tweet.ErrThreadBroken, MaxDepth)
		}
		parent, err := f.FetchPost(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching %s: %w", tweet.ErrThreadBroken, ref.ID, err)
		}
		seen[parent.ID] = true
		posts = append(posts, parent)
		current = parent
	}

	chain := make(Chain, len(posts))
	for i := range posts {
		chain[i].Post = posts[len(posts)-1-i]
	}
	for i := 1; i < len(chain); i++ {
		chain[i].Condensed = condensed && chain[i].Post.AuthorID == chain[i-1].Post.AuthorID
	}

	threadLength.Observe(float64(len(chain)))
	span.SetAttributes(attribute.Int("length", len(chain)))
	return chain, nil
}
