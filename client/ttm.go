package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ttm-go/tweetmd/tweet"
)

// TTMClient fetches posts through the TTM proxy service, which returns
// Twitter v2 API payloads. The service does not offer user or timeline
// lookups.
type TTMClient struct {
	base
}

var _ Fetcher = (*TTMClient)(nil)

type ttmParams struct {
	Tweet  string `url:"tweet"`
	Source string `url:"source"`
}

const ttmUnauthorized = "Sorry, you are not authorized to see the Tweet"

func (c *TTMClient) FetchPost(ctx context.Context, id string) (*tweet.Post, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "FetchPost")
	defer span.End()
	span.SetAttributes(attribute.String("id", id), attribute.String("backend", c.backend))

	if err := checkPostID(id); err != nil {
		return nil, err
	}
	status, body, err := c.get(ctx, "/api/tweet", ttmParams{Tweet: id, Source: "obsidian"})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if strings.Contains(msg, ttmUnauthorized) {
			return nil, &APIError{StatusCode: status, Title: "post unavailable", Detail: "this post is unavailable to be viewed", Kind: tweet.ErrPostUnavailable}
		}
		var env postEnvelope
		if json.Unmarshal(body, &env) == nil {
			if err := env.problem.err(status); err != nil {
				return nil, err
			}
		}
		return nil, undecodable(status, body, nil)
	}

	var env postEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, undecodable(status, body, err)
	}
	return env.post(status)
}

func (c *TTMClient) FetchUser(ctx context.Context, handle string) (*tweet.Author, error) {
	return nil, fmt.Errorf("fetching users from the TTM service: %w", errors.ErrUnsupported)
}

func (c *TTMClient) FetchTimeline(ctx context.Context, userID string, since time.Time) ([]*tweet.Post, error) {
	return nil, fmt.Errorf("fetching timelines from the TTM service: %w", errors.ErrUnsupported)
}
