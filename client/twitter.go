package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ttm-go/tweetmd/tweet"
)

// The API caps user timelines at 3200 posts.
const maxTimelinePages = 32

// APIClient talks to the Twitter v2 API with an app bearer token.
type APIClient struct {
	base
}

var _ Fetcher = (*APIClient)(nil)

func (c *APIClient) FetchPost(ctx context.Context, id string) (*tweet.Post, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "FetchPost")
	defer span.End()
	span.SetAttributes(attribute.String("id", id), attribute.String("backend", c.backend))

	if err := checkPostID(id); err != nil {
		return nil, err
	}
	status, body, err := c.get(ctx, "/2/tweets/"+id, defaultPostParams)
	if err != nil {
		return nil, err
	}
	var env postEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, undecodable(status, body, err)
	}
	return env.post(status)
}

func (c *APIClient) FetchUser(ctx context.Context, handle string) (*tweet.Author, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "FetchUser")
	defer span.End()
	span.SetAttributes(attribute.String("handle", handle))

	if handle == "" {
		return nil, fmt.Errorf("%w: empty handle", tweet.ErrMalformedInput)
	}
	status, body, err := c.get(ctx, "/2/users/by/username/"+url.PathEscape(handle), userParams{UserFields: defaultPostParams.UserFields})
	if err != nil {
		return nil, err
	}
	var env userEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, undecodable(status, body, err)
	}
	if env.Data == nil || status >= 300 {
		if err := env.problem.err(status); err != nil {
			return nil, err
		}
		return nil, &APIError{StatusCode: status, Title: "user not found", Detail: handle, Kind: tweet.ErrPostUnavailable}
	}
	return env.Data.author(), nil
}

func (c *APIClient) FetchTimeline(ctx context.Context, userID string, since time.Time) ([]*tweet.Post, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "FetchTimeline")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	if err := checkPostID(userID); err != nil {
		return nil, err
	}
	params := timelineParams{postParams: defaultPostParams, MaxResults: 100}
	if !since.IsZero() {
		params.StartTime = since.UTC().Format(time.RFC3339)
	}

	var out []*tweet.Post
	for page := 0; page < maxTimelinePages; page++ {
		status, body, err := c.get(ctx, "/2/users/"+userID+"/tweets", params)
		if err != nil {
			return nil, err
		}
		var env timelineEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, undecodable(status, body, err)
		}
		if status >= 300 || (len(env.Data) == 0 && len(env.Errors) > 0) {
			if err := env.problem.err(status); err != nil {
				return nil, err
			}
		}
		for i := range env.Data {
			p, err := convertPost(&env.Data[i], &env.Includes)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		if env.Meta.NextToken == "" {
			break
		}
		params.PaginationToken = env.Meta.NextToken
	}
	span.SetAttributes(attribute.Int("posts", len(out)))
	c.logger.Info("fetched timeline", "user", userID, "posts", len(out))
	return out, nil
}
