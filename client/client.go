// Package client fetches posts, users, and timelines, either straight from
// the Twitter v2 API or through the TTM proxy service.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"

	"github.com/ttm-go/tweetmd/richtext"
	"github.com/ttm-go/tweetmd/tweet"
)

const (
	DefaultAPIHost = "https://api.twitter.com"
	DefaultTTMHost = "https://ttm.kbravh.dev"

	// TTMTokenPrefix marks bearer tokens issued by the TTM service.
	TTMTokenPrefix = "TTM"
)

// Fetcher is the post lookup surface used by the renderer, the thread
// assembler, and the timeline poller.
type Fetcher interface {
	FetchPost(ctx context.Context, id string) (*tweet.Post, error)
	// FetchTimeline returns the user's posts newer than since (zero for no
	// bound), newest first.
	FetchTimeline(ctx context.Context, userID string, since time.Time) ([]*tweet.Post, error)
	FetchUser(ctx context.Context, handle string) (*tweet.Author, error)
}

type Options struct {
	// HTTPClient defaults to RobustHTTPClient.
	HTTPClient *http.Client
	APIHost    string
	TTMHost    string
	// Limiter throttles outgoing requests. Nil means the default of five
	// requests per second.
	Limiter   *rate.Limiter
	UserAgent string
	Logger    *slog.Logger
}

// New picks the backend from the shape of the bearer token: TTM service
// tokens start with "TTM", anything else goes to the Twitter API.
func New(bearer string, opts Options) (Fetcher, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, fmt.Errorf("%w: no bearer token configured", tweet.ErrAuth)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = RobustHTTPClient(opts.Logger)
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(5), 10)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "tweetmd/" + versioninfo.Short()
	}

	if strings.HasPrefix(bearer, TTMTokenPrefix) {
		host := opts.TTMHost
		if host == "" {
			host = DefaultTTMHost
		}
		return &TTMClient{base: newBase("ttm", host, bearer, opts)}, nil
	}
	host := opts.APIHost
	if host == "" {
		host = DefaultAPIHost
	}
	return &APIClient{base: newBase("twitter", host, bearer, opts)}, nil
}

var postIDRegex = regexp.MustCompile(`^[0-9]{1,20}$`)

func checkPostID(id string) error {
	if !postIDRegex.MatchString(id) {
		return fmt.Errorf("%w: invalid post ID %q", tweet.ErrMalformedInput, id)
	}
	return nil
}

type base struct {
	backend    string
	httpClient *http.Client
	host       string
	bearer     string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func newBase(backend, host, bearer string, opts Options) base {
	return base{
		backend:    backend,
		httpClient: opts.HTTPClient,
		host:       strings.TrimSuffix(host, "/"),
		bearer:     bearer,
		userAgent:  opts.UserAgent,
		limiter:    opts.Limiter,
		logger:     opts.Logger.With("system", "client", "backend", backend),
	}
}

// get performs an authenticated GET and returns the status code and body.
// Transport failures wrap tweet.ErrConnectivity.
func (c *base) get(ctx context.Context, path string, params any) (int, []byte, error) {
	u := c.host + path
	if params != nil {
		vals, err := query.Values(params)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding query: %w", err)
		}
		u += "?" + vals.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", tweet.ErrConnectivity, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", tweet.ErrMalformedInput, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	apiRequestDuration.WithLabelValues(c.backend).Observe(time.Since(start).Seconds())
	if err != nil {
		apiRequests.WithLabelValues(c.backend, "error").Inc()
		return 0, nil, fmt.Errorf("%w: %w", tweet.ErrConnectivity, err)
	}
	defer resp.Body.Close()
	apiRequests.WithLabelValues(c.backend, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading response: %w", tweet.ErrConnectivity, err)
	}
	c.logger.Debug("api request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp.StatusCode, body, nil
}

// undecodable builds the error for a response body that is not the JSON we
// expected.
func undecodable(statusCode int, body []byte, err error) error {
	kind := tweet.ErrMalformedInput
	if statusCode >= 400 {
		kind = kindForStatus(statusCode)
	}
	detail := richtext.TruncateBytes(strings.TrimSpace(string(body)), 200)
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return &APIError{StatusCode: statusCode, Title: "unexpected response", Detail: detail, Kind: kind}
}
