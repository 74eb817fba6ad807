// Package timeline keeps one note per followed handle, prepending the posts
// published since the note was last fetched.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/download"
	"github.com/ttm-go/tweetmd/filename"
	"github.com/ttm-go/tweetmd/markdown"
	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/vault"
)

const separator = "\n\n---\n\n"

type Fetcher interface {
	FetchPost(ctx context.Context, id string) (*tweet.Post, error)
	FetchUser(ctx context.Context, handle string) (*tweet.Author, error)
	FetchTimeline(ctx context.Context, userID string, since time.Time) ([]*tweet.Post, error)
}

type Poller struct {
	Fetcher    Fetcher
	Vault      vault.Vault
	HTTPClient *http.Client
	Notifier   markdown.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
	// Concurrency bounds the handles polled at once. Zero means four.
	Concurrency int
}

type Result struct {
	Handle string
	// Path is the timeline note, empty when nothing was written.
	Path    string
	Since   time.Time
	Posts   int
	Created bool
	Err     error
}

func (p *Poller) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default().With("system", "timeline")
	}
	return p.Logger
}

func (p *Poller) notify(msg string) {
	if p.Notifier != nil {
		p.Notifier.Notify(msg)
	}
}

func (p *Poller) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Poll updates the timeline note of every handle in settings. A failing
// handle does not stop the others; the returned error joins every failure.
func (p *Poller) Poll(ctx context.Context, settings *config.Settings) ([]Result, error) {
	handles := settings.PollHandleList()
	results := make([]Result, len(handles))

	limit := p.Concurrency
	if limit <= 0 {
		limit = 4
	}
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, h := range handles {
		eg.Go(func() error {
			res, err := p.PollHandle(ctx, settings, h)
			if err != nil {
				res = &Result{Handle: h, Err: err}
				p.logger().Warn("polling timeline", "handle", h, "err", err)
				p.notify(err.Error())
			}
			results[i] = *res
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Handle, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// PollHandle fetches the posts of one handle newer than the "fetched"
// frontmatter field of its timeline note and prepends them to the note,
// creating it when needed.
func (p *Poller) PollHandle(ctx context.Context, settings *config.Settings, handle string) (*Result, error) {
	handle = strings.TrimLeft(strings.TrimSpace(handle), "@")
	user, err := p.Fetcher.FetchUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	// file names are rendered from a stand-in post by the user
	dummy := &tweet.Post{AuthorID: user.ID, Author: user, CreatedAt: p.now()}
	dateOpts := settings.DateOptions()
	fname := filename.Render(settings.PollFilename, dummy, dateOpts, filename.KindFile)
	location := settings.NoteLocation
	if location == "" {
		location = "./"
	}
	fpath := filename.Render(location, dummy, dateOpts, filename.KindDirectory)
	notePath := vault.Join(fpath, fname)

	res := &Result{Handle: handle, Path: notePath}
	existing, err := p.Vault.ReadTextFile(ctx, notePath)
	switch {
	case errors.Is(err, vault.ErrNotFound):
		existing = ""
		res.Created = true
	case err != nil:
		return nil, err
	default:
		res.Since = fetchedAt(existing, settings.Location())
	}

	p.notify("Polling for new Tweets from " + handle + "...")
	posts, err := p.Fetcher.FetchTimeline(ctx, user.ID, res.Since)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		p.logger().Info("no new posts", "handle", handle, "since", res.Since)
		res.Path = ""
		res.Created = false
		return res, nil
	}

	var mgr *download.Manager
	if settings.DownloadAssets {
		mgr = download.NewManager(ctx, nil).WithLogger(p.logger())
	}
	r := &markdown.Renderer{
		Settings:   settings,
		Fetcher:    p.Fetcher,
		Downloads:  mgr,
		Vault:      p.Vault,
		HTTPClient: p.HTTPClient,
		Notifier:   p.Notifier,
		Now:        p.Now,
		Logger:     p.Logger,
	}
	parts := make([]string, 0, len(posts))
	for _, post := range posts {
		md, err := r.Render(ctx, post, markdown.ModeNormal, nil)
		if err != nil {
			p.logger().Warn("rendering timeline post", "handle", handle, "id", post.ID, "err", err)
			p.notify("There was a problem processing the downloaded tweet")
			continue
		}
		parts = append(parts, md)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("none of %d posts could be rendered", len(posts))
	}
	if mgr != nil {
		if _, err := mgr.Finalize(); err != nil {
			p.logger().Warn("asset downloads failed", "handle", handle, "err", err)
			p.notify("There was an error downloading the images.")
		}
	}
	note := markdown.CollapseBlankLines(strings.Join(parts, separator))
	res.Posts = len(parts)
	timelinePosts.Add(float64(len(parts)))

	if res.Created {
		if fpath != "" {
			if err := p.Vault.CreateFolder(ctx, fpath); err != nil {
				return nil, fmt.Errorf("creating timeline folder: %w", err)
			}
		}
		if err := p.Vault.CreateTextFile(ctx, notePath, note); err != nil {
			return nil, err
		}
		p.notify(fname + " created.")
		return res, nil
	}
	if err := p.Vault.WriteTextFile(ctx, notePath, note+separator+existing); err != nil {
		return nil, err
	}
	p.notify(fname + " updated.")
	return res, nil
}

// fetchedAt reads the "fetched" frontmatter field of a note. A note without
// one, or with a date that cannot be parsed, yields the zero time so the
// whole timeline is fetched.
func fetchedAt(note string, loc *time.Location) time.Time {
	var meta struct {
		Fetched any `yaml:"fetched"`
	}
	if _, err := frontmatter.Parse(strings.NewReader(note), &meta); err != nil {
		return time.Time{}
	}
	switch v := meta.Fetched.(type) {
	case time.Time:
		return v
	case string:
		t, err := dateparse.ParseIn(v, loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	return time.Time{}
}
