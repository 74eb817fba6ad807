// Package notes is the save pipeline: it fetches a post or thread, renders
// it, waits for asset downloads, and writes the note into the vault.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/download"
	"github.com/ttm-go/tweetmd/filename"
	"github.com/ttm-go/tweetmd/markdown"
	"github.com/ttm-go/tweetmd/thread"
	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/vault"
)

type Saver struct {
	Fetcher    thread.Fetcher
	Vault      vault.Vault
	HTTPClient *http.Client
	Notifier   markdown.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

type Request struct {
	// Post is a tweet URL or a bare post ID.
	Post   string
	Thread bool
	// Settings are not modified.
	Settings *config.Settings
}

func (r Request) settings() *config.Settings {
	if r.Settings == nil {
		def := config.Default()
		return &def
	}
	return r.Settings
}

type Result struct {
	// Post is the requested post; for threads, the last post of the chain.
	Post     *tweet.Post
	Markdown string
	// Path is the vault path of the written note, empty for text embeds.
	Path string
	// Embed is what goes in place of the pasted link: an Obsidian file
	// embed, or the Markdown itself for text embeds.
	Embed     string
	Downloads []download.Result
	// DownloadErr is the first failed download. The note is written anyway.
	DownloadErr error
}

func (s *Saver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default().With("system", "notes")
	}
	return s.Logger
}

func (s *Saver) notify(msg string) {
	if s.Notifier != nil {
		s.Notifier.Notify(msg)
	}
}

var postIDRe = regexp.MustCompile(`^[0-9]+$`)

// ResolveID accepts a tweet URL or a bare numeric ID.
func ResolveID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if postIDRe.MatchString(raw) {
		return raw, nil
	}
	if !tweet.IsTweetURL(raw) {
		return "", fmt.Errorf("%w: not a tweet URL or ID: %q", tweet.ErrMalformedInput, raw)
	}
	return tweet.ParseID(raw)
}

// Render fetches and renders the requested post or thread, and waits for
// any downloads it started. Nothing but assets is written.
func (s *Saver) Render(ctx context.Context, req Request) (*Result, error) {
	ctx, span := otel.Tracer("notes").Start(ctx, "Render")
	defer span.End()

	settings := req.settings()
	id, err := ResolveID(req.Post)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("id", id), attribute.Bool("thread", req.Thread))

	var mgr *download.Manager
	if settings.DownloadAssets && s.Vault != nil {
		mgr = download.NewManager(ctx, func() { s.notify("Downloading assets...") }).WithLogger(s.logger())
	}
	r := &markdown.Renderer{
		Settings:   settings,
		Fetcher:    s.Fetcher,
		Downloads:  mgr,
		Vault:      s.Vault,
		HTTPClient: s.HTTPClient,
		Notifier:   s.Notifier,
		Now:        s.Now,
		Logger:     s.Logger,
	}

	res := &Result{}
	if req.Thread {
		chain, err := thread.BuildChain(ctx, id, s.Fetcher, settings.CondensedThread)
		if err != nil {
			return nil, err
		}
		md, err := markdown.RenderChain(ctx, r, chain)
		if err != nil {
			return nil, err
		}
		res.Post = chain[len(chain)-1].Post
		res.Markdown = md
	} else {
		post, err := s.Fetcher.FetchPost(ctx, id)
		if err != nil {
			return nil, err
		}
		mode := markdown.ModeNormal
		if settings.EmbedMethod == config.EmbedMethodText {
			mode = markdown.ModeEmbed
		}
		md, err := r.Render(ctx, post, mode, nil)
		if err != nil {
			return nil, err
		}
		res.Post = post
		res.Markdown = md
	}
	res.Markdown = markdown.CollapseBlankLines(res.Markdown)

	if mgr != nil {
		res.Downloads, res.DownloadErr = mgr.Finalize()
		switch {
		case res.DownloadErr != nil:
			s.logger().Warn("asset downloads failed", "id", id, "err", res.DownloadErr)
			s.notify("There was an error downloading the images.")
		case len(res.Downloads) > 0:
			s.notify("Images downloaded")
		}
	}
	return res, nil
}

// Save renders the request and, for the file embed method, writes the note
// to the vault. An existing note is never overwritten: the new one gets a
// short unique prefix instead.
func (s *Saver) Save(ctx context.Context, req Request) (*Result, error) {
	res, err := s.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	settings := req.settings()
	if settings.EmbedMethod == config.EmbedMethodText {
		res.Embed = res.Markdown
		return res, nil
	}
	if s.Vault == nil {
		return nil, errors.New("no vault to save the note in")
	}

	dateOpts := settings.DateOptions()
	name := filename.Sanitize(filename.Render(settings.Filename, res.Post, dateOpts, filename.KindFile), filename.AlterDecode, filename.KindFile)
	location := filename.Sanitize(filename.Render(settings.NoteLocation, res.Post, dateOpts, filename.KindDirectory), filename.AlterDecode, filename.KindDirectory)

	exists, err := s.Vault.Exists(ctx, vault.Join(location, name))
	if err != nil {
		return nil, err
	}
	if exists {
		name = uuid.NewString()[:8] + "-" + name
	}
	if location != "" {
		if err := s.Vault.CreateFolder(ctx, location); err != nil {
			s.notify("Error creating tweet directory.")
			return nil, fmt.Errorf("creating note folder: %w", err)
		}
	}

	res.Path = vault.Join(location, name)
	if err := s.Vault.CreateTextFile(ctx, res.Path, res.Markdown); err != nil {
		return nil, fmt.Errorf("writing note: %w", err)
	}
	res.Embed = "![[" + name + "]]"
	s.logger().Info("saved note", "id", res.Post.ID, "path", res.Path)
	return res, nil
}
