// Package markdown assembles the Markdown note for a post: frontmatter,
// avatar, header, body, polls, media, and recursively inlined quoted posts.
package markdown

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/datefmt"
	"github.com/ttm-go/tweetmd/download"
	"github.com/ttm-go/tweetmd/richtext"
	"github.com/ttm-go/tweetmd/thread"
	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/vault"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeThread
	ModeQuoted
	ModeEmbed
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeThread:
		return "thread"
	case ModeQuoted:
		return "quoted"
	case ModeEmbed:
		return "embed"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return ModeNormal, nil
	case "thread":
		return ModeThread, nil
	case "quoted":
		return ModeQuoted, nil
	case "embed":
		return ModeEmbed, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// ErrMissingPreviousAuthor is returned when a post is rendered in thread
// mode without the author of the post before it.
var ErrMissingPreviousAuthor = errors.New("thread post rendered without a previous author")

// Quotes of quotes are fetched and inlined up to this depth.
const maxQuoteDepth = 8

// Notifier receives user facing messages about non-fatal problems.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

type Renderer struct {
	Settings *config.Settings
	Fetcher  thread.Fetcher
	// Downloads and Vault are only needed when Settings.DownloadAssets is
	// set. Without a manager no downloads are registered.
	Downloads  *download.Manager
	Vault      vault.Vault
	HTTPClient *http.Client
	Notifier   Notifier
	Now        func() time.Time
	Logger     *slog.Logger
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default().With("system", "markdown")
	}
	return r.Logger
}

func (r *Renderer) notify(msg string) {
	if r.Notifier != nil {
		r.Notifier.Notify(msg)
	}
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

var mobileLinkRe = regexp.MustCompile(`https?://mobile\.twitter\.com`)

// Render produces the Markdown for post. previousAuthor is required in
// thread mode, where it decides whether the post is condensed.
func (r *Renderer) Render(ctx context.Context, post *tweet.Post, mode Mode, previousAuthor *tweet.Author) (string, error) {
	if mode == ModeThread && previousAuthor == nil {
		return "", ErrMissingPreviousAuthor
	}
	condensed := mode == ModeThread && r.Settings.CondensedThread && post.User().ID == previousAuthor.ID
	return r.renderPost(ctx, post, mode, condensed)
}

// renderPost renders a top level post. condensed drops the avatar and
// header, for a reply that continues its author's previous post.
func (r *Renderer) renderPost(ctx context.Context, post *tweet.Post, mode Mode, condensed bool) (string, error) {
	ctx, span := otel.Tracer("markdown").Start(ctx, "Render")
	defer span.End()
	span.SetAttributes(attribute.String("id", post.ID), attribute.String("mode", mode.String()), attribute.Bool("condensed", condensed))

	lines, err := r.render(ctx, post, mode, condensed, 0)
	if err != nil {
		return "", err
	}
	postsRendered.WithLabelValues(mode.String()).Inc()
	return CollapseBlankLines(strings.Join(lines, "\n")), nil
}

func (r *Renderer) render(ctx context.Context, post *tweet.Post, mode Mode, condensed bool, depth int) ([]string, error) {
	s := r.Settings
	user := post.User()
	dateOpts := s.DateOptions()

	text := post.Text
	if !post.Entities.Empty() && s.IncludeLinks {
		text = richtext.Substitute(richtext.SubstituteOptions{EscapeHashtags: s.EscapeHashtags}, post.Entities, text)
	}
	text = html.UnescapeString(text)

	date := datefmt.Format(post.CreatedAt, dateOpts)

	var front []string
	if mode == ModeNormal && s.Frontmatter {
		front = r.frontmatter(post, user, date)
	}

	var lines []string
	if s.Avatars && !condensed {
		lines = append(lines, r.avatarLine(post, user))
	}
	if !condensed {
		lines = append(lines, r.header(user, date), "")
	}
	lines = append(lines, paragraphs(text)...)

	for _, poll := range post.Polls {
		lines = append(lines, pollTable(poll)...)
	}
	if s.IncludeImages {
		lines = append(lines, r.mediaLines(post)...)
	}
	if s.DownloadAssets {
		r.registerDownloads(ctx, post, user)
	}

	for _, ref := range post.References(tweet.ReferenceQuoted) {
		quoted, err := r.quote(ctx, ref.ID, depth)
		if err != nil {
			r.logger().Warn("skipping quoted post", "id", post.ID, "quoted", ref.ID, "err", err)
			r.notify(fmt.Sprintf("There was a problem processing quoted post %s", ref.ID))
			continue
		}
		lines = append(lines, "")
		lines = append(lines, quoted...)
	}

	if s.IncludeLinks && !s.CondensedThread {
		lines = append(lines, "", "", "[Tweet link]("+post.Permalink()+")")
	}

	if mode == ModeQuoted {
		lines = squeezeBlank(lines)
		for i, l := range lines {
			lines[i] = "> " + l
		}
	}
	for i, l := range lines {
		lines[i] = mobileLinkRe.ReplaceAllString(l, "https://twitter.com")
	}

	if mode == ModeNormal {
		return append(front, lines...), nil
	}
	return lines, nil
}

func (r *Renderer) quote(ctx context.Context, id string, depth int) ([]string, error) {
	if depth >= maxQuoteDepth {
		return nil, fmt.Errorf("quotes nested deeper than %d", maxQuoteDepth)
	}
	if r.Fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	quoted, err := r.Fetcher.FetchPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.render(ctx, quoted, ModeQuoted, false, depth+1)
}

func (r *Renderer) header(user tweet.Author, date string) string {
	suffix := ""
	if r.Settings.IncludeDate {
		suffix = " - " + date
	}
	if !r.Settings.IncludeLinks {
		return user.Name + " (" + user.Handle + ")" + suffix
	}
	return user.Name + " ([@" + user.Handle + "](" + tweet.ProfileURL(user.Handle) + "))" + suffix
}

func (r *Renderer) frontmatter(post *tweet.Post, user tweet.Author, date string) []string {
	s := r.Settings
	fetched := datefmt.Format(r.now(), s.DateOptions())
	out := []string{
		"---",
		"author: " + yamlString(user.Name),
		"handle: " + yamlString("@"+user.Handle),
		"source: " + yamlString(post.Permalink()),
		"date: " + date,
		"fetched: " + fetched,
		"likes: " + strconv.FormatInt(post.Metrics.Likes, 10),
		"retweets: " + strconv.FormatInt(post.Metrics.Retweets, 10),
		"replies: " + strconv.FormatInt(post.Metrics.Replies, 10),
	}
	if s.CSSClass != "" {
		out = append(out, "cssclass: "+s.CSSClass)
	}
	if len(s.Tags) > 0 {
		quoted := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			quoted[i] = yamlString(t)
		}
		out = append(out, "tags: ["+strings.Join(quoted, ", ")+"]")
	}
	out = append(out, s.FreeformFrontmatter...)
	return append(out, "---")
}

// yamlString double quotes s for a frontmatter value. Go escapes are a
// subset of the YAML double quoted escapes.
func yamlString(s string) string {
	return strconv.Quote(s)
}

// paragraphs splits text into lines, turning every newline into a
// paragraph break.
func paragraphs(text string) []string {
	var out []string
	for i, l := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, l)
	}
	return out
}

func pollTable(poll tweet.Poll) []string {
	out := []string{"", "|Option|Votes|", "|---|:---:|"}
	for _, o := range poll.Options {
		out = append(out, "|"+o.Label+"|"+strconv.FormatInt(o.Votes, 10)+"|")
	}
	return out
}

// squeezeBlank drops blank lines that follow another blank line. Quoted
// lines are prefixed before the final collapse, so they are squeezed here.
func squeezeBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// CollapseBlankLines reduces every run of blank lines to a single one.
func CollapseBlankLines(md string) string {
	return blankRunRe.ReplaceAllString(md, "\n\n")
}
