package markdown

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/download"
	"github.com/ttm-go/tweetmd/thread"
	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/tweet/tweettest"
	"github.com/ttm-go/tweetmd/vault"
)

// plainSettings turns off frontmatter and avatars so assertions can focus on
// the body.
func plainSettings() *config.Settings {
	s := config.Default()
	s.Frontmatter = false
	s.Avatars = false
	return &s
}

type notices struct {
	msgs []string
}

func (n *notices) Notify(msg string) { n.msgs = append(n.msgs, msg) }

func TestRenderPoll(t *testing.T) {
	assert := assert.New(t)
	r := &Renderer{Settings: plainSettings()}

	md, err := r.Render(context.Background(), tweettest.PollPost(), ModeNormal, nil)
	assert.NoError(err)
	assert.Equal("polls ([@polls](https://twitter.com/polls)) - 2018-08-13\n\nWhich is Better?\n\n|Option|Votes|\n|---|:---:|\n|Spring|1373|\n|Fall|3054|\n\n[Tweet link](https://twitter.com/polls/status/1029121914260860929)", md)
}

func TestRenderHeader(t *testing.T) {
	assert := assert.New(t)
	s := plainSettings()
	s.IncludeLinks = false
	s.IncludeDate = false
	r := &Renderer{Settings: s}

	md, err := r.Render(context.Background(), tweettest.PollPost(), ModeNormal, nil)
	assert.NoError(err)
	assert.True(strings.HasPrefix(md, "polls (polls)\n\nWhich is Better?"))
	assert.NotContains(md, "[Tweet link]")
}

func TestRenderFrontmatter(t *testing.T) {
	assert := assert.New(t)
	s := config.Default()
	s.CSSClass = "tweet"
	s.Tags = []string{"a", "b"}
	s.FreeformFrontmatter = []string{"status: unread"}
	r := &Renderer{
		Settings: &s,
		Now:      func() time.Time { return time.Date(2021, time.January, 2, 3, 4, 5, 0, time.UTC) },
	}

	md, err := r.Render(context.Background(), tweettest.ImagePost(), ModeNormal, nil)
	assert.NoError(err)
	assert.True(strings.HasPrefix(md, `---
author: "Maggie Appleton 🧭"
handle: "@Mappletons"
source: "https://twitter.com/Mappletons/status/1292845757297557505"
date: 2020-08-10
fetched: 2021-01-02
likes: 191
retweets: 29
replies: 11
cssclass: tweet
tags: ["a", "b"]
status: unread
---
![Mappletons](https://pbs.twimg.com/profile_images/1079304561892966406/1AHsGSnz_normal.jpg)
Maggie Appleton 🧭 ([@Mappletons](https://twitter.com/Mappletons)) - 2020-08-10
`), md)

	// only notes get frontmatter
	for _, mode := range []Mode{ModeEmbed, ModeQuoted} {
		md, err := r.Render(context.Background(), tweettest.ImagePost(), mode, nil)
		assert.NoError(err)
		assert.NotContains(md, "fetched:")
	}
}

func TestRenderFrontmatterQuoting(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s := config.Default()
	s.Tags = []string{`say "hi"`, `C:\notes`}
	r := &Renderer{Settings: &s}

	post := tweettest.MentionsPost()
	post.Author = &tweet.Author{ID: post.AuthorID, Handle: "TheRock", Name: `Dwayne "The Rock" \d Johnson`}
	md, err := r.Render(context.Background(), post, ModeNormal, nil)
	require.NoError(err)
	assert.Contains(md, `author: "Dwayne \"The Rock\" \\d Johnson"`)

	var meta struct {
		Author string   `yaml:"author"`
		Handle string   `yaml:"handle"`
		Source string   `yaml:"source"`
		Tags   []string `yaml:"tags"`
	}
	_, err = frontmatter.Parse(strings.NewReader(md), &meta)
	require.NoError(err)
	assert.Equal(`Dwayne "The Rock" \d Johnson`, meta.Author)
	assert.Equal("@TheRock", meta.Handle)
	assert.Equal("https://twitter.com/TheRock/status/1303753964291338240", meta.Source)
	assert.Equal([]string{`say "hi"`, `C:\notes`}, meta.Tags)
}

func TestRenderBody(t *testing.T) {
	assert := assert.New(t)
	r := &Renderer{Settings: plainSettings()}

	md, err := r.Render(context.Background(), tweettest.ImagePost(), ModeNormal, nil)
	assert.NoError(err)
	assert.Contains(md, "Hair on my head? Clean. Hair on the table? Dirty!\n\nIllustrating & expanding on her main ideas: [maggieappleton.com/dirt](http://maggieappleton.com/dirt)")
	assert.NotContains(md, "&amp;")
	assert.NotContains(md, "\n\n\n")
}

func TestRenderMobileLinks(t *testing.T) {
	assert := assert.New(t)
	post := tweettest.PollPost()
	post.Polls = nil
	post.Text = "see https://mobile.twitter.com/polls/status/1 and http://mobile.twitter.com/x"
	r := &Renderer{Settings: plainSettings()}

	md, err := r.Render(context.Background(), post, ModeNormal, nil)
	assert.NoError(err)
	assert.Contains(md, "see https://twitter.com/polls/status/1 and https://twitter.com/x")
	assert.NotContains(md, "mobile.")
}

func TestRenderRemoteMedia(t *testing.T) {
	assert := assert.New(t)
	s := plainSettings()
	s.Avatars = true
	s.ImageSize = 500
	r := &Renderer{Settings: s}

	md, err := r.Render(context.Background(), tweettest.ImagePost(), ModeNormal, nil)
	assert.NoError(err)
	assert.True(strings.HasPrefix(md, "![Mappletons](https://pbs.twimg.com/profile_images/1079304561892966406/1AHsGSnz_normal.jpg)\n"))
	assert.Contains(md, "\n\n![|500](https://pbs.twimg.com/media/EfEcPs8XoAIXwvH.jpg)\n\n![|500](https://pbs.twimg.com/media/EfEcQ5HX0AA2EvY.jpg)\n\n")

	s.IncludeImages = false
	md, err = r.Render(context.Background(), tweettest.ImagePost(), ModeNormal, nil)
	assert.NoError(err)
	assert.NotContains(md, "pbs.twimg.com/media")
}

func TestRenderLocalMedia(t *testing.T) {
	assert := assert.New(t)
	s := plainSettings()
	s.Avatars = true
	s.DownloadAssets = true
	s.AssetLocation = "my assets/[[handle]]"
	r := &Renderer{Settings: s}

	md, err := r.Render(context.Background(), tweettest.ImagePost(), ModeNormal, nil)
	assert.NoError(err)
	assert.Contains(md, "![Mappletons](my%20assets/Mappletons/1343443016-1AHsGSnz_normal.jpg)")
	assert.Contains(md, "![](my%20assets/Mappletons/3_1292845624120025090.jpg)")

	s.ImageEmbedStyle = config.EmbedStyleObsidian
	s.AvatarSize = 50
	md, err = r.Render(context.Background(), tweettest.ImagePost(), ModeNormal, nil)
	assert.NoError(err)
	assert.Contains(md, "![[my assets/Mappletons/1343443016-1AHsGSnz_normal.jpg|50]]")
	assert.Contains(md, "![[my assets/Mappletons/3_1292845644567269376.jpg]]")
}

func TestRenderRegistersDownloads(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("jpeg:" + r.URL.Path))
	}))
	defer srv.Close()

	post := tweettest.ImagePost()
	post.Author.AvatarURL = srv.URL + "/profile_images/1/1AHsGSnz_normal.jpg"
	post.Media[0].URL = srv.URL + "/media/one.jpg"
	post.Media[1].URL = srv.URL + "/media/two.jpg"

	v := vault.NewMem()
	require.NoError(v.CreateFolder(ctx, "assets"))
	require.NoError(v.CreateBinaryFile(ctx, "assets/3_1292845624120025090.jpg", []byte("old")))

	var notified int32
	mgr := download.NewManager(ctx, func() { atomic.AddInt32(&notified, 1) })
	s := plainSettings()
	s.Avatars = true
	s.DownloadAssets = true
	r := &Renderer{Settings: s, Downloads: mgr, Vault: v, HTTPClient: srv.Client()}

	_, err := r.Render(ctx, post, ModeNormal, nil)
	require.NoError(err)
	// a second render of the same post registers nothing new
	_, err = r.Render(ctx, post, ModeNormal, nil)
	require.NoError(err)

	results, err := mgr.Finalize()
	assert.NoError(err)
	assert.Len(results, 2)
	assert.Equal(int32(2), atomic.LoadInt32(&hits))
	assert.Equal(int32(1), atomic.LoadInt32(&notified))
	assert.Equal([]string{
		"assets/1343443016-1AHsGSnz_normal.jpg",
		"assets/3_1292845624120025090.jpg",
		"assets/3_1292845644567269376.jpg",
	}, v.Files())
	assert.Equal("old", string(v.Bytes("assets/3_1292845624120025090.jpg")))
	assert.Equal("jpeg:/media/two.jpg", string(v.Bytes("assets/3_1292845644567269376.jpg")))
}

func quotedPost(id, text string, quotes ...string) *tweet.Post {
	p := &tweet.Post{
		ID:        id,
		Text:      text,
		CreatedAt: time.Date(2020, time.September, 2, 14, 0, 0, 0, time.UTC),
		AuthorID:  "42",
		Author:    &tweet.Author{ID: "42", Name: "Bee", Handle: "BTheriot2014"},
	}
	for _, q := range quotes {
		p.ReferencedPosts = append(p.ReferencedPosts, tweet.ReferencedPost{Type: tweet.ReferenceQuoted, ID: q})
	}
	return p
}

func TestRenderQuoted(t *testing.T) {
	assert := assert.New(t)
	f := tweettest.NewFetcher(quotedPost("1301180406226513921", "Hello\nworld"))
	r := &Renderer{Settings: plainSettings(), Fetcher: f}

	md, err := r.Render(context.Background(), tweettest.CashtagPost(), ModeNormal, nil)
	assert.NoError(err)
	assert.Equal([]string{"1301180406226513921"}, f.Calls)
	assert.Contains(md, "[#coffee](https://twitter.com/hashtag/coffee) time! [twitter.com/BTheriot2014/s…](https://twitter.com/BTheriot2014/status/1301180406226513921)\n\n"+
		"> Bee ([@BTheriot2014](https://twitter.com/BTheriot2014)) - 2020-09-02\n"+
		"> \n"+
		"> Hello\n"+
		"> \n"+
		"> world\n"+
		"> \n"+
		"> [Tweet link](https://twitter.com/BTheriot2014/status/1301180406226513921)\n\n"+
		"[Tweet link](https://twitter.com/Ceascape_ca/status/1301192107143561219)")
}

func TestRenderNestedQuotes(t *testing.T) {
	assert := assert.New(t)
	f := tweettest.NewFetcher(
		quotedPost("2", "Outer", "3"),
		quotedPost("3", "Inner"),
	)
	s := plainSettings()
	s.IncludeLinks = false
	r := &Renderer{Settings: s, Fetcher: f}

	md, err := r.Render(context.Background(), quotedPost("1", "Top", "2"), ModeEmbed, nil)
	assert.NoError(err)
	assert.Contains(md, "> Outer")
	assert.Contains(md, "> > Inner")
	assert.Equal([]string{"2", "3"}, f.Calls)
}

func TestRenderQuoteFailure(t *testing.T) {
	assert := assert.New(t)
	n := &notices{}
	r := &Renderer{Settings: plainSettings(), Fetcher: tweettest.NewFetcher(), Notifier: n}

	md, err := r.Render(context.Background(), tweettest.CashtagPost(), ModeNormal, nil)
	assert.NoError(err)
	assert.NotContains(md, "> ")
	assert.True(strings.HasSuffix(md, "[Tweet link](https://twitter.com/Ceascape_ca/status/1301192107143561219)"))
	assert.Len(n.msgs, 1)
	assert.Contains(n.msgs[0], "1301180406226513921")
}

func TestRenderQuoteCycle(t *testing.T) {
	assert := assert.New(t)
	f := tweettest.NewFetcher(quotedPost("1", "ping", "2"), quotedPost("2", "pong", "1"))
	n := &notices{}
	r := &Renderer{Settings: plainSettings(), Fetcher: f, Notifier: n}

	md, err := r.Render(context.Background(), f.Posts["1"], ModeNormal, nil)
	assert.NoError(err)
	assert.Contains(md, "> > pong")
	assert.Len(f.Calls, maxQuoteDepth)
	assert.Len(n.msgs, 1)
}

func TestRenderThreadNeedsPreviousAuthor(t *testing.T) {
	assert := assert.New(t)
	r := &Renderer{Settings: plainSettings()}

	_, err := r.Render(context.Background(), tweettest.PollPost(), ModeThread, nil)
	assert.ErrorIs(err, ErrMissingPreviousAuthor)
}

// threadChain assembles the fixture thread the way the save pipeline does.
func threadChain(t *testing.T, condensed bool) thread.Chain {
	posts := tweettest.ThreadPosts()
	chain, err := thread.BuildChain(context.Background(), posts[len(posts)-1].ID, tweettest.NewFetcher(posts...), condensed)
	require.NoError(t, err)
	return chain
}

func TestRenderChain(t *testing.T) {
	assert := assert.New(t)
	s := config.Default()
	s.Frontmatter = false
	s.IncludeLinks = false
	n := &notices{}
	r := &Renderer{Settings: &s, Fetcher: tweettest.NewFetcher(), Notifier: n}

	md, err := RenderChain(context.Background(), r, threadChain(t, false))
	assert.NoError(err)
	assert.Equal(3, strings.Count(md, "Geoffrey Litt (geoffreylitt) - 2020-06-29"))
	assert.Equal(3, strings.Count(md, "![geoffreylitt]("))
	assert.Equal(2, strings.Count(md, "\n\n---\n\n"))
	assert.Equal(3, strings.Count(md, "![]("))
	// the last post quotes a post the fetcher does not have
	assert.Len(n.msgs, 1)
}

func TestRenderChainCondensed(t *testing.T) {
	assert := assert.New(t)
	s := config.Default()
	s.Frontmatter = false
	s.CondensedThread = true
	r := &Renderer{Settings: &s, Fetcher: tweettest.NewFetcher()}

	md, err := RenderChain(context.Background(), r, threadChain(t, true))
	assert.NoError(err)
	assert.Equal(1, strings.Count(md, "Geoffrey Litt ([@geoffreylitt](https://twitter.com/geoffreylitt))"))
	assert.Equal(1, strings.Count(md, "![geoffreylitt]("))
	assert.NotContains(md, "---")
	assert.NotContains(md, "[Tweet link]")
	assert.Contains(md, "siloed \"apps\"\n\nThe problem is, while the roots are solid")
}

func TestRenderChainFollowsLinks(t *testing.T) {
	assert := assert.New(t)
	s := config.Default()
	s.Frontmatter = false
	s.Avatars = false
	s.CondensedThread = true
	r := &Renderer{Settings: &s, Fetcher: tweettest.NewFetcher()}

	// only the last link is marked condensed, so the middle post keeps its
	// header even though every post has the same author
	chain := threadChain(t, false)
	chain[len(chain)-1].Condensed = true
	md, err := RenderChain(context.Background(), r, chain)
	assert.NoError(err)
	assert.Equal(2, strings.Count(md, "Geoffrey Litt ([@geoffreylitt](https://twitter.com/geoffreylitt))"))
}

func TestCollapseBlankLines(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("a\n\nb\nc\n\nd", CollapseBlankLines("a\n\n\n\nb\nc\n\n\nd"))
}

func TestParseMode(t *testing.T) {
	assert := assert.New(t)
	for _, m := range []Mode{ModeNormal, ModeThread, ModeQuoted, ModeEmbed} {
		parsed, err := ParseMode(m.String())
		assert.NoError(err)
		assert.Equal(m, parsed)
	}
	_, err := ParseMode("sideways")
	assert.Error(err)
}

func TestToHTML(t *testing.T) {
	assert := assert.New(t)
	s := config.Default()
	r := &Renderer{Settings: &s}

	md, err := r.Render(context.Background(), tweettest.PollPost(), ModeNormal, nil)
	assert.NoError(err)
	out, err := ToHTML(md)
	assert.NoError(err)
	assert.Contains(out, "<table>")
	assert.Contains(out, "<th>Option</th>")
	assert.Contains(out, "Spring")
	assert.NotContains(out, "fetched:")
}
