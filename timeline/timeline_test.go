package timeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/markdown"
	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/tweet/tweettest"
	"github.com/ttm-go/tweetmd/vault"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2022, month, d, 9, 30, 0, 0, time.UTC)
}

func post(id, text string, at time.Time) *tweet.Post {
	return &tweet.Post{
		ID:        id,
		Text:      text,
		CreatedAt: at,
		AuthorID:  "1143604512999034881",
		Author: &tweet.Author{
			ID:        "1143604512999034881",
			Handle:    "kbravh",
			Name:      "Karey Higuera",
			AvatarURL: "https://pbs.twimg.com/profile_images/1163169960505610240/R8BoDqiT_normal.jpg",
		},
	}
}

type notices struct {
	lk   sync.Mutex
	msgs []string
}

func (n *notices) Notify(msg string) {
	n.lk.Lock()
	defer n.lk.Unlock()
	n.msgs = append(n.msgs, msg)
}

func TestPoll(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	f := tweettest.NewFetcher()
	f.AddTimeline(post("1", "first post", day(time.April, 1)), post("2", "second post", day(time.April, 2)))
	v := vault.NewMem()
	now := day(time.May, 1)
	n := &notices{}
	p := &Poller{Fetcher: f, Vault: v, Notifier: n, Now: func() time.Time { return now }}

	settings := config.Default()
	settings.NoteLocation = "timelines"
	settings.PollHandles = []string{" @kbravh "}

	results, err := p.Poll(ctx, &settings)
	require.NoError(err)
	require.Len(results, 1)
	assert.True(results[0].Created)
	assert.Equal(2, results[0].Posts)
	assert.Equal("timelines/Timeline - kbravh.md", results[0].Path)
	assert.Contains(n.msgs, "Timeline - kbravh.md created.")

	note, err := v.ReadTextFile(ctx, "timelines/Timeline - kbravh.md")
	require.NoError(err)
	assert.True(strings.HasPrefix(note, "---\nauthor: \"Karey Higuera\"\n"))
	assert.Equal(2, strings.Count(note, "fetched: 2022-05-01"))
	assert.Less(strings.Index(note, "second post"), strings.Index(note, "first post"))

	// new posts go on top of the old note
	f.AddTimeline(post("3", "third post", day(time.May, 3)))
	now = day(time.May, 4)
	results, err = p.Poll(ctx, &settings)
	require.NoError(err)
	assert.False(results[0].Created)
	assert.Equal(1, results[0].Posts)
	assert.Equal(time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC), results[0].Since)

	updated, err := v.ReadTextFile(ctx, "timelines/Timeline - kbravh.md")
	require.NoError(err)
	assert.True(strings.HasSuffix(updated, "\n\n---\n\n"+note))
	assert.Equal(1, strings.Count(updated, "third post"))
	assert.Equal(1, strings.Count(updated, "first post"))

	// nothing new, nothing written
	now = day(time.May, 5)
	results, err = p.Poll(ctx, &settings)
	require.NoError(err)
	assert.Equal(0, results[0].Posts)
	assert.Empty(results[0].Path)
	again, err := v.ReadTextFile(ctx, "timelines/Timeline - kbravh.md")
	require.NoError(err)
	assert.Equal(updated, again)
}

func TestPollUnknownHandle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	f := tweettest.NewFetcher()
	f.AddTimeline(post("1", "first post", day(time.April, 1)))
	v := vault.NewMem()
	p := &Poller{Fetcher: f, Vault: v, Notifier: &notices{}}

	settings := config.Default()
	settings.PollHandles = []string{"kbravh, nobody"}

	results, err := p.Poll(ctx, &settings)
	assert.ErrorIs(err, tweet.ErrPostUnavailable)
	assert.Contains(err.Error(), "nobody")
	assert.Len(results, 2)
	assert.NoError(results[0].Err)
	assert.Error(results[1].Err)
	assert.Equal([]string{"Timeline - kbravh.md"}, v.Files())
}

func TestFetchedAt(t *testing.T) {
	assert := assert.New(t)

	assert.True(fetchedAt("no frontmatter here", time.UTC).IsZero())
	assert.True(fetchedAt("---\nfetched: not a date\n---\nbody", time.UTC).IsZero())
	assert.True(fetchedAt("---\nauthor: \"x\"\n---\nbody", time.UTC).IsZero())
	assert.Equal(time.Date(2021, time.March, 4, 0, 0, 0, 0, time.UTC), fetchedAt("---\nfetched: 2021-03-04\n---\nbody", time.UTC))
}

func TestFetchedAtRenderedNote(t *testing.T) {
	assert := assert.New(t)
	s := config.Default()
	r := &markdown.Renderer{
		Settings: &s,
		Now:      func() time.Time { return day(time.March, 4) },
	}

	p := post("1", "hello", day(time.March, 3))
	p.Author.Name = `Dwayne "The Rock" \ Johnson`
	md, err := r.Render(context.Background(), p, markdown.ModeNormal, nil)
	require.NoError(t, err)
	assert.Equal(time.Date(2022, time.March, 4, 0, 0, 0, 0, time.UTC), fetchedAt(md, time.UTC))
}
