// Package tweettest holds real posts captured from the API, for use in tests
// across the module.
package tweettest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ttm-go/tweetmd/tweet"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ImagePost() *tweet.Post {
	return &tweet.Post{
		ID:             "1292845757297557505",
		ConversationID: "1292845757297557505",
		CreatedAt:      mustTime("2020-08-10T15:30:23.000Z"),
		AuthorID:       "1343443016",
		Text:           "\"Dirt is matter out of place\" - the loveliest definition of dirt you could hope for from anthropologist Mary Douglas in her classic 1966 book Purity and Danger\n\nHair on my head? Clean. Hair on the table? Dirty!\n\nIllustrating &amp; expanding on her main ideas: https://t.co/O2P7WRO1XL https://t.co/PSk7lHiv7z",
		Metrics:        tweet.Metrics{Likes: 191, Retweets: 29, Replies: 11, Quotes: 2},
		Attachments: &tweet.Attachments{
			MediaKeys: []string{"3_1292845624120025090", "3_1292845644567269376"},
		},
		Entities: &tweet.Entities{
			URLs: []tweet.URL{
				{Start: 260, End: 283, URL: "https://t.co/O2P7WRO1XL", ExpandedURL: "http://maggieappleton.com/dirt", DisplayURL: "maggieappleton.com/dirt"},
				{Start: 284, End: 307, URL: "https://t.co/PSk7lHiv7z", ExpandedURL: "https://twitter.com/Mappletons/status/1292845757297557505/photo/1", DisplayURL: "pic.twitter.com/PSk7lHiv7z", MediaKey: "3_1292845624120025090"},
				{Start: 284, End: 307, URL: "https://t.co/PSk7lHiv7z", ExpandedURL: "https://twitter.com/Mappletons/status/1292845757297557505/photo/1", DisplayURL: "pic.twitter.com/PSk7lHiv7z", MediaKey: "3_1292845644567269376"},
			},
		},
		Author: &tweet.Author{
			ID:        "1343443016",
			Handle:    "Mappletons",
			Name:      "Maggie Appleton 🧭",
			AvatarURL: "https://pbs.twimg.com/profile_images/1079304561892966406/1AHsGSnz_normal.jpg",
		},
		Media: []tweet.Media{
			{Key: "3_1292845624120025090", Kind: tweet.MediaPhoto, URL: "https://pbs.twimg.com/media/EfEcPs8XoAIXwvH.jpg"},
			{Key: "3_1292845644567269376", Kind: tweet.MediaPhoto, URL: "https://pbs.twimg.com/media/EfEcQ5HX0AA2EvY.jpg"},
		},
	}
}

func MentionsPost() *tweet.Post {
	return &tweet.Post{
		ID:             "1303753964291338240",
		ConversationID: "1303753964291338240",
		CreatedAt:      mustTime("2020-09-09T17:55:42.000Z"),
		AuthorID:       "1143604512999034881",
		Text:           "I've just created a Node.js CLI tool to save tweets as Markdown, great for @NotionHQ, @RoamResearch, @obsdmd, and other Markdown based note-taking systems! https://t.co/9qzNhz5cmN",
		Entities: &tweet.Entities{
			URLs: []tweet.URL{
				{Start: 156, End: 179, URL: "https://t.co/9qzNhz5cmN", ExpandedURL: "https://github.com/kbravh/tweet-to-markdown", DisplayURL: "github.com/kbravh/tweet-t…"},
			},
			Mentions: []tweet.Mention{
				{Start: 75, End: 84, Username: "NotionHQ"},
				{Start: 86, End: 99, Username: "RoamResearch"},
				{Start: 101, End: 108, Username: "obsdmd"},
			},
		},
		Author: &tweet.Author{
			ID:        "1143604512999034881",
			Handle:    "kbravh",
			Name:      "Karey Higuera 🦈",
			AvatarURL: "https://pbs.twimg.com/profile_images/1163169960505610240/R8BoDqiT_normal.jpg",
		},
	}
}

func CashtagPost() *tweet.Post {
	return &tweet.Post{
		ID:             "1301192107143561219",
		ConversationID: "1301192107143561219",
		CreatedAt:      mustTime("2020-09-02T16:15:47.000Z"),
		AuthorID:       "1058876047465209856",
		Text:           "Today I learned about #cashtags  - and found out my $SBUX is in current tweet!  Must be #coffee time! https://t.co/qnyDphmJm2",
		Metrics:        tweet.Metrics{Likes: 1},
		Entities: &tweet.Entities{
			URLs: []tweet.URL{
				{Start: 102, End: 125, URL: "https://t.co/qnyDphmJm2", ExpandedURL: "https://twitter.com/BTheriot2014/status/1301180406226513921", DisplayURL: "twitter.com/BTheriot2014/s…"},
			},
			Hashtags: []tweet.Tag{
				{Start: 22, End: 31, Tag: "cashtags"},
				{Start: 88, End: 95, Tag: "coffee"},
			},
			Cashtags: []tweet.Tag{
				{Start: 52, End: 57, Tag: "SBUX"},
			},
		},
		ReferencedPosts: []tweet.ReferencedPost{
			{Type: tweet.ReferenceQuoted, ID: "1301180406226513921"},
		},
		Author: &tweet.Author{
			ID:        "1058876047465209856",
			Handle:    "Ceascape_ca",
			Name:      "ceascape.business.solutions",
			AvatarURL: "https://pbs.twimg.com/profile_images/1058877044015038464/u68hN9LW_normal.jpg",
		},
	}
}

func PollPost() *tweet.Post {
	return &tweet.Post{
		ID:             "1029121914260860929",
		ConversationID: "1029121914260860929",
		CreatedAt:      mustTime("2018-08-13T21:45:59.000Z"),
		AuthorID:       "4071934995",
		Text:           "Which is Better?",
		Metrics:        tweet.Metrics{Likes: 47, Retweets: 7, Replies: 11, Quotes: 2},
		Attachments:    &tweet.Attachments{PollIDs: []string{"1029121913858269191"}},
		Polls: []tweet.Poll{
			{
				ID: "1029121913858269191",
				Options: []tweet.PollOption{
					{Position: 1, Label: "Spring", Votes: 1373},
					{Position: 2, Label: "Fall", Votes: 3054},
				},
			},
		},
		Author: &tweet.Author{
			ID:        "4071934995",
			Handle:    "polls",
			Name:      "polls",
			AvatarURL: "https://pbs.twimg.com/profile_images/660160253913382913/qgvYqknJ_normal.jpg",
		},
	}
}

func litt() *tweet.Author {
	return &tweet.Author{
		ID:        "221658618",
		Handle:    "geoffreylitt",
		Name:      "Geoffrey Litt",
		AvatarURL: "https://pbs.twimg.com/profile_images/722626068293763072/4erM-SPN_normal.jpg",
	}
}

// ThreadPosts returns a three post thread, root first.
func ThreadPosts() []*tweet.Post {
	return []*tweet.Post{
		{
			ID:             "1277645969975377923",
			ConversationID: "1277645969975377923",
			AuthorID:       "221658618",
			CreatedAt:      mustTime("2020-06-29T16:51:51.000Z"),
			Text:           "A theory about why tools like Airtable and Notion are so compelling: they provide a much-needed synthesis between the design philosophies of UNIX and Apple.\n\nShort thread: https://t.co/YjOLsIGVRD",
			Metrics:        tweet.Metrics{Likes: 119, Retweets: 13, Replies: 5, Quotes: 1},
			Attachments:    &tweet.Attachments{MediaKeys: []string{"3_1277628647332089863", "3_1277628708845768704"}},
			Entities: &tweet.Entities{
				URLs: []tweet.URL{
					{Start: 172, End: 195, URL: "https://t.co/YjOLsIGVRD", ExpandedURL: "https://twitter.com/geoffreylitt/status/1277645969975377923/photo/1", DisplayURL: "pic.twitter.com/YjOLsIGVRD", MediaKey: "3_1277628647332089863"},
					{Start: 172, End: 195, URL: "https://t.co/YjOLsIGVRD", ExpandedURL: "https://twitter.com/geoffreylitt/status/1277645969975377923/photo/1", DisplayURL: "pic.twitter.com/YjOLsIGVRD", MediaKey: "3_1277628708845768704"},
				},
			},
			Author: litt(),
			Media: []tweet.Media{
				{Key: "3_1277628647332089863", Kind: tweet.MediaPhoto, URL: "https://pbs.twimg.com/media/EbsMfE8XkAc9TiK.png"},
				{Key: "3_1277628708845768704", Kind: tweet.MediaPhoto, URL: "https://pbs.twimg.com/media/EbsMiqGX0AAwi9R.jpg"},
			},
		},
		{
			ID:             "1277645971401433090",
			ConversationID: "1277645969975377923",
			AuthorID:       "221658618",
			CreatedAt:      mustTime("2020-06-29T16:51:51.000Z"),
			Text:           "UNIX is still the best working example of \"tools not apps\": small sharp tools that the user can flexibly compose to meet their needs.\n\nOnce you've written a few bash pipelines, it's hard to be satisfied with disconnected, siloed \"apps\"",
			Metrics:        tweet.Metrics{Likes: 29, Retweets: 2, Replies: 1},
			ReferencedPosts: []tweet.ReferencedPost{
				{Type: tweet.ReferenceRepliedTo, ID: "1277645969975377923"},
			},
			Author: litt(),
		},
		{
			ID:             "1277645972529647616",
			ConversationID: "1277645969975377923",
			AuthorID:       "221658618",
			CreatedAt:      mustTime("2020-06-29T16:51:52.000Z"),
			Text:           "The problem is, while the roots are solid, the terminal as UI is extremely hostile to users, esp beginners. No discoverability, cryptic flags, lots of cruft and chaos.\n\nhttps://t.co/JOVVRw3iWU https://t.co/TjOL7PXU2y",
			Metrics:        tweet.Metrics{Likes: 19, Replies: 1},
			Attachments:    &tweet.Attachments{MediaKeys: []string{"3_1277630070321025025"}},
			ReferencedPosts: []tweet.ReferencedPost{
				{Type: tweet.ReferenceQuoted, ID: "1187357294415302657"},
				{Type: tweet.ReferenceRepliedTo, ID: "1277645971401433090"},
			},
			Entities: &tweet.Entities{
				URLs: []tweet.URL{
					{Start: 169, End: 192, URL: "https://t.co/JOVVRw3iWU", ExpandedURL: "https://twitter.com/geoffreylitt/status/1187357294415302657", DisplayURL: "twitter.com/geoffreylitt/s…"},
					{Start: 193, End: 216, URL: "https://t.co/TjOL7PXU2y", ExpandedURL: "https://twitter.com/geoffreylitt/status/1277645972529647616/photo/1", DisplayURL: "pic.twitter.com/TjOL7PXU2y", MediaKey: "3_1277630070321025025"},
				},
			},
			Author: litt(),
			Media: []tweet.Media{
				{Key: "3_1277630070321025025", Kind: tweet.MediaPhoto, URL: "https://pbs.twimg.com/media/EbsNx5_XkAEncJW.png"},
			},
		},
	}
}

// ReplyPost is a reply whose author has a profile image, used for avatar
// file naming.
func ReplyPost() *tweet.Post {
	return &tweet.Post{
		ID:             "1511740301118951431",
		ConversationID: "1511740254000226316",
		AuthorID:       "1143604512999034881",
		CreatedAt:      mustTime("2022-04-06T16:19:09.000Z"),
		Text:           "Another valuable reference was Edition 16 of the Jamaica Philatelist magazine from 1942. https://t.co/PDFacV5JfY",
		Metrics:        tweet.Metrics{Likes: 1},
		ReferencedPosts: []tweet.ReferencedPost{
			{Type: tweet.ReferenceRepliedTo, ID: "1511740298682109953"},
		},
		Entities: &tweet.Entities{
			URLs: []tweet.URL{
				{Start: 89, End: 112, URL: "https://t.co/PDFacV5JfY", ExpandedURL: "http://jamaicaphilately.info/jamaica-philatelist", DisplayURL: "jamaicaphilately.info/jamaica-philat…"},
			},
		},
		Author: &tweet.Author{
			ID:        "1143604512999034881",
			Handle:    "kbravh",
			Name:      "Karey Higuera 🦈",
			AvatarURL: "https://pbs.twimg.com/profile_images/1163169960505610240/R8BoDqiT_normal.jpg",
		},
	}
}

// Fetcher serves posts, users, and timelines from memory and records every
// post lookup.
type Fetcher struct {
	lk    sync.Mutex
	Posts map[string]*tweet.Post
	Calls []string
	// Users is keyed by lower case handle.
	Users map[string]*tweet.Author
	// Timelines is keyed by user ID.
	Timelines map[string][]*tweet.Post
}

func NewFetcher(posts ...*tweet.Post) *Fetcher {
	f := &Fetcher{
		Posts:     make(map[string]*tweet.Post),
		Users:     make(map[string]*tweet.Author),
		Timelines: make(map[string][]*tweet.Post),
	}
	for _, p := range posts {
		f.Posts[p.ID] = p
	}
	return f
}

// AddTimeline registers posts as the timeline of their author, and the
// author as a known user.
func (f *Fetcher) AddTimeline(posts ...*tweet.Post) {
	f.lk.Lock()
	defer f.lk.Unlock()
	for _, p := range posts {
		u := p.User()
		f.Users[strings.ToLower(u.Handle)] = &u
		f.Timelines[u.ID] = append(f.Timelines[u.ID], p)
		f.Posts[p.ID] = p
	}
}

func (f *Fetcher) FetchUser(ctx context.Context, handle string) (*tweet.Author, error) {
	f.lk.Lock()
	defer f.lk.Unlock()
	u, ok := f.Users[strings.ToLower(handle)]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", tweet.ErrPostUnavailable, handle)
	}
	return u, nil
}

// FetchTimeline returns the posts created after since, newest first.
func (f *Fetcher) FetchTimeline(ctx context.Context, userID string, since time.Time) ([]*tweet.Post, error) {
	f.lk.Lock()
	defer f.lk.Unlock()
	var out []*tweet.Post
	for _, p := range f.Timelines[userID] {
		if since.IsZero() || p.CreatedAt.After(since) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *Fetcher) FetchPost(ctx context.Context, id string) (*tweet.Post, error) {
	f.lk.Lock()
	defer f.lk.Unlock()
	f.Calls = append(f.Calls, id)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", tweet.ErrConnectivity, err)
	}
	p, ok := f.Posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tweet.ErrPostUnavailable, id)
	}
	return p, nil
}
