package tweet

import (
	"net/url"
	"path"
	"time"
)

type ReferenceType string

const (
	ReferenceQuoted    ReferenceType = "quoted"
	ReferenceRepliedTo ReferenceType = "replied_to"
	ReferenceRetweeted ReferenceType = "retweeted"
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaGIF   MediaKind = "animated_gif"
	MediaVideo MediaKind = "video"
)

// Post is a single fetched tweet, with the users, media, and polls from the
// API "includes" block already resolved onto it. Posts are treated as
// immutable once a fetcher returns them.
type Post struct {
	ID              string
	Text            string
	CreatedAt       time.Time
	AuthorID        string
	Metrics         Metrics
	Entities        *Entities
	ConversationID  string
	Attachments     *Attachments
	ReferencedPosts []ReferencedPost

	Author *Author
	Media  []Media
	Polls  []Poll
}

type Metrics struct {
	Likes    int64
	Retweets int64
	Replies  int64
	Quotes   int64
}

type Attachments struct {
	PollIDs   []string
	MediaKeys []string
}

// ReferencedPost is a weak reference (lookup key only) to another post.
type ReferencedPost struct {
	Type ReferenceType
	ID   string
}

type Author struct {
	ID        string
	Name      string
	Handle    string
	AvatarURL string
}

type Media struct {
	Key     string
	Kind    MediaKind
	URL     string
	AltText string
}

type Poll struct {
	ID      string
	Options []PollOption
}

type PollOption struct {
	Position int
	Label    string
	Votes    int64
}

// IsRoot reports whether the post starts its conversation.
func (p *Post) IsRoot() bool {
	return p.ConversationID == "" || p.ConversationID == p.ID
}

// Reference returns the first referenced post of the given type.
func (p *Post) Reference(typ ReferenceType) (ReferencedPost, bool) {
	for _, ref := range p.ReferencedPosts {
		if ref.Type == typ {
			return ref, true
		}
	}
	return ReferencedPost{}, false
}

// References returns every referenced post of the given type, in API order.
func (p *Post) References(typ ReferenceType) []ReferencedPost {
	var out []ReferencedPost
	for _, ref := range p.ReferencedPosts {
		if ref.Type == typ {
			out = append(out, ref)
		}
	}
	return out
}

// User returns the post author, or a placeholder built from AuthorID when the
// includes block did not carry one.
func (p *Post) User() Author {
	if p.Author != nil {
		return *p.Author
	}
	return Author{ID: p.AuthorID}
}

// Permalink is the canonical twitter.com URL of the post.
func (p *Post) Permalink() string {
	return StatusURL(p.User().Handle, p.ID)
}

func StatusURL(handle, id string) string {
	return "https://twitter.com/" + handle + "/status/" + id
}

func ProfileURL(handle string) string {
	return "https://twitter.com/" + handle
}

// AvatarFilename is the local file name used for a downloaded profile image,
// eg "1143604512999034881-R8BoDqiT_normal.jpg".
func (a Author) AvatarFilename() string {
	u, err := url.Parse(a.AvatarURL)
	if err != nil || u.Path == "" {
		return a.ID + "-avatar.jpg"
	}
	return a.ID + "-" + path.Base(u.Path)
}
