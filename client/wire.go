package client

import (
	"fmt"
	"slices"
	"time"

	"github.com/ttm-go/tweetmd/tweet"
)

// Field selections sent with every post lookup.
type postParams struct {
	Expansions  string `url:"expansions"`
	UserFields  string `url:"user.fields"`
	TweetFields string `url:"tweet.fields"`
	MediaFields string `url:"media.fields"`
	PollFields  string `url:"poll.fields"`
}

var defaultPostParams = postParams{
	Expansions:  "author_id,attachments.poll_ids,attachments.media_keys",
	UserFields:  "name,username,profile_image_url",
	TweetFields: "attachments,public_metrics,entities,conversation_id,referenced_tweets,created_at",
	MediaFields: "url,alt_text",
	PollFields:  "options",
}

type timelineParams struct {
	postParams
	MaxResults      int    `url:"max_results,omitempty"`
	StartTime       string `url:"start_time,omitempty"`
	PaginationToken string `url:"pagination_token,omitempty"`
}

type userParams struct {
	UserFields string `url:"user.fields"`
}

type wireMetrics struct {
	RetweetCount int64 `json:"retweet_count"`
	ReplyCount   int64 `json:"reply_count"`
	LikeCount    int64 `json:"like_count"`
	QuoteCount   int64 `json:"quote_count"`
}

type wireMention struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Username string `json:"username"`
}

type wireTag struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Tag   string `json:"tag"`
}

type wireURL struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
	MediaKey    string `json:"media_key,omitempty"`
}

type wireEntities struct {
	URLs     []wireURL     `json:"urls,omitempty"`
	Mentions []wireMention `json:"mentions,omitempty"`
	Hashtags []wireTag     `json:"hashtags,omitempty"`
	Cashtags []wireTag     `json:"cashtags,omitempty"`
}

type wireAttachments struct {
	PollIDs   []string `json:"poll_ids,omitempty"`
	MediaKeys []string `json:"media_keys,omitempty"`
}

type wireReference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type wirePost struct {
	ID               string           `json:"id"`
	Text             string           `json:"text"`
	CreatedAt        string           `json:"created_at"`
	AuthorID         string           `json:"author_id"`
	PublicMetrics    wireMetrics      `json:"public_metrics"`
	Entities         *wireEntities    `json:"entities,omitempty"`
	ConversationID   string           `json:"conversation_id,omitempty"`
	Attachments      *wireAttachments `json:"attachments,omitempty"`
	ReferencedTweets []wireReference  `json:"referenced_tweets,omitempty"`
}

type wireUser struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

type wireMedia struct {
	MediaKey string `json:"media_key"`
	Type     string `json:"type"`
	URL      string `json:"url,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
}

type wirePollOption struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Votes    int64  `json:"votes"`
}

type wirePoll struct {
	ID      string           `json:"id"`
	Options []wirePollOption `json:"options"`
}

type wireIncludes struct {
	Users []wireUser  `json:"users,omitempty"`
	Media []wireMedia `json:"media,omitempty"`
	Polls []wirePoll  `json:"polls,omitempty"`
}

type wireError struct {
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
	Type   string `json:"type,omitempty"`
}

// problem holds the error fields that may appear on any response body.
type problem struct {
	Errors []wireError `json:"errors,omitempty"`
	Status int         `json:"status,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Title  string      `json:"title,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

type postEnvelope struct {
	problem
	Data     *wirePost    `json:"data"`
	Includes wireIncludes `json:"includes"`
}

type timelineEnvelope struct {
	problem
	Data     []wirePost   `json:"data"`
	Includes wireIncludes `json:"includes"`
	Meta     struct {
		NextToken   string `json:"next_token,omitempty"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

type userEnvelope struct {
	problem
	Data *wireUser `json:"data"`
}

func (u wireUser) author() *tweet.Author {
	return &tweet.Author{
		ID:        u.ID,
		Name:      u.Name,
		Handle:    u.Username,
		AvatarURL: u.ProfileImageURL,
	}
}

// post classifies the envelope: either the resolved post, or an error
// wrapping exactly one of the tweet error kinds.
func (e *postEnvelope) post(statusCode int) (*tweet.Post, error) {
	// partial errors (a deleted quoted post, say) can accompany a usable post
	if e.Data == nil || statusCode >= 300 {
		if err := e.problem.err(statusCode); err != nil {
			return nil, err
		}
		return nil, &APIError{StatusCode: statusCode, Title: "empty response", Kind: tweet.ErrPostUnavailable}
	}
	return convertPost(e.Data, &e.Includes)
}

// err maps the assorted error shapes of the API onto APIError.
func (p *problem) err(statusCode int) error {
	if len(p.Errors) > 0 {
		first := p.Errors[0]
		kind := tweet.ErrPostUnavailable
		if statusCode == 401 || statusCode == 403 {
			kind = tweet.ErrAuth
		}
		return &APIError{StatusCode: statusCode, Title: first.Title, Detail: first.Detail, Kind: kind}
	}
	if p.Status == 401 || statusCode == 401 {
		return &APIError{StatusCode: 401, Title: p.Title, Detail: p.Detail, Kind: tweet.ErrAuth}
	}
	if p.Reason != "" {
		// "client-not-enrolled" and friends all come down to the token
		return &APIError{StatusCode: statusCode, Title: p.Reason, Detail: p.Detail, Kind: tweet.ErrAuth}
	}
	if statusCode >= 400 {
		return &APIError{StatusCode: statusCode, Title: p.Title, Detail: p.Detail, Kind: kindForStatus(statusCode)}
	}
	return nil
}

func kindForStatus(statusCode int) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return tweet.ErrAuth
	case statusCode == 404:
		return tweet.ErrPostUnavailable
	case statusCode == 429 || statusCode >= 500:
		return tweet.ErrConnectivity
	}
	return tweet.ErrMalformedInput
}

func parseCreatedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func convertPost(d *wirePost, inc *wireIncludes) (*tweet.Post, error) {
	created, err := parseCreatedAt(d.CreatedAt)
	if err != nil {
		return nil, &APIError{Title: "bad created_at", Detail: fmt.Sprintf("%q", d.CreatedAt), Kind: tweet.ErrMalformedInput}
	}

	p := &tweet.Post{
		ID:             d.ID,
		Text:           d.Text,
		CreatedAt:      created,
		AuthorID:       d.AuthorID,
		ConversationID: d.ConversationID,
		Metrics: tweet.Metrics{
			Likes:    d.PublicMetrics.LikeCount,
			Retweets: d.PublicMetrics.RetweetCount,
			Replies:  d.PublicMetrics.ReplyCount,
			Quotes:   d.PublicMetrics.QuoteCount,
		},
	}
	for _, ref := range d.ReferencedTweets {
		p.ReferencedPosts = append(p.ReferencedPosts, tweet.ReferencedPost{Type: tweet.ReferenceType(ref.Type), ID: ref.ID})
	}
	if d.Entities != nil {
		p.Entities = convertEntities(d.Entities)
	}
	if d.Attachments != nil {
		p.Attachments = &tweet.Attachments{PollIDs: d.Attachments.PollIDs, MediaKeys: d.Attachments.MediaKeys}
	}

	for _, u := range inc.Users {
		if u.ID == d.AuthorID {
			p.Author = u.author()
			break
		}
	}
	if p.Author == nil && len(inc.Users) > 0 {
		p.Author = inc.Users[0].author()
	}

	if p.Attachments != nil {
		for _, m := range inc.Media {
			if slices.Contains(p.Attachments.MediaKeys, m.MediaKey) {
				p.Media = append(p.Media, tweet.Media{Key: m.MediaKey, Kind: tweet.MediaKind(m.Type), URL: m.URL, AltText: m.AltText})
			}
		}
		for _, poll := range inc.Polls {
			if slices.Contains(p.Attachments.PollIDs, poll.ID) {
				p.Polls = append(p.Polls, convertPoll(poll))
			}
		}
	}
	return p, nil
}

func convertPoll(poll wirePoll) tweet.Poll {
	out := tweet.Poll{ID: poll.ID}
	for _, o := range poll.Options {
		out.Options = append(out.Options, tweet.PollOption{Position: o.Position, Label: o.Label, Votes: o.Votes})
	}
	return out
}

func convertEntities(e *wireEntities) *tweet.Entities {
	out := &tweet.Entities{}
	for _, m := range e.Mentions {
		out.Mentions = append(out.Mentions, tweet.Mention{Start: m.Start, End: m.End, Username: m.Username})
	}
	for _, h := range e.Hashtags {
		out.Hashtags = append(out.Hashtags, tweet.Tag{Start: h.Start, End: h.End, Tag: h.Tag})
	}
	for _, c := range e.Cashtags {
		out.Cashtags = append(out.Cashtags, tweet.Tag{Start: c.Start, End: c.End, Tag: c.Tag})
	}
	for _, u := range e.URLs {
		out.URLs = append(out.URLs, tweet.URL{
			Start:       u.Start,
			End:         u.End,
			URL:         u.URL,
			ExpandedURL: u.ExpandedURL,
			DisplayURL:  u.DisplayURL,
			MediaKey:    u.MediaKey,
		})
	}
	return out
}
