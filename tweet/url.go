package tweet

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

var tweetURLRegex = regexp.MustCompile(`(?i)^t?https?://(mobile\.)?twitter\.com/\w+/status/\w+`)

// IsTweetURL reports whether text looks like a link to a single tweet. The
// match is anchored at the start of text, like a pasted link.
func IsTweetURL(text string) bool {
	return tweetURLRegex.MatchString(strings.TrimSpace(text))
}

// ParseID extracts the tweet ID from a tweet URL: the last non-empty path
// segment. Query strings and fragments are ignored.
func ParseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	clean, err := purell.NormalizeURLString(raw, purell.FlagsSafe|purell.FlagRemoveFragment|purell.FlagRemoveDuplicateSlashes)
	if err != nil {
		return "", fmt.Errorf("%w: not a URL: %q", ErrMalformedInput, raw)
	}
	u, err := url.Parse(clean)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: not a URL: %q", ErrMalformedInput, raw)
	}
	var id string
	for _, piece := range strings.Split(u.Path, "/") {
		if piece != "" {
			id = piece
		}
	}
	if id == "" {
		return "", fmt.Errorf("%w: URL does not seem to be a tweet: %q", ErrMalformedInput, raw)
	}
	return id, nil
}
