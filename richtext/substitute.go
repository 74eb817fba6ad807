package richtext

import (
	"sort"
	"strings"

	"github.com/ttm-go/tweetmd/tweet"
)

type SubstituteOptions struct {
	// EscapeHashtags writes "\#" so note apps do not read hashtags as tags.
	EscapeHashtags bool
}

// splice is one point entity with its precomputed replacement text.
type splice struct {
	start, end  int
	replacement []rune
}

func MentionLink(username string) string {
	return "[@" + username + "](https://twitter.com/" + username + ")"
}

func HashtagLink(tag string, escape bool) string {
	prefix := "#"
	if escape {
		prefix = `\#`
	}
	return "[" + prefix + tag + "](https://twitter.com/hashtag/" + tag + ")"
}

func CashtagLink(tag string) string {
	return "[$" + tag + "](https://twitter.com/search?q=%24" + tag + ")"
}

func collectSplices(opts SubstituteOptions, ents *tweet.Entities) []splice {
	var out []splice
	for _, m := range ents.Mentions {
		out = append(out, splice{m.Start, m.End, []rune(MentionLink(m.Username))})
	}
	for _, h := range ents.Hashtags {
		out = append(out, splice{h.Start, h.End, []rune(HashtagLink(h.Tag, opts.EscapeHashtags))})
	}
	for _, c := range ents.Cashtags {
		out = append(out, splice{c.Start, c.End, []rune(CashtagLink(c.Tag))})
	}
	return out
}

// spliceRunes returns a new array with rs[start:end] replaced. The input is
// never modified.
func spliceRunes(rs []rune, start, end int, repl []rune) []rune {
	start = clamp(start, 0, len(rs))
	end = clamp(end, start, len(rs))
	out := make([]rune, 0, len(rs)-(end-start)+len(repl))
	out = append(out, rs[:start]...)
	out = append(out, repl...)
	out = append(out, rs[end:]...)
	return out
}

// Substitute replaces the mention, hashtag, cashtag, and URL spans of text
// with Markdown links. Point entities are applied from the end of the text
// backwards so earlier offsets stay valid. URL entities are applied last, by
// literal token, because the short URL is stable and may appear several times.
func Substitute(opts SubstituteOptions, ents *tweet.Entities, text string) string {
	if ents.Empty() {
		return text
	}

	splices := collectSplices(opts, ents)
	sort.SliceStable(splices, func(i, j int) bool {
		return splices[i].start > splices[j].start
	})

	rs := []rune(text)
	for _, s := range splices {
		rs = spliceRunes(rs, s.start, s.end, s.replacement)
	}
	return replaceURLs(ents.URLs, string(rs))
}

// SubstituteAscending produces the same output as Substitute, walking point
// entities front to back and shifting each offset by the length change of
// the splices before it.
func SubstituteAscending(opts SubstituteOptions, ents *tweet.Entities, text string) string {
	if ents.Empty() {
		return text
	}

	splices := collectSplices(opts, ents)
	sort.SliceStable(splices, func(i, j int) bool {
		return splices[i].start < splices[j].start
	})

	rs := []rune(text)
	delta := 0
	for _, s := range splices {
		start := clamp(s.start, 0, len(rs)-delta) + delta
		end := clamp(s.end, 0, len(rs)-delta) + delta
		if end < start {
			end = start
		}
		before := len(rs)
		rs = spliceRunes(rs, start, end, s.replacement)
		delta += len(rs) - before
	}
	return replaceURLs(ents.URLs, string(rs))
}

func replaceURLs(urls []tweet.URL, text string) string {
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if seen[u.ExpandedURL] || u.URL == "" {
			continue
		}
		seen[u.ExpandedURL] = true
		text = strings.ReplaceAll(text, u.URL, "["+u.DisplayURL+"]("+u.ExpandedURL+")")
	}
	return text
}
