// Package filename renders note file names and folder paths from user
// templates such as "[[handle]] - [[date:YYYY-MM-DD]]".
package filename

import (
	"regexp"
	"strings"

	"github.com/ttm-go/tweetmd/datefmt"
	"github.com/ttm-go/tweetmd/tweet"
)

const DefaultTemplate = "[[handle]] - [[id]]"

var (
	nameRe   = regexp.MustCompile(`(?i)\[\[name\]\]`)
	handleRe = regexp.MustCompile(`(?i)\[\[handle\]\]`)
	idRe     = regexp.MustCompile(`(?i)\[\[id\]\]`)
	textRe   = regexp.MustCompile(`(?i)\[\[text\]\]`)
	dateRe   = regexp.MustCompile(`(?i)\[\[(date[:\w-]*)\]\]`)
	mdExtRe  = regexp.MustCompile(`\.md$`)
)

// Render fills template from post. Name, handle, id, and text placeholders
// are replaced everywhere; only the first date placeholder is resolved, with
// its inline format and locale taking precedence over dateOpts. File names
// get exactly one ".md" suffix; directories are URI-decoded and keep their slashes.
// An empty directory template is the vault root. Rendering a rendered name
// again returns it unchanged.
func Render(template string, post *tweet.Post, dateOpts datefmt.Options, kind Kind) string {
	if template == "" && kind == KindFile {
		template = DefaultTemplate
	}
	user := post.User()

	out := template
	if kind == KindFile {
		out = mdExtRe.ReplaceAllLiteralString(out, "")
	}
	out = nameRe.ReplaceAllLiteralString(out, user.Name)
	out = handleRe.ReplaceAllLiteralString(out, user.Handle)
	out = idRe.ReplaceAllLiteralString(out, post.ID)
	out = textRe.ReplaceAllLiteralString(out, post.Text)

	if loc := dateRe.FindStringSubmatchIndex(out); loc != nil {
		parts := strings.Split(out[loc[2]:loc[3]], ":")
		opts := dateOpts
		if len(parts) > 1 && parts[1] != "" {
			opts.Format = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			opts.Locale = parts[2]
		}
		out = out[:loc[0]] + datefmt.Format(post.CreatedAt, opts) + out[loc[1]:]
	}

	if kind == KindDirectory {
		return Sanitize(out, AlterDecode, KindDirectory)
	}
	return Sanitize(out, AlterNone, KindFile) + ".md"
}
