package markdown

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var converter = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ToHTML converts a rendered note to HTML. A leading frontmatter block is
// dropped; poll tables render as GFM tables.
func ToHTML(md string) (string, error) {
	body := []byte(md)
	if strings.HasPrefix(md, "---") {
		var meta map[string]any
		rest, err := frontmatter.Parse(strings.NewReader(md), &meta)
		if err == nil {
			body = rest
		}
	}
	var buf bytes.Buffer
	if err := converter.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
