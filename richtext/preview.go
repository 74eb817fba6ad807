package richtext

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Preview shortens text to at most maxGraphemes user-perceived characters,
// appending an ellipsis when anything was cut. Combined emoji and accented
// letters are kept whole. Newlines are flattened to spaces so the result is
// safe for a log line.
func Preview(text string, maxGraphemes int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxGraphemes <= 0 {
		return ""
	}

	var b strings.Builder
	gr := uniseg.NewGraphemes(text)
	n := 0
	for gr.Next() {
		if n == maxGraphemes {
			b.WriteString("…")
			return b.String()
		}
		b.WriteString(gr.Str())
		n++
	}
	return b.String()
}
