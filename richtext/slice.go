// Package richtext operates on post text by codepoint: slicing, byte-budget
// truncation that never splits a character, and entity substitution.
package richtext

import "unicode/utf8"

// Len returns the number of codepoints in text.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}

// Slice returns the codepoints of text in [start, end). Bounds are clamped to
// the text, and reversed bounds are swapped, so Slice never panics.
func Slice(text string, start, end int) string {
	if start > end {
		start, end = end, start
	}
	return string(sliceRunes([]rune(text), start, end))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sliceRunes(rs []rune, start, end int) []rune {
	start = clamp(start, 0, len(rs))
	end = clamp(end, start, len(rs))
	return rs[start:end]
}

// TruncateBytes returns the longest codepoint prefix of text whose UTF-8
// encoding fits in maxBytes. A negative budget is treated as zero.
func TruncateBytes(text string, maxBytes int) string {
	if maxBytes < 0 {
		maxBytes = 0
	}
	if len(text) <= maxBytes {
		return text
	}
	rs := []rune(text)
	budget := maxBytes
	if budget > len(rs) {
		budget = len(rs)
	}
	for budget > 0 {
		s := string(rs[:budget])
		if len(s) <= maxBytes {
			return s
		}
		budget--
	}
	return ""
}
