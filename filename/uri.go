package filename

import (
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// uriUnescaped are the bytes encodeURI leaves alone: unreserved characters
// plus the reserved URI delimiters.
func uriUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'();/?:@&=+$,#", c) >= 0
}

// EncodeURI percent-encodes every byte outside the URI character set,
// matching the browser encodeURI function. Existing escapes are encoded
// again ("%20" becomes "%2520").
func EncodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// DecodeURI reverses EncodeURI. Escapes of the reserved delimiters
// (";/?:@&=+$,#") are kept as-is, like the browser decodeURI. Input with a
// malformed escape or an escape sequence that is not valid UTF-8 is returned
// unchanged.
func DecodeURI(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}
		// collect the full run of escaped bytes making up one codepoint
		var buf []byte
		j := i
		for {
			if j+3 > len(s) {
				return s
			}
			hi, ok1 := unhex(s[j+1])
			lo, ok2 := unhex(s[j+2])
			if !ok1 || !ok2 {
				return s
			}
			buf = append(buf, hi<<4|lo)
			j += 3
			if utf8.FullRune(buf) {
				break
			}
			if j >= len(s) || s[j] != '%' {
				return s
			}
		}
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			return s
		}
		if r < utf8.RuneSelf && strings.ContainsRune(";/?:@&=+$,#", r) {
			b.WriteString(s[i:j])
		} else {
			b.Write(buf)
		}
		i = j
	}
	return b.String()
}
