package filename

import (
	"regexp"
	"strings"

	"github.com/ttm-go/tweetmd/richtext"
)

// MaxBytes leaves room for a ".md" suffix under the common 255 byte limit.
const MaxBytes = 252

// Alter is the URI transform applied to a sanitized name.
type Alter int

const (
	AlterNone Alter = iota
	AlterEncode
	AlterDecode
)

// Kind selects between note file names and folder paths. Folder paths keep
// their slashes.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

var (
	illegalRe         = regexp.MustCompile(`[?<>\\:*|"]`)
	controlRe         = regexp.MustCompile(`[\x00-\x1f\x{80}-\x{9f}]`)
	reservedRe        = regexp.MustCompile(`^\.+$`)
	windowsReservedRe = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailingRe = regexp.MustCompile(`[. ]+$`)
)

// Sanitize strips characters that are illegal in file names on common
// platforms, applies alter, and truncates the result to MaxBytes without
// splitting a character. The URI transform runs first, so decoded escapes
// are stripped like any other input. For directories the reserved and
// trailing rules apply to every "/" separated segment.
//
// With AlterNone and AlterDecode the steps are repeated until the name no
// longer changes, so sanitizing a sanitized name is a no-op. AlterEncode
// is not idempotent: existing escapes are encoded again.
func Sanitize(name string, alter Alter, kind Kind) string {
	if alter == AlterEncode {
		name = EncodeURI(name)
	}
	// every pass either shrinks the name or leaves it alone
	for {
		next := name
		if alter == AlterDecode {
			next = DecodeURI(next)
		}
		next = sanitizeOnce(next, kind)
		if next == name {
			return next
		}
		name = next
	}
}

func sanitizeOnce(name string, kind Kind) string {
	if kind == KindFile {
		name = strings.ReplaceAll(name, "/", "")
	}
	name = illegalRe.ReplaceAllString(name, "")
	name = controlRe.ReplaceAllString(name, "")

	if kind == KindFile {
		name = sanitizeSegment(name)
	} else {
		var segs []string
		for _, seg := range strings.Split(name, "/") {
			if seg = sanitizeSegment(seg); seg != "" {
				segs = append(segs, seg)
			}
		}
		name = strings.Join(segs, "/")
	}
	return richtext.TruncateBytes(name, MaxBytes)
}

func sanitizeSegment(seg string) string {
	seg = reservedRe.ReplaceAllString(seg, "")
	seg = windowsReservedRe.ReplaceAllString(seg, "")
	return windowsTrailingRe.ReplaceAllString(seg, "")
}
