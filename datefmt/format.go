// Package datefmt formats timestamps with moment.js style format strings,
// the syntax users already write in their filename templates and settings.
package datefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goodsign/monday"
)

const (
	DefaultFormat = "YYYY-MM-DD"
	DefaultLocale = "en"
)

type Options struct {
	Format string
	Locale string
	// Location defaults to UTC.
	Location *time.Location
}

var (
	longDateTokens = regexp.MustCompile(`\[[^\]]*\]|LTS|LT|LL?L?L?|l{1,4}`)
	shortForms     = regexp.MustCompile(`MMMM|MM|DD|dddd`)
)

// tokens is ordered so that longer tokens win over their prefixes.
var tokens = []string{
	"YYYY", "YY", "Q",
	"MMMM", "MMM", "MM", "Mo", "M",
	"DDDD", "DDD", "Do", "DD", "D",
	"dddd", "ddd", "dd", "do", "d", "E",
	"HH", "H", "hh", "h", "kk", "k",
	"mm", "m", "ss", "s", "SSS", "SS", "S",
	"A", "a", "ZZ", "Z", "X", "x",
}

// Format renders t according to opts. Text in square brackets is copied
// verbatim and characters that are not tokens pass through unchanged.
func Format(t time.Time, opts Options) string {
	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	l := lookupLocale(opts.Locale)
	t = t.In(loc)

	format = expandLongDates(l, format)

	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i:], ']'); end > 0 {
				b.WriteString(format[i+1 : i+end])
				i += end + 1
				continue
			}
		}
		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(format[i:], tok) {
				b.WriteString(l.render(t, tok))
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(format[i:])
			b.WriteString(format[i : i+size])
			i += size
		}
	}
	return b.String()
}

func expandLongDates(l *locale, format string) string {
	return longDateTokens.ReplaceAllStringFunc(format, func(tok string) string {
		if tok[0] == '[' {
			return tok
		}
		if tok[0] == 'l' {
			long := l.long[strings.Repeat("L", len(tok))]
			return shortForms.ReplaceAllStringFunc(long, func(s string) string { return s[1:] })
		}
		return l.long[tok]
	})
}

func pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func (l *locale) render(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return pad(t.Year(), 4)
	case "YY":
		return pad(t.Year()%100, 2)
	case "Q":
		return strconv.Itoa((int(t.Month())-1)/3 + 1)
	case "MMMM":
		return monday.Format(t, "January", l.names)
	case "MMM":
		return monday.Format(t, "Jan", l.names)
	case "MM":
		return pad(int(t.Month()), 2)
	case "Mo":
		return l.ordinal(int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DDDD":
		return pad(t.YearDay(), 3)
	case "DDD":
		return strconv.Itoa(t.YearDay())
	case "Do":
		return l.ordinal(t.Day())
	case "DD":
		return pad(t.Day(), 2)
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return monday.Format(t, "Monday", l.names)
	case "ddd":
		return monday.Format(t, "Mon", l.names)
	case "dd":
		day := []rune(monday.Format(t, "Monday", l.names))
		if len(day) > 2 {
			day = day[:2]
		}
		if !l.titleMin {
			return strings.ToLower(string(day))
		}
		return string(day)
	case "do":
		return l.ordinal(int(t.Weekday()))
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "E":
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd)
	case "HH":
		return pad(t.Hour(), 2)
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return pad(hour12(t), 2)
	case "h":
		return strconv.Itoa(hour12(t))
	case "kk":
		return pad(hour24(t), 2)
	case "k":
		return strconv.Itoa(hour24(t))
	case "mm":
		return pad(t.Minute(), 2)
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return pad(t.Second(), 2)
	case "s":
		return strconv.Itoa(t.Second())
	case "SSS":
		return pad(t.Nanosecond()/int(time.Millisecond), 3)
	case "SS":
		return pad(t.Nanosecond()/int(10*time.Millisecond), 2)
	case "S":
		return strconv.Itoa(t.Nanosecond() / int(100*time.Millisecond))
	case "A":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "a":
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	case "ZZ":
		return t.Format("-0700")
	case "Z":
		return t.Format("-07:00")
	case "X":
		return strconv.FormatInt(t.Unix(), 10)
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return tok
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

func hour24(t time.Time) int {
	if t.Hour() == 0 {
		return 24
	}
	return t.Hour()
}
