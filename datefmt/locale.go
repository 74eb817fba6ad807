package datefmt

import (
	"strconv"
	"strings"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

type locale struct {
	tag     language.Tag
	names   monday.Locale
	long    map[string]string
	ordinal func(n int) string
	// capitalized day abbreviations ("Su" rather than "su") for the dd token
	titleMin bool
}

func suffixed(suffix string) func(int) string {
	return func(n int) string { return strconv.Itoa(n) + suffix }
}

func englishOrdinal(n int) string {
	s := strconv.Itoa(n)
	if n%100 >= 11 && n%100 <= 13 {
		return s + "th"
	}
	switch n % 10 {
	case 1:
		return s + "st"
	case 2:
		return s + "nd"
	case 3:
		return s + "rd"
	}
	return s + "th"
}

func frenchOrdinal(n int) string {
	if n == 1 {
		return "1er"
	}
	return strconv.Itoa(n)
}

func dutchOrdinal(n int) string {
	if n == 1 || n == 8 || n >= 20 {
		return strconv.Itoa(n) + "ste"
	}
	return strconv.Itoa(n) + "de"
}

func europeanLong(date, dateTimeSep string) map[string]string {
	return map[string]string{
		"LT":   "HH:mm",
		"LTS":  "HH:mm:ss",
		"L":    "DD/MM/YYYY",
		"LL":   date,
		"LLL":  date + dateTimeSep + "HH:mm",
		"LLLL": "dddd" + ", " + date + dateTimeSep + "HH:mm",
	}
}

func withLong(base map[string]string, overrides map[string]string) map[string]string {
	for k, v := range overrides {
		base[k] = v
	}
	return base
}

// locales lists every supported locale; the first entry is the fallback.
var locales = []locale{
	{
		tag:   language.English,
		names: monday.LocaleEnUS,
		long: map[string]string{
			"LT":   "h:mm A",
			"LTS":  "h:mm:ss A",
			"L":    "MM/DD/YYYY",
			"LL":   "MMMM D, YYYY",
			"LLL":  "MMMM D, YYYY h:mm A",
			"LLLL": "dddd, MMMM D, YYYY h:mm A",
		},
		ordinal:  englishOrdinal,
		titleMin: true,
	},
	{
		tag:      language.BritishEnglish,
		names:    monday.LocaleEnGB,
		long:     europeanLong("D MMMM YYYY", " "),
		ordinal:  englishOrdinal,
		titleMin: true,
	},
	{
		tag:   language.Spanish,
		names: monday.LocaleEsES,
		long: withLong(europeanLong("D [de] MMMM [de] YYYY", " "), map[string]string{
			"LT":   "H:mm",
			"LTS":  "H:mm:ss",
			"LLL":  "D [de] MMMM [de] YYYY H:mm",
			"LLLL": "dddd, D [de] MMMM [de] YYYY H:mm",
		}),
		ordinal: suffixed("º"),
	},
	{
		tag:   language.French,
		names: monday.LocaleFrFR,
		long: withLong(europeanLong("D MMMM YYYY", " "), map[string]string{
			"LLLL": "dddd D MMMM YYYY HH:mm",
		}),
		ordinal: frenchOrdinal,
	},
	{
		tag:   language.German,
		names: monday.LocaleDeDE,
		long: withLong(europeanLong("D. MMMM YYYY", " "), map[string]string{
			"L": "DD.MM.YYYY",
		}),
		ordinal: suffixed("."),
	},
	{
		tag:   language.Italian,
		names: monday.LocaleItIT,
		long: withLong(europeanLong("D MMMM YYYY", " "), map[string]string{
			"LLLL": "dddd D MMMM YYYY HH:mm",
		}),
		ordinal: suffixed("º"),
	},
	{
		tag:     language.Portuguese,
		names:   monday.LocalePtPT,
		long:    europeanLong("D [de] MMMM [de] YYYY", " "),
		ordinal: suffixed("º"),
	},
	{
		tag:     language.BrazilianPortuguese,
		names:   monday.LocalePtBR,
		long:    europeanLong("D [de] MMMM [de] YYYY", " [às] "),
		ordinal: suffixed("º"),
	},
	{
		tag:   language.Dutch,
		names: monday.LocaleNlNL,
		long: withLong(europeanLong("D MMMM YYYY", " "), map[string]string{
			"L":    "DD-MM-YYYY",
			"LLLL": "dddd D MMMM YYYY HH:mm",
		}),
		ordinal: dutchOrdinal,
	},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// lookupLocale resolves a user supplied locale name ("es", "en-gb", "pt_BR")
// to the closest supported locale. Unknown names resolve to English.
func lookupLocale(name string) *locale {
	name = strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
	if name == "" {
		return &locales[0]
	}
	tag, err := language.Parse(name)
	if err != nil {
		return &locales[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return &locales[0]
	}
	return &locales[idx]
}

// Supported reports whether name resolves to a locale other than the
// English fallback, or is English itself.
func Supported(name string) bool {
	name = strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
	tag, err := language.Parse(name)
	if err != nil {
		return false
	}
	_, _, conf := matcher.Match(tag)
	return conf != language.No
}
