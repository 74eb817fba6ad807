package filename

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/ttm-go/tweetmd/datefmt"
	"github.com/ttm-go/tweetmd/tweet/tweettest"
)

var isoDate = datefmt.Options{Locale: "en", Format: "YYYY-MM-DD"}

func TestRender(t *testing.T) {
	assert := assert.New(t)
	post := tweettest.ImagePost()

	fixtures := []struct {
		template string
		opts     datefmt.Options
		out      string
	}{
		{"", isoDate, "Mappletons - 1292845757297557505.md"},
		{`?<>hello:*|"`, isoDate, "hello.md"},
		{"this/is/a/file", isoDate, "thisisafile.md"},
		{"[[handle]] - [[id]] - [[name]]", isoDate, "Mappletons - 1292845757297557505 - Maggie Appleton 🧭.md"},
		{"[[handle]] - [[id]] - [[name]].md", isoDate, "Mappletons - 1292845757297557505 - Maggie Appleton 🧭.md"},
		{"[[HANDLE]] - [[Id]]", isoDate, "Mappletons - 1292845757297557505.md"},
		{"[[id]] - [[id]]", isoDate, "1292845757297557505 - 1292845757297557505.md"},
		{"[[handle]] - [[date]]", isoDate, "Mappletons - 2020-08-10.md"},
		{"[[handle]] - [[date]]", datefmt.Options{Locale: "es", Format: "LL"}, "Mappletons - 10 de agosto de 2020.md"},
		{"[[handle]] - [[date:LL]]", datefmt.Options{Locale: "en", Format: "YYYY-DD-MM"}, "Mappletons - August 10, 2020.md"},
		{"[[handle]] - [[date:LL:es]]", datefmt.Options{Locale: "en", Format: "YYYY-DD-MM"}, "Mappletons - 10 de agosto de 2020.md"},
		{"[[handle]] - [[date::es]]", datefmt.Options{Locale: "en", Format: "LL"}, "Mappletons - 10 de agosto de 2020.md"},
		{"[[date - [[handle]]", isoDate, "[[date - Mappletons.md"},
		{"[[date]] [[date]]", isoDate, "2020-08-10 [[date]].md"},
		{"[[handle]] - [[DATE:YYYY]]", isoDate, "Mappletons - 2020.md"},
		{"[[Date]]", datefmt.Options{Locale: "en", Format: "LL"}, "August 10, 2020.md"},
		{"CON/", isoDate, ".md"},
		{"notes.md.", isoDate, "notes.md.md"},
	}
	for _, fix := range fixtures {
		assert.Equal(fix.out, Render(fix.template, post, fix.opts, KindFile), fix.template)
	}
}

func TestRenderText(t *testing.T) {
	assert := assert.New(t)
	post := tweettest.ImagePost()

	out := Render("[[text]]", post, isoDate, KindFile)
	assert.Equal("Dirt is matter out of place - the loveliest definition of dirt you could hope for from anthropologist Mary Douglas in her classic 1966 book Purity and DangerHair on my head Clean. Hair on the table Dirty!Illustrating &amp; expanding on her main ideas h.md", out)
	assert.LessOrEqual(len(strings.TrimSuffix(out, ".md")), MaxBytes)
}

func TestRenderDirectory(t *testing.T) {
	assert := assert.New(t)
	post := tweettest.ImagePost()

	assert.Equal("this/is/a/directory", Render("this/is/a/directory", post, isoDate, KindDirectory))
	assert.Equal("Mappletons - 1292845757297557505 - Maggie Appleton 🧭", Render("[[handle]] - [[id]] - [[name]]", post, isoDate, KindDirectory))
	assert.Equal("assets/my tweets", Render("assets/my%20tweets", post, isoDate, KindDirectory))
	assert.Equal("tweets/Mappletons/2020", Render("tweets/[[handle]]/[[date:YYYY]]", post, isoDate, KindDirectory))
	assert.Equal("notes/abc", Render("notes/a%22b%0Ac", post, isoDate, KindDirectory))
	assert.Equal("a/b", Render("a/CON/b", post, isoDate, KindDirectory))
	assert.Equal("a/b", Render("./a/../b/", post, isoDate, KindDirectory))
	assert.Equal("notes.md", Render("notes.md", post, isoDate, KindDirectory))
	assert.Equal("", Render("", post, isoDate, KindDirectory))
}

func TestSanitize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("assets/tweets", Sanitize("assets/tweets", AlterEncode, KindDirectory))
	assert.Equal("filename.md", Sanitize("file/name.md", AlterEncode, KindFile))
	assert.Equal("", Sanitize("...", AlterNone, KindFile))
	assert.Equal("", Sanitize("CON", AlterNone, KindFile))
	assert.Equal("", Sanitize("lpt1.txt", AlterNone, KindFile))
	assert.Equal("console", Sanitize("console", AlterNone, KindFile))
	assert.Equal("trailing", Sanitize("trailing. . ", AlterNone, KindFile))
	assert.Equal("tabsand nbsp", Sanitize("tabs\tand\u0085 nbsp", AlterNone, KindFile))
	assert.Equal("my%20assets/Maggie%20Appleton%20%F0%9F%A7%AD", Sanitize("my assets/Maggie Appleton 🧭", AlterEncode, KindDirectory))
	assert.Equal("my assets", Sanitize("my%20assets", AlterDecode, KindDirectory))
	assert.Equal("", Sanitize("con/", AlterNone, KindFile))
	assert.Equal("", Sanitize("con/", AlterNone, KindDirectory))
	assert.Equal("", Sanitize("con ", AlterNone, KindFile))
	assert.Equal("ab", Sanitize("a%22b", AlterDecode, KindFile))
	assert.Equal("a%2Fb", Sanitize("a%2Fb", AlterDecode, KindDirectory))
}

func TestSanitizeProperties(t *testing.T) {
	assert := assert.New(t)
	faker := gofakeit.New(1277645969975377923)

	for i := 0; i < 300; i++ {
		name := faker.Sentence(faker.Number(1, 80)) + faker.Emoji() + `?<>:*|"/` + faker.Emoji()
		out := Sanitize(name, AlterNone, KindFile)
		assert.LessOrEqual(len(out), MaxBytes)
		assert.False(strings.ContainsAny(out, `?<>\:*|"/`), out)
		assert.False(strings.HasSuffix(out, " ") || strings.HasSuffix(out, "."), out)
		assert.Equal(out, Sanitize(out, AlterNone, KindFile), "idempotent")
	}
}

// randomTemplate strings together pieces that exercise the URI, reserved
// name, and trailing character rules.
func randomTemplate(faker *gofakeit.Faker) string {
	pieces := []string{
		"a", "B", " ", ".", "/", "..", "é", "🧭", `"`, "?", ":", "\t",
		"%22", "%0A", "%25", "%2", "%20", "%2F", "%C3%A9",
		"con", "CON", "lpt1", "nul.txt", ".md",
	}
	var b strings.Builder
	n := faker.Number(0, 24)
	for i := 0; i < n; i++ {
		b.WriteString(pieces[faker.Number(0, len(pieces)-1)])
	}
	return b.String()
}

func TestRenderIdempotent(t *testing.T) {
	assert := assert.New(t)
	faker := gofakeit.New(1292845757297557505)
	post := tweettest.ImagePost()

	for i := 0; i < 1000; i++ {
		tmpl := randomTemplate(faker)

		file := Render(tmpl, post, isoDate, KindFile)
		assert.Equal(file, Render(file, post, isoDate, KindFile), tmpl)
		assert.True(strings.HasSuffix(file, ".md"), tmpl)
		assert.False(strings.ContainsAny(strings.TrimSuffix(file, ".md"), "?<>\\:*|\"/\n\t"), tmpl)

		dir := Render(tmpl, post, isoDate, KindDirectory)
		assert.Equal(dir, Render(dir, post, isoDate, KindDirectory), tmpl)
		assert.False(strings.ContainsAny(dir, "?<>\\:*|\"\n\t"), tmpl)
		if dir != "" {
			for _, seg := range strings.Split(dir, "/") {
				assert.NotEmpty(seg, tmpl)
				assert.False(reservedRe.MatchString(seg) || windowsReservedRe.MatchString(seg), tmpl)
				assert.False(strings.HasSuffix(seg, " ") || strings.HasSuffix(seg, "."), tmpl)
			}
		}

		for _, kind := range []Kind{KindFile, KindDirectory} {
			for _, alter := range []Alter{AlterNone, AlterDecode} {
				out := Sanitize(tmpl, alter, kind)
				assert.Equal(out, Sanitize(out, alter, kind), tmpl)
				assert.LessOrEqual(len(out), MaxBytes)
			}
		}
	}
}

func TestURIHelpers(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("a%20b/c?d=e#f", EncodeURI("a b/c?d=e#f"))
	assert.Equal("%25", EncodeURI("%"))
	assert.Equal("%C3%A9", EncodeURI("é"))

	assert.Equal("a b", DecodeURI("a%20b"))
	assert.Equal("é🧭", DecodeURI("%C3%A9%F0%9F%A7%AD"))
	assert.Equal("%2F%3f", DecodeURI("%2F%3f"))
	assert.Equal("100%", DecodeURI("100%"))
	assert.Equal("%zz", DecodeURI("%zz"))
	assert.Equal("%C3", DecodeURI("%C3"))
	assert.Equal("%FF", DecodeURI("%FF"))

	for _, s := range []string{"Maggie Appleton 🧭", "a/b c", "¿qué?"} {
		assert.Equal(s, DecodeURI(EncodeURI(s)))
	}
}
