package tweet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		in  string
		out string
	}{
		{"https://twitter.com/Mappletons/status/1292845757297557505", "1292845757297557505"},
		{"https://twitter.com/Mappletons/status/1292845757297557505/", "1292845757297557505"},
		{"https://twitter.com/Mappletons/status/1292845757297557505?s=20", "1292845757297557505"},
		{"https://mobile.twitter.com/kbravh/status/1303753964291338240#anchor", "1303753964291338240"},
		{"  https://twitter.com/kbravh/status/1303753964291338240  ", "1303753964291338240"},
	}
	for _, fix := range fixtures {
		id, err := ParseID(fix.in)
		assert.NoError(err, fix.in)
		assert.Equal(fix.out, id)
	}

	for _, bad := range []string{"", "not a url", "1292845757297557505", "https://twitter.com/"} {
		_, err := ParseID(bad)
		assert.Error(err, bad)
		assert.True(errors.Is(err, ErrMalformedInput), bad)
	}
}

func TestIsTweetURL(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsTweetURL("https://twitter.com/kbravh/status/1303753964291338240"))
	assert.True(IsTweetURL("https://mobile.twitter.com/kbravh/status/1303753964291338240"))
	assert.True(IsTweetURL("http://twitter.com/kbravh/status/1303753964291338240?s=20"))
	assert.False(IsTweetURL("https://twitter.com/kbravh"))
	assert.False(IsTweetURL("check out https://twitter.com/kbravh/status/1"))
	assert.False(IsTweetURL("https://example.com/kbravh/status/1"))
}

func TestAvatarFilename(t *testing.T) {
	assert := assert.New(t)

	a := Author{ID: "1143604512999034881", AvatarURL: "https://pbs.twimg.com/profile_images/1163169960505610240/R8BoDqiT_normal.jpg"}
	assert.Equal("1143604512999034881-R8BoDqiT_normal.jpg", a.AvatarFilename())

	assert.Equal("42-avatar.jpg", Author{ID: "42"}.AvatarFilename())
}

func TestPostReferences(t *testing.T) {
	assert := assert.New(t)

	p := &Post{
		ID:             "3",
		ConversationID: "1",
		ReferencedPosts: []ReferencedPost{
			{Type: ReferenceQuoted, ID: "9"},
			{Type: ReferenceRepliedTo, ID: "2"},
		},
	}
	assert.False(p.IsRoot())
	ref, ok := p.Reference(ReferenceRepliedTo)
	assert.True(ok)
	assert.Equal("2", ref.ID)
	assert.Len(p.References(ReferenceQuoted), 1)
	_, ok = p.Reference(ReferenceRetweeted)
	assert.False(ok)

	assert.True((&Post{ID: "1"}).IsRoot())
	assert.Equal("https://twitter.com//status/3", p.Permalink())
}
