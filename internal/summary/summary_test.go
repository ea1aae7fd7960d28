package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_Article(t *testing.T) {
	a := Article{Headline: "H", Author: "A", Location: "L", Content: "C"}
	assert.Equal(t, "Breaking! H, by A (L)", Notify(a))
}

func TestNotify_ShortPost(t *testing.T) {
	p := ShortPost{Username: "u", Content: "hi"}
	assert.Equal(t, "Breaking! u: hi", Notify(p))
}

func TestNotify_DefaultDigest(t *testing.T) {
	p := Page{URL: "https://example.com/post/1", Title: "A page"}
	assert.Equal(t, "example.com", p.AuthorTag())
	assert.Equal(t, "Read more from example.com...", Digest(p))
	assert.Equal(t, "Breaking! Read more from example.com...", Notify(p))

	assert.Equal(t, "unknown", Page{URL: "not a url"}.AuthorTag())
}

func TestAuthorTags(t *testing.T) {
	assert.Equal(t, "Iceburgh", Article{Author: "Iceburgh"}.AuthorTag())
	assert.Equal(t, "@Snowden", ShortPost{Username: "Snowden"}.AuthorTag())
	assert.Equal(t, "Read more from @Snowden...", DefaultDigest(ShortPost{Username: "Snowden"}))
}

func TestNotifyAll_Heterogeneous(t *testing.T) {
	items := []Summarizable{
		Article{
			Headline: "Penguins win the Stanley Cup Championship!",
			Location: "Pittsburgh, PA, USA",
			Author:   "Iceburgh",
		},
		ShortPost{Username: "Snowden", Content: "Can you hear me now?"},
		Page{URL: "https://blog.example.org/x"},
	}

	got := NotifyAll(items)
	assert.Equal(t, []string{
		"Breaking! Penguins win the Stanley Cup Championship!, by Iceburgh (Pittsburgh, PA, USA)",
		"Breaking! Snowden: Can you hear me now?",
		"Breaking! Read more from blog.example.org...",
	}, got)

	assert.Empty(t, NotifyAll(nil))
}

func TestRecommend(t *testing.T) {
	p := ShortPost{Username: "u", Content: "hi"}
	assert.Equal(t, "Did you check out this? u: hi", Recommend(p))
	assert.Equal(t, "hi", p.String())
}

func TestRegistry_Decode(t *testing.T) {
	data := []byte(`
- kind: article
  headline: H
  author: A
  location: L
  content: C
- kind: short_post
  username: u
  content: hi
  reply: true
- kind: page
  url: https://example.com/a
  title: T
`)
	reg := NewRegistry()
	records, err := reg.Decode(data)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Article{Headline: "H", Author: "A", Location: "L", Content: "C"}, records[0])
	assert.Equal(t, ShortPost{Username: "u", Content: "hi", Reply: true}, records[1])
	assert.Equal(t, []string{
		"Breaking! H, by A (L)",
		"Breaking! u: hi",
		"Breaking! Read more from example.com...",
	}, NotifyAll(records))
}

func TestRegistry_DecodeJSON(t *testing.T) {
	records, err := NewRegistry().Decode([]byte(`[{"kind":"short_post","username":"u","content":"hi"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Breaking! u: hi"}, NotifyAll(records))
}

func TestRegistry_UnknownKind(t *testing.T) {
	_, err := NewRegistry().Decode([]byte("- kind: podcast\n  host: x\n"))
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Contains(t, err.Error(), "podcast")
}

type memo struct{ By string }

func (m memo) AuthorTag() string { return m.By }

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register("memo", decodeAs[memo])
	assert.Equal(t, []string{"article", "memo", "page", "short_post"}, reg.Kinds())

	records, err := reg.Decode([]byte("- kind: memo\n  by: ops\n"))
	require.NoError(t, err)
	assert.Equal(t, "Breaking! Read more from ops...", Notify(records[0]))
}
