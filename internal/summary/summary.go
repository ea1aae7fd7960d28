// Package summary renders one-line digests and notifications for records
// of different kinds through a shared capability interface.
package summary

import (
	"fmt"
	"net/url"
)

// Summarizable is implemented by every record that can be announced.
type Summarizable interface {
	AuthorTag() string
}

// Digester lets a record override the default digest.
type Digester interface {
	Digest() string
}

// Digest returns the record's own digest when it has one, or
// "Read more from {author}..." otherwise.
func Digest(s Summarizable) string {
	if d, ok := s.(Digester); ok {
		return d.Digest()
	}
	return DefaultDigest(s)
}

// DefaultDigest is the digest used by records without an override.
func DefaultDigest(s Summarizable) string {
	return fmt.Sprintf("Read more from %s...", s.AuthorTag())
}

// Notify renders a notification line for a single record.
func Notify[T Summarizable](item T) string {
	return "Breaking! " + Digest(item)
}

// NotifyAll renders one notification per record, in order.
func NotifyAll(items []Summarizable) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = Notify(item)
	}
	return out
}

// Recommendable records can also be printed on their own.
type Recommendable interface {
	Summarizable
	fmt.Stringer
}

// Recommend renders a recommendation line for a record.
func Recommend(item Recommendable) string {
	return "Did you check out this? " + Digest(item)
}

// Article is a news article.
type Article struct {
	Headline string `yaml:"headline" json:"headline"`
	Location string `yaml:"location" json:"location"`
	Author   string `yaml:"author" json:"author"`
	Content  string `yaml:"content" json:"content"`
}

func (a Article) AuthorTag() string { return a.Author }

func (a Article) Digest() string {
	return fmt.Sprintf("%s, by %s (%s)", a.Headline, a.Author, a.Location)
}

func (a Article) String() string { return a.Headline }

// ShortPost is a short social post.
type ShortPost struct {
	Username string `yaml:"username" json:"username"`
	Content  string `yaml:"content" json:"content"`
	Reply    bool   `yaml:"reply" json:"reply"`
	Repost   bool   `yaml:"repost" json:"repost"`
}

func (p ShortPost) AuthorTag() string { return "@" + p.Username }

func (p ShortPost) Digest() string {
	return fmt.Sprintf("%s: %s", p.Username, p.Content)
}

func (p ShortPost) String() string { return p.Content }

// Page is an archived web page. It has no digest of its own.
type Page struct {
	URL     string `yaml:"url" json:"url"`
	Title   string `yaml:"title" json:"title"`
	Excerpt string `yaml:"excerpt" json:"excerpt"`
}

// AuthorTag is the page's host, or "unknown" if the URL has none.
func (p Page) AuthorTag() string {
	u, err := url.Parse(p.URL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
