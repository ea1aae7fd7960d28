// Package wordfreq counts whitespace-separated tokens.
//
// Tokens are compared byte for byte: no case folding, no punctuation
// stripping.
package wordfreq

import (
	"sort"
	"strings"

	"crusty-text/internal/textbuf"
)

// Table maps a token to the number of times it occurred.
type Table map[string]int

// Entry is one row of a Table.
type Entry struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Count tokenizes text on runs of whitespace and counts each token.
func Count(text string) Table {
	t := make(Table)
	t.Add(text)
	return t
}

// CountView counts the tokens inside a view.
func CountView(v textbuf.View) Table {
	return Count(v.String())
}

// CountBuffer counts the tokens in b while holding a read lease on it.
func CountBuffer(b *textbuf.Buffer) Table {
	v := b.Borrow()
	defer v.Release()
	return CountView(v)
}

// Add counts the tokens of text into t.
func (t Table) Add(text string) {
	for _, word := range strings.Fields(text) {
		t[word]++
	}
}

// Merge adds every count from other into t.
func (t Table) Merge(other Table) {
	for word, n := range other {
		t[word] += n
	}
}

// Total returns the number of tokens counted.
func (t Table) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// Top returns up to n entries ordered by count, highest first, with ties
// broken by token. n <= 0 returns every entry.
func (t Table) Top(n int) []Entry {
	entries := make([]Entry, 0, len(t))
	for word, c := range t {
		entries = append(entries, Entry{Token: word, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Token < entries[j].Token
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
