package textbuf

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"unicode/utf8"
)

type lease struct {
	buf      *Buffer
	released atomic.Bool
}

func (l *lease) release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.buf.mu.Lock()
	l.buf.leases--
	l.buf.mu.Unlock()
}

// View is a read-only window into a Buffer.
//
// A view stays readable while every lease it depends on is held. Views
// derived from a view (LastToken, Longer) share its leases, so releasing
// any of them ends all of them. The zero View is empty and always valid.
type View struct {
	buf        *Buffer
	start, end int
	leases     []*lease
}

// Len returns the view length in bytes.
func (v View) Len() int { return v.end - v.start }

// Start returns the view's offset into its buffer.
func (v View) Start() int { return v.start }

// End returns the offset one past the view's last byte.
func (v View) End() int { return v.end }

// Valid reports whether none of the view's leases have been released.
func (v View) Valid() bool {
	for _, l := range v.leases {
		if l.released.Load() {
			return false
		}
	}
	return true
}

// Bytes returns a copy of the viewed bytes. It panics if the view has
// been released.
func (v View) Bytes() []byte {
	var out []byte
	v.read(func(p []byte) {
		out = append([]byte(nil), p...)
	})
	return out
}

// String returns a copy of the viewed text.
func (v View) String() string {
	var s string
	v.read(func(p []byte) {
		s = string(p)
	})
	return s
}

// read calls fn with the viewed bytes while holding the buffer lock, so a
// release and mutation on another goroutine cannot interleave. p aliases
// the buffer and must not escape fn or be modified.
func (v View) read(fn func(p []byte)) {
	if v.buf == nil {
		if !v.Valid() {
			panic(ErrViewReleased)
		}
		fn(nil)
		return
	}
	v.buf.mu.Lock()
	defer v.buf.mu.Unlock()
	if !v.Valid() {
		panic(ErrViewReleased)
	}
	fn(v.buf.data[v.start:v.end:v.end])
}

// Release gives back the view's leases. Calling it more than once is safe.
func (v View) Release() {
	for _, l := range v.leases {
		l.release()
	}
}

func (v View) slice(from, to int) View {
	return View{
		buf:    v.buf,
		start:  v.start + from,
		end:    v.start + to,
		leases: v.leases,
	}
}

// LastToken returns the part of v after the rightmost delim.
// If delim does not occur, v is returned unchanged.
func LastToken(v View, delim rune) View {
	return LastTokenFunc(v, func(r rune) bool { return r == delim })
}

// LastTokenFunc returns the part of v after the rightmost rune satisfying
// isDelim. If no rune does, v is returned unchanged.
func LastTokenFunc(v View, isDelim func(rune) bool) View {
	out := v
	v.read(func(p []byte) {
		for i := len(p); i > 0; {
			r, size := utf8.DecodeLastRune(p[:i])
			if isDelim(r) {
				out = v.slice(i, len(p))
				return
			}
			i -= size
		}
	})
	return out
}

// TrimRightFunc returns v without the trailing runes satisfying f.
// The result shares v's leases.
func TrimRightFunc(v View, f func(rune) bool) View {
	out := v
	v.read(func(p []byte) {
		out = v.slice(0, len(bytes.TrimRightFunc(p, f)))
	})
	return out
}

// Longer returns whichever of a and b is longer; b wins ties.
// The result depends on the leases of both inputs and becomes unusable
// once either input is released.
func Longer(a, b View) View {
	out := b
	if a.Len() > b.Len() {
		out = a
	}
	out.leases = joinLeases(a.leases, b.leases)
	return out
}

// LongerWithAnnouncement writes ann to w before selecting like Longer.
func LongerWithAnnouncement(w io.Writer, a, b View, ann any) (View, error) {
	if _, err := fmt.Fprintf(w, "Announcement! %v\n", ann); err != nil {
		return View{}, err
	}
	return Longer(a, b), nil
}

func joinLeases(a, b []*lease) []*lease {
	out := make([]*lease, 0, len(a)+len(b))
	out = append(out, a...)
	for _, l := range b {
		seen := false
		for _, m := range a {
			if m == l {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, l)
		}
	}
	return out
}
