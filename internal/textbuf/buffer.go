// Package textbuf holds owned text buffers and the read-only views borrowed
// from them.
//
// A Buffer hands out Views under read leases. While any lease is held the
// buffer refuses to mutate, so a View never observes content that differs
// from what it saw when it was created.
package textbuf

import (
	"io"
	"sync"
	"unicode/utf8"
)

// Buffer is a growable UTF-8 text buffer with a single owner.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	leases int
}

// New creates a buffer holding a copy of s.
func New(s string) *Buffer {
	return &Buffer{data: []byte(s)}
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// String returns a copy of the buffer contents.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

// Leases returns the number of outstanding read leases.
func (b *Buffer) Leases() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.leases
}

// Append adds s to the end of the buffer.
func (b *Buffer) Append(s string) error {
	return b.mutate(func() {
		b.data = append(b.data, s...)
	})
}

// Overwrite replaces the buffer contents with s.
func (b *Buffer) Overwrite(s string) error {
	return b.mutate(func() {
		b.data = append(b.data[:0], s...)
	})
}

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() error {
	return b.mutate(func() {
		b.data = b.data[:0]
	})
}

// ReadFrom appends everything r yields until EOF. Bytes read before a
// failure stay in the buffer.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.leases > 0 {
		return 0, ErrBorrowed
	}

	var total int64
	for {
		if len(b.data) == cap(b.data) {
			b.data = append(b.data, 0)[:len(b.data)]
		}
		n, err := r.Read(b.data[len(b.data):cap(b.data)])
		b.data = b.data[:len(b.data)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func (b *Buffer) mutate(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.leases > 0 {
		return ErrBorrowed
	}
	fn()
	return nil
}

// View borrows bytes [start, end) of the buffer without copying.
//
// Both offsets must lie within the buffer and on character boundaries.
// The returned view holds a read lease until Release is called.
func (b *Buffer) View(start, end int) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > len(b.data) {
		return View{}, &RangeError{Start: start, End: end, Len: len(b.data)}
	}
	if !b.isBoundary(start) {
		return View{}, &BoundaryError{Offset: start}
	}
	if !b.isBoundary(end) {
		return View{}, &BoundaryError{Offset: end}
	}
	return b.lend(start, end), nil
}

// Borrow returns a view over the whole buffer.
func (b *Buffer) Borrow() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lend(0, len(b.data))
}

func (b *Buffer) lend(start, end int) View {
	b.leases++
	return View{
		buf:    b,
		start:  start,
		end:    end,
		leases: []*lease{{buf: b}},
	}
}

func (b *Buffer) isBoundary(off int) bool {
	return off == len(b.data) || utf8.RuneStart(b.data[off])
}
