package textbuf

import (
	"errors"
	"fmt"
)

var (
	ErrRange           = errors.New("range out of bounds")
	ErrInvalidBoundary = errors.New("boundary splits an encoded character")
	ErrBorrowed        = errors.New("buffer has outstanding views")
	ErrViewReleased    = errors.New("view used after release")
)

// RangeError reports a view request outside the buffer.
type RangeError struct {
	Start, End, Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [%d:%d] out of bounds for length %d", e.Start, e.End, e.Len)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// BoundaryError reports a view boundary that lands inside a UTF-8 sequence.
type BoundaryError struct {
	Offset int
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("byte offset %d is not a character boundary", e.Offset)
}

func (e *BoundaryError) Unwrap() error { return ErrInvalidBoundary }
