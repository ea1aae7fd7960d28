// Package ingest reads named text resources into owned buffers.
//
// Every failure comes back to the caller as an *Error with a Kind; nothing
// here retries on its own, logs, or exits.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"crusty-text/internal/textbuf"
)

// Kind classifies an ingestion failure.
type Kind int

const (
	OtherIO Kind = iota
	NotFound
	PermissionDenied
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	default:
		return "i/o error"
	}
}

var (
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrOtherIO          = errors.New("i/o failure")
)

// Error is a classified ingestion failure.
type Error struct {
	Op   string
	Name string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Name, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrPermissionDenied:
		return e.Kind == PermissionDenied
	case ErrOtherIO:
		return e.Kind == OtherIO
	}
	return false
}

// Source resolves resource names. It only needs to open for reading and
// create an empty resource.
type Source interface {
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
}

// Classify maps an error from a Source to a Kind. Sources signal a missing
// resource with fs.ErrNotExist (or an error wrapping ErrNotFound).
func Classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrNotFound):
		return NotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, ErrPermissionDenied):
		return PermissionDenied
	default:
		return OtherIO
	}
}

func wrap(op, name string, err error) error {
	return &Error{Op: op, Name: name, Kind: Classify(err), Err: err}
}

// ReadAll opens name and reads it fully into a new buffer. A failure while
// opening or reading stops immediately and is returned as *Error.
func ReadAll(src Source, name string) (*textbuf.Buffer, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, wrap("open", name, err)
	}
	defer rc.Close()

	buf := textbuf.New("")
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, wrap("read", name, err)
	}
	return buf, nil
}

// ReadOrCreate reads name, creating it empty and retrying once if it does
// not exist yet. Other failures are returned unchanged.
func ReadOrCreate(src Source, name string) (*textbuf.Buffer, error) {
	buf, err := ReadAll(src, name)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return buf, err
	}

	wc, err := src.Create(name)
	if err != nil {
		return nil, wrap("create", name, err)
	}
	if err := wc.Close(); err != nil {
		return nil, wrap("create", name, err)
	}
	return ReadAll(src, name)
}
