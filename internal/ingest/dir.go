package ingest

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSource resolves names as files under Root. An empty Root means the
// current working directory and accepts any path. With a Root set, names
// must stay inside it.
type DirSource struct {
	Root string
}

func (d DirSource) path(op, name string) (string, error) {
	if d.Root == "" {
		return name, nil
	}
	if !filepath.IsLocal(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrPermission}
	}
	return filepath.Join(d.Root, name), nil
}

func (d DirSource) Open(name string) (io.ReadCloser, error) {
	path, err := d.path("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Create makes an empty file, failing if it already exists.
func (d DirSource) Create(name string) (io.WriteCloser, error) {
	path, err := d.path("create", name)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}
