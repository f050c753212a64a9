// Package static serves the shell's asset files from a local directory or
// an S3 bucket.
package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// ErrNotFound is returned by a Source when no object exists under a name.
var ErrNotFound = errors.New("static: object not found")

// Object is an opened asset. Callers must close Body.
type Object struct {
	Name         string
	ContentType  string
	Size         int64 // -1 when unknown
	LastModified time.Time
	ETag         string
	Body         io.ReadCloser
}

// Source opens assets by slash-separated relative name.
type Source interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// Dir is a Source backed by an fs.FS, usually os.DirFS or an embed.FS.
type Dir struct {
	fsys fs.FS
}

// NewDir returns a Source reading from fsys.
func NewDir(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

// Open implements Source. Directories are reported as ErrNotFound.
func (d *Dir) Open(_ context.Context, name string) (*Object, error) {
	if !fs.ValidPath(name) {
		return nil, ErrNotFound
	}
	f, err := d.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("static: open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("static: stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{
		Name:         name,
		Size:         info.Size(),
		LastModified: info.ModTime(),
		Body:         f,
	}, nil
}
