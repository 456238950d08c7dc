// Package static resolves request paths to files under the frontend build
// directory and serves them.
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"

	"golang.org/x/text/unicode/norm"
)

// IndexFile is served in place of a directory.
const IndexFile = "index.html"

// Dir is a read-only view of the build output directory.
type Dir struct {
	root  string
	index string
	fs    http.FileSystem
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{
		root:  root,
		index: IndexFile,
		fs:    http.Dir(root),
	}
}

// Root returns the directory the Dir was created with.
func (d *Dir) Root() string {
	return d.root
}

// Open resolves urlPath under the root and opens the file it names.
//
// Directories resolve to their index file. When the exact path is not
// present its NFC and NFD forms are tried. A path that resolves to nothing
// returns an error matching fs.ErrNotExist.
func (d *Dir) Open(urlPath string) (http.File, fs.FileInfo, error) {
	name := path.Clean("/" + urlPath)

	var firstErr error
	for _, candidate := range candidates(name) {
		f, info, err := d.open(candidate)
		if err == nil {
			return f, info, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, nil, firstErr
}

func (d *Dir) open(name string) (http.File, fs.FileInfo, error) {
	f, info, err := d.stat(name)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return f, info, nil
	}
	f.Close()

	index := path.Join(name, d.index)
	f, info, err = d.stat(index)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("open %s: %w", index, fs.ErrNotExist)
	}
	return f, info, nil
}

func (d *Dir) stat(name string) (http.File, fs.FileInfo, error) {
	f, err := d.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	return f, info, nil
}

// candidates returns name followed by its distinct NFC and NFD forms.
func candidates(name string) []string {
	out := []string{name}
	for _, form := range []norm.Form{norm.NFC, norm.NFD} {
		v := form.String(name)
		seen := false
		for _, c := range out {
			if c == v {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}
