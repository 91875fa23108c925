package archive

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local implements Store on the local file system.
type Local struct {
	root string
}

var _ Store = (*Local)(nil)

// NewLocal returns a store rooted at the given directory.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Open opens a spool file. Missing files satisfy ErrNotFound through
// the os error chain.
func (s *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, name))
}

// Create creates a spool file, making parent directories as needed.
func (s *Local) Create(_ context.Context, name string) (io.WriteCloser, error) {
	path := filepath.Join(s.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// List walks the root and returns slash-separated names under prefix.
func (s *Local) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); strings.HasPrefix(rel, prefix) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
