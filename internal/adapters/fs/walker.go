// Package fs provides the file system adapters used to stage and switch environments.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Entry is a single node of a directory tree.
type Entry struct {
	// Path is the absolute path of the node.
	Path string
	// Rel is the path relative to the walked root. The root itself is ".".
	Rel string
	// Info describes the node without following symlinks.
	Info fs.FileInfo
}

// Walker provides directory tree walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkTree yields every node below root in lexical order, root first.
// Symlinks are yielded as links and never followed. Walking stops at the first error,
// which is yielded together with a zero Entry.
func (w *Walker) WalkTree(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			if !yield(Entry{Path: path, Rel: rel, Info: info}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}
