package tree

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// One entry visited by Walk, given as a path relative to the tree root.
type Entry struct {
	Path string
	Info os.FileInfo
}

// Walks root depth-first, invoking fn once per entry (root itself is not
// visited). Symlinked directories are not traversed into, matching every
// other operation in this package.
func Walk(root string, fn func(Entry) error) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return fn(Entry{Path: rel, Info: info})
	})
	if err != nil {
		return errs.Wrap(ErrTree, err)
	}
	return nil
}
