package tree

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Entries removed from a tree before it is committed. Paths are relative
// to the tree root and are removed if present; a missing entry is not an
// error, which makes Cleanup idempotent.
var garbageEntries = []string{
	"dev",
	"home",
	"media",
	"mnt",
	"proc",
	"root",
	"run",
	"sys",
	"tmp",
	"var/cache",
	"var/mail",
	"var/run",
	"var/tmp",
	"content",
	"manifest.json",
}

// Removes container-specific paths (runtime mount points, package caches,
// the manifest and config blobs staged by the checkout) that have no place
// in a committed runtime tree. Safe to call more than once: entries
// already removed are simply skipped.
func Cleanup(root string) error {
	for _, rel := range garbageEntries {
		p := filepath.Join(root, rel)
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			continue
		} else if err != nil {
			return errs.Wrap(ErrTree, err)
		}

		if err := os.Remove(p); err != nil {
			if _, delErr := Delete(p, DeleteOptions{}); delErr != nil {
				return errs.Wrap(ErrTree, delErr)
			}
		}
	}
	return nil
}
