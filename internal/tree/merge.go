package tree

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
)

// Options controlling MergeTo.
type MergeOptions struct {

	// The tree root used to resolve absolute symlink targets. Required
	// whenever src or its descendants may contain absolute symlinks.
	Root string

	// When set, src itself is not removed once its contents have been
	// merged into dst.
	KeepRoot bool
}

// Moves every entry of src into dst, recursing into subdirectories rather
// than moving them wholesale, and removes src afterward unless KeepRoot is
// set. Missing src is a no-op.
//
// A conflict (an entry with the same name already present in dst) is
// resolved by symlink equivalence: if the source entry is a symlink that
// resolves to the destination entry, the source is simply dropped; if the
// destination entry is a symlink that resolves to the source entry, the
// destination is removed and the source takes its place. This lets a
// runtime layout's usr-merge collapse `usr/local/bin -> ../bin`-style
// compatibility symlinks against the real directories they point at,
// without either merge direction destroying data.
//
// A source entry equal to dst itself is skipped, which lets a directory be
// merged into one of its own children (e.g. merging a tree's root into its
// own files/ subdirectory).
func MergeTo(src, dst string, opts MergeOptions) error {
	entries, err := os.ReadDir(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errs.Wrap(ErrTree, err)
	}

	for _, e := range entries {
		srcChild := filepath.Join(src, e.Name())
		dstChild := filepath.Join(dst, e.Name())

		if filepath.Clean(srcChild) == filepath.Clean(dst) {
			continue
		}

		if _, err := os.Lstat(dstChild); err == nil {
			if resolvesTo(srcChild, dstChild, opts.Root) {
				if err := os.Remove(srcChild); err != nil {
					return errs.Wrap(ErrTree, err)
				}
				continue
			}
			if resolvesTo(dstChild, srcChild, opts.Root) {
				if err := os.Remove(dstChild); err != nil {
					return errs.Wrap(ErrTree, err)
				}
			}
		}

		info, err := os.Lstat(srcChild)
		if err != nil {
			return errs.Wrap(ErrTree, err)
		}

		if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			if err := MergeTo(srcChild, dstChild, MergeOptions{Root: opts.Root}); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(dst, paths.DefaultDirMode); err != nil {
			return errs.Wrap(ErrTree, err)
		}
		if err := os.Rename(srcChild, dstChild); err != nil {
			return errs.Wrap(ErrTree, err)
		}
	}

	if opts.KeepRoot {
		return nil
	}
	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(ErrTree, err)
	}
	return nil
}

// Reports whether link is a symlink whose resolved target is target.
func resolvesTo(link, target, root string) bool {
	info, err := os.Lstat(link)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}

	dest, err := os.Readlink(link)
	if err != nil {
		return false
	}

	var resolved string
	if filepath.IsAbs(dest) {
		resolved = filepath.Join(root, dest)
	} else {
		resolved = filepath.Join(filepath.Dir(link), dest)
	}

	return filepath.Clean(resolved) == filepath.Clean(target)
}
