package tree

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/progress"
)

// Options controlling a recursive delete.
type DeleteOptions struct {

	// When set, the total size of deleted regular files is accumulated
	// into the returned Stats.
	CountBytes bool

	// When set, Step is called once per removed filesystem entry.
	Progress *progress.Reporter
}

// Stats about a completed delete.
type DeleteStats struct {
	Bytes int64
	Items int
}

// Recursively removes path. Symlinks are removed as leaves, never
// followed. Missing paths are treated as already deleted, so Delete is
// idempotent: running it twice in a row is a no-op the second time.
func Delete(path string, opts DeleteOptions) (DeleteStats, error) {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return DeleteStats{}, nil
	}
	if err != nil {
		return DeleteStats{}, errs.Wrap(ErrTree, err)
	}

	stats, err := deleteRecursive(path, info, opts)
	if err != nil {
		return stats, errs.Wrap(ErrTree, err)
	}
	return stats, nil
}

func deleteRecursive(path string, info os.FileInfo, opts DeleteOptions) (DeleteStats, error) {
	var stats DeleteStats

	if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
		entries, err := os.ReadDir(path)
		if err != nil {
			return stats, err
		}
		for _, e := range entries {
			childInfo, err := e.Info()
			if err != nil {
				return stats, err
			}
			childStats, err := deleteRecursive(filepath.Join(path, e.Name()), childInfo, opts)
			stats.Bytes += childStats.Bytes
			stats.Items += childStats.Items
			if err != nil {
				return stats, err
			}
		}
	} else if opts.CountBytes && info.Mode().IsRegular() {
		stats.Bytes += info.Size()
	}

	if err := os.Remove(path); err != nil {
		return stats, err
	}
	stats.Items++

	if opts.Progress != nil {
		opts.Progress.Step()
	}

	return stats, nil
}
