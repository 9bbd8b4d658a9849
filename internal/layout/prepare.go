package layout

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
	"github.com/flatpodhq/flatpod/internal/tree"
)

// Runs the tree-preparation sequence over buildDir: remove container-only
// paths, collapse /usr into the root, then relocate everything under
// files/. The self-child skip in tree.MergeTo is what lets the final merge
// target a subdirectory of its own source without an infinite recursion or
// data loss: buildDir/files is itself an entry of buildDir, and MergeTo
// skips a source entry equal to its destination.
func Prepare(buildDir string) error {
	if err := tree.Cleanup(buildDir); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	if err := tree.UsrMerge(buildDir); err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	filesDir := filepath.Join(buildDir, "files")
	if err := os.MkdirAll(filesDir, paths.DefaultDirMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	if err := tree.MergeTo(buildDir, filesDir, tree.MergeOptions{Root: buildDir, KeepRoot: true}); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return nil
}
