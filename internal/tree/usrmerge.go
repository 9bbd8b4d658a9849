package tree

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Applies the /usr-merge transformation to root: usr/local is merged into
// usr, then usr is merged into root itself. The order matters: merging
// usr/local into usr first lets any usr/local/bin -> ../bin compatibility
// symlink resolve against the real usr/bin before usr's own bin directory
// is merged up to the tree root, so the two merges never fight over the
// same destination out of order.
func UsrMerge(root string) error {
	usr := filepath.Join(root, "usr")
	if _, err := os.Stat(usr); err != nil {
		return errs.Wrap(ErrUsrMerge, err)
	}

	local := filepath.Join(usr, "local")
	if err := MergeTo(local, usr, MergeOptions{Root: root}); err != nil {
		return errs.Wrap(ErrUsrMerge, err)
	}

	if err := MergeTo(usr, root, MergeOptions{Root: root}); err != nil {
		return errs.Wrap(ErrUsrMerge, err)
	}

	return nil
}
