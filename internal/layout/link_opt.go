package layout

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
)

const linkOptScript = "[ -e /opt ] || ln -s /usr/opt /opt\n"

// Writes files/etc/oci-init.d/link-opt.sh iff files/opt exists: Prepare
// relocates an image's /opt directory to files/opt, and the script links
// /opt to /usr/opt inside the sandbox when /opt does not exist there.
func WriteLinkOpt(buildDir string) error {
	optDir := filepath.Join(buildDir, "files", "opt")
	if _, err := os.Stat(optDir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	dir := filepath.Join(buildDir, "files", "etc", "oci-init.d")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "link-opt.sh"), []byte(linkOptScript), 0644); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return nil
}
