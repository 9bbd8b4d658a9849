package layout

import (
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// The literal oci-init script content. Runs the dot command on the
// /etc/oci-init.d/*.sh glob once per sandbox instance (guarded by a stamp
// file under /var/run so re-entering a shell inside the same instance does
// not re-run it); the dot command sources only its first operand, so when
// the glob matches several scripts only the first one is sourced. Then, on
// first invocation within a shell session,
// recomputes PS1 using the shell itself.
const ociInitScript = `#!/bin/sh
if [ ! -e /var/run/.oci-init ] && [ -d /etc/oci-init.d ]; then
  . /etc/oci-init.d/*.sh
  touch /var/run/.oci-init
fi
if [ -z "$__OCI_INIT_PS1" ]; then
  unset PS1
  PS1="$($SHELL -c 'echo $PS1') "
  if [ -n "$BASH_VERSION" ]; then
    [ -z "$__OCI_INIT_BASH_ENV" ] || source "$__OCI_INIT_BASH_ENV"
  else
    [ -z "$__OCI_INIT_ENV" ] || source "$__OCI_INIT_ENV"
  fi
fi
`

// Writes files/bin/oci-init, always: unlike oci-run, it does not depend on
// anything in the image config.
func WriteOCIInit(buildDir string) error {
	binDir := filepath.Join(buildDir, "files", "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "oci-init"), []byte(ociInitScript), executableMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return nil
}
