package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/manifest"
)

const executableMode os.FileMode = 0755

// Writes files/bin/oci-run when the image config has a default command:
// an executable shell script that execs the shell-quoted command followed
// by "$@", so extra arguments the sandbox is invoked with are appended
// rather than discarded. No-op if the image has no Cmd.
func WriteOCIRun(buildDir string, cfg *manifest.Config) error {
	if len(cfg.Cmd) == 0 {
		return nil
	}

	quoted := make([]string, len(cfg.Cmd))
	for i, arg := range cfg.Cmd {
		quoted[i] = shellQuote(arg)
	}

	script := "#!/bin/sh\nexec " + strings.Join(quoted, " ") + " \"$@\"\n"

	binDir := filepath.Join(buildDir, "files", "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "oci-run"), []byte(script), executableMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return nil
}

// Wraps s in single quotes, escaping any embedded single quote the POSIX
// shell way ('\'').
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
