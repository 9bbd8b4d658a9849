package layout

import (
	"path/filepath"
	"sort"

	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/manifest"
)

// The default value for PS1 when the image's own config does not set one:
// re-derive it by asking the user's login shell, matching how oci-init
// itself recomputes PS1 on first invocation.
const defaultPS1 = "$($SHELL -c 'echo $PS1') "

// The command-substitution prefix every metadata PS1 value carries, so
// that sourcing oci-init once (with __OCI_INIT_PS1 set to suppress its own
// PS1 recomputation) runs the init scripts as a side effect of resolving
// the environment variable, before falling through to the image's own or
// the default PS1 text.
const ps1InitPrefix = "$(__OCI_INIT_PS1=1 . /usr/bin/oci-init)"

// Writes the metadata file at the root of buildDir describing the runtime
// to the target package system: its identity, and the environment the
// sandbox launches with.
func WriteMetadata(buildDir string, info image.RuntimeInfo, cfg *manifest.Config) error {
	var w iniWriter

	rt := w.section("Runtime")
	rt.set("name", info.ID)
	rt.set("runtime", info.FullName())
	rt.set("sdk", info.FullName())

	env := w.section("Environment")

	names := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		env.set(k, cfg.Env[k])
	}

	ps1 := cfg.Env["PS1"]
	if ps1 == "" {
		ps1 = defaultPS1
	}
	env.set("PS1", ps1InitPrefix+ps1)

	env.set("__OCI_INIT_ENV", cfg.Env["ENV"])
	env.set("__OCI_INIT_BASH_ENV", cfg.Env["BASH_ENV"])
	env.set("ENV", "/usr/bin/oci-init")
	env.set("BASH_ENV", "/usr/bin/oci-init")

	return w.writeFile(filepath.Join(buildDir, "metadata"))
}
