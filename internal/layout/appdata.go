package layout

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/paths"
)

// Name of the appstream compile tool invoked by WriteAppdata. Overridable
// in tests.
var AppstreamComposeTool = "appstream-compose"

const appdataTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<component type="runtime">
  <id>%s</id>
  <name>%s</name>
  <metadata_license>CC0-1.0</metadata_license>
  <summary>Flatpod-generated runtime</summary>
</component>
`

// Writes files/share/appdata/<id>.appdata.xml and compiles it with the
// external appstream tool, which reads every *.appdata.xml under
// <prefix>/share/appdata and writes its compiled cache under
// <prefix>/share/app-info. That output directory is removed first: if a
// prior conversion of the same build directory crashed mid-compile (or
// ran with a different --runtime-id override), its compiled output would
// otherwise linger alongside this run's, which the source's own appdata
// writer never guarded against.
func WriteAppdata(ctx context.Context, buildDir string, info image.RuntimeInfo) error {
	filesDir := filepath.Join(buildDir, "files")
	appdataDir := filepath.Join(filesDir, "share", "appdata")

	if err := os.MkdirAll(appdataDir, paths.DefaultDirMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	xml := fmt.Sprintf(appdataTemplate, info.ID, info.FullName())
	xmlPath := filepath.Join(appdataDir, info.ID+".appdata.xml")
	if err := os.WriteFile(xmlPath, []byte(xml), paths.DefaultFileMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	appInfoDir := filepath.Join(filesDir, "share", "app-info")
	if err := os.RemoveAll(appInfoDir); err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	cmd := exec.CommandContext(ctx, AppstreamComposeTool,
		"--prefix="+filesDir,
		"--basename="+info.ID,
		"--origin=flatpak",
		info.ID,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errs.Wrapf(ErrLayout, "appstream-compose: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}
