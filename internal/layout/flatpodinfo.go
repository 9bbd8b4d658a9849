package layout

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
)

// Writes files/.flatpod-info, a provenance stamp recording the raw image
// reference a runtime was converted from. Read back by the janitor to walk
// from an installed runtime to the ociimage/* refs it still depends on.
func WriteFlatpodInfo(buildDir, rawImage string) error {
	var w iniWriter
	w.section("Image").set("name", rawImage)
	path := filepath.Join(buildDir, "files", ".flatpod-info")
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return w.writeFile(path)
}

// Reads the image reference stamped by WriteFlatpodInfo out of raw
// .flatpod-info file content.
func ParseFlatpodInfo(data []byte) (string, error) {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	section := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			continue
		}
		if section != "Image" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if ok && k == "name" {
			return v, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", errs.Wrap(ErrLayout, err)
	}
	return "", errs.Wrapf(ErrLayout, "no [Image] name in .flatpod-info")
}
