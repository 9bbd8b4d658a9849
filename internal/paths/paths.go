// Package paths provides platform-appropriate paths for flatpod's on-disk
// state: the object store, its decompression cache, and per-run build
// directories. All paths follow XDG conventions on Linux and
// platform-native conventions on macOS and Windows.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory naming under the XDG data home.
	appName = "flatpod"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Root of all flatpod-owned state.
//
//	Linux:   $XDG_DATA_HOME/flatpod or ~/.local/share/flatpod
//	macOS:   ~/Library/Application Support/flatpod
func DataRoot() string {
	return filepath.Join(xdg.DataHome, appName)
}

// Path to the object store.
func Repo() string {
	return filepath.Join(DataRoot(), "repo")
}

// Path to the object store's decompression cache. Gzip layers checked out
// more than once (e.g. shared base-image layers across conversions) are
// decompressed here once, keyed by digest, instead of on every checkout.
// Purged entirely by the janitor's "all" mode.
func UncompressedCache() string {
	return filepath.Join(Repo(), "uncompressed-objects-cache")
}

// Path to the directory holding per-run build directories.
func Builds() string {
	return filepath.Join(DataRoot(), "builds")
}

// Creates the directories flatpod expects to exist before a conversion or
// cleanup run: the repo and the builds directory.
func EnsureLayout() error {
	for _, dir := range []string{Repo(), Builds()} {
		if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
			return err
		}
	}
	return nil
}

// Creates a fresh, empty build directory for the given (already escaped)
// image token and returns its path. The directory is created under
// Builds() so a single janitor sweep of that directory recovers space from
// every abandoned run regardless of which image produced it.
func NewBuildDir(escapedImage string) (string, error) {
	if err := os.MkdirAll(Builds(), DefaultDirMode); err != nil {
		return "", err
	}
	return os.MkdirTemp(Builds(), escapedImage+".")
}
