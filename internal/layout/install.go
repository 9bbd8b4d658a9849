package layout

import (
	"context"
	"net/url"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/flatpak"
	"github.com/flatpodhq/flatpod/internal/image"
)

// Registers the object store as flatpak's flatpod-origin remote and
// installs (or updates) the runtime described by info.
func Install(ctx context.Context, repoPath string, info image.RuntimeInfo) error {
	repoURI := (&url.URL{Scheme: "file", Path: filepath.ToSlash(repoPath)}).String()

	if err := flatpak.EnsureRemote(ctx, repoURI); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	if err := flatpak.Install(ctx, info.ID, info.Arch, info.Branch); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return nil
}
