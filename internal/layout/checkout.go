package layout

import (
	"context"
	"os"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/manifest"
	"github.com/flatpodhq/flatpod/internal/progress"
	"github.com/flatpodhq/flatpod/internal/store"
)

// Checks out an image's root and every layer into buildDir, in the order
// the Runtime Layout Builder's checkout sequence requires: the escaped
// image ref first (yielding manifest.json and content), then each layer
// digest in order, then the config digest, each with union-overwrite
// semantics so later layers may add or replace files from earlier ones.
func Checkout(ctx context.Context, st *store.Store, rawImage, buildDir string) (*manifest.Manifest, error) {
	imageRef := "ociimage/" + image.Escape(rawImage)
	if err := st.Checkout(ctx, imageRef, buildDir); err != nil {
		return nil, errs.Wrapf(ErrLayout, "checkout image root %s: %w", imageRef, err)
	}

	m, err := manifest.ReadManifest(buildDir)
	if err != nil {
		return nil, err
	}

	reporter := progress.New(os.Stderr, "checking out layers")
	reporter.SetTotal(len(m.LayerDigests))
	for _, d := range m.LayerDigests {
		ref := "ociimage/" + manifest.Token(d)
		if err := st.Checkout(ctx, ref, buildDir); err != nil {
			return nil, errs.Wrapf(ErrLayout, "checkout layer %s: %w", ref, err)
		}
		reporter.Step()
	}
	reporter.Done()

	ref := "ociimage/" + manifest.Token(m.ConfigDigest)
	if err := st.Checkout(ctx, ref, buildDir); err != nil {
		return nil, errs.Wrapf(ErrLayout, "checkout config %s: %w", ref, err)
	}

	return m, nil
}
